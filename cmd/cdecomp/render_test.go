package main

import (
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cdecomp/grammar"
	"cdecomp/internal/passes"
	"cdecomp/internal/program"
)

func TestRender(t *testing.T) {
	color.NoColor = true

	m, err := grammar.ParseString("render.ll", `
%struct.pair = type { i32, [2 x i8] }

@table = global [3 x i32] zeroinitializer, align 4

define i32 @main(i32 noundef %0, ptr noundef %1) {
  %3 = alloca [4 x i32], align 16
  %4 = call i32 (ptr, ...) @printf(ptr noundef %1)
  ret i32 %4
}

declare i32 @printf(ptr noundef, ...)
`)
	require.NoError(t, err)
	p := program.New()
	require.NoError(t, passes.NewPipeline(passes.DefaultOptions()).Run(m, p))

	out := render(p)
	assert.Contains(t, out, "struct s_pair {\n    int structVar0;\n    char structVar1[2];\n};")
	assert.Contains(t, out, "int table[3] = {0};")
	assert.Contains(t, out, "int printf(void* var0, ...);")
	assert.Contains(t, out, "int main(int var0, void* var1) {\n    int var2[4];\n")
	assert.Contains(t, out, "label2:\n    var3 = printf(var1);\n    return var3;\n}")
}

func TestDeclare(t *testing.T) {
	p := program.New()
	assert.Equal(t, "long x", declare(p.Types.SLong, "x"))
	assert.Equal(t, "char* s", declare(p.Types.PointerTo(p.Types.SChar), "s"))
}
