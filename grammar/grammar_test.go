package grammar_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cdecomp/grammar"
	"cdecomp/internal/errors"
	"cdecomp/internal/ir"
)

func TestHelloExample(t *testing.T) {
	m, err := grammar.ParseFile(`../examples/hello.ll`)
	require.NoError(t, err)

	assert.Equal(t, "hello.c", m.SourceFilename)
	assert.Equal(t, "x86_64-pc-linux-gnu", m.TargetTriple)

	// Validate struct definitions
	require.Len(t, m.TypeDefs, 2)
	assert.Equal(t, "struct.point", m.TypeDefs[0].TypeName)
	assert.Equal(t, "{ i32, i32 }", m.TypeDefs[0].LiteralString())
	assert.Equal(t, "union.num", m.TypeDefs[1].TypeName)
	assert.Equal(t, 6, m.StructPos("struct.point").Line)

	// Validate globals
	require.Len(t, m.Globals, 6)
	str := m.Global(".str")
	require.NotNil(t, str)
	assert.True(t, str.Immutable)
	assert.Equal(t, "[6 x i8]", str.ContentType.String())
	assert.Equal(t, ir.ConstString, str.Init.Kind)
	assert.Equal(t, "hello\x00", str.Init.Text)

	greeting := m.Global("greeting")
	assert.Equal(t, ir.ConstGlobal, greeting.Init.Kind)
	assert.Equal(t, ".str", greeting.Init.Text)

	fmtStr := m.Global(".str.1")
	assert.Equal(t, "%s %d\n\x00", fmtStr.Init.Text)

	origin := m.Global("origin")
	assert.Equal(t, ir.ConstAggregate, origin.Init.Kind)
	require.Len(t, origin.Init.Elems, 2)
	assert.Equal(t, "2", origin.Init.Elems[1].Const.Text)

	assert.Equal(t, "5.000000e-01", m.Global("ratio").Init.Text)

	// Validate functions
	require.Len(t, m.Funcs, 3)
	printf := m.Func("printf")
	require.NotNil(t, printf)
	assert.True(t, printf.IsDeclaration())
	assert.True(t, printf.Sig.Variadic)
	require.Len(t, printf.Params, 1)
	assert.Equal(t, "", printf.Params[0].Name)

	main := m.Func("main")
	require.NotNil(t, main)
	assert.Equal(t, "i32 (i32, ptr)", main.Sig.String())
	assert.Equal(t, "0", main.Params[0].Name)
	assert.Equal(t, "1", main.Params[1].Name)

	var labels []string
	for _, b := range main.Blocks {
		labels = append(labels, b.Name)
	}
	assert.Equal(t, []string{"2", "15", "19", "22", "23"}, labels)
}

func TestHelloInstructions(t *testing.T) {
	m, err := grammar.ParseFile(`../examples/hello.ll`)
	require.NoError(t, err)
	entry := m.Func("main").Blocks[0]

	alloca, ok := entry.Insts[4].(*ir.AllocaInstruction)
	require.True(t, ok)
	assert.Equal(t, "7", alloca.Result)
	assert.Equal(t, "[4 x i32]", alloca.ElemType.String())

	gep, ok := entry.Insts[15].(*ir.GetElementPtrInstruction)
	require.True(t, ok)
	assert.Equal(t, "13", gep.Result)
	require.Len(t, gep.Indices, 2)
	assert.Equal(t, ir.OperandLocal, gep.Indices[1].Kind)
	assert.Equal(t, "12", gep.Indices[1].Name)

	sw, ok := entry.Insts[len(entry.Insts)-1].(*ir.SwitchInstruction)
	require.True(t, ok)
	assert.Equal(t, "22", sw.Default)
	require.Len(t, sw.Cases, 2)
	assert.Equal(t, int64(1), sw.Cases[0].Value)
	assert.Equal(t, "15", sw.Cases[0].Target)
	assert.Equal(t, int64(2), sw.Cases[1].Value)

	call, ok := m.Func("main").Blocks[1].Insts[2].(*ir.CallInstruction)
	require.True(t, ok)
	assert.Equal(t, "18", call.Result)
	assert.Equal(t, "i32", call.RetType.String())
	assert.True(t, call.FnType.Variadic)
	assert.Equal(t, "printf", call.Callee.Name)
	require.Len(t, call.Args, 3)
	assert.Equal(t, ir.OperandGlobal, call.Args[0].Kind)

	sel, ok := m.Func("main").Blocks[4].Insts[4].(*ir.SelectInstruction)
	require.True(t, ok)
	assert.Equal(t, "0", sel.False.Const.Text)
	assert.Equal(t, 75, sel.Pos.Line)
}

func TestImplicitNumbering(t *testing.T) {
	src := `
define i32 @f(i32, i32) {
  call i32 @f(i32 1, i32 2)
  br label %next

next:
  ret i32 0
}
`
	m, err := grammar.ParseString("implicit.ll", src)
	require.NoError(t, err)

	f := m.Func("f")
	assert.Equal(t, "0", f.Params[0].Name)
	assert.Equal(t, "1", f.Params[1].Name)
	assert.Equal(t, "2", f.Blocks[0].Name)
	assert.Equal(t, "3", f.Blocks[0].Insts[0].GetResult())
	assert.Equal(t, "next", f.Blocks[1].Name)
}

func TestDebugInfoIsIgnored(t *testing.T) {
	src := `
define void @f(i32 noundef %0) !dbg !10 {
  %2 = alloca i32, align 4
  store i32 %0, ptr %2, align 4
  call void @llvm.dbg.declare(metadata ptr %2, metadata !15, metadata !DIExpression()), !dbg !16
  ret void, !dbg !17
}

declare void @llvm.dbg.declare(metadata, metadata, metadata)

!10 = distinct !DISubprogram(name: "f", scope: !1, file: !1, line: 1)
!16 = !DILocation(line: 1, column: 12, scope: !10)
`
	m, err := grammar.ParseString("debug.ll", src)
	require.NoError(t, err)

	f := m.Func("f")
	require.Len(t, f.Blocks, 1)
	require.Len(t, f.Blocks[0].Insts, 3)
	_, ok := f.Blocks[0].Insts[2].(*ir.ReturnInstruction)
	assert.True(t, ok)
}

func TestInlineAsmAndCasts(t *testing.T) {
	src := `
define i64 @g(ptr %p, i8 %c) {
  %r = call i64 asm sideeffect "movq $$0, $0", "=r,~{dirflag},~{memory}"()
  %w = zext i8 %c to i32
  %f = fcmp olt double 0x3FB999999999999A, 2.000000e+00
  %e = extractvalue { i32, i64 } zeroinitializer, 1
  ret i64 %r
}
`
	m, err := grammar.ParseString("asm.ll", src)
	require.NoError(t, err)
	insts := m.Func("g").Blocks[0].Insts

	call := insts[0].(*ir.CallInstruction)
	require.NotNil(t, call.Asm)
	assert.Nil(t, call.Callee)
	assert.True(t, call.Asm.SideEffect)
	assert.Equal(t, "movq $$0, $0", call.Asm.Text)
	assert.Equal(t, "=r,~{dirflag},~{memory}", call.Asm.Constraints)

	cast := insts[1].(*ir.CastInstruction)
	assert.Equal(t, "zext", cast.Op)
	assert.Equal(t, "i32", cast.To.String())

	cmp := insts[2].(*ir.CompareInstruction)
	assert.Equal(t, "fcmp", cmp.Kind)
	assert.Equal(t, "olt", cmp.Pred)
	assert.Equal(t, "0.1", cmp.X.Const.Text)
	assert.Equal(t, "2.000000e+00", cmp.Y.Const.Text)

	ev := insts[3].(*ir.ExtractValueInstruction)
	assert.Equal(t, []int64{1}, ev.Indices)
	assert.Equal(t, ir.ConstZero, ev.Agg.Const.Kind)
}

func TestUnmodeledInstructions(t *testing.T) {
	src := `
define i32 @h(i1 %c) {
entry:
  br i1 %c, label %a, label %b

a:
  br label %b

b:
  %v = phi i32 [ 1, %entry ], [ 2, %a ]
  ret i32 %v
}
`
	m, err := grammar.ParseString("phi.ll", src)
	require.NoError(t, err)

	br := m.Func("h").Blocks[0].Insts[0].(*ir.BranchInstruction)
	assert.Equal(t, "a", br.TrueTarget)
	assert.Equal(t, "b", br.FalseTarget)

	phi, ok := m.Func("h").Blocks[2].Insts[0].(*ir.OtherInstruction)
	require.True(t, ok)
	assert.Equal(t, "phi", phi.Opcode())
	assert.Equal(t, "v", phi.GetResult())
}

func TestSyntaxError(t *testing.T) {
	_, err := grammar.ParseString("bad.ll", "define i32 @f( {\n}\n")
	require.Error(t, err)

	te, ok := errors.AsTranslationError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrorParse, te.Code)
	assert.Equal(t, "bad.ll", te.Pos.Filename)
	assert.Equal(t, 1, te.Pos.Line)
}

func TestUnknownType(t *testing.T) {
	_, err := grammar.ParseString("type.ll", "@x = global quad 0\n")
	require.Error(t, err)

	te, ok := errors.AsTranslationError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrorParse, te.Code)
	assert.Contains(t, te.Message, "unknown type 'quad'")
}
