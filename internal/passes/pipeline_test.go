package passes_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cdecomp/grammar"
	"cdecomp/internal/ast"
	"cdecomp/internal/errors"
	"cdecomp/internal/ir"
	"cdecomp/internal/passes"
	"cdecomp/internal/program"
)

func load(t *testing.T, src string) *ir.Module {
	t.Helper()
	m, err := grammar.ParseString("test.ll", src)
	require.NoError(t, err)
	return m
}

func decompile(t *testing.T, src string) *program.Program {
	t.Helper()
	p := program.New()
	require.NoError(t, passes.NewPipeline(passes.DefaultOptions()).Run(load(t, src), p))
	return p
}

func translationError(t *testing.T, err error) *errors.TranslationError {
	t.Helper()
	require.Error(t, err)
	te, ok := errors.AsTranslationError(err)
	require.True(t, ok, "expected a translation error, got %v", err)
	return te
}

func exprStrings(b *ast.Block) []string {
	out := make([]string, 0, len(b.Exprs))
	for _, e := range b.Exprs {
		out = append(out, e.String())
	}
	return out
}

func passTypes(pl *passes.Pipeline) []program.PassType {
	var out []program.PassType
	for _, pass := range pl.Passes() {
		out = append(out, pass.Type())
	}
	return out
}

func TestNewPipeline(t *testing.T) {
	pipeline := passes.NewPipeline(passes.DefaultOptions())

	assert.Equal(t, []program.PassType{
		program.ParseStructDeclarations,
		program.ParseStructItems,
		program.ParseGlobalVariables,
		program.CreateFunctionParameters,
		program.FixMainParameters,
		program.CreateAllocas,
		program.ParseInstructions,
	}, passTypes(pipeline))

	for _, pass := range pipeline.Passes() {
		assert.NotEmpty(t, pass.Description())
	}
}

func TestPipelineWithoutFixMain(t *testing.T) {
	pipeline := passes.NewPipeline(passes.Options{FixMain: false})
	assert.NotContains(t, passTypes(pipeline), program.FixMainParameters)

	src := `
define i32 @main(i32 noundef %0, ptr noundef %1) {
  ret i32 0
}
`
	p := program.New()
	require.NoError(t, pipeline.Run(load(t, src), p))
	assert.False(t, p.IsPassCompleted(program.FixMainParameters))
	assert.True(t, p.IsPassCompleted(program.ParseInstructions))
}

func TestPipelineRunsHelloExample(t *testing.T) {
	m, err := grammar.ParseFile("../../examples/hello.ll")
	require.NoError(t, err)

	p := program.New()
	require.NoError(t, passes.NewPipeline(passes.DefaultOptions()).Run(m, p))

	for pass := program.ParseStructDeclarations; pass <= program.ParseInstructions; pass++ {
		assert.True(t, p.IsPassCompleted(pass), pass.String())
	}

	require.Len(t, p.Functions(), 3)
	main := p.FunctionByName("main")
	require.NotNil(t, main)
	assert.Equal(t, "int", main.ReturnType.String())
	assert.Len(t, main.Allocas, 5)
	assert.Equal(t, "int[4] var6", main.Allocas[4].String())
	require.Len(t, main.Blocks, 5)
	assert.Equal(t, "label2", main.Blocks[0].Name)
	assert.Contains(t, exprStrings(main.Blocks[1]), "var16 = printf(&_str_1, var14, var15)")

	printf := p.FunctionByName("printf")
	assert.True(t, printf.Declaration)
	assert.True(t, printf.VarArg)
}

func TestPipelineStopsAtFirstError(t *testing.T) {
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
	p := program.New()
	err := passes.NewPipeline(passes.DefaultOptions()).Run(load(t, src), p)

	te := translationError(t, err)
	assert.Equal(t, errors.ErrorUnsupportedInstruction, te.Code)
	assert.Equal(t, "ParseInstructions", te.Pass)
	assert.Equal(t, "function @h", te.Element)
	assert.Equal(t, 10, te.Pos.Line)
	assert.Contains(t, te.Error(), "ParseInstructions: [D0103] cannot translate instruction 'phi'")
	assert.False(t, p.IsPassCompleted(program.ParseInstructions))
}

func TestVerifyRejectsUntypedExpressions(t *testing.T) {
	p := program.New()
	fn := program.NewFunction(&ir.Function{Name: "f", Sig: &ir.FuncType{RetType: &ir.VoidType{}}})
	fn.ReturnType = p.Types.Void
	p.AddFunction(fn)
	require.NoError(t, passes.Verify(p))

	block := fn.AddBlock("label0")
	block.Append(ast.NewDerefExpr(ast.NewValue("x", p.Types.SInt)))

	te := translationError(t, passes.Verify(p))
	assert.Equal(t, errors.ErrorUnresolvedType, te.Code)
	assert.Equal(t, "function @f", te.Element)
	assert.Contains(t, te.Message, "'*x'")
}
