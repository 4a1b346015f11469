package passes_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cdecomp/internal/ast"
	"cdecomp/internal/errors"
	"cdecomp/internal/ir"
	"cdecomp/internal/passes"
	"cdecomp/internal/program"
	"cdecomp/internal/types"
)

func TestParseStructs(t *testing.T) {
	p := decompile(t, `
%struct.point = type { i32, i32 }
%union.num = type { float }
%struct.node = type { ptr, %struct.point, [2 x i8] }
`)
	require.Equal(t, 3, p.Structs.Len())

	point := p.Structs.Lookup("s_point")
	require.NotNil(t, point)
	assert.False(t, point.Union)
	require.Len(t, point.Fields, 2)
	assert.Equal(t, "structVar1", point.Fields[1].Name)
	assert.Same(t, p.Types.SInt, point.Fields[1].Type)

	num := p.Structs.Lookup("u_num")
	require.NotNil(t, num)
	assert.True(t, num.Union)
	assert.Equal(t, "union u_num", num.String())

	node := p.Structs.Lookup("s_node")
	require.Len(t, node.Fields, 3)
	assert.Equal(t, "void*", node.Fields[0].Type.String())
	assert.Same(t, point, node.Fields[1].Type)
	assert.Equal(t, "char[2]", node.Fields[2].Type.String())
}

func TestVarArgDescriptorIsSynthesized(t *testing.T) {
	p := decompile(t, `
%struct.__va_list_tag = type { i32, i32, ptr, ptr }
`)
	assert.True(t, p.HasVarArg())
	assert.Equal(t, 1, p.Structs.Len())

	s := p.Structs.Lookup(types.VarArgStructName)
	require.NotNil(t, s)
	require.Len(t, s.Fields, 4)
	assert.Equal(t, "gp_offset", s.Fields[0].Name)
	assert.Equal(t, "reg_save_area", s.Fields[3].Name)
	assert.Same(t, p.Types.UInt, s.Fields[0].Type)
}

func TestMalformedVarArgDescriptor(t *testing.T) {
	err := passesRun(t, `
%struct.__va_list_tag = type { i32 }
`)
	te := translationError(t, err)
	assert.Equal(t, errors.ErrorMalformedVarArg, te.Code)
	assert.Equal(t, "ParseStructDeclarations", te.Pass)
	assert.Equal(t, "%struct.__va_list_tag", te.Element)
	assert.Equal(t, 2, te.Pos.Line)
}

func TestStructNameCollision(t *testing.T) {
	err := passesRun(t, `
%struct.a.b = type { i32 }
%struct.a_b = type { i64 }
`)
	te := translationError(t, err)
	assert.Equal(t, errors.ErrorNameCollision, te.Code)
	assert.Contains(t, te.Message, "'s_a_b'")
}

func TestStructItemsRequireDeclarations(t *testing.T) {
	p := program.New()
	assert.PanicsWithError(t,
		"internal invariant violated [D0001]: ParseStructItems requires ParseStructDeclarations to run first",
		func() { _ = (&passes.ParseStructItems{}).Apply(&ir.Module{}, p) })
}

func TestCreateFunctionParameters(t *testing.T) {
	p := decompile(t, `
define i64 @f(i32 %count, ptr %0, i8 signext %2) {
  ret i64 0
}

declare i32 @printf(ptr noundef, ...)
`)
	f := p.FunctionByName("f")
	require.NotNil(t, f)
	assert.Equal(t, "long", f.ReturnType.String())
	require.Len(t, f.Parameters, 3)
	assert.Equal(t, "count", f.Parameters[0].Name)
	assert.Equal(t, "var1", f.Parameters[1].Name)
	assert.Equal(t, "var2", f.Parameters[2].Name)
	assert.Equal(t, "char", f.Parameters[2].Type().String())
	assert.False(t, f.VarArg)

	printf := p.FunctionByName("printf")
	require.NotNil(t, printf)
	assert.True(t, printf.Declaration)
	assert.True(t, printf.VarArg)
	require.Len(t, printf.Parameters, 1)
	assert.Equal(t, "var0", printf.Parameters[0].Name)
}

// mainProgram builds a main whose signature lost its signedness, next to
// another function sharing the same unsigned types
func mainProgram(t *testing.T) (*program.Program, *program.Function, *program.Function) {
	t.Helper()
	p := program.New()
	p.AddPass(program.CreateFunctionParameters)

	argc := &ir.Param{Name: "0", Typ: &ir.IntType{BitSize: 32}}
	argv := &ir.Param{Name: "1", Typ: &ir.PointerType{}}
	main := program.NewFunction(&ir.Function{
		Name:   "main",
		Sig:    &ir.FuncType{RetType: &ir.IntType{BitSize: 32}, Params: []ir.Type{argc.Typ, argv.Typ}},
		Params: []*ir.Param{argc, argv},
	})
	main.ReturnType = p.Types.UInt
	main.SetParameters([]*ast.Value{
		ast.NewValue("var0", p.Types.UInt),
		ast.NewValue("var1", p.Types.PointerTo(p.Types.PointerTo(p.Types.UChar))),
	})
	p.AddFunction(main)

	s := &ir.Param{Name: "0", Typ: &ir.PointerType{}}
	other := program.NewFunction(&ir.Function{
		Name:   "other",
		Sig:    &ir.FuncType{RetType: &ir.VoidType{}, Params: []ir.Type{s.Typ}},
		Params: []*ir.Param{s},
	})
	other.ReturnType = p.Types.Void
	other.SetParameters([]*ast.Value{ast.NewValue("var0", p.Types.PointerTo(p.Types.UChar))})
	p.AddFunction(other)

	return p, main, other
}

func TestFixMainParameters(t *testing.T) {
	p, main, other := mainProgram(t)
	argc := main.Parameters[0]

	require.NoError(t, (&passes.FixMainParameters{}).Apply(&ir.Module{}, p))
	assert.True(t, p.IsPassCompleted(program.FixMainParameters))

	assert.Same(t, p.Types.SInt, main.ReturnType)
	assert.Equal(t, "int", main.Parameters[0].Type().String())
	assert.Equal(t, "char**", main.Parameters[1].Type().String())
	assert.NotSame(t, argc, main.Parameters[0])

	bound, ok := main.Local("1")
	require.True(t, ok)
	assert.Same(t, main.Parameters[1], bound)

	// the registry's types are shared, so nothing else may change
	assert.Equal(t, "unsigned char*", other.Parameters[0].Type().String())
	assert.Same(t, p.Types.UInt, argc.Type())
}

func TestFixMainWithoutMain(t *testing.T) {
	p := program.New()
	p.AddPass(program.CreateFunctionParameters)

	require.NoError(t, (&passes.FixMainParameters{}).Apply(&ir.Module{}, p))
	assert.True(t, p.IsPassCompleted(program.FixMainParameters))
}

func TestFixMainRequiresParameters(t *testing.T) {
	p := program.New()
	assert.PanicsWithError(t,
		"internal invariant violated [D0001]: FixMainParameters requires CreateFunctionParameters to run first",
		func() { _ = (&passes.FixMainParameters{}).Apply(&ir.Module{}, p) })
}

func TestCreateAllocasBindsAddresses(t *testing.T) {
	p := decompile(t, `
%struct.point = type { i32, i32 }

define void @f() {
  %1 = alloca %struct.point, align 4
  %2 = alloca [4 x i32], align 16
  %3 = alloca ptr, align 8
  store ptr %1, ptr %3, align 8
  ret void
}
`)
	f := p.FunctionByName("f")
	var allocas []string
	for _, a := range f.Allocas {
		allocas = append(allocas, a.String())
	}
	assert.Equal(t, []string{"struct s_point var0", "int[4] var1", "void* var2"}, allocas)

	slot, ok := f.Local("1")
	require.True(t, ok)
	assert.Equal(t, "&var0", slot.String())
	assert.Equal(t, "struct s_point*", slot.Type().String())

	assert.Equal(t, []string{"var2 = &var0", "return"}, exprStrings(f.Blocks[0]))
}
