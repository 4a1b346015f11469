package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cdecomp/internal/types"
)

func newRegistry() *types.Registry {
	return types.NewRegistry(types.NewCatalog())
}

func TestStructElementClonesFieldType(t *testing.T) {
	reg := newRegistry()
	s := &types.Struct{Name: "s_point"}
	s.AddItem(reg.SInt, "structVar0")
	s.AddItem(reg.PointerTo(reg.UChar), "structVar1")

	base := NewValue("p", s)
	for i, field := range s.Fields {
		elem := NewStructElement(s, base, i)

		assert.True(t, types.Equal(field.Type, elem.Type()), "field %d", i)
		assert.NotSame(t, field.Type, elem.Type(), "field %d must not alias the declaration", i)
	}
}

func TestArrayElementType(t *testing.T) {
	reg := newRegistry()
	arr := NewValue("buf", &types.Array{Elem: reg.SChar, Count: 16})
	idx := NewValue("1", reg.SLong)

	elem := NewArrayElement(arr, idx)
	assert.True(t, types.Equal(reg.SChar, elem.Type()))

	ptr := NewValue("p", reg.PointerTo(reg.Double))
	assert.True(t, types.Equal(reg.Double, NewArrayElement(ptr, idx).Type()))

	override := NewArrayElementOfType(ptr, idx, reg.Float)
	assert.Same(t, reg.Float, override.Type())
}

func TestChainTypeIsLastIndexType(t *testing.T) {
	reg := newRegistry()
	first := NewValue("a", reg.SLong)
	last := NewValue("b", reg.UShort)

	gep := NewGepExpr([]Expr{first, last})
	assert.True(t, types.Equal(reg.UShort, gep.Type()))

	ev := NewExtractValueExpr([]Expr{first, last})
	assert.True(t, types.Equal(reg.UShort, ev.Type()))

	assert.Nil(t, NewGepExpr(nil).Type())
}

func TestSimplicity(t *testing.T) {
	reg := newRegistry()
	v := NewValue("x", reg.SInt)
	block := &Block{Name: "bb"}

	simple := []Expr{
		v,
		NewGlobalValue("g", "0", reg.SInt),
		NewCallExpr(nil, "f", nil, reg.SInt),
		NewGepExpr([]Expr{v}),
	}
	for _, e := range simple {
		assert.True(t, e.IsSimple(), e.NodeType().String())
	}

	compound := []Expr{
		NewIfExpr(v, block, nil),
		NewGoto(block),
		NewSwitchExpr(v, block),
		NewAsmExpr("nop", nil, nil, ""),
		NewRetExpr(nil),
		NewAssignExpr(v, v),
		NewSelectExpr(v, v, v),
		NewStackAlloc(v),
	}
	for _, e := range compound {
		assert.False(t, e.IsSimple(), e.NodeType().String())
	}
}

func TestGlobalValueIsAValue(t *testing.T) {
	reg := newRegistry()
	g := NewGlobalValue("counter", "42", reg.SInt)

	assert.Equal(t, GLOBAL_VALUE, g.NodeType())
	assert.True(t, IsValue(g))
	assert.True(t, IsValue(NewValue("x", reg.SInt)))
	assert.False(t, IsValue(NewRetExpr(nil)))

	v, ok := AsValue(g)
	require.True(t, ok)
	assert.Equal(t, "counter", v.Name)
	assert.Same(t, reg.SInt, v.Type())
	assert.Equal(t, "42", g.Initializer)
}

func TestValueIsZero(t *testing.T) {
	reg := newRegistry()
	assert.True(t, NewValue("0", reg.SInt).IsZero())
	assert.False(t, NewValue("00", reg.SInt).IsZero())
	assert.False(t, NewValue("x", reg.SInt).IsZero())
}

func TestAsmOutputBindingScansFromPosition(t *testing.T) {
	reg := newRegistry()
	a := NewValue("a", reg.SInt)
	b := NewValue("b", reg.SInt)
	c := NewValue("c", reg.SInt)

	asm := NewAsmExpr("mov %1, %0", []AsmOperand{
		{Constraint: "=r"},
		{Constraint: "=r"},
		{Constraint: "=m"},
	}, nil, "")

	assert.True(t, asm.AddOutputExpr(a, 1))
	assert.Nil(t, asm.Output[0].Expr)
	assert.Same(t, a, asm.Output[1].Expr)

	// slot 1 is taken, so the scan moves on to slot 2
	assert.True(t, asm.AddOutputExpr(b, 1))
	assert.Same(t, b, asm.Output[2].Expr)

	assert.True(t, asm.AddOutputExpr(c, 0))
	assert.Same(t, c, asm.Output[0].Expr)

	assert.False(t, asm.AddOutputExpr(c, 0))
}

func TestSwitchCasesKeepOrder(t *testing.T) {
	reg := newRegistry()
	sw := NewSwitchExpr(NewValue("x", reg.SInt), &Block{Name: "default"})
	sw.AddCase(7, &Block{Name: "seven"})
	sw.AddCase(-1, &Block{Name: "minus"})
	sw.AddCase(3, &Block{Name: "three"})

	require.Len(t, sw.Cases, 3)
	assert.Equal(t, int64(7), sw.Cases[0].Value)
	assert.Equal(t, int64(-1), sw.Cases[1].Value)
	assert.Equal(t, int64(3), sw.Cases[2].Value)
}

func TestPointerShiftType(t *testing.T) {
	reg := newRegistry()
	p := NewValue("p", reg.PointerTo(reg.SInt))
	n := NewValue("n", reg.SLong)

	shift := NewPointerShift(reg.PointerTo(reg.SInt), p, n)
	assert.True(t, types.Equal(reg.SInt, shift.Type()))

	unresolved := NewPointerShift(reg.SInt, p, n)
	assert.Nil(t, unresolved.Type())
}

func TestStackAllocForwardsValueType(t *testing.T) {
	reg := newRegistry()
	v := NewValue("var0", reg.ULong)
	alloc := NewStackAlloc(v)

	assert.Same(t, v.Type(), alloc.Type())
}

func TestSelectTakesTrueBranchType(t *testing.T) {
	reg := newRegistry()
	sel := NewSelectExpr(NewValue("c", reg.UInt), NewValue("a", reg.Double), NewValue("b", reg.Float))

	assert.True(t, types.Equal(reg.Double, sel.Type()))
}

func TestDerefAndRefTypes(t *testing.T) {
	reg := newRegistry()
	v := NewValue("x", reg.SShort)
	ref := NewRefExpr(v, reg.PointerTo(reg.SShort))

	assert.Same(t, reg.PointerTo(reg.SShort), ref.Type())
	assert.Same(t, reg.SShort, NewDerefExpr(ref).Type())
	assert.Nil(t, NewDerefExpr(v).Type())
}

func TestHasResult(t *testing.T) {
	reg := newRegistry()
	v := NewValue("x", reg.SInt)

	assert.True(t, HasResult(v))
	assert.True(t, HasResult(NewCallExpr(nil, "exit", nil, reg.Void)))
	assert.False(t, HasResult(NewRetExpr(v)))
	assert.False(t, HasResult(NewGoto(&Block{Name: "bb"})))
}

func TestInspectVisitsChildrenInOrder(t *testing.T) {
	reg := newRegistry()
	a := NewValue("a", reg.SInt)
	b := NewValue("b", reg.SInt)
	sum := NewBinaryExpr("+", a, b, reg.SInt)
	dst := NewValue("var0", reg.SInt)

	var names []string
	Inspect(NewAssignExpr(dst, sum), func(e Expr) bool {
		if v, ok := AsValue(e); ok {
			names = append(names, v.Name)
		}
		return true
	})
	assert.Equal(t, []string{"var0", "a", "b"}, names)

	var visited int
	Inspect(NewAssignExpr(dst, sum), func(e Expr) bool {
		visited++
		return e.NodeType() != BINARY_EXPR
	})
	assert.Equal(t, 3, visited)
}
