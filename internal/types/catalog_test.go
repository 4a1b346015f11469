package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cdecomp/internal/errors"
)

func TestVarArgDescriptorShape(t *testing.T) {
	r := newRegistry()
	c := r.Catalog()
	assert.False(t, c.HasVarArg())

	s := c.AddVarArg(r)

	assert.True(t, c.HasVarArg())
	assert.Equal(t, 1, c.Len())
	assert.Same(t, s, c.Lookup(VarArgStructName))

	require.Len(t, s.Fields, 4)
	assert.Equal(t, "gp_offset", s.Fields[0].Name)
	assert.Same(t, r.UInt, s.Fields[0].Type)
	assert.Equal(t, "fp_offset", s.Fields[1].Name)
	assert.Same(t, r.UInt, s.Fields[1].Type)
	assert.Equal(t, "overflow_arg_area", s.Fields[2].Name)
	assert.Same(t, r.PointerTo(r.Void), s.Fields[2].Type)
	assert.Equal(t, "reg_save_area", s.Fields[3].Name)
	assert.Same(t, r.PointerTo(r.Void), s.Fields[3].Type)
}

func TestVarArgDescriptorSynthesizedOnce(t *testing.T) {
	r := newRegistry()
	r.Catalog().AddVarArg(r)

	defer func() {
		v, ok := recover().(*errors.InvariantViolation)
		require.True(t, ok)
		assert.Equal(t, errors.ErrorDuplicateVarArg, v.Code)
	}()
	r.Catalog().AddVarArg(r)
	t.Fatal("second synthesis must panic")
}

func TestDuplicateStructPanics(t *testing.T) {
	c := NewCatalog()
	c.Add(&Struct{Name: "s_a"})

	assert.PanicsWithError(t, "internal invariant violated [D0002]: struct s_a registered twice", func() {
		c.Add(&Struct{Name: "s_a"})
	})
}

func TestCatalogKeepsDeclarationOrder(t *testing.T) {
	c := NewCatalog()
	for _, name := range []string{"s_c", "u_a", "s_b"} {
		c.Add(&Struct{Name: name})
	}

	var names []string
	for _, s := range c.Structs() {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"s_c", "u_a", "s_b"}, names)
	assert.Nil(t, c.Lookup("s_missing"))
}

func TestStructItemsAppend(t *testing.T) {
	r := newRegistry()
	s := &Struct{Name: "s_pair"}
	s.AddItem(r.SInt, "structVar0")
	s.AddItem(r.Double, "structVar1")

	f, ok := s.Field(1)
	require.True(t, ok)
	assert.Equal(t, "structVar1", f.Name)
	assert.Same(t, r.Double, f.Type)

	_, ok = s.Field(2)
	assert.False(t, ok)
}

func TestCloneIsStructurallyEqual(t *testing.T) {
	r := newRegistry()
	s := &Struct{Name: "s_pair"}
	s.AddItem(r.PointerTo(r.SInt), "structVar0")

	for _, ty := range []Type{
		r.UInt,
		r.LongDouble,
		r.PointerTo(r.SChar),
		&Array{Elem: r.SShort, Count: 3},
		s,
	} {
		clone := ty.Clone()
		assert.NotSame(t, ty, clone, ty.String())
		assert.True(t, Equal(ty, clone), ty.String())
		assert.Equal(t, ty.String(), clone.String())
	}

	assert.False(t, Equal(r.UInt, r.SInt))
	assert.False(t, Equal(r.PointerTo(r.UInt), r.PointerTo(r.SInt)))
}
