package types

import "cdecomp/internal/errors"

// VarArgStructName is the normalized name of the variadic-argument descriptor
const VarArgStructName = "__va_list_tag"

// Catalog owns every struct and union declaration of a program
type Catalog struct {
	structs   []*Struct
	byName    map[string]*Struct
	hasVarArg bool
}

// NewCatalog creates an empty catalog
func NewCatalog() *Catalog {
	return &Catalog{
		byName: make(map[string]*Struct),
	}
}

// Add registers a new aggregate. Names are unique; a duplicate is a pipeline bug.
func (c *Catalog) Add(s *Struct) {
	if _, exists := c.byName[s.Name]; exists {
		errors.Violate(errors.ErrorDuplicateStruct, "%s registered twice", s)
	}
	c.structs = append(c.structs, s)
	c.byName[s.Name] = s
}

// AddVarArg synthesizes the variadic-argument descriptor. The layout is fixed
// by the ABI, so the input's own field list is never consulted.
func (c *Catalog) AddVarArg(r *Registry) *Struct {
	if c.hasVarArg {
		errors.Violate(errors.ErrorDuplicateVarArg, "%s synthesized twice", VarArgStructName)
	}

	voidPtr := r.PointerTo(r.Void)

	s := &Struct{Name: VarArgStructName}
	s.AddItem(r.UInt, "gp_offset")
	s.AddItem(r.UInt, "fp_offset")
	s.AddItem(voidPtr, "overflow_arg_area")
	s.AddItem(voidPtr, "reg_save_area")

	c.Add(s)
	c.hasVarArg = true
	return s
}

// HasVarArg reports whether the descriptor has been synthesized
func (c *Catalog) HasVarArg() bool {
	return c.hasVarArg
}

// Lookup returns the aggregate with the given normalized name
func (c *Catalog) Lookup(name string) *Struct {
	return c.byName[name]
}

// Structs returns the aggregates in registration order
func (c *Catalog) Structs() []*Struct {
	return c.structs
}

// Len returns the number of registered aggregates
func (c *Catalog) Len() int {
	return len(c.structs)
}
