package types

import (
	"fmt"
	"strings"
)

// Type is a C type reconstructed from an IR type.
// Pointer, Struct and scalar types are compared by identity wherever the
// registry hands out canonical instances; Equal compares structurally.
type Type interface {
	String() string
	Clone() Type
	isType()
}

type Void struct{}

// Integer covers char, short, int, long and the 128-bit integer
type Integer struct {
	Width  int
	Signed bool
}

// Precision of a floating-point type
type Precision int

const (
	PrecisionFloat Precision = iota
	PrecisionDouble
	PrecisionLongDouble
)

type Float struct {
	Precision Precision
}

type Pointer struct {
	Pointee Type
}

// FunctionPointer is always emitted through its typedef name
type FunctionPointer struct {
	Return      Type
	Params      []Type
	VarArg      bool
	TypedefName string
}

// Field is a single struct or union member
type Field struct {
	Type Type
	Name string
}

// Struct is an aggregate declaration. Fields are only ever appended.
type Struct struct {
	Name   string
	Fields []Field
	Union  bool
}

type Array struct {
	Elem  Type
	Count uint64
}

func (*Void) isType()            {}
func (*Integer) isType()         {}
func (*Float) isType()           {}
func (*Pointer) isType()         {}
func (*FunctionPointer) isType() {}
func (*Struct) isType()          {}
func (*Array) isType()           {}

func (*Void) String() string { return "void" }

func (t *Integer) String() string {
	var name string
	switch t.Width {
	case 8:
		name = "char"
	case 16:
		name = "short"
	case 32:
		name = "int"
	case 64:
		name = "long"
	case 128:
		return "__int128"
	default:
		name = fmt.Sprintf("_BitInt(%d)", t.Width)
	}
	if t.Signed {
		return name
	}
	return "unsigned " + name
}

func (t *Float) String() string {
	switch t.Precision {
	case PrecisionFloat:
		return "float"
	case PrecisionDouble:
		return "double"
	default:
		return "long double"
	}
}

func (t *Pointer) String() string {
	return t.Pointee.String() + "*"
}

func (t *FunctionPointer) String() string {
	return t.TypedefName
}

// Signature spells the function-pointer type without its typedef name
func (t *FunctionPointer) Signature() string {
	params := make([]string, 0, len(t.Params)+1)
	for _, p := range t.Params {
		params = append(params, p.String())
	}
	if t.VarArg {
		params = append(params, "...")
	}
	if len(params) == 0 {
		params = append(params, "void")
	}
	return fmt.Sprintf("%s (*)(%s)", t.Return, strings.Join(params, ", "))
}

func (t *Struct) String() string {
	if t.Union {
		return "union " + t.Name
	}
	return "struct " + t.Name
}

func (t *Array) String() string {
	return fmt.Sprintf("%s[%d]", t.Elem, t.Count)
}

// AddItem appends a field; its index is the field's stable key
func (t *Struct) AddItem(ty Type, name string) {
	t.Fields = append(t.Fields, Field{Type: ty, Name: name})
}

// Field returns the i-th declared field
func (t *Struct) Field(i int) (Field, bool) {
	if i < 0 || i >= len(t.Fields) {
		return Field{}, false
	}
	return t.Fields[i], true
}

// Clone implementations produce fresh instances that are structurally equal.
// Named types (structs, typedefs) are cloned by reference to their name.

func (*Void) Clone() Type { return &Void{} }

func (t *Integer) Clone() Type {
	return &Integer{Width: t.Width, Signed: t.Signed}
}

func (t *Float) Clone() Type {
	return &Float{Precision: t.Precision}
}

func (t *Pointer) Clone() Type {
	return &Pointer{Pointee: t.Pointee}
}

func (t *FunctionPointer) Clone() Type {
	params := make([]Type, len(t.Params))
	copy(params, t.Params)
	return &FunctionPointer{Return: t.Return, Params: params, VarArg: t.VarArg, TypedefName: t.TypedefName}
}

func (t *Struct) Clone() Type {
	fields := make([]Field, len(t.Fields))
	for i, f := range t.Fields {
		fields[i] = Field{Type: f.Type.Clone(), Name: f.Name}
	}
	return &Struct{Name: t.Name, Fields: fields, Union: t.Union}
}

func (t *Array) Clone() Type {
	return &Array{Elem: t.Elem.Clone(), Count: t.Count}
}

// Equal reports whether a and b denote the same C type
func Equal(a, b Type) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	switch x := a.(type) {
	case *Void:
		_, ok := b.(*Void)
		return ok
	case *Integer:
		y, ok := b.(*Integer)
		return ok && x.Width == y.Width && x.Signed == y.Signed
	case *Float:
		y, ok := b.(*Float)
		return ok && x.Precision == y.Precision
	case *Pointer:
		y, ok := b.(*Pointer)
		return ok && Equal(x.Pointee, y.Pointee)
	case *FunctionPointer:
		y, ok := b.(*FunctionPointer)
		if !ok || x.VarArg != y.VarArg || len(x.Params) != len(y.Params) || !Equal(x.Return, y.Return) {
			return false
		}
		for i := range x.Params {
			if !Equal(x.Params[i], y.Params[i]) {
				return false
			}
		}
		return true
	case *Struct:
		y, ok := b.(*Struct)
		return ok && x.Name == y.Name && x.Union == y.Union
	case *Array:
		y, ok := b.(*Array)
		return ok && x.Count == y.Count && Equal(x.Elem, y.Elem)
	default:
		return false
	}
}

// IsInteger reports whether t is an integer type
func IsInteger(t Type) bool {
	_, ok := t.(*Integer)
	return ok
}

// IsPointer reports whether t is a data or function pointer
func IsPointer(t Type) bool {
	switch t.(type) {
	case *Pointer, *FunctionPointer:
		return true
	default:
		return false
	}
}

// Pointee returns the pointed-to type of a data pointer or the element of an array
func Pointee(t Type) (Type, bool) {
	switch x := t.(type) {
	case *Pointer:
		return x.Pointee, true
	case *Array:
		return x.Elem, true
	default:
		return nil, false
	}
}
