package ir

import (
	"fmt"
	"strings"
)

// IR types mirror the LLVM type system closely enough to be keyed by their
// textual spelling: two types with the same String() are the same type.

type Type interface {
	String() string
	isType()
}

type VoidType struct{}

type LabelType struct{}

type IntType struct {
	BitSize uint64
}

// FloatKind enumerates the floating-point formats the loader understands
type FloatKind int

const (
	FloatKindHalf FloatKind = iota
	FloatKindFloat
	FloatKindDouble
	FloatKindX86FP80
	FloatKindFP128
	FloatKindPPCFP128
)

type FloatType struct {
	Kind FloatKind
}

// PointerType with a nil ElemType is an opaque `ptr`
type PointerType struct {
	ElemType Type
}

type ArrayType struct {
	Len      uint64
	ElemType Type
}

type VectorType struct {
	Len      uint64
	ElemType Type
}

// StructType is either identified (TypeName set) or literal
type StructType struct {
	TypeName string
	Fields   []Type
	Packed   bool
	Opaque   bool
}

type FuncType struct {
	RetType  Type
	Params   []Type
	Variadic bool
}

func (*VoidType) isType()    {}
func (*LabelType) isType()   {}
func (*IntType) isType()     {}
func (*FloatType) isType()   {}
func (*PointerType) isType() {}
func (*ArrayType) isType()   {}
func (*VectorType) isType()  {}
func (*StructType) isType()  {}
func (*FuncType) isType()    {}

func (*VoidType) String() string  { return "void" }
func (*LabelType) String() string { return "label" }
func (t *IntType) String() string { return fmt.Sprintf("i%d", t.BitSize) }

func (t *FloatType) String() string {
	switch t.Kind {
	case FloatKindHalf:
		return "half"
	case FloatKindFloat:
		return "float"
	case FloatKindDouble:
		return "double"
	case FloatKindX86FP80:
		return "x86_fp80"
	case FloatKindFP128:
		return "fp128"
	case FloatKindPPCFP128:
		return "ppc_fp128"
	default:
		return fmt.Sprintf("FloatKind(%d)", t.Kind)
	}
}

func (t *PointerType) String() string {
	if t.ElemType == nil {
		return "ptr"
	}
	return t.ElemType.String() + "*"
}

func (t *ArrayType) String() string {
	return fmt.Sprintf("[%d x %s]", t.Len, t.ElemType)
}

func (t *VectorType) String() string {
	return fmt.Sprintf("<%d x %s>", t.Len, t.ElemType)
}

func (t *StructType) String() string {
	if t.TypeName != "" {
		return "%" + t.TypeName
	}
	return t.LiteralString()
}

// LiteralString spells the struct body, even for identified structs
func (t *StructType) LiteralString() string {
	if t.Opaque {
		return "opaque"
	}
	fields := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		fields[i] = f.String()
	}
	body := "{}"
	if len(fields) > 0 {
		body = "{ " + strings.Join(fields, ", ") + " }"
	}
	if t.Packed {
		return "<" + body + ">"
	}
	return body
}

func (t *FuncType) String() string {
	params := make([]string, 0, len(t.Params)+1)
	for _, p := range t.Params {
		params = append(params, p.String())
	}
	if t.Variadic {
		params = append(params, "...")
	}
	return fmt.Sprintf("%s (%s)", t.RetType, strings.Join(params, ", "))
}

// IsFunctionPointer reports whether t points at a function type
func IsFunctionPointer(t Type) bool {
	pt, ok := t.(*PointerType)
	if !ok {
		return false
	}
	_, ok = pt.ElemType.(*FuncType)
	return ok
}
