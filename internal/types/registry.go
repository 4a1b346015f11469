package types

import (
	"fmt"
	"strings"

	"fortio.org/safecast"

	"cdecomp/internal/errors"
	"cdecomp/internal/ir"
)

// Registry translates IR types into C types for one decompilation run.
// Translations are cached by the IR type's spelling, which LLVM keeps unique,
// so asking twice for the same IR type yields the same instance.
type Registry struct {
	Scalars

	catalog   *Catalog
	typeCache map[string]Type

	// key = T, value = pointer to T
	pointerTypes map[Type]*Pointer

	typedefs     []*FunctionPointer // in order of first encounter, used in output
	typeDefCount int
	anonCount    int
}

// NewRegistry creates a registry resolving named aggregates through catalog
func NewRegistry(catalog *Catalog) *Registry {
	return &Registry{
		Scalars:      newScalars(),
		catalog:      catalog,
		typeCache:    make(map[string]Type),
		pointerTypes: make(map[Type]*Pointer),
	}
}

// Catalog returns the aggregate catalog named types are resolved against
func (r *Registry) Catalog() *Catalog {
	return r.catalog
}

// GetType transforms an IR type into the corresponding C type
func (r *Registry) GetType(t ir.Type) (Type, error) {
	key := t.String()
	if cached, ok := r.typeCache[key]; ok {
		return cached, nil
	}

	result, err := r.translate(t)
	if err != nil {
		return nil, err
	}

	r.typeCache[key] = result
	return result, nil
}

func (r *Registry) translate(t ir.Type) (Type, error) {
	switch t := t.(type) {
	case *ir.VoidType:
		return r.Void, nil

	case *ir.IntType:
		bits, err := safecast.Conv[int](t.BitSize)
		if err != nil {
			return nil, errors.UnsupportedType(t.String(), "integer width out of range")
		}
		// i1 carries truth values and is never negative
		if bits == 1 {
			return r.UInt, nil
		}
		if it, ok := r.integer(bits, true); ok {
			return it, nil
		}
		return nil, errors.UnsupportedType(t.String(), "no C integer type has this width")

	case *ir.FloatType:
		switch t.Kind {
		case ir.FloatKindFloat:
			return r.Float, nil
		case ir.FloatKindDouble:
			return r.Double, nil
		case ir.FloatKindX86FP80, ir.FloatKindFP128:
			return r.LongDouble, nil
		default:
			return nil, errors.UnsupportedType(t.String(), "no C floating-point type has this format")
		}

	case *ir.PointerType:
		if t.ElemType == nil {
			return r.PointerTo(r.Void), nil
		}
		if ft, ok := t.ElemType.(*ir.FuncType); ok {
			return r.GetType(ft)
		}
		elem, err := r.GetType(t.ElemType)
		if err != nil {
			return nil, err
		}
		return r.PointerTo(elem), nil

	case *ir.ArrayType:
		elem, err := r.GetType(t.ElemType)
		if err != nil {
			return nil, err
		}
		return &Array{Elem: elem, Count: t.Len}, nil

	case *ir.StructType:
		if t.TypeName != "" {
			name := StructName(t.TypeName)
			s := r.catalog.Lookup(name)
			if s == nil {
				return nil, errors.UndefinedReference("struct", "%"+t.TypeName, "", ir.Position{})
			}
			return s, nil
		}
		return r.anonymousStruct(t)

	case *ir.FuncType:
		return r.functionPointer(t)

	case *ir.VectorType:
		return nil, errors.UnsupportedType(t.String(), "vector types have no C equivalent")

	default:
		return nil, errors.UnsupportedType(t.String(), "type cannot appear in C code")
	}
}

// anonymousStruct registers a literal IR struct under a synthetic name
func (r *Registry) anonymousStruct(t *ir.StructType) (Type, error) {
	s := &Struct{Name: fmt.Sprintf("anon_%d", r.anonCount)}
	r.anonCount++

	for i, f := range t.Fields {
		ft, err := r.GetType(f)
		if err != nil {
			return nil, err
		}
		s.AddItem(ft, fmt.Sprintf("structVar%d", i))
	}

	r.catalog.Add(s)
	return s, nil
}

// functionPointer builds a function-pointer type and gives it a typedef name
func (r *Registry) functionPointer(t *ir.FuncType) (Type, error) {
	ret, err := r.GetType(t.RetType)
	if err != nil {
		return nil, err
	}

	params := make([]Type, 0, len(t.Params))
	for _, p := range t.Params {
		pt, err := r.GetType(p)
		if err != nil {
			return nil, err
		}
		params = append(params, pt)
	}

	fp := &FunctionPointer{
		Return:      ret,
		Params:      params,
		VarArg:      t.Variadic,
		TypedefName: r.typeDefName(),
	}
	r.typedefs = append(r.typedefs, fp)
	return fp, nil
}

// typeDefName creates a new name for a typedef
func (r *Registry) typeDefName() string {
	name := fmt.Sprintf("typeDef_%d", r.typeDefCount)
	r.typeDefCount++
	return name
}

// Typedefs returns the function-pointer typedefs in emission order
func (r *Registry) Typedefs() []*FunctionPointer {
	return r.typedefs
}

// HasTypedefs reports whether the program has any typedefs
func (r *Registry) HasTypedefs() bool {
	return len(r.typedefs) > 0
}

// PointerTo returns the canonical pointer to t
func (r *Registry) PointerTo(t Type) *Pointer {
	if p, ok := r.pointerTypes[t]; ok {
		return p
	}
	p := &Pointer{Pointee: t}
	r.pointerTypes[t] = p
	return p
}

// Signedness changes never touch the given instance: integer types are shared,
// so they return the canonical type of the requested signedness instead and
// the caller rebinds.

// ToggleSignedness returns the integer type of the same width and opposite signedness
func (r *Registry) ToggleSignedness(t *Integer) *Integer {
	return r.withSign(t, !t.Signed)
}

// SetSigned returns the signed integer type of the same width
func (r *Registry) SetSigned(t *Integer) *Integer {
	return r.withSign(t, true)
}

// SetUnsigned returns the unsigned integer type of the same width
func (r *Registry) SetUnsigned(t *Integer) *Integer {
	return r.withSign(t, false)
}

func (r *Registry) withSign(t *Integer, signed bool) *Integer {
	if it, ok := r.integer(t.Width, signed); ok {
		return it
	}
	return &Integer{Width: t.Width, Signed: signed}
}

// StructName parses an IR struct (union) name into a C aggregate name.
// Only the exact descriptor name maps to the descriptor; anything merely
// sharing its prefix keeps the regular "s_" prefix.
func StructName(raw string) string {
	switch {
	case raw == "struct."+VarArgStructName:
		return VarArgStructName
	case strings.HasPrefix(raw, "struct."):
		return "s_" + identChars(strings.TrimPrefix(raw, "struct."))
	case strings.HasPrefix(raw, "union."):
		return "u_" + identChars(strings.TrimPrefix(raw, "union."))
	default:
		return "s_" + identChars(raw)
	}
}

// IsUnionName reports whether a raw IR struct name denotes a union
func IsUnionName(raw string) bool {
	return strings.HasPrefix(raw, "union.")
}

// Identifier turns an IR symbol name into a valid C identifier
func Identifier(name string) string {
	id := identChars(name)
	if id[0] >= '0' && id[0] <= '9' {
		return "_" + id
	}
	return id
}

func identChars(name string) string {
	var b strings.Builder
	for _, c := range name {
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			b.WriteRune(c)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "_"
	}
	return b.String()
}
