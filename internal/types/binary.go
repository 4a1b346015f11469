package types

import "cdecomp/internal/errors"

// BinaryType returns the type of `left op right` under C's usual arithmetic
// conversions. It only reads the registry.
//
//   - long double > double > float, and any floating type beats an integer
//   - the wider integer wins, unsigned wins at equal width, and anything
//     narrower than int is promoted to int
//   - pointer ± integer keeps the pointer type, pointer - pointer is a long
func (r *Registry) BinaryType(left, right Type) (Type, error) {
	lf, lIsFloat := left.(*Float)
	rf, rIsFloat := right.(*Float)
	li, lIsInt := left.(*Integer)
	ri, rIsInt := right.(*Integer)

	switch {
	case lIsFloat && rIsFloat:
		if lf.Precision >= rf.Precision {
			return left, nil
		}
		return right, nil
	case lIsFloat && rIsInt:
		return left, nil
	case lIsInt && rIsFloat:
		return right, nil
	case lIsInt && rIsInt:
		return r.arithmeticType(li, ri), nil
	case IsPointer(left) && rIsInt:
		return left, nil
	case lIsInt && IsPointer(right):
		return right, nil
	case IsPointer(left) && IsPointer(right):
		return r.SLong, nil
	}

	return nil, errors.IncompatibleOperands(describe(left), describe(right))
}

func (r *Registry) arithmeticType(a, b *Integer) *Integer {
	result := a
	if b.Width > a.Width || (b.Width == a.Width && !b.Signed) {
		result = b
	}
	if result.Width < r.SInt.Width {
		return r.SInt
	}
	if canonical, ok := r.integer(result.Width, result.Signed); ok {
		return canonical
	}
	return result
}

func describe(t Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
