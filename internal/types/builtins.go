package types

// Scalars holds the canonical scalar types of one registry.
// Everything else refers to these instances and never owns them.
type Scalars struct {
	UInt   *Integer
	UChar  *Integer
	UShort *Integer
	ULong  *Integer

	SInt   *Integer
	SChar  *Integer
	SShort *Integer
	SLong  *Integer

	Int128 *Integer
	Void   *Void

	Float      *Float
	Double     *Float
	LongDouble *Float
}

func newScalars() Scalars {
	return Scalars{
		UInt:   &Integer{Width: 32},
		UChar:  &Integer{Width: 8},
		UShort: &Integer{Width: 16},
		ULong:  &Integer{Width: 64},

		SInt:   &Integer{Width: 32, Signed: true},
		SChar:  &Integer{Width: 8, Signed: true},
		SShort: &Integer{Width: 16, Signed: true},
		SLong:  &Integer{Width: 64, Signed: true},

		Int128: &Integer{Width: 128, Signed: true},
		Void:   &Void{},

		Float:      &Float{Precision: PrecisionFloat},
		Double:     &Float{Precision: PrecisionDouble},
		LongDouble: &Float{Precision: PrecisionLongDouble},
	}
}

// integer returns the singleton for width and signedness
func (s *Scalars) integer(width int, signed bool) (*Integer, bool) {
	switch width {
	case 8:
		return pick(signed, s.SChar, s.UChar), true
	case 16:
		return pick(signed, s.SShort, s.UShort), true
	case 32:
		return pick(signed, s.SInt, s.UInt), true
	case 64:
		return pick(signed, s.SLong, s.ULong), true
	case 128:
		return s.Int128, true
	default:
		return nil, false
	}
}

func pick(signed bool, s, u *Integer) *Integer {
	if signed {
		return s
	}
	return u
}
