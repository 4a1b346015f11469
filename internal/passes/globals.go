package passes

import (
	"strconv"
	"strings"

	"cdecomp/internal/ast"
	"cdecomp/internal/errors"
	"cdecomp/internal/ir"
	"cdecomp/internal/program"
	"cdecomp/internal/types"
)

// ParseGlobalVariables creates a GlobalValue for every module-level variable.
// The global's type is its content type; uses of @name take its address.
type ParseGlobalVariables struct{}

func (*ParseGlobalVariables) Type() program.PassType {
	return program.ParseGlobalVariables
}

func (*ParseGlobalVariables) Description() string {
	return "Declares global variables and their initializers"
}

func (*ParseGlobalVariables) Apply(m *ir.Module, p *program.Program) error {
	p.RequirePass(program.ParseGlobalVariables, program.ParseStructItems)

	names := make(map[string]bool)
	for _, g := range m.Globals {
		t, err := p.Types.GetType(g.ContentType)
		if err != nil {
			return locate(err, "@"+g.Name, g.Pos)
		}

		name := types.Identifier(g.Name)
		if names[name] {
			return errors.NameCollision("global", name, "@"+g.Name, g.Pos)
		}
		names[name] = true

		init, err := initializer(g.Init, isAggregate(t))
		if err != nil {
			return locate(err, "@"+g.Name, g.Pos)
		}
		p.AddGlobal(g.Name, ast.NewGlobalValue(name, init, t))
	}

	p.AddPass(program.ParseGlobalVariables)
	return nil
}

// initializer spells a constant as a C initializer. External globals have none.
func initializer(c *ir.Constant, aggregate bool) (string, error) {
	if c == nil {
		return "", nil
	}

	switch c.Kind {
	case ir.ConstInt, ir.ConstFloat:
		return c.Text, nil
	case ir.ConstBool:
		if c.Text == "true" {
			return "1", nil
		}
		return "0", nil
	case ir.ConstNull, ir.ConstUndef, ir.ConstZero:
		if aggregate {
			return "{0}", nil
		}
		return "0", nil
	case ir.ConstString:
		return cString(c.Text), nil
	case ir.ConstGlobal:
		return "&" + types.Identifier(c.Text), nil
	case ir.ConstAggregate:
		elems := make([]string, 0, len(c.Elems))
		for _, op := range c.Elems {
			s, err := elementInitializer(op)
			if err != nil {
				return "", err
			}
			elems = append(elems, s)
		}
		return "{" + strings.Join(elems, ", ") + "}", nil
	default:
		return "", errors.NewTranslationError(errors.ErrorUnsupportedInstruction,
			"unsupported constant '"+string(c.Kind)+"'").Build()
	}
}

func isAggregate(t types.Type) bool {
	switch t.(type) {
	case *types.Struct, *types.Array:
		return true
	default:
		return false
	}
}

func elementInitializer(op *ir.Operand) (string, error) {
	switch op.Kind {
	case ir.OperandGlobal:
		return "&" + types.Identifier(op.Name), nil
	case ir.OperandConst:
		switch op.Type.(type) {
		case *ir.StructType, *ir.ArrayType:
			return initializer(op.Const, true)
		default:
			return initializer(op.Const, false)
		}
	default:
		return "", errors.NewTranslationError(errors.ErrorUnsupportedInstruction,
			"initializer refers to local %"+op.Name).Build()
	}
}

// cString quotes raw bytes as a C string literal. The trailing NUL that IR
// arrays carry is implied by the literal.
func cString(raw string) string {
	raw = strings.TrimSuffix(raw, "\x00")

	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch c {
		case '"', '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			if c < 0x20 || c >= 0x7f {
				b.WriteString(`\` + leftPad(strconv.FormatUint(uint64(c), 8), 3))
				continue
			}
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func leftPad(s string, n int) string {
	if len(s) >= n {
		return s
	}
	return strings.Repeat("0", n-len(s)) + s
}
