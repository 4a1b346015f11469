package passes

import (
	"cdecomp/internal/ast"
	"cdecomp/internal/errors"
	"cdecomp/internal/ir"
	"cdecomp/internal/types"
)

// operand resolves an IR operand to the expression it denotes. Locals are
// bound by earlier instructions, globals evaluate to their address and
// constants become literal values.
func (tr *translator) operand(op *ir.Operand, pos ir.Position) (ast.Expr, error) {
	switch op.Kind {
	case ir.OperandLocal:
		if e, ok := tr.fn.Local(op.Name); ok {
			return e, nil
		}
		return nil, errors.UndefinedReference("value", "%"+op.Name, tr.fn.Source.Name, pos)

	case ir.OperandGlobal:
		if g, ok := tr.p.Global(op.Name); ok {
			return ast.NewRefExpr(g, tr.reg.PointerTo(g.Type())), nil
		}
		if f := tr.m.Func(op.Name); f != nil {
			t, err := tr.getType(f.Type(), pos)
			if err != nil {
				return nil, err
			}
			return ast.NewValue(types.Identifier(op.Name), t), nil
		}
		return nil, errors.UndefinedReference("global", "@"+op.Name, tr.fn.Source.Name, pos)

	default:
		return tr.constant(op, pos)
	}
}

func (tr *translator) operands(pos ir.Position, ops ...*ir.Operand) ([]ast.Expr, error) {
	exprs := make([]ast.Expr, 0, len(ops))
	for _, op := range ops {
		e, err := tr.operand(op, pos)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, e)
	}
	return exprs, nil
}

func (tr *translator) constant(op *ir.Operand, pos ir.Position) (ast.Expr, error) {
	t, err := tr.getType(op.Type, pos)
	if err != nil {
		return nil, err
	}
	if op.Const == nil {
		return nil, errors.UnsupportedInstruction("constant "+op.Type.String(), tr.fn.Source.Name, pos)
	}

	switch op.Const.Kind {
	case ir.ConstInt, ir.ConstFloat:
		return ast.NewValue(op.Const.Text, t), nil
	case ir.ConstBool:
		if op.Const.Text == "true" {
			return ast.NewValue("1", t), nil
		}
		return ast.NewValue("0", t), nil
	case ir.ConstNull, ir.ConstUndef, ir.ConstZero:
		if !isAggregate(t) {
			return ast.NewValue("0", t), nil
		}
	}
	return nil, errors.UnsupportedInstruction("constant "+string(op.Const.Kind), tr.fn.Source.Name, pos)
}
