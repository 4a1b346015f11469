package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// String renders e as C-like text for logs and diagnostics
func String(e Expr) string {
	if e == nil {
		return "<nil>"
	}
	return e.String()
}

func (b *Block) String() string {
	var sb strings.Builder

	sb.WriteString(b.Name + ":\n")
	for _, e := range b.Exprs {
		sb.WriteString("  " + strings.ReplaceAll(e.String(), "\n", "\n  ") + ";\n")
	}

	return sb.String()
}

func (se *StructElement) String() string {
	name := se.Struct.Fields[se.Element].Name
	if deref, ok := se.Expr.(*DerefExpr); ok {
		return fmt.Sprintf("%s->%s", operand(deref.Expr), name)
	}
	return fmt.Sprintf("%s.%s", operand(se.Expr), name)
}

func (ae *ArrayElement) String() string {
	return fmt.Sprintf("%s[%s]", operand(ae.Expr), ae.Element)
}

func (ev *ExtractValueExpr) String() string {
	if len(ev.Indices) == 0 {
		return ""
	}
	return ev.Indices[len(ev.Indices)-1].String()
}

func (ge *GepExpr) String() string {
	if len(ge.Indices) == 0 {
		return ""
	}
	return ge.Indices[len(ge.Indices)-1].String()
}

func (v *Value) String() string {
	return v.Name
}

func (ie *IfExpr) String() string {
	if ie.Cmp == nil {
		return "goto " + ie.TrueBlock.Name
	}

	s := fmt.Sprintf("if (%s) goto %s", ie.Cmp, ie.TrueBlock.Name)
	if ie.FalseBlock != nil {
		s += "; else goto " + ie.FalseBlock.Name
	}
	return s
}

func (se *SwitchExpr) String() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("switch (%s) {\n", se.Cmp))
	for _, c := range se.Cases {
		b.WriteString(fmt.Sprintf("case %d: goto %s;\n", c.Value, c.Block.Name))
	}
	if se.Default != nil {
		b.WriteString(fmt.Sprintf("default: goto %s;\n", se.Default.Name))
	}
	b.WriteString("}")

	return b.String()
}

func (ae *AsmExpr) String() string {
	return fmt.Sprintf("__asm__(%s : %s : %s : %s)",
		strconv.Quote(ae.Inst), asmOperands(ae.Output), asmOperands(ae.Input), strconv.Quote(ae.Clobbers))
}

func asmOperands(ops []AsmOperand) string {
	parts := make([]string, 0, len(ops))
	for _, op := range ops {
		parts = append(parts, fmt.Sprintf("%s (%s)", strconv.Quote(op.Constraint), String(op.Expr)))
	}
	return strings.Join(parts, ", ")
}

func (ce *CallExpr) String() string {
	args := make([]string, 0, len(ce.Args))
	for _, a := range ce.Args {
		args = append(args, a.String())
	}

	callee := ce.FuncName
	if ce.Callee != nil {
		callee = operand(ce.Callee)
	}
	return fmt.Sprintf("%s(%s)", callee, strings.Join(args, ", "))
}

func (ps *PointerShift) String() string {
	return fmt.Sprintf("*(%s + %s)", ps.Pointer, ps.Move)
}

func (se *SelectExpr) String() string {
	return fmt.Sprintf("%s ? %s : %s", operand(se.Comp), operand(se.Left), operand(se.Right))
}

func (sa *StackAlloc) String() string {
	return fmt.Sprintf("%s %s", sa.Value.Type(), sa.Value.Name)
}

func (be *BinaryExpr) String() string {
	return fmt.Sprintf("%s %s %s", operand(be.Left), be.Op, operand(be.Right))
}

func (ce *CmpExpr) String() string {
	return fmt.Sprintf("%s %s %s", operand(ce.Left), ce.Op, operand(ce.Right))
}

func (ce *CastExpr) String() string {
	return fmt.Sprintf("(%s)%s", ce.typ, operand(ce.Expr))
}

func (de *DerefExpr) String() string {
	return "*" + operand(de.Expr)
}

func (re *RefExpr) String() string {
	return "&" + operand(re.Expr)
}

func (ae *AssignExpr) String() string {
	return fmt.Sprintf("%s = %s", ae.Left, ae.Right)
}

func (re *RetExpr) String() string {
	if re.Expr == nil {
		return "return"
	}
	return "return " + re.Expr.String()
}

// operand parenthesizes anything that is not a plain name or call
func operand(e Expr) string {
	if e == nil {
		return "<nil>"
	}
	if e.IsSimple() && e.NodeType() != GEP_EXPR {
		return e.String()
	}
	return "(" + e.String() + ")"
}
