package ast

// Inspect traverses e depth-first, calling fn for each node before its
// children. Returning false from fn skips the node's children. Blocks
// referenced by jumps are not entered.
func Inspect(e Expr, fn func(Expr) bool) {
	if e == nil || !fn(e) {
		return
	}
	for _, child := range Children(e) {
		Inspect(child, fn)
	}
}

// InspectBlock runs Inspect over every expression of b
func InspectBlock(b *Block, fn func(Expr) bool) {
	for _, e := range b.Exprs {
		Inspect(e, fn)
	}
}

// Children returns the direct subexpressions of e in evaluation order.
// Unbound asm outputs are skipped.
func Children(e Expr) []Expr {
	switch n := e.(type) {
	case *StructElement:
		return []Expr{n.Expr}
	case *ArrayElement:
		return []Expr{n.Expr, n.Element}
	case *ExtractValueExpr:
		return n.Indices
	case *GepExpr:
		return n.Indices
	case *Value, *GlobalValue:
		return nil
	case *IfExpr:
		return nonNil(n.Cmp)
	case *SwitchExpr:
		return nonNil(n.Cmp)
	case *AsmExpr:
		var children []Expr
		for _, op := range n.Output {
			children = append(children, nonNil(op.Expr)...)
		}
		for _, op := range n.Input {
			children = append(children, nonNil(op.Expr)...)
		}
		return children
	case *CallExpr:
		return append(nonNil(n.Callee), n.Args...)
	case *PointerShift:
		return []Expr{n.Pointer, n.Move}
	case *SelectExpr:
		return []Expr{n.Comp, n.Left, n.Right}
	case *StackAlloc:
		return []Expr{n.Value}
	case *BinaryExpr:
		return []Expr{n.Left, n.Right}
	case *CmpExpr:
		return []Expr{n.Left, n.Right}
	case *CastExpr:
		return []Expr{n.Expr}
	case *DerefExpr:
		return []Expr{n.Expr}
	case *RefExpr:
		return []Expr{n.Expr}
	case *AssignExpr:
		return []Expr{n.Left, n.Right}
	case *RetExpr:
		return nonNil(n.Expr)
	default:
		return nil
	}
}

func nonNil(e Expr) []Expr {
	if e == nil {
		return nil
	}
	return []Expr{e}
}
