package ast

import "cdecomp/internal/types"

// Expr is a C expression reconstructed from IR. Its result type is fixed when
// the node is built; control nodes have none and return nil.
type Expr interface {
	Type() types.Type
	IsSimple() bool
	NodeType() NodeType
	String() string
	isExpr()
}

func (*StructElement) isExpr()    {}
func (*ArrayElement) isExpr()     {}
func (*ExtractValueExpr) isExpr() {}
func (*GepExpr) isExpr()          {}
func (*Value) isExpr()            {}
func (*IfExpr) isExpr()           {}
func (*SwitchExpr) isExpr()       {}
func (*AsmExpr) isExpr()          {}
func (*CallExpr) isExpr()         {}
func (*PointerShift) isExpr()     {}
func (*SelectExpr) isExpr()       {}
func (*StackAlloc) isExpr()       {}
func (*BinaryExpr) isExpr()       {}
func (*CmpExpr) isExpr()          {}
func (*CastExpr) isExpr()         {}
func (*DerefExpr) isExpr()        {}
func (*RefExpr) isExpr()          {}
func (*AssignExpr) isExpr()       {}
func (*RetExpr) isExpr()          {}

func (se *StructElement) Type() types.Type { return se.typ }
func (*StructElement) IsSimple() bool      { return false }
func (*StructElement) NodeType() NodeType  { return STRUCT_ELEMENT }

func (ae *ArrayElement) Type() types.Type { return ae.typ }
func (*ArrayElement) IsSimple() bool      { return false }
func (*ArrayElement) NodeType() NodeType  { return ARRAY_ELEMENT }

func (ev *ExtractValueExpr) Type() types.Type { return ev.typ }
func (*ExtractValueExpr) IsSimple() bool      { return false }
func (*ExtractValueExpr) NodeType() NodeType  { return EXTRACT_VALUE_EXPR }

func (ge *GepExpr) Type() types.Type { return ge.typ }
func (*GepExpr) IsSimple() bool      { return true }
func (*GepExpr) NodeType() NodeType  { return GEP_EXPR }

func (v *Value) Type() types.Type { return v.typ }
func (*Value) IsSimple() bool     { return true }
func (*Value) NodeType() NodeType { return VALUE }

func (*GlobalValue) NodeType() NodeType { return GLOBAL_VALUE }

func (*IfExpr) Type() types.Type   { return nil }
func (*IfExpr) IsSimple() bool     { return false }
func (*IfExpr) NodeType() NodeType { return IF_EXPR }

func (*SwitchExpr) Type() types.Type   { return nil }
func (*SwitchExpr) IsSimple() bool     { return false }
func (*SwitchExpr) NodeType() NodeType { return SWITCH_EXPR }

func (*AsmExpr) Type() types.Type   { return nil }
func (*AsmExpr) IsSimple() bool     { return false }
func (*AsmExpr) NodeType() NodeType { return ASM_EXPR }

func (ce *CallExpr) Type() types.Type { return ce.typ }
func (*CallExpr) IsSimple() bool      { return true }
func (*CallExpr) NodeType() NodeType  { return CALL_EXPR }

func (ps *PointerShift) Type() types.Type { return ps.typ }
func (*PointerShift) IsSimple() bool      { return false }
func (*PointerShift) NodeType() NodeType  { return POINTER_SHIFT }

func (se *SelectExpr) Type() types.Type { return se.typ }
func (*SelectExpr) IsSimple() bool      { return false }
func (*SelectExpr) NodeType() NodeType  { return SELECT_EXPR }

func (sa *StackAlloc) Type() types.Type { return sa.Value.Type() }
func (*StackAlloc) IsSimple() bool      { return false }
func (*StackAlloc) NodeType() NodeType  { return STACK_ALLOC }

func (be *BinaryExpr) Type() types.Type { return be.typ }
func (*BinaryExpr) IsSimple() bool      { return false }
func (*BinaryExpr) NodeType() NodeType  { return BINARY_EXPR }

func (ce *CmpExpr) Type() types.Type { return ce.typ }
func (*CmpExpr) IsSimple() bool      { return false }
func (*CmpExpr) NodeType() NodeType  { return CMP_EXPR }

func (ce *CastExpr) Type() types.Type { return ce.typ }
func (*CastExpr) IsSimple() bool      { return false }
func (*CastExpr) NodeType() NodeType  { return CAST_EXPR }

func (de *DerefExpr) Type() types.Type { return de.typ }
func (*DerefExpr) IsSimple() bool      { return false }
func (*DerefExpr) NodeType() NodeType  { return DEREF_EXPR }

func (re *RefExpr) Type() types.Type { return re.typ }
func (*RefExpr) IsSimple() bool      { return false }
func (*RefExpr) NodeType() NodeType  { return REF_EXPR }

func (ae *AssignExpr) Type() types.Type { return ae.Left.Type() }
func (*AssignExpr) IsSimple() bool      { return false }
func (*AssignExpr) NodeType() NodeType  { return ASSIGN_EXPR }

func (*RetExpr) Type() types.Type   { return nil }
func (*RetExpr) IsSimple() bool     { return false }
func (*RetExpr) NodeType() NodeType { return RET_EXPR }

// IsValue reports whether e is a Value or a GlobalValue
func IsValue(e Expr) bool {
	_, ok := AsValue(e)
	return ok
}

// AsValue returns the Value of e, looking through GlobalValue
func AsValue(e Expr) (*Value, bool) {
	switch v := e.(type) {
	case *Value:
		return v, true
	case *GlobalValue:
		return &v.Value, true
	default:
		return nil, false
	}
}

// HasResult reports whether e must carry a resolved type
func HasResult(e Expr) bool {
	switch e.(type) {
	case *IfExpr, *SwitchExpr, *AsmExpr, *RetExpr:
		return false
	default:
		return true
	}
}
