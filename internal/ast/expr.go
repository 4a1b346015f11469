package ast

import "cdecomp/internal/types"

// Block is a labelled sequence of expressions, one per translated instruction
type Block struct {
	Name  string
	Exprs []Expr
}

func (b *Block) Append(e Expr) {
	b.Exprs = append(b.Exprs, e)
}

// StructElement reads one field of a struct value
type StructElement struct {
	Struct  *types.Struct
	Expr    Expr
	Element int

	typ types.Type
}

// NewStructElement builds an access to field element of s. The result type is
// a clone of the declared field type, so the use site never aliases the
// declaration. element must be a valid field index.
func NewStructElement(s *types.Struct, expr Expr, element int) *StructElement {
	return &StructElement{
		Struct:  s,
		Expr:    expr,
		Element: element,
		typ:     s.Fields[element].Type.Clone(),
	}
}

// ArrayElement indexes an array or a pointer
type ArrayElement struct {
	Expr    Expr
	Element Expr

	typ types.Type
}

func NewArrayElement(expr, element Expr) *ArrayElement {
	var typ types.Type
	if elem, ok := types.Pointee(expr.Type()); ok {
		typ = elem.Clone()
	}
	return &ArrayElement{Expr: expr, Element: element, typ: typ}
}

// NewArrayElementOfType is used when the element type comes from pointer
// arithmetic rather than from the indexed expression
func NewArrayElementOfType(expr, element Expr, typ types.Type) *ArrayElement {
	return &ArrayElement{Expr: expr, Element: element, typ: typ}
}

// ExtractValueExpr is a chain of accesses into a nested aggregate value
type ExtractValueExpr struct {
	Indices []Expr

	typ types.Type
}

func NewExtractValueExpr(indices []Expr) *ExtractValueExpr {
	return &ExtractValueExpr{Indices: indices, typ: lastType(indices)}
}

// GepExpr is a chain of accesses describing an address computation
type GepExpr struct {
	Indices []Expr

	typ types.Type
}

func NewGepExpr(indices []Expr) *GepExpr {
	return &GepExpr{Indices: indices, typ: lastType(indices)}
}

func lastType(indices []Expr) types.Type {
	if len(indices) == 0 {
		return nil
	}
	if t := indices[len(indices)-1].Type(); t != nil {
		return t.Clone()
	}
	return nil
}

// Value names a readable location: a local, a parameter or a literal
type Value struct {
	Name string

	typ types.Type
}

func NewValue(name string, typ types.Type) *Value {
	return &Value{Name: name, typ: typ}
}

func (v *Value) IsZero() bool {
	return v.Name == "0"
}

// GlobalValue is a Value with static storage and an initializer
type GlobalValue struct {
	Value
	Initializer string
}

func NewGlobalValue(name, initializer string, typ types.Type) *GlobalValue {
	return &GlobalValue{
		Value:       Value{Name: name, typ: typ},
		Initializer: initializer,
	}
}

// IfExpr without a condition is an unconditional jump to TrueBlock
type IfExpr struct {
	Cmp        Expr
	TrueBlock  *Block
	FalseBlock *Block
}

func NewIfExpr(cmp Expr, trueBlock, falseBlock *Block) *IfExpr {
	return &IfExpr{Cmp: cmp, TrueBlock: trueBlock, FalseBlock: falseBlock}
}

func NewGoto(target *Block) *IfExpr {
	return &IfExpr{TrueBlock: target}
}

type SwitchCase struct {
	Value int64
	Block *Block
}

// SwitchExpr keeps its cases in the order they were added
type SwitchExpr struct {
	Cmp     Expr
	Default *Block
	Cases   []SwitchCase
}

func NewSwitchExpr(cmp Expr, def *Block) *SwitchExpr {
	return &SwitchExpr{Cmp: cmp, Default: def}
}

func (s *SwitchExpr) AddCase(value int64, block *Block) {
	s.Cases = append(s.Cases, SwitchCase{Value: value, Block: block})
}

// AsmOperand pairs a constraint string with the bound expression.
// Output operands may be created unbound and filled later.
type AsmOperand struct {
	Constraint string
	Expr       Expr
}

type AsmExpr struct {
	Inst     string
	Output   []AsmOperand
	Input    []AsmOperand
	Clobbers string
}

func NewAsmExpr(inst string, output, input []AsmOperand, clobbers string) *AsmExpr {
	return &AsmExpr{Inst: inst, Output: output, Input: input, Clobbers: clobbers}
}

// AddOutputExpr binds expr to the first unbound output at or after pos.
// It reports false when no such slot exists.
func (a *AsmExpr) AddOutputExpr(expr Expr, pos int) bool {
	for i := max(pos, 0); i < len(a.Output); i++ {
		if a.Output[i].Expr == nil {
			a.Output[i].Expr = expr
			return true
		}
	}
	return false
}

// CallExpr calls either a named function or the function pointer in Callee
type CallExpr struct {
	Callee   Expr
	FuncName string
	Args     []Expr

	typ types.Type
}

func NewCallExpr(callee Expr, funcName string, args []Expr, typ types.Type) *CallExpr {
	return &CallExpr{Callee: callee, FuncName: funcName, Args: args, typ: typ}
}

// PointerShift displaces Pointer by Move elements of PtrType's pointee
type PointerShift struct {
	PtrType types.Type
	Pointer Expr
	Move    Expr

	typ types.Type
}

// NewPointerShift leaves the result type unresolved unless ptrType is a pointer
func NewPointerShift(ptrType types.Type, pointer, move Expr) *PointerShift {
	var typ types.Type
	if p, ok := ptrType.(*types.Pointer); ok {
		typ = p.Pointee.Clone()
	}
	return &PointerShift{PtrType: ptrType, Pointer: pointer, Move: move, typ: typ}
}

type SelectExpr struct {
	Comp  Expr
	Left  Expr
	Right Expr

	typ types.Type
}

func NewSelectExpr(comp, left, right Expr) *SelectExpr {
	var typ types.Type
	if t := left.Type(); t != nil {
		typ = t.Clone()
	}
	return &SelectExpr{Comp: comp, Left: left, Right: right, typ: typ}
}

// StackAlloc declares a stack slot. Its type is the slot value's type.
type StackAlloc struct {
	Value *Value
}

func NewStackAlloc(value *Value) *StackAlloc {
	return &StackAlloc{Value: value}
}

type BinaryExpr struct {
	Op    string
	Left  Expr
	Right Expr

	typ types.Type
}

// NewBinaryExpr takes the result type from Registry.BinaryType
func NewBinaryExpr(op string, left, right Expr, typ types.Type) *BinaryExpr {
	return &BinaryExpr{Op: op, Left: left, Right: right, typ: typ}
}

type CmpExpr struct {
	Op    string
	Left  Expr
	Right Expr

	typ types.Type
}

func NewCmpExpr(op string, left, right Expr, typ types.Type) *CmpExpr {
	return &CmpExpr{Op: op, Left: left, Right: right, typ: typ}
}

type CastExpr struct {
	Expr Expr

	typ types.Type
}

func NewCastExpr(expr Expr, typ types.Type) *CastExpr {
	return &CastExpr{Expr: expr, typ: typ}
}

type DerefExpr struct {
	Expr Expr

	typ types.Type
}

// NewDerefExpr leaves the result type unresolved if expr is not a pointer
func NewDerefExpr(expr Expr) *DerefExpr {
	typ, _ := types.Pointee(expr.Type())
	return &DerefExpr{Expr: expr, typ: typ}
}

type RefExpr struct {
	Expr Expr

	typ types.Type
}

// NewRefExpr takes the canonical pointer type from the registry
func NewRefExpr(expr Expr, typ *types.Pointer) *RefExpr {
	return &RefExpr{Expr: expr, typ: typ}
}

type AssignExpr struct {
	Left  Expr
	Right Expr
}

func NewAssignExpr(left, right Expr) *AssignExpr {
	return &AssignExpr{Left: left, Right: right}
}

// RetExpr returns Expr, or nothing when Expr is nil
type RetExpr struct {
	Expr Expr
}

func NewRetExpr(expr Expr) *RetExpr {
	return &RetExpr{Expr: expr}
}
