package ir

import "fmt"

// OperandKind tells how an operand refers to its value
type OperandKind string

const (
	OperandLocal  OperandKind = "local"  // %name
	OperandGlobal OperandKind = "global" // @name
	OperandConst  OperandKind = "const"  // literal
)

// Operand is a typed use of a value
type Operand struct {
	Kind  OperandKind
	Type  Type
	Name  string
	Const *Constant
}

func (o *Operand) String() string {
	switch o.Kind {
	case OperandLocal:
		return fmt.Sprintf("%s %%%s", o.Type, o.Name)
	case OperandGlobal:
		return fmt.Sprintf("%s @%s", o.Type, o.Name)
	default:
		if o.Const == nil {
			return o.Type.String()
		}
		return fmt.Sprintf("%s %s", o.Type, o.Const.Text)
	}
}

// Instructions in SSA form

type Instruction interface {
	GetResult() string
	GetOperands() []*Operand
	GetPos() Position
	Opcode() string
}

type AllocaInstruction struct {
	Result   string
	ElemType Type
	Pos      Position
}

type LoadInstruction struct {
	Result   string
	ElemType Type
	Src      *Operand
	Pos      Position
}

type StoreInstruction struct {
	Value *Operand
	Dst   *Operand
	Pos   Position
}

type ReturnInstruction struct {
	Value *Operand // nil for ret void
	Pos   Position
}

// BranchInstruction is unconditional when Condition is nil
type BranchInstruction struct {
	Condition   *Operand
	TrueTarget  string
	FalseTarget string
	Pos         Position
}

type SwitchCase struct {
	Value  int64
	Target string
}

type SwitchInstruction struct {
	Condition *Operand
	Default   string
	Cases     []*SwitchCase
	Pos       Position
}

type SelectInstruction struct {
	Result    string
	Condition *Operand
	True      *Operand
	False     *Operand
	Pos       Position
}

// InlineAsm is the callee of a call to an inline assembly blob
type InlineAsm struct {
	Text        string
	Constraints string
	SideEffect  bool
}

type CallInstruction struct {
	Result  string
	RetType Type
	FnType  *FuncType // callee signature as spelled at the call site
	Callee  *Operand  // nil when Asm is set
	Asm     *InlineAsm
	Args    []*Operand
	Pos     Position
}

type GetElementPtrInstruction struct {
	Result   string
	ElemType Type
	Src      *Operand
	Indices  []*Operand
	Pos      Position
}

type ExtractValueInstruction struct {
	Result  string
	Agg     *Operand
	Indices []int64
	Pos     Position
}

type BinaryInstruction struct {
	Result string
	Op     string // add, sub, udiv, fadd, ...
	Type   Type
	X      *Operand
	Y      *Operand
	Pos    Position
}

type CompareInstruction struct {
	Result string
	Kind   string // icmp or fcmp
	Pred   string
	Type   Type
	X      *Operand
	Y      *Operand
	Pos    Position
}

type CastInstruction struct {
	Result string
	Op     string // zext, sext, trunc, bitcast, ...
	From   *Operand
	To     Type
	Pos    Position
}

type UnreachableInstruction struct {
	Pos Position
}

// OtherInstruction is any instruction the loader recognizes but does not model
type OtherInstruction struct {
	Result string
	Op     string
	Pos    Position
}

// Implementation of interfaces

func (a *AllocaInstruction) GetResult() string       { return a.Result }
func (a *AllocaInstruction) GetOperands() []*Operand { return nil }
func (a *AllocaInstruction) GetPos() Position        { return a.Pos }
func (*AllocaInstruction) Opcode() string            { return "alloca" }

func (l *LoadInstruction) GetResult() string       { return l.Result }
func (l *LoadInstruction) GetOperands() []*Operand { return []*Operand{l.Src} }
func (l *LoadInstruction) GetPos() Position        { return l.Pos }
func (*LoadInstruction) Opcode() string            { return "load" }

func (s *StoreInstruction) GetResult() string       { return "" }
func (s *StoreInstruction) GetOperands() []*Operand { return []*Operand{s.Value, s.Dst} }
func (s *StoreInstruction) GetPos() Position        { return s.Pos }
func (*StoreInstruction) Opcode() string            { return "store" }

func (r *ReturnInstruction) GetResult() string { return "" }
func (r *ReturnInstruction) GetOperands() []*Operand {
	if r.Value != nil {
		return []*Operand{r.Value}
	}
	return nil
}
func (r *ReturnInstruction) GetPos() Position { return r.Pos }
func (*ReturnInstruction) Opcode() string     { return "ret" }

func (b *BranchInstruction) GetResult() string { return "" }
func (b *BranchInstruction) GetOperands() []*Operand {
	if b.Condition != nil {
		return []*Operand{b.Condition}
	}
	return nil
}
func (b *BranchInstruction) GetPos() Position { return b.Pos }
func (*BranchInstruction) Opcode() string     { return "br" }

func (s *SwitchInstruction) GetResult() string       { return "" }
func (s *SwitchInstruction) GetOperands() []*Operand { return []*Operand{s.Condition} }
func (s *SwitchInstruction) GetPos() Position        { return s.Pos }
func (*SwitchInstruction) Opcode() string            { return "switch" }

func (s *SelectInstruction) GetResult() string { return s.Result }
func (s *SelectInstruction) GetOperands() []*Operand {
	return []*Operand{s.Condition, s.True, s.False}
}
func (s *SelectInstruction) GetPos() Position { return s.Pos }
func (*SelectInstruction) Opcode() string     { return "select" }

func (c *CallInstruction) GetResult() string { return c.Result }
func (c *CallInstruction) GetOperands() []*Operand {
	if c.Callee == nil {
		return c.Args
	}
	return append([]*Operand{c.Callee}, c.Args...)
}
func (c *CallInstruction) GetPos() Position { return c.Pos }
func (*CallInstruction) Opcode() string     { return "call" }

func (g *GetElementPtrInstruction) GetResult() string { return g.Result }
func (g *GetElementPtrInstruction) GetOperands() []*Operand {
	return append([]*Operand{g.Src}, g.Indices...)
}
func (g *GetElementPtrInstruction) GetPos() Position { return g.Pos }
func (*GetElementPtrInstruction) Opcode() string     { return "getelementptr" }

func (e *ExtractValueInstruction) GetResult() string       { return e.Result }
func (e *ExtractValueInstruction) GetOperands() []*Operand { return []*Operand{e.Agg} }
func (e *ExtractValueInstruction) GetPos() Position        { return e.Pos }
func (*ExtractValueInstruction) Opcode() string            { return "extractvalue" }

func (b *BinaryInstruction) GetResult() string       { return b.Result }
func (b *BinaryInstruction) GetOperands() []*Operand { return []*Operand{b.X, b.Y} }
func (b *BinaryInstruction) GetPos() Position        { return b.Pos }
func (b *BinaryInstruction) Opcode() string          { return b.Op }

func (c *CompareInstruction) GetResult() string       { return c.Result }
func (c *CompareInstruction) GetOperands() []*Operand { return []*Operand{c.X, c.Y} }
func (c *CompareInstruction) GetPos() Position        { return c.Pos }
func (c *CompareInstruction) Opcode() string          { return c.Kind }

func (c *CastInstruction) GetResult() string       { return c.Result }
func (c *CastInstruction) GetOperands() []*Operand { return []*Operand{c.From} }
func (c *CastInstruction) GetPos() Position        { return c.Pos }
func (c *CastInstruction) Opcode() string          { return c.Op }

func (u *UnreachableInstruction) GetResult() string       { return "" }
func (u *UnreachableInstruction) GetOperands() []*Operand { return nil }
func (u *UnreachableInstruction) GetPos() Position        { return u.Pos }
func (*UnreachableInstruction) Opcode() string            { return "unreachable" }

func (o *OtherInstruction) GetResult() string       { return o.Result }
func (o *OtherInstruction) GetOperands() []*Operand { return nil }
func (o *OtherInstruction) GetPos() Position        { return o.Pos }
func (o *OtherInstruction) Opcode() string          { return o.Op }
