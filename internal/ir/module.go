package ir

import "fmt"

// Position locates an IR element in its textual source
type Position struct {
	Filename string
	Line     int
	Column   int
}

func (p Position) String() string {
	if p.Filename == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
}

// IsValid reports whether the position was set by a loader
func (p Position) IsValid() bool {
	return p.Line > 0
}

// Module represents an already parsed IR module
type Module struct {
	SourceFilename string
	TargetTriple   string
	DataLayout     string
	TypeDefs       []*StructType // identified structs in declaration order
	Globals        []*Global
	Funcs          []*Function
	TypePos        map[string]Position // identified struct name -> definition position
}

// Global represents a module-level variable
type Global struct {
	Name        string
	ContentType Type
	Init        *Constant // nil for external declarations
	Immutable   bool
	Pos         Position
}

// Constant is a literal initializer or operand value
type Constant struct {
	Kind  ConstantKind
	Text  string     // literal text, decoded string bytes or a global's name
	Elems []*Operand // aggregate members
}

// ConstantKind categorizes constant spellings
type ConstantKind string

const (
	ConstInt       ConstantKind = "int"
	ConstFloat     ConstantKind = "float"
	ConstNull      ConstantKind = "null"
	ConstBool      ConstantKind = "bool"
	ConstUndef     ConstantKind = "undef"
	ConstZero      ConstantKind = "zeroinitializer"
	ConstString    ConstantKind = "string"
	ConstAggregate ConstantKind = "aggregate"
	ConstGlobal    ConstantKind = "global" // address of the global named by Text
)

// Function represents a defined or declared function
type Function struct {
	Name   string
	Sig    *FuncType
	Params []*Param
	Blocks []*Block
	Pos    Position
}

// IsDeclaration reports whether the function has no body
func (f *Function) IsDeclaration() bool {
	return len(f.Blocks) == 0
}

// Type returns the pointer-to-function type used when the function is an operand
func (f *Function) Type() Type {
	return &PointerType{ElemType: f.Sig}
}

// Param represents a function parameter; Name is empty for unnamed params
type Param struct {
	Name string
	Typ  Type
}

// Block represents a basic block
type Block struct {
	Name  string
	Insts []Instruction
	Pos   Position
}

// Func finds a function by name
func (m *Module) Func(name string) *Function {
	for _, f := range m.Funcs {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// Global finds a global variable by name
func (m *Module) Global(name string) *Global {
	for _, g := range m.Globals {
		if g.Name == name {
			return g
		}
	}
	return nil
}

// StructPos returns where an identified struct was defined
func (m *Module) StructPos(name string) Position {
	if m.TypePos == nil {
		return Position{}
	}
	return m.TypePos[name]
}
