package program

import (
	"fmt"

	"cdecomp/internal/ast"
	"cdecomp/internal/ir"
	"cdecomp/internal/types"
)

// Function is the decompiled form of one IR function
type Function struct {
	Name        string
	ReturnType  types.Type
	Parameters  []*ast.Value
	VarArg      bool
	Declaration bool

	// Allocas are the stack slots declared at the top of the body,
	// Locals the values holding instruction results
	Allocas []*ast.StackAlloc
	Locals  []*ast.Value
	Blocks  []*ast.Block

	Source *ir.Function

	// key = IR local name (parameters, allocas, instruction results)
	locals   map[string]ast.Expr
	blocks   map[string]*ast.Block
	names    map[string]bool
	varCount int
}

// NewFunction creates the record for an IR function. The caller registers it
// with Program.AddFunction.
func NewFunction(source *ir.Function) *Function {
	return &Function{
		Name:        types.Identifier(source.Name),
		Declaration: source.IsDeclaration(),
		Source:      source,
		locals:      make(map[string]ast.Expr),
		blocks:      make(map[string]*ast.Block),
		names:       make(map[string]bool),
	}
}

// Bind records the expression an IR local name evaluates to
func (f *Function) Bind(irName string, e ast.Expr) {
	f.locals[irName] = e
	if v, ok := ast.AsValue(e); ok {
		f.names[v.Name] = true
	}
}

// Local returns the expression bound to an IR local name
func (f *Function) Local(irName string) (ast.Expr, bool) {
	e, ok := f.locals[irName]
	return e, ok
}

// NewVarName returns a fresh "var<n>" name unused in this function
func (f *Function) NewVarName() string {
	for {
		name := fmt.Sprintf("var%d", f.varCount)
		f.varCount++
		if !f.names[name] {
			f.names[name] = true
			return name
		}
	}
}

// NewLocal declares a fresh local of type t and binds it to irName
func (f *Function) NewLocal(irName string, t types.Type) *ast.Value {
	v := ast.NewValue(f.NewVarName(), t)
	f.Locals = append(f.Locals, v)
	if irName != "" {
		f.Bind(irName, v)
	}
	return v
}

// ReserveName marks a C name as taken
func (f *Function) ReserveName(name string) {
	f.names[name] = true
}

// HasName reports whether a C name is already used in this function
func (f *Function) HasName(name string) bool {
	return f.names[name]
}

// AddBlock appends an empty block; blocks keep IR order
func (f *Function) AddBlock(name string) *ast.Block {
	b := &ast.Block{Name: name}
	f.Blocks = append(f.Blocks, b)
	f.blocks[name] = b
	return b
}

// Block returns the block with the given label
func (f *Function) Block(name string) (*ast.Block, bool) {
	b, ok := f.blocks[name]
	return b, ok
}

// SetParameters replaces the parameter list and rebinds the IR names
func (f *Function) SetParameters(params []*ast.Value) {
	f.Parameters = params
	for i, p := range params {
		if i < len(f.Source.Params) && f.Source.Params[i].Name != "" {
			f.Bind(f.Source.Params[i].Name, p)
		}
		f.ReserveName(p.Name)
	}
}
