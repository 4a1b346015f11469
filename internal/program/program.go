package program

import (
	"cdecomp/internal/ast"
	"cdecomp/internal/errors"
	"cdecomp/internal/ir"
	"cdecomp/internal/types"
)

// Program is the shared state of one decompilation run. Passes read the IR
// module and enrich the program; nothing here is safe for concurrent use.
type Program struct {
	Types   *types.Registry
	Structs *types.Catalog

	functions []*Function
	byIR      map[*ir.Function]*Function

	globals       []*ast.GlobalValue
	globalsByName map[string]*ast.GlobalValue

	completed map[PassType]bool
}

// New creates an empty program with its own registry and catalog
func New() *Program {
	catalog := types.NewCatalog()
	return &Program{
		Types:         types.NewRegistry(catalog),
		Structs:       catalog,
		byIR:          make(map[*ir.Function]*Function),
		globalsByName: make(map[string]*ast.GlobalValue),
		completed:     make(map[PassType]bool),
	}
}

// AddPass marks a pass as completed
func (p *Program) AddPass(pass PassType) {
	p.completed[pass] = true
}

func (p *Program) IsPassCompleted(pass PassType) bool {
	return p.completed[pass]
}

// RequirePass panics unless every prerequisite of pass has completed.
// A missing prerequisite means the pipeline was wired wrong.
func (p *Program) RequirePass(pass PassType, prerequisites ...PassType) {
	for _, req := range prerequisites {
		if !p.completed[req] {
			errors.Violate(errors.ErrorMissingPrerequisite, "%s requires %s to run first", pass, req)
		}
	}
}

// AddStruct registers a new aggregate declaration
func (p *Program) AddStruct(s *types.Struct) {
	p.Structs.Add(s)
}

// HasVarArg reports whether the variadic-argument descriptor was synthesized
func (p *Program) HasVarArg() bool {
	return p.Structs.HasVarArg()
}

// AddFunction registers the record built for an IR function
func (p *Program) AddFunction(fn *Function) {
	if _, exists := p.byIR[fn.Source]; exists {
		errors.Violate(errors.ErrorDuplicateSymbol, "function @%s registered twice", fn.Source.Name)
	}
	p.functions = append(p.functions, fn)
	p.byIR[fn.Source] = fn
}

// Function returns the record of an IR function, or nil if none was built
func (p *Program) Function(irFunc *ir.Function) *Function {
	return p.byIR[irFunc]
}

// FunctionByName looks a record up by its IR name
func (p *Program) FunctionByName(name string) *Function {
	for _, fn := range p.functions {
		if fn.Source.Name == name {
			return fn
		}
	}
	return nil
}

// Functions returns the function records in module order
func (p *Program) Functions() []*Function {
	return p.functions
}

// AddGlobal registers a global variable under its IR name
func (p *Program) AddGlobal(irName string, g *ast.GlobalValue) {
	if _, exists := p.globalsByName[irName]; exists {
		errors.Violate(errors.ErrorDuplicateSymbol, "global @%s registered twice", irName)
	}
	p.globals = append(p.globals, g)
	p.globalsByName[irName] = g
}

// Global returns the global registered under an IR name
func (p *Program) Global(irName string) (*ast.GlobalValue, bool) {
	g, ok := p.globalsByName[irName]
	return g, ok
}

// Globals returns the globals in module order
func (p *Program) Globals() []*ast.GlobalValue {
	return p.globals
}
