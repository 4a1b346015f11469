package passes

import (
	"fmt"

	"github.com/tliron/commonlog"

	"cdecomp/internal/ast"
	"cdecomp/internal/errors"
	"cdecomp/internal/ir"
	"cdecomp/internal/program"
)

var log = commonlog.GetLogger("cdecomp.passes")

// Pass represents a single step that enriches the program
type Pass interface {
	Type() program.PassType
	Description() string
	Apply(m *ir.Module, p *program.Program) error
}

// Options selects the optional fixups
type Options struct {
	FixMain bool
}

// DefaultOptions enables every pass
func DefaultOptions() Options {
	return Options{FixMain: true}
}

// Pipeline manages the sequence of passes
type Pipeline struct {
	passes []Pass
}

// NewPipeline creates the pipeline in its fixed order
func NewPipeline(opts Options) *Pipeline {
	pipeline := &Pipeline{}

	pipeline.AddPass(&ParseStructDeclarations{})
	pipeline.AddPass(&ParseStructItems{})
	pipeline.AddPass(&ParseGlobalVariables{})
	pipeline.AddPass(&CreateFunctionParameters{})
	if opts.FixMain {
		pipeline.AddPass(&FixMainParameters{})
	}
	pipeline.AddPass(&CreateAllocas{})
	pipeline.AddPass(&ParseInstructions{})

	return pipeline
}

// AddPass appends a pass to the pipeline
func (pl *Pipeline) AddPass(pass Pass) {
	pl.passes = append(pl.passes, pass)
}

// Passes returns the passes in execution order
func (pl *Pipeline) Passes() []Pass {
	return pl.passes
}

// Run executes every pass on p. It stops at the first error, which names
// the pass that failed. A pass whose prerequisites are missing panics with
// an *errors.InvariantViolation.
func (pl *Pipeline) Run(m *ir.Module, p *program.Program) error {
	log.Infof("running %d passes on %s", len(pl.passes), m.SourceFilename)

	for _, pass := range pl.passes {
		name := pass.Type().String()
		log.Debugf("%s: %s", name, pass.Description())

		if err := pass.Apply(m, p); err != nil {
			log.Errorf("%s failed: %s", name, err)
			return inPass(err, name)
		}
		if err := Verify(p); err != nil {
			log.Errorf("%s left the program inconsistent: %s", name, err)
			return inPass(err, name)
		}
	}

	log.Infof("decompiled %d functions, %d structs, %d globals",
		len(p.Functions()), p.Structs.Len(), len(p.Globals()))
	return nil
}

func inPass(err error, pass string) error {
	if te, ok := errors.AsTranslationError(err); ok {
		return te.InPass(pass)
	}
	return fmt.Errorf("%s: %w", pass, err)
}

// Verify checks that every value-producing node built so far has a type
func Verify(p *program.Program) error {
	for _, g := range p.Globals() {
		if g.Type() == nil {
			return errors.UnresolvedType(g.Name, "")
		}
	}

	for _, fn := range p.Functions() {
		if fn.ReturnType == nil {
			return errors.UnresolvedType("return value", fn.Name)
		}
		for _, param := range fn.Parameters {
			if param.Type() == nil {
				return errors.UnresolvedType(param.Name, fn.Name)
			}
		}
		for _, alloca := range fn.Allocas {
			if alloca.Type() == nil {
				return errors.UnresolvedType(alloca.Value.Name, fn.Name)
			}
		}

		var bad ast.Expr
		for _, block := range fn.Blocks {
			ast.InspectBlock(block, func(e ast.Expr) bool {
				if bad != nil {
					return false
				}
				if ast.HasResult(e) && e.Type() == nil {
					bad = e
					return false
				}
				return true
			})
			if bad != nil {
				return errors.UnresolvedType(ast.String(bad), fn.Name)
			}
		}
	}

	return nil
}
