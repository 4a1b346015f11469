package passes

import (
	"fmt"

	"cdecomp/internal/ast"
	"cdecomp/internal/ir"
	"cdecomp/internal/program"
	"cdecomp/internal/types"
)

// CreateFunctionParameters builds a Function record for every IR function,
// with its return type and one Value per parameter
type CreateFunctionParameters struct{}

func (*CreateFunctionParameters) Type() program.PassType {
	return program.CreateFunctionParameters
}

func (*CreateFunctionParameters) Description() string {
	return "Creates functions with their parameters and return types"
}

func (*CreateFunctionParameters) Apply(m *ir.Module, p *program.Program) error {
	p.RequirePass(program.CreateFunctionParameters, program.ParseStructItems)

	for _, irFn := range m.Funcs {
		fn := program.NewFunction(irFn)

		ret, err := p.Types.GetType(irFn.Sig.RetType)
		if err != nil {
			return locate(err, "@"+irFn.Name, irFn.Pos)
		}
		fn.ReturnType = ret
		fn.VarArg = irFn.Sig.Variadic

		params := make([]*ast.Value, 0, len(irFn.Params))
		for i, param := range irFn.Params {
			t, err := p.Types.GetType(param.Typ)
			if err != nil {
				return locate(err, "@"+irFn.Name, irFn.Pos)
			}

			name := parameterName(param.Name, i)
			if fn.HasName(name) {
				name = fn.NewVarName()
			}
			fn.ReserveName(name)
			params = append(params, ast.NewValue(name, t))
		}
		fn.SetParameters(params)

		p.AddFunction(fn)
	}

	p.AddPass(program.CreateFunctionParameters)
	return nil
}

// parameterName keeps source names; unnamed and numbered parameters become var<i>
func parameterName(irName string, i int) string {
	if irName == "" || isSlotNumber(irName) {
		return fmt.Sprintf("var%d", i)
	}
	return types.Identifier(irName)
}

func isSlotNumber(name string) bool {
	for _, c := range name {
		if c < '0' || c > '9' {
			return false
		}
	}
	return name != ""
}

// FixMainParameters gives main the conventional C signature: an int return
// type and signed integers behind any level of pointers in its parameters
type FixMainParameters struct{}

func (*FixMainParameters) Type() program.PassType {
	return program.FixMainParameters
}

func (*FixMainParameters) Description() string {
	return "Restores int main(int, char**) signedness"
}

func (*FixMainParameters) Apply(m *ir.Module, p *program.Program) error {
	p.RequirePass(program.FixMainParameters, program.CreateFunctionParameters)

	fn := p.FunctionByName("main")
	if fn == nil {
		p.AddPass(program.FixMainParameters)
		return nil
	}

	fn.ReturnType = p.Types.SInt

	params := make([]*ast.Value, len(fn.Parameters))
	for i, param := range fn.Parameters {
		fixed := signedInnermost(p.Types, param.Type())
		if fixed == param.Type() {
			params[i] = param
			continue
		}
		// types are shared, so the parameter gets a new binding
		params[i] = ast.NewValue(param.Name, fixed)
	}
	fn.SetParameters(params)

	log.Debugf("fixed signature of main: %s(%d params)", fn.ReturnType, len(params))
	p.AddPass(program.FixMainParameters)
	return nil
}

// signedInnermost makes the integer at the bottom of a pointer chain signed
func signedInnermost(reg *types.Registry, t types.Type) types.Type {
	switch t := t.(type) {
	case *types.Integer:
		return reg.SetSigned(t)
	case *types.Pointer:
		inner := signedInnermost(reg, t.Pointee)
		if inner == t.Pointee {
			return t
		}
		return reg.PointerTo(inner)
	default:
		return t
	}
}

// CreateAllocas declares a stack slot for every alloca. The IR result is a
// pointer to the slot, so it is bound to the slot's address.
type CreateAllocas struct{}

func (*CreateAllocas) Type() program.PassType {
	return program.CreateAllocas
}

func (*CreateAllocas) Description() string {
	return "Declares stack variables for allocas"
}

func (*CreateAllocas) Apply(m *ir.Module, p *program.Program) error {
	p.RequirePass(program.CreateAllocas, program.CreateFunctionParameters)

	for _, fn := range p.Functions() {
		for _, block := range fn.Source.Blocks {
			for _, inst := range block.Insts {
				alloca, ok := inst.(*ir.AllocaInstruction)
				if !ok {
					continue
				}

				t, err := p.Types.GetType(alloca.ElemType)
				if err != nil {
					return locate(err, "@"+fn.Source.Name, alloca.Pos)
				}

				slot := ast.NewValue(fn.NewVarName(), t)
				fn.Allocas = append(fn.Allocas, ast.NewStackAlloc(slot))
				fn.Bind(alloca.Result, ast.NewRefExpr(slot, p.Types.PointerTo(t)))
			}
		}
	}

	p.AddPass(program.CreateAllocas)
	return nil
}
