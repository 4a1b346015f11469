package passes

import (
	"fmt"

	"cdecomp/internal/errors"
	"cdecomp/internal/ir"
	"cdecomp/internal/program"
	"cdecomp/internal/types"
)

// ParseStructDeclarations registers every identified IR struct as an empty
// aggregate. The variadic-argument descriptor is synthesized instead of
// being read from the module.
type ParseStructDeclarations struct{}

func (*ParseStructDeclarations) Type() program.PassType {
	return program.ParseStructDeclarations
}

func (*ParseStructDeclarations) Description() string {
	return "Declares structs and unions, synthesizing __va_list_tag"
}

func (*ParseStructDeclarations) Apply(m *ir.Module, p *program.Program) error {
	for _, t := range m.TypeDefs {
		name := types.StructName(t.TypeName)

		if name == types.VarArgStructName {
			if p.HasVarArg() {
				continue
			}
			// an opaque declaration is fine, any body must have the ABI's four fields
			if n := len(t.Fields); n != 0 && n != 4 {
				return errors.MalformedVarArg(t.TypeName, n, m.StructPos(t.TypeName))
			}
			p.Structs.AddVarArg(p.Types)
			log.Debugf("synthesized %s", name)
			continue
		}

		if p.Structs.Lookup(name) != nil {
			return errors.NameCollision("struct", name, "%"+t.TypeName, m.StructPos(t.TypeName))
		}
		p.AddStruct(&types.Struct{Name: name, Union: types.IsUnionName(t.TypeName)})
	}

	p.AddPass(program.ParseStructDeclarations)
	return nil
}

// ParseStructItems fills in the fields of the aggregates declared by
// ParseStructDeclarations
type ParseStructItems struct{}

func (*ParseStructItems) Type() program.PassType {
	return program.ParseStructItems
}

func (*ParseStructItems) Description() string {
	return "Translates struct field types"
}

func (*ParseStructItems) Apply(m *ir.Module, p *program.Program) error {
	p.RequirePass(program.ParseStructItems, program.ParseStructDeclarations)

	for _, t := range m.TypeDefs {
		name := types.StructName(t.TypeName)
		if name == types.VarArgStructName {
			continue
		}

		s := p.Structs.Lookup(name)
		if s == nil {
			errors.Violate(errors.ErrorMissingPrerequisite, "%%%s was not declared", t.TypeName)
		}

		for i, field := range t.Fields {
			ft, err := p.Types.GetType(field)
			if err != nil {
				return locate(err, "%"+t.TypeName, m.StructPos(t.TypeName))
			}
			s.AddItem(ft, fmt.Sprintf("structVar%d", i))
		}
	}

	p.AddPass(program.ParseStructItems)
	return nil
}

// locate attaches an IR element and position to errors that lack them
func locate(err error, element string, pos ir.Position) error {
	if te, ok := errors.AsTranslationError(err); ok {
		return te.Locate(element, pos)
	}
	return err
}
