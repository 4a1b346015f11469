package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"cdecomp/internal/ast"
	"cdecomp/internal/program"
	"cdecomp/internal/types"
)

// render prints the program as C: typedefs first, then aggregates, globals,
// prototypes and finally function bodies
func render(p *program.Program) string {
	var b strings.Builder
	dim := color.New(color.Faint).SprintFunc()
	label := color.New(color.FgYellow).SprintFunc()

	for _, td := range p.Types.Typedefs() {
		sig := strings.Replace(td.Signature(), "(*)", "(*"+td.TypedefName+")", 1)
		b.WriteString("typedef " + sig + ";\n")
	}
	if p.Types.HasTypedefs() {
		b.WriteString("\n")
	}

	for _, s := range p.Structs.Structs() {
		b.WriteString(s.String() + " {\n")
		for _, f := range s.Fields {
			b.WriteString("    " + declare(f.Type, f.Name) + ";\n")
		}
		b.WriteString("};\n\n")
	}

	for _, g := range p.Globals() {
		decl := declare(g.Type(), g.Name)
		if g.Initializer != "" {
			decl += " = " + g.Initializer
		}
		b.WriteString(decl + ";\n")
	}
	if len(p.Globals()) > 0 {
		b.WriteString("\n")
	}

	for _, fn := range p.Functions() {
		b.WriteString(prototype(fn) + ";\n")
	}

	for _, fn := range p.Functions() {
		if fn.Declaration {
			continue
		}
		b.WriteString("\n" + prototype(fn) + " {\n")
		for _, a := range fn.Allocas {
			b.WriteString("    " + declare(a.Value.Type(), a.Value.Name) + ";\n")
		}
		for _, v := range fn.Locals {
			b.WriteString("    " + declare(v.Type(), v.Name) + "; " + dim("// temporary") + "\n")
		}
		for _, block := range fn.Blocks {
			b.WriteString(label(block.Name+":") + "\n")
			for _, e := range block.Exprs {
				b.WriteString("    " + statement(e) + "\n")
			}
		}
		b.WriteString("}\n")
	}

	return b.String()
}

func prototype(fn *program.Function) string {
	params := make([]string, 0, len(fn.Parameters)+1)
	for _, p := range fn.Parameters {
		params = append(params, declare(p.Type(), p.Name))
	}
	if fn.VarArg {
		params = append(params, "...")
	}
	if len(params) == 0 {
		params = append(params, "void")
	}
	return fmt.Sprintf("%s %s(%s)", fn.ReturnType, fn.Name, strings.Join(params, ", "))
}

// declare spells a declaration, moving array bounds after the name
func declare(t types.Type, name string) string {
	if arr, ok := t.(*types.Array); ok {
		return declare(arr.Elem, fmt.Sprintf("%s[%d]", name, arr.Count))
	}
	return t.String() + " " + name
}

func statement(e ast.Expr) string {
	text := strings.ReplaceAll(e.String(), "\n", "\n    ")
	if e.NodeType() == ast.SWITCH_EXPR {
		return text
	}
	return text + ";"
}
