package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"cdecomp/internal/types"
)

func TestExprString(t *testing.T) {
	reg := newRegistry()
	x := NewValue("x", reg.SInt)
	y := NewValue("y", reg.SInt)
	p := NewValue("p", reg.PointerTo(reg.SInt))

	assert.Equal(t, "x + y", NewBinaryExpr("+", x, y, reg.SInt).String())
	assert.Equal(t, "x = x + y", NewAssignExpr(x, NewBinaryExpr("+", x, y, reg.SInt)).String())
	assert.Equal(t, "*p", NewDerefExpr(p).String())
	assert.Equal(t, "&x", NewRefExpr(x, reg.PointerTo(reg.SInt)).String())
	assert.Equal(t, "(unsigned int)x", NewCastExpr(x, reg.UInt).String())
	assert.Equal(t, "return", NewRetExpr(nil).String())
	assert.Equal(t, "return x", NewRetExpr(x).String())
	assert.Equal(t, "f(x, y)", NewCallExpr(nil, "f", []Expr{x, y}, reg.SInt).String())
	assert.Equal(t, "(*p)()", NewCallExpr(NewDerefExpr(p), "", nil, reg.Void).String())
	assert.Equal(t, "*(p + x)", NewPointerShift(reg.PointerTo(reg.SInt), p, x).String())
	assert.Equal(t, "int var0", NewStackAlloc(NewValue("var0", reg.SInt)).String())
}

func TestStructElementString(t *testing.T) {
	reg := newRegistry()
	s := &types.Struct{Name: "s_node"}
	s.AddItem(reg.SInt, "structVar0")
	s.AddItem(reg.PointerTo(s), "structVar1")

	n := NewValue("n", s)
	p := NewValue("p", reg.PointerTo(s))

	assert.Equal(t, "n.structVar1", NewStructElement(s, n, 1).String())
	assert.Equal(t, "p->structVar0", NewStructElement(s, NewDerefExpr(p), 0).String())
}

func TestControlString(t *testing.T) {
	reg := newRegistry()
	c := NewValue("c", reg.UInt)
	then := &Block{Name: "then"}
	els := &Block{Name: "else"}

	assert.Equal(t, "goto then", NewGoto(then).String())
	assert.Equal(t, "if (c) goto then; else goto else", NewIfExpr(c, then, els).String())

	sw := NewSwitchExpr(c, els)
	sw.AddCase(1, then)
	assert.Equal(t, "switch (c) {\ncase 1: goto then;\ndefault: goto else;\n}", sw.String())

	block := &Block{Name: "entry"}
	block.Append(NewGoto(then))
	assert.Equal(t, "entry:\n  goto then;\n", block.String())
}

func TestAsmString(t *testing.T) {
	reg := newRegistry()
	out := NewValue("var0", reg.SInt)
	in := NewValue("x", reg.SInt)

	asm := NewAsmExpr("mov %1, %0", []AsmOperand{{Constraint: "=r"}}, []AsmOperand{{Constraint: "r", Expr: in}}, "")
	asm.AddOutputExpr(out, 0)

	assert.Equal(t, `__asm__("mov %1, %0" : "=r" (var0) : "r" (x) : "")`, asm.String())
}
