package grammar

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"fortio.org/safecast"
	"github.com/alecthomas/participle/v2/lexer"

	"cdecomp/internal/errors"
	"cdecomp/internal/ir"
)

// lowerer turns the parse tree into an ir.Module. slot tracks the next
// implicit value number inside the function being lowered.
type lowerer struct {
	slot int
}

func lower(filename string, tree *Module) (*ir.Module, error) {
	m := &ir.Module{TypePos: make(map[string]ir.Position)}
	l := &lowerer{}

	for _, e := range tree.Entities {
		switch {
		case e.Source != nil:
			m.SourceFilename = decodeString(*e.Source)

		case e.Target != nil:
			if e.Target.Kind == "triple" {
				m.TargetTriple = decodeString(e.Target.Value)
			} else {
				m.DataLayout = decodeString(e.Target.Value)
			}

		case e.TypeDef != nil:
			st, err := l.typeDef(e.TypeDef)
			if err != nil {
				return nil, err
			}
			m.TypeDefs = append(m.TypeDefs, st)
			m.TypePos[st.TypeName] = position(e.TypeDef.Pos)

		case e.Global != nil:
			g, err := l.global(e.Global)
			if err != nil {
				return nil, err
			}
			m.Globals = append(m.Globals, g)

		case e.Declare != nil:
			fn, err := l.function(e.Declare, nil)
			if err != nil {
				return nil, err
			}
			m.Funcs = append(m.Funcs, fn)

		case e.Define != nil:
			fn, err := l.function(e.Define.Header, e.Define.Blocks)
			if err != nil {
				return nil, err
			}
			m.Funcs = append(m.Funcs, fn)
		}
	}

	if filename != "" && m.SourceFilename == "" {
		m.SourceFilename = filename
	}
	return m, nil
}

func (l *lowerer) errorf(pos lexer.Position, format string, args ...any) error {
	return errors.NewTranslationError(errors.ErrorParse, fmt.Sprintf(format, args...)).
		At(position(pos)).
		Build()
}

func (l *lowerer) typeDef(def *TypeDef) (*ir.StructType, error) {
	st := &ir.StructType{TypeName: symbolName(def.Name), Opaque: def.Opaque}
	if def.Body != nil {
		fields, err := l.types(def.Body.Fields)
		if err != nil {
			return nil, err
		}
		st.Fields = fields
		st.Packed = def.Body.Packed
	}
	return st, nil
}

func (l *lowerer) global(g *Global) (*ir.Global, error) {
	t, err := l.typ(g.Type)
	if err != nil {
		return nil, err
	}

	out := &ir.Global{
		Name:        symbolName(g.Name),
		ContentType: t,
		Immutable:   g.Kind == "constant",
		Pos:         position(g.Pos),
	}
	if g.Init != nil {
		if out.Init, err = l.constant(g.Init); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Types

func (l *lowerer) typ(t *Type) (ir.Type, error) {
	var (
		base ir.Type
		err  error
	)

	switch {
	case t.Name != nil:
		base, err = l.primitive(*t.Name, t.Pos)
	case t.Named != nil:
		base = &ir.StructType{TypeName: symbolName(*t.Named)}
	case t.Array != nil:
		base, err = l.sequence(t.Array.Len, t.Array.Elem, t.Pos, false)
	case t.Vector != nil:
		base, err = l.sequence(t.Vector.Len, t.Vector.Elem, t.Pos, true)
	case t.Struct != nil:
		var fields []ir.Type
		fields, err = l.types(t.Struct.Fields)
		base = &ir.StructType{Fields: fields, Packed: t.Struct.Packed}
	}
	if err != nil {
		return nil, err
	}

	for _, s := range t.Suffix {
		if s.Pointer {
			base = &ir.PointerType{ElemType: base}
			continue
		}
		ft := &ir.FuncType{RetType: base}
		for _, p := range s.Func.Params {
			if p.Variadic {
				ft.Variadic = true
				continue
			}
			pt, err := l.typ(p.Type)
			if err != nil {
				return nil, err
			}
			ft.Params = append(ft.Params, pt)
		}
		base = ft
	}
	return base, nil
}

func (l *lowerer) types(ts []*Type) ([]ir.Type, error) {
	out := make([]ir.Type, 0, len(ts))
	for _, t := range ts {
		it, err := l.typ(t)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, nil
}

func (l *lowerer) primitive(name string, pos lexer.Position) (ir.Type, error) {
	switch name {
	case "void":
		return &ir.VoidType{}, nil
	case "label":
		return &ir.LabelType{}, nil
	case "ptr":
		return &ir.PointerType{}, nil
	case "half":
		return &ir.FloatType{Kind: ir.FloatKindHalf}, nil
	case "float":
		return &ir.FloatType{Kind: ir.FloatKindFloat}, nil
	case "double":
		return &ir.FloatType{Kind: ir.FloatKindDouble}, nil
	case "x86_fp80":
		return &ir.FloatType{Kind: ir.FloatKindX86FP80}, nil
	case "fp128":
		return &ir.FloatType{Kind: ir.FloatKindFP128}, nil
	case "ppc_fp128":
		return &ir.FloatType{Kind: ir.FloatKindPPCFP128}, nil
	}

	if bits, err := strconv.ParseUint(strings.TrimPrefix(name, "i"), 10, 32); err == nil && name[0] == 'i' && bits > 0 {
		return &ir.IntType{BitSize: bits}, nil
	}
	return nil, l.errorf(pos, "unknown type '%s'", name)
}

func (l *lowerer) sequence(length string, elem *Type, pos lexer.Position, vector bool) (ir.Type, error) {
	n, err := strconv.Atoi(length)
	if err != nil {
		return nil, l.errorf(pos, "invalid length '%s'", length)
	}
	size, err := safecast.Conv[uint64](n)
	if err != nil {
		return nil, l.errorf(pos, "invalid length '%s'", length)
	}

	et, err := l.typ(elem)
	if err != nil {
		return nil, err
	}
	if vector {
		return &ir.VectorType{Len: size, ElemType: et}, nil
	}
	return &ir.ArrayType{Len: size, ElemType: et}, nil
}

// Values

func (l *lowerer) constant(c *Constant) (*ir.Constant, error) {
	switch {
	case c.Int != nil:
		return &ir.Constant{Kind: ir.ConstInt, Text: *c.Int}, nil
	case c.Float != nil:
		return &ir.Constant{Kind: ir.ConstFloat, Text: floatText(*c.Float)}, nil
	case c.Str != nil:
		return &ir.Constant{Kind: ir.ConstString, Text: decodeString(*c.Str)}, nil
	case c.Global != nil:
		return &ir.Constant{Kind: ir.ConstGlobal, Text: symbolName(*c.Global)}, nil
	case c.Keyword != nil:
		switch *c.Keyword {
		case "null":
			return &ir.Constant{Kind: ir.ConstNull}, nil
		case "true", "false":
			return &ir.Constant{Kind: ir.ConstBool, Text: *c.Keyword}, nil
		case "zeroinitializer":
			return &ir.Constant{Kind: ir.ConstZero}, nil
		default:
			return &ir.Constant{Kind: ir.ConstUndef}, nil
		}
	case c.Array != nil:
		return l.aggregate(c.Array.Elems)
	case c.Struct != nil:
		return l.aggregate(c.Struct.Elems)
	}
	return nil, l.errorf(c.Pos, "unsupported constant")
}

func (l *lowerer) aggregate(elems []*TypedConstant) (*ir.Constant, error) {
	agg := &ir.Constant{Kind: ir.ConstAggregate}
	for _, e := range elems {
		t, err := l.typ(e.Type)
		if err != nil {
			return nil, err
		}
		op, err := l.operand(t, &Value{Pos: e.Value.Pos, Const: e.Value})
		if err != nil {
			return nil, err
		}
		agg.Elems = append(agg.Elems, op)
	}
	return agg, nil
}

func (l *lowerer) operand(t ir.Type, v *Value) (*ir.Operand, error) {
	switch {
	case v.Local != nil:
		return &ir.Operand{Kind: ir.OperandLocal, Type: t, Name: symbolName(*v.Local)}, nil
	case v.Const.Global != nil:
		return &ir.Operand{Kind: ir.OperandGlobal, Type: t, Name: symbolName(*v.Const.Global)}, nil
	}

	c, err := l.constant(v.Const)
	if err != nil {
		return nil, err
	}
	return &ir.Operand{Kind: ir.OperandConst, Type: t, Const: c}, nil
}

func (l *lowerer) typedOperand(tv *TypedValue) (*ir.Operand, error) {
	t, err := l.typ(tv.Type)
	if err != nil {
		return nil, err
	}
	return l.operand(t, tv.Value)
}

// Functions

func (l *lowerer) function(h *FuncHeader, blocks []*BlockDef) (*ir.Function, error) {
	ret, err := l.typ(h.RetType)
	if err != nil {
		return nil, err
	}

	fn := &ir.Function{
		Name: symbolName(h.Name),
		Sig:  &ir.FuncType{RetType: ret},
		Pos:  position(h.Pos),
	}
	l.slot = 0

	for _, p := range h.Params {
		if p.Variadic {
			fn.Sig.Variadic = true
			continue
		}
		t, err := l.typ(p.Decl.Type)
		if err != nil {
			return nil, err
		}
		fn.Sig.Params = append(fn.Sig.Params, t)

		param := &ir.Param{Typ: t}
		switch {
		case p.Decl.Name != nil:
			param.Name = l.name(*p.Decl.Name)
		case blocks != nil:
			param.Name = l.nextSlot()
		}
		fn.Params = append(fn.Params, param)
	}

	for _, b := range blocks {
		block, err := l.block(b)
		if err != nil {
			return nil, err
		}
		fn.Blocks = append(fn.Blocks, block)
	}
	return fn, nil
}

func (l *lowerer) block(b *BlockDef) (*ir.Block, error) {
	block := &ir.Block{Pos: position(b.Pos)}
	if b.Label != nil {
		block.Name = l.name(strings.TrimSuffix(*b.Label, ":"))
	} else {
		block.Name = l.nextSlot()
	}

	for _, in := range b.Insts {
		inst, err := l.instruction(in)
		if err != nil {
			return nil, err
		}
		block.Insts = append(block.Insts, inst)
	}
	return block, nil
}

// name strips the sigil and keeps the slot counter past numbered values
func (l *lowerer) name(raw string) string {
	name := symbolName(raw)
	if n, err := strconv.Atoi(name); err == nil && n >= l.slot {
		l.slot = n + 1
	}
	return name
}

func (l *lowerer) nextSlot() string {
	name := strconv.Itoa(l.slot)
	l.slot++
	return name
}

func (l *lowerer) result(in *Instruction) string {
	if in.Result != nil {
		return l.name(*in.Result)
	}
	if producesValue(in) {
		return l.nextSlot()
	}
	return ""
}

// producesValue reports whether an unnamed instruction still takes a slot
func producesValue(in *Instruction) bool {
	switch {
	case in.Store != nil, in.Ret != nil, in.Br != nil, in.Switch != nil, in.Unreachable:
		return false
	case in.Call != nil:
		return !returnsVoid(in.Call.Type)
	default:
		return true
	}
}

// returnsVoid matches both `void` and a `void (...)` call signature
func returnsVoid(t *Type) bool {
	if t.Name == nil || *t.Name != "void" {
		return false
	}
	return len(t.Suffix) == 0 || len(t.Suffix) == 1 && t.Suffix[0].Func != nil
}

// Instructions

func (l *lowerer) instruction(in *Instruction) (ir.Instruction, error) {
	pos := position(in.Pos)
	result := l.result(in)

	switch {
	case in.Alloca != nil:
		for _, opt := range in.Alloca.Options {
			if opt.Count != nil {
				return &ir.OtherInstruction{Result: result, Op: "alloca", Pos: pos}, nil
			}
		}
		t, err := l.typ(in.Alloca.Type)
		if err != nil {
			return nil, err
		}
		return &ir.AllocaInstruction{Result: result, ElemType: t, Pos: pos}, nil

	case in.Load != nil:
		t, err := l.typ(in.Load.Type)
		if err != nil {
			return nil, err
		}
		src, err := l.typedOperand(in.Load.Src)
		if err != nil {
			return nil, err
		}
		return &ir.LoadInstruction{Result: result, ElemType: t, Src: src, Pos: pos}, nil

	case in.Store != nil:
		val, err := l.typedOperand(in.Store.Value)
		if err != nil {
			return nil, err
		}
		dst, err := l.typedOperand(in.Store.Dst)
		if err != nil {
			return nil, err
		}
		return &ir.StoreInstruction{Value: val, Dst: dst, Pos: pos}, nil

	case in.Ret != nil:
		ret := &ir.ReturnInstruction{Pos: pos}
		if in.Ret.Value != nil {
			val, err := l.typedOperand(in.Ret.Value)
			if err != nil {
				return nil, err
			}
			ret.Value = val
		}
		return ret, nil

	case in.Br != nil:
		if in.Br.Target != nil {
			return &ir.BranchInstruction{TrueTarget: symbolName(*in.Br.Target), Pos: pos}, nil
		}
		cond, err := l.typedOperand(in.Br.Cond.Cond)
		if err != nil {
			return nil, err
		}
		return &ir.BranchInstruction{
			Condition:   cond,
			TrueTarget:  symbolName(in.Br.Cond.True),
			FalseTarget: symbolName(in.Br.Cond.False),
			Pos:         pos,
		}, nil

	case in.Switch != nil:
		return l.switchInst(in.Switch, pos)

	case in.Select != nil:
		ops, err := l.typedOperands(in.Select.Cond, in.Select.True, in.Select.False)
		if err != nil {
			return nil, err
		}
		return &ir.SelectInstruction{Result: result, Condition: ops[0], True: ops[1], False: ops[2], Pos: pos}, nil

	case in.Call != nil:
		return l.call(in.Call, result, pos)

	case in.GEP != nil:
		t, err := l.typ(in.GEP.Type)
		if err != nil {
			return nil, err
		}
		src, err := l.typedOperand(in.GEP.Base)
		if err != nil {
			return nil, err
		}
		indices, err := l.typedOperands(in.GEP.Indices...)
		if err != nil {
			return nil, err
		}
		return &ir.GetElementPtrInstruction{Result: result, ElemType: t, Src: src, Indices: indices, Pos: pos}, nil

	case in.ExtractValue != nil:
		agg, err := l.typedOperand(in.ExtractValue.Agg)
		if err != nil {
			return nil, err
		}
		indices := make([]int64, 0, len(in.ExtractValue.Indices))
		for _, idx := range in.ExtractValue.Indices {
			n, err := strconv.ParseInt(idx, 10, 64)
			if err != nil {
				return nil, l.errorf(in.Pos, "invalid index '%s'", idx)
			}
			indices = append(indices, n)
		}
		return &ir.ExtractValueInstruction{Result: result, Agg: agg, Indices: indices, Pos: pos}, nil

	case in.Binary != nil:
		t, err := l.typ(in.Binary.Type)
		if err != nil {
			return nil, err
		}
		x, y, err := l.pair(t, in.Binary.X, in.Binary.Y)
		if err != nil {
			return nil, err
		}
		return &ir.BinaryInstruction{Result: result, Op: in.Binary.Op, Type: t, X: x, Y: y, Pos: pos}, nil

	case in.Compare != nil:
		t, err := l.typ(in.Compare.Type)
		if err != nil {
			return nil, err
		}
		x, y, err := l.pair(t, in.Compare.X, in.Compare.Y)
		if err != nil {
			return nil, err
		}
		return &ir.CompareInstruction{
			Result: result,
			Kind:   in.Compare.Kind,
			Pred:   in.Compare.Pred,
			Type:   t,
			X:      x,
			Y:      y,
			Pos:    pos,
		}, nil

	case in.Cast != nil:
		from, err := l.typedOperand(in.Cast.From)
		if err != nil {
			return nil, err
		}
		to, err := l.typ(in.Cast.To)
		if err != nil {
			return nil, err
		}
		return &ir.CastInstruction{Result: result, Op: in.Cast.Op, From: from, To: to, Pos: pos}, nil

	case in.Phi != nil:
		return &ir.OtherInstruction{Result: result, Op: "phi", Pos: pos}, nil
	case in.Unary != nil:
		return &ir.OtherInstruction{Result: result, Op: in.Unary.Op, Pos: pos}, nil
	case in.VaArg != nil:
		return &ir.OtherInstruction{Result: result, Op: "va_arg", Pos: pos}, nil
	case in.InsertValue != nil:
		return &ir.OtherInstruction{Result: result, Op: "insertvalue", Pos: pos}, nil

	default:
		return &ir.UnreachableInstruction{Pos: pos}, nil
	}
}

func (l *lowerer) typedOperands(tvs ...*TypedValue) ([]*ir.Operand, error) {
	ops := make([]*ir.Operand, 0, len(tvs))
	for _, tv := range tvs {
		op, err := l.typedOperand(tv)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	return ops, nil
}

func (l *lowerer) pair(t ir.Type, x, y *Value) (*ir.Operand, *ir.Operand, error) {
	xo, err := l.operand(t, x)
	if err != nil {
		return nil, nil, err
	}
	yo, err := l.operand(t, y)
	if err != nil {
		return nil, nil, err
	}
	return xo, yo, nil
}

func (l *lowerer) switchInst(s *Switch, pos ir.Position) (ir.Instruction, error) {
	cond, err := l.typedOperand(s.Cond)
	if err != nil {
		return nil, err
	}

	inst := &ir.SwitchInstruction{Condition: cond, Default: symbolName(s.Default), Pos: pos}
	for _, c := range s.Cases {
		v, err := caseValue(c.Value.Value)
		if err != nil {
			return nil, l.errorf(c.Value.Value.Pos, "%s", err)
		}
		inst.Cases = append(inst.Cases, &ir.SwitchCase{Value: v, Target: symbolName(c.Target)})
	}
	return inst, nil
}

func caseValue(v *Value) (int64, error) {
	if v.Const != nil {
		switch {
		case v.Const.Int != nil:
			return strconv.ParseInt(*v.Const.Int, 10, 64)
		case v.Const.Keyword != nil && *v.Const.Keyword == "true":
			return 1, nil
		case v.Const.Keyword != nil && *v.Const.Keyword == "false":
			return 0, nil
		}
	}
	return 0, fmt.Errorf("switch case must be an integer constant")
}

func (l *lowerer) call(c *Call, result string, pos ir.Position) (ir.Instruction, error) {
	t, err := l.typ(c.Type)
	if err != nil {
		return nil, err
	}

	inst := &ir.CallInstruction{Result: result, Pos: pos}
	if ft, ok := t.(*ir.FuncType); ok {
		inst.FnType = ft
		inst.RetType = ft.RetType
	} else {
		inst.RetType = t
	}

	argTypes := make([]ir.Type, 0, len(c.Args))
	for _, arg := range c.Args {
		at, err := l.typ(arg.Type)
		if err != nil {
			return nil, err
		}
		op, err := l.operand(at, arg.Value)
		if err != nil {
			return nil, err
		}
		argTypes = append(argTypes, at)
		inst.Args = append(inst.Args, op)
	}
	if inst.FnType == nil {
		inst.FnType = &ir.FuncType{RetType: inst.RetType, Params: argTypes}
	}

	if c.Asm != nil {
		inst.Asm = &ir.InlineAsm{
			Text:        decodeString(c.Asm.Text),
			Constraints: decodeString(c.Asm.Constraints),
			SideEffect:  c.Asm.SideEffect,
		}
		return inst, nil
	}

	inst.Callee, err = l.operand(&ir.PointerType{ElemType: inst.FnType}, c.Callee)
	if err != nil {
		return nil, err
	}
	return inst, nil
}

// Literals

// symbolName strips the sigil from @name or %name and unquotes quoted names
func symbolName(raw string) string {
	if raw == "" {
		return raw
	}
	if raw[0] == '@' || raw[0] == '%' {
		raw = raw[1:]
	}
	if strings.HasPrefix(raw, `"`) {
		return decodeString(raw)
	}
	return raw
}

// decodeString unquotes an IR string literal. \HH is a hex escape and \\ a
// backslash; the c prefix of byte arrays is dropped.
func decodeString(lit string) string {
	lit = strings.TrimPrefix(lit, "c")
	lit = strings.TrimSuffix(strings.TrimPrefix(lit, `"`), `"`)

	var b strings.Builder
	for i := 0; i < len(lit); i++ {
		if lit[i] != '\\' || i+1 >= len(lit) {
			b.WriteByte(lit[i])
			continue
		}
		if lit[i+1] == '\\' {
			b.WriteByte('\\')
			i++
			continue
		}
		if i+2 < len(lit) {
			if v, err := strconv.ParseUint(lit[i+1:i+3], 16, 8); err == nil {
				b.WriteByte(byte(v))
				i += 2
				continue
			}
		}
		b.WriteByte(lit[i])
	}
	return b.String()
}

// floatText rewrites the 64-bit hex spelling LLVM uses for inexact values
// as a decimal literal. Other hex formats are kept as written.
func floatText(lit string) string {
	if !strings.HasPrefix(lit, "0x") || len(lit) != 18 {
		return lit
	}
	bits, err := strconv.ParseUint(lit[2:], 16, 64)
	if err != nil {
		return lit
	}

	s := strconv.FormatFloat(math.Float64frombits(bits), 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEIN") {
		s += ".0"
	}
	return s
}
