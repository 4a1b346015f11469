package passes

import (
	"strconv"
	"strings"

	"cdecomp/internal/ast"
	"cdecomp/internal/errors"
	"cdecomp/internal/ir"
	"cdecomp/internal/program"
	"cdecomp/internal/types"
)

// ParseInstructions translates function bodies into blocks of expressions
type ParseInstructions struct{}

func (*ParseInstructions) Type() program.PassType {
	return program.ParseInstructions
}

func (*ParseInstructions) Description() string {
	return "Translates instructions into C expressions"
}

func (*ParseInstructions) Apply(m *ir.Module, p *program.Program) error {
	p.RequirePass(program.ParseInstructions, program.ParseGlobalVariables, program.CreateAllocas)

	for _, fn := range p.Functions() {
		if fn.Declaration {
			continue
		}

		// every label must exist before the first forward jump
		for _, block := range fn.Source.Blocks {
			fn.AddBlock(blockName(block.Name))
		}

		tr := &translator{m: m, p: p, reg: p.Types, fn: fn}
		for i, block := range fn.Source.Blocks {
			tr.block = fn.Blocks[i]
			for _, inst := range block.Insts {
				if err := tr.translate(inst); err != nil {
					return locate(err, "function @"+fn.Source.Name, inst.GetPos())
				}
			}
		}
		log.Debugf("translated @%s: %d blocks, %d locals", fn.Source.Name, len(fn.Blocks), len(fn.Locals))
	}

	p.AddPass(program.ParseInstructions)
	return nil
}

// blockName turns an IR label into a C label
func blockName(label string) string {
	if isSlotNumber(label) {
		return "label" + label
	}
	return types.Identifier(label)
}

type translator struct {
	m     *ir.Module
	p     *program.Program
	reg   *types.Registry
	fn    *program.Function
	block *ast.Block
}

func (tr *translator) translate(inst ir.Instruction) error {
	switch inst := inst.(type) {
	case *ir.AllocaInstruction:
		// declared by CreateAllocas
		return nil
	case *ir.LoadInstruction:
		return tr.load(inst)
	case *ir.StoreInstruction:
		return tr.store(inst)
	case *ir.ReturnInstruction:
		return tr.ret(inst)
	case *ir.BranchInstruction:
		return tr.branch(inst)
	case *ir.SwitchInstruction:
		return tr.switchInst(inst)
	case *ir.SelectInstruction:
		return tr.selectInst(inst)
	case *ir.CallInstruction:
		if inst.Asm != nil {
			return tr.asm(inst)
		}
		return tr.call(inst)
	case *ir.GetElementPtrInstruction:
		return tr.gep(inst)
	case *ir.ExtractValueInstruction:
		return tr.extractValue(inst)
	case *ir.BinaryInstruction:
		return tr.binary(inst)
	case *ir.CompareInstruction:
		return tr.compare(inst)
	case *ir.CastInstruction:
		return tr.cast(inst)
	case *ir.UnreachableInstruction:
		return nil
	default:
		return tr.unsupported(inst)
	}
}

func (tr *translator) unsupported(inst ir.Instruction) error {
	return errors.UnsupportedInstruction(inst.Opcode(), tr.fn.Source.Name, inst.GetPos())
}

// assign stores rhs in a new local bound to the instruction's result
func (tr *translator) assign(result string, rhs ast.Expr) {
	if result == "" {
		tr.block.Append(rhs)
		return
	}
	local := tr.fn.NewLocal(result, rhs.Type())
	tr.block.Append(ast.NewAssignExpr(local, rhs))
}

func (tr *translator) getType(t ir.Type, pos ir.Position) (types.Type, error) {
	ct, err := tr.reg.GetType(t)
	if err != nil {
		return nil, locate(err, "function @"+tr.fn.Source.Name, pos)
	}
	return ct, nil
}

func (tr *translator) targetBlock(label string, pos ir.Position) (*ast.Block, error) {
	b, ok := tr.fn.Block(blockName(label))
	if !ok {
		return nil, errors.UndefinedReference("label", "%"+label, tr.fn.Source.Name, pos)
	}
	return b, nil
}

func (tr *translator) load(inst *ir.LoadInstruction) error {
	src, err := tr.operand(inst.Src, inst.Pos)
	if err != nil {
		return err
	}
	t, err := tr.getType(inst.ElemType, inst.Pos)
	if err != nil {
		return err
	}

	tr.assign(inst.Result, tr.derefAs(src, t))
	return nil
}

func (tr *translator) store(inst *ir.StoreInstruction) error {
	val, err := tr.operand(inst.Value, inst.Pos)
	if err != nil {
		return err
	}
	dst, err := tr.operand(inst.Dst, inst.Pos)
	if err != nil {
		return err
	}

	// a void* slot holds any pointer
	if ref, ok := dst.(*ast.RefExpr); ok && types.IsPointer(val.Type()) &&
		types.Equal(ref.Expr.Type(), tr.reg.PointerTo(tr.reg.Void)) {
		tr.block.Append(ast.NewAssignExpr(ref.Expr, val))
		return nil
	}

	tr.block.Append(ast.NewAssignExpr(tr.derefAs(dst, val.Type()), val))
	return nil
}

func (tr *translator) ret(inst *ir.ReturnInstruction) error {
	if inst.Value == nil {
		tr.block.Append(ast.NewRetExpr(nil))
		return nil
	}

	val, err := tr.operand(inst.Value, inst.Pos)
	if err != nil {
		return err
	}
	tr.block.Append(ast.NewRetExpr(val))
	return nil
}

func (tr *translator) branch(inst *ir.BranchInstruction) error {
	trueBlock, err := tr.targetBlock(inst.TrueTarget, inst.Pos)
	if err != nil {
		return err
	}
	if inst.Condition == nil {
		tr.block.Append(ast.NewGoto(trueBlock))
		return nil
	}

	cond, err := tr.operand(inst.Condition, inst.Pos)
	if err != nil {
		return err
	}
	falseBlock, err := tr.targetBlock(inst.FalseTarget, inst.Pos)
	if err != nil {
		return err
	}

	tr.block.Append(ast.NewIfExpr(cond, trueBlock, falseBlock))
	return nil
}

func (tr *translator) switchInst(inst *ir.SwitchInstruction) error {
	cond, err := tr.operand(inst.Condition, inst.Pos)
	if err != nil {
		return err
	}
	def, err := tr.targetBlock(inst.Default, inst.Pos)
	if err != nil {
		return err
	}

	sw := ast.NewSwitchExpr(cond, def)
	for _, c := range inst.Cases {
		target, err := tr.targetBlock(c.Target, inst.Pos)
		if err != nil {
			return err
		}
		sw.AddCase(c.Value, target)
	}

	tr.block.Append(sw)
	return nil
}

func (tr *translator) selectInst(inst *ir.SelectInstruction) error {
	ops, err := tr.operands(inst.Pos, inst.Condition, inst.True, inst.False)
	if err != nil {
		return err
	}

	tr.assign(inst.Result, ast.NewSelectExpr(ops[0], ops[1], ops[2]))
	return nil
}

func (tr *translator) call(inst *ir.CallInstruction) error {
	// debug intrinsics carry metadata only
	if inst.Callee.Kind == ir.OperandGlobal && strings.HasPrefix(inst.Callee.Name, "llvm.dbg.") {
		return nil
	}

	ret, err := tr.getType(inst.RetType, inst.Pos)
	if err != nil {
		return err
	}
	args, err := tr.operands(inst.Pos, inst.Args...)
	if err != nil {
		return err
	}

	var call *ast.CallExpr
	if inst.Callee.Kind == ir.OperandGlobal && tr.m.Func(inst.Callee.Name) != nil {
		call = ast.NewCallExpr(nil, types.Identifier(inst.Callee.Name), args, ret)
	} else {
		callee, err := tr.operand(inst.Callee, inst.Pos)
		if err != nil {
			return err
		}
		// opaque pointers must be cast to the callee signature
		if inst.FnType != nil {
			fp, err := tr.getType(&ir.PointerType{ElemType: inst.FnType}, inst.Pos)
			if err != nil {
				return err
			}
			if !types.Equal(callee.Type(), fp) {
				callee = ast.NewCastExpr(callee, fp)
			}
		}
		call = ast.NewCallExpr(callee, "", args, ret)
	}

	if _, void := ret.(*types.Void); void {
		tr.block.Append(call)
		return nil
	}
	tr.assign(inst.Result, call)
	return nil
}

// asm translates a call to inline assembly. Operands are numbered $N in the
// IR and %N in C; indirect outputs (=*) consume call arguments like inputs.
func (tr *translator) asm(inst *ir.CallInstruction) error {
	var (
		outputs  []ast.AsmOperand
		inputs   []ast.AsmOperand
		clobbers []string
		direct   int
		nextArg  int
	)
	indirect := make(map[int]ast.Expr)

	for _, c := range splitConstraints(inst.Asm.Constraints) {
		switch {
		case strings.HasPrefix(c, "~"):
			clobbers = append(clobbers, strings.TrimSuffix(strings.TrimPrefix(c, "~{"), "}"))

		case strings.HasPrefix(c, "=*"):
			if nextArg >= len(inst.Args) {
				return tr.unsupported(inst)
			}
			arg, err := tr.operand(inst.Args[nextArg], inst.Pos)
			if err != nil {
				return err
			}
			nextArg++
			indirect[len(outputs)] = tr.derefAs(arg, nil)
			outputs = append(outputs, ast.AsmOperand{Constraint: "=" + strings.TrimPrefix(c, "=*")})

		case strings.HasPrefix(c, "="):
			direct++
			outputs = append(outputs, ast.AsmOperand{Constraint: c})

		default:
			if nextArg >= len(inst.Args) {
				return tr.unsupported(inst)
			}
			arg, err := tr.operand(inst.Args[nextArg], inst.Pos)
			if err != nil {
				return err
			}
			nextArg++
			inputs = append(inputs, ast.AsmOperand{Constraint: c, Expr: arg})
		}
	}

	// several direct outputs come back as a struct, which C asm cannot bind
	if direct > 1 {
		return tr.unsupported(inst)
	}

	text := strings.ReplaceAll(inst.Asm.Text, "$$", "\x00")
	text = strings.ReplaceAll(text, "$", "%")
	text = strings.ReplaceAll(text, "\x00", "$")

	asm := ast.NewAsmExpr(text, outputs, inputs, strings.Join(clobbers, ","))
	for pos, e := range indirect {
		asm.AddOutputExpr(e, pos)
	}

	if direct == 1 {
		ret, err := tr.getType(inst.RetType, inst.Pos)
		if err != nil {
			return err
		}
		asm.AddOutputExpr(tr.fn.NewLocal(inst.Result, ret), 0)
	}

	tr.block.Append(asm)
	return nil
}

func splitConstraints(s string) []string {
	var out []string
	for _, c := range strings.Split(s, ",") {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}

// gep translates an address computation. The first index displaces the base
// pointer; the rest walk into the pointed-to aggregate.
func (tr *translator) gep(inst *ir.GetElementPtrInstruction) error {
	base, err := tr.operand(inst.Src, inst.Pos)
	if err != nil {
		return err
	}
	elem, err := tr.getType(inst.ElemType, inst.Pos)
	if err != nil {
		return err
	}
	if len(inst.Indices) == 0 {
		tr.assign(inst.Result, base)
		return nil
	}

	var cur ast.Expr
	if isZero(inst.Indices[0]) {
		cur = tr.derefAs(base, elem)
	} else {
		move, err := tr.operand(inst.Indices[0], inst.Pos)
		if err != nil {
			return err
		}
		ptrType := tr.reg.PointerTo(elem)
		cur = ast.NewPointerShift(ptrType, tr.castPointer(base, ptrType), move)
	}

	chain := []ast.Expr{cur}
	curIR, curType := inst.ElemType, elem
	for _, idx := range inst.Indices[1:] {
		switch t := curIR.(type) {
		case *ir.StructType:
			n, ok := constIndex(idx)
			s, isStruct := curType.(*types.Struct)
			if !ok || !isStruct {
				return tr.unsupported(inst)
			}
			fields := tr.structFields(t)
			if n < 0 || int(n) >= len(s.Fields) || int(n) >= len(fields) {
				return errors.InvalidAggregateAccess(s.String(), n, inst.Pos)
			}
			cur = ast.NewStructElement(s, cur, int(n))
			curIR, curType = fields[n], s.Fields[n].Type

		case *ir.ArrayType:
			i, err := tr.operand(idx, inst.Pos)
			if err != nil {
				return err
			}
			arr, ok := curType.(*types.Array)
			if !ok {
				return tr.unsupported(inst)
			}
			cur = ast.NewArrayElement(cur, i)
			curIR, curType = t.ElemType, arr.Elem

		default:
			return tr.unsupported(inst)
		}
		chain = append(chain, cur)
	}

	tr.assign(inst.Result, ast.NewRefExpr(ast.NewGepExpr(chain), tr.reg.PointerTo(curType)))
	return nil
}

func (tr *translator) extractValue(inst *ir.ExtractValueInstruction) error {
	agg, err := tr.operand(inst.Agg, inst.Pos)
	if err != nil {
		return err
	}

	var chain []ast.Expr
	cur := agg
	curIR := inst.Agg.Type
	for _, n := range inst.Indices {
		switch t := curIR.(type) {
		case *ir.StructType:
			s, ok := cur.Type().(*types.Struct)
			fields := tr.structFields(t)
			if !ok || n < 0 || int(n) >= len(s.Fields) || int(n) >= len(fields) {
				return errors.InvalidAggregateAccess(curIR.String(), n, inst.Pos)
			}
			cur = ast.NewStructElement(s, cur, int(n))
			curIR = fields[n]

		case *ir.ArrayType:
			if n < 0 || uint64(n) >= t.Len {
				return errors.InvalidAggregateAccess(curIR.String(), n, inst.Pos)
			}
			cur = ast.NewArrayElement(cur, ast.NewValue(strconv.FormatInt(n, 10), tr.reg.SLong))
			curIR = t.ElemType

		default:
			return tr.unsupported(inst)
		}
		chain = append(chain, cur)
	}
	if len(chain) == 0 {
		return tr.unsupported(inst)
	}

	tr.assign(inst.Result, ast.NewExtractValueExpr(chain))
	return nil
}

// structFields returns the field types of an IR struct, looking named
// structs up in the module
func (tr *translator) structFields(t *ir.StructType) []ir.Type {
	if t.TypeName == "" || len(t.Fields) > 0 {
		return t.Fields
	}
	for _, def := range tr.m.TypeDefs {
		if def.TypeName == t.TypeName {
			return def.Fields
		}
	}
	return nil
}

var binaryOps = map[string]string{
	"add": "+", "fadd": "+",
	"sub": "-", "fsub": "-",
	"mul": "*", "fmul": "*",
	"sdiv": "/", "udiv": "/", "fdiv": "/",
	"srem": "%", "urem": "%",
	"shl": "<<", "lshr": ">>", "ashr": ">>",
	"and": "&", "or": "|", "xor": "^",
}

func (tr *translator) binary(inst *ir.BinaryInstruction) error {
	op, ok := binaryOps[inst.Op]
	if !ok {
		return tr.unsupported(inst)
	}
	ops, err := tr.operands(inst.Pos, inst.X, inst.Y)
	if err != nil {
		return err
	}
	x, y := ops[0], ops[1]

	switch inst.Op {
	case "udiv", "urem", "lshr":
		x, y = tr.unsigned(x), tr.unsigned(y)
	case "sdiv", "srem", "ashr":
		x, y = tr.signed(x), tr.signed(y)
	}

	t, err := tr.reg.BinaryType(x.Type(), y.Type())
	if err != nil {
		return locate(err, "function @"+tr.fn.Source.Name, inst.Pos)
	}
	tr.assign(inst.Result, ast.NewBinaryExpr(op, x, y, t))
	return nil
}

var comparePredicates = map[string]string{
	// icmp
	"eq": "==", "ne": "!=",
	"ugt": ">", "uge": ">=", "ult": "<", "ule": "<=",
	"sgt": ">", "sge": ">=", "slt": "<", "sle": "<=",
	// fcmp
	"oeq": "==", "one": "!=", "ogt": ">", "oge": ">=", "olt": "<", "ole": "<=",
	"ueq": "==", "une": "!=",
}

func (tr *translator) compare(inst *ir.CompareInstruction) error {
	op, ok := comparePredicates[inst.Pred]
	if !ok {
		return errors.UnsupportedInstruction(inst.Kind+" "+inst.Pred, tr.fn.Source.Name, inst.Pos)
	}
	ops, err := tr.operands(inst.Pos, inst.X, inst.Y)
	if err != nil {
		return err
	}
	x, y := ops[0], ops[1]

	if inst.Kind == "icmp" {
		switch inst.Pred[0] {
		case 'u':
			x, y = tr.unsigned(x), tr.unsigned(y)
		case 's':
			x, y = tr.signed(x), tr.signed(y)
		}
	}

	tr.assign(inst.Result, ast.NewCmpExpr(op, x, y, tr.reg.SInt))
	return nil
}

func (tr *translator) cast(inst *ir.CastInstruction) error {
	from, err := tr.operand(inst.From, inst.Pos)
	if err != nil {
		return err
	}
	to, err := tr.getType(inst.To, inst.Pos)
	if err != nil {
		return err
	}

	switch inst.Op {
	case "zext", "uitofp":
		from = tr.unsigned(from)
	case "sext", "sitofp":
		from = tr.signed(from)
	case "trunc", "fptrunc", "fpext", "fptoui", "fptosi", "ptrtoint", "inttoptr", "bitcast", "addrspacecast":
	default:
		return tr.unsupported(inst)
	}

	tr.assign(inst.Result, ast.NewCastExpr(from, to))
	return nil
}

// unsigned reinterprets a signed integer operand as unsigned
func (tr *translator) unsigned(e ast.Expr) ast.Expr {
	if it, ok := e.Type().(*types.Integer); ok && it.Signed {
		return ast.NewCastExpr(e, tr.reg.SetUnsigned(it))
	}
	return e
}

func (tr *translator) signed(e ast.Expr) ast.Expr {
	if it, ok := e.Type().(*types.Integer); ok && !it.Signed {
		return ast.NewCastExpr(e, tr.reg.SetSigned(it))
	}
	return e
}

// derefAs reads through a pointer expression. A nil want keeps the pointee
// type; otherwise the pointer is cast when it points to something else,
// which is the norm with opaque pointers.
func (tr *translator) derefAs(ptr ast.Expr, want types.Type) ast.Expr {
	if ref, ok := ptr.(*ast.RefExpr); ok && (want == nil || types.Equal(ref.Expr.Type(), want)) {
		return ref.Expr
	}
	if want == nil {
		return ast.NewDerefExpr(ptr)
	}
	if pointee, ok := types.Pointee(ptr.Type()); ok && types.Equal(pointee, want) {
		return ast.NewDerefExpr(ptr)
	}
	return ast.NewDerefExpr(ast.NewCastExpr(ptr, tr.reg.PointerTo(want)))
}

func (tr *translator) castPointer(ptr ast.Expr, to *types.Pointer) ast.Expr {
	if types.Equal(ptr.Type(), to) {
		return ptr
	}
	return ast.NewCastExpr(ptr, to)
}

func isZero(op *ir.Operand) bool {
	n, ok := constIndex(op)
	return ok && n == 0
}

func constIndex(op *ir.Operand) (int64, bool) {
	if op.Kind != ir.OperandConst || op.Const == nil {
		return 0, false
	}
	switch op.Const.Kind {
	case ir.ConstZero, ir.ConstNull:
		return 0, true
	case ir.ConstInt:
		n, err := strconv.ParseInt(op.Const.Text, 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}
