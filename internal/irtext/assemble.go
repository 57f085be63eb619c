package irtext

import (
	"fmt"
	"strconv"

	"github.com/alecthomas/participle/v2"

	"sparseir/internal/ir"
)

var parser = buildParser()

func buildParser() *participle.Parser[File] {
	p, err := participle.Build[File](
		participle.Lexer(Lexer),
		participle.Elide("Whitespace", "Comment"),
		participle.UseLookahead(3),
	)
	if err != nil {
		panic(fmt.Errorf("irtext: failed to build parser: %w", err))
	}
	return p
}

// AssembleError is one problem found while assembling source, carrying the
// position participle reports so a caller (CLI, LSP) can point at it.
type AssembleError struct {
	Pos     ir.Position
	Message string
}

func (e AssembleError) Error() string { return e.Pos.String() + ": " + e.Message }

// opKind groups opcode mnemonics by how many operands they take and which
// instruction fields those operands bind to. Grounded on opcodes.go's
// opcode table — only opcodes simplify.go's dispatcher actually switches on
// get an entry here.
type opKind int

const (
	kindBinary opKind = iota
	kindUnary
	kindSelect
	kindLoad
	kindSymaddr
	kindCast
	kindRange
)

var opTable = map[string]struct {
	op   ir.Opcode
	kind opKind
}{
	"add": {ir.OpAdd, kindBinary}, "sub": {ir.OpSub, kindBinary},
	"mul": {ir.OpMul, kindBinary}, "divu": {ir.OpDivu, kindBinary},
	"divs": {ir.OpDivs, kindBinary}, "modu": {ir.OpModu, kindBinary},
	"mods": {ir.OpMods, kindBinary}, "shl": {ir.OpShl, kindBinary},
	"lsr": {ir.OpLsr, kindBinary}, "asr": {ir.OpAsr, kindBinary},
	"and": {ir.OpAnd, kindBinary}, "or": {ir.OpOr, kindBinary},
	"xor": {ir.OpXor, kindBinary}, "and_bool": {ir.OpAndBool, kindBinary},
	"or_bool": {ir.OpOrBool, kindBinary},
	"set_eq":  {ir.OpSetEQ, kindBinary}, "set_ne": {ir.OpSetNE, kindBinary},
	"set_le": {ir.OpSetLE, kindBinary}, "set_ge": {ir.OpSetGE, kindBinary},
	"set_lt": {ir.OpSetLT, kindBinary}, "set_gt": {ir.OpSetGT, kindBinary},
	"set_b": {ir.OpSetB, kindBinary}, "set_a": {ir.OpSetA, kindBinary},
	"set_be": {ir.OpSetBE, kindBinary}, "set_ae": {ir.OpSetAE, kindBinary},
	"not": {ir.OpNot, kindUnary}, "neg": {ir.OpNeg, kindUnary},
	"sel":     {ir.OpSel, kindSelect},
	"load":    {ir.OpLoad, kindLoad},
	"symaddr": {ir.OpSymaddr, kindSymaddr},
	"cast":    {ir.OpCast, kindCast},
	"scast":   {ir.OpSCast, kindCast},
	"range":   {ir.OpRange, kindRange},
}

// assembler holds the per-function state needed while resolving names to
// pseudos: one arena-backed Context plus a name table shared by every block
// since labels and register names are scoped to the whole function.
type assembler struct {
	ctx    *ir.Context
	regs   map[string]*Pseudo
	blocks map[string]*ir.BasicBlock
	errs   []AssembleError
}

// Pseudo aliases ir.Pseudo; kept as a local name so assembler's field reads
// naturally alongside regs/blocks below.
type Pseudo = ir.Pseudo

// Assemble parses src as one function and builds an ir.Entrypoint with
// every block linked and every operand bound through internal/ir's use-list
// primitives, the same shape a real linearizer would hand the simplifier.
func Assemble(ctx *ir.Context, src string) (*ir.Entrypoint, []AssembleError) {
	file, err := parser.ParseString("", src)
	if err != nil {
		if pe, ok := err.(participle.Error); ok {
			pos := pe.Position()
			return nil, []AssembleError{{
				Pos:     ir.Position{File: pos.Filename, Line: pos.Line, Column: pos.Column},
				Message: pe.Message(),
			}}
		}
		return nil, []AssembleError{{Message: err.Error()}}
	}

	a := &assembler{ctx: ctx, regs: map[string]*Pseudo{}, blocks: map[string]*ir.BasicBlock{}}
	return a.assembleFunction(file.Fn)
}

func (a *assembler) fail(msg string, args ...any) {
	a.errs = append(a.errs, AssembleError{Message: fmt.Sprintf(msg, args...)})
}

func (a *assembler) assembleFunction(fn *Function) (*ir.Entrypoint, []AssembleError) {
	ep := &ir.Entrypoint{Name: fn.Name}

	for _, p := range fn.Params {
		arg := a.ctx.NewPseudo(ir.PseudoArg)
		arg.Name = p.Name
		arg.Bits = p.Bits
		a.regs[p.Name] = arg
	}

	for i, b := range fn.Blocks {
		bb := &ir.BasicBlock{Label: b.Label}
		a.blocks[b.Label] = bb
		ep.Blocks = append(ep.Blocks, bb)
		if i == 0 {
			entry := a.ctx.NewInstruction(ir.OpEntry)
			entry.Bb = bb
			bb.Insns = append(bb.Insns, entry)
			ep.Entry = entry
		}
	}
	if len(a.errs) > 0 {
		return nil, a.errs
	}

	// Pre-register every instruction's target so forward references (a phi
	// merging a value defined later in program order within the same
	// function) resolve the way a real linearizer's single-pass builder
	// never has to, since here the whole function is available up front.
	for _, b := range fn.Blocks {
		for _, insn := range b.Insns {
			if name := targetName(insn); name != "" {
				if _, exists := a.regs[name]; exists {
					a.fail("%s: register %%%s redefined", b.Label, name)
					continue
				}
				a.regs[name] = a.ctx.NewPseudo(ir.PseudoReg)
			}
		}
	}

	for _, b := range fn.Blocks {
		bb := a.blocks[b.Label]
		for _, insn := range b.Insns {
			a.assembleInsn(bb, insn)
		}
	}

	for _, b := range fn.Blocks {
		bb := a.blocks[b.Label]
		for _, child := range a.successors(b) {
			linkBlock(bb, child)
		}
	}

	if len(a.errs) > 0 {
		return nil, a.errs
	}
	return ep, nil
}

func targetName(insn *Instruction) string {
	switch {
	case insn.Phi != nil:
		return insn.Phi.Target
	case insn.Op != nil:
		return insn.Op.Target
	default:
		return ""
	}
}

func linkBlock(bb, child *ir.BasicBlock) {
	for _, c := range bb.Children {
		if c == child {
			return
		}
	}
	bb.Children = append(bb.Children, child)
	child.Parents = append(child.Parents, bb)
}

// successors returns the blocks bb's terminator (if any) jumps to, so the
// function-level link pass above can wire Children/Parents uniformly after
// every block's instructions exist.
func (a *assembler) successors(b *Block) []*ir.BasicBlock {
	if len(b.Insns) == 0 {
		return nil
	}
	last := b.Insns[len(b.Insns)-1]
	switch {
	case last.Br != nil:
		return []*ir.BasicBlock{a.block(last.Br.Target)}
	case last.Cbr != nil:
		return []*ir.BasicBlock{a.block(last.Cbr.BbTrue), a.block(last.Cbr.BbFalse)}
	case last.Switch != nil:
		var out []*ir.BasicBlock
		for _, c := range last.Switch.Cases {
			out = append(out, a.block(c.Target))
		}
		return append(out, a.block(last.Switch.Default))
	default:
		return nil
	}
}

func (a *assembler) block(label string) *ir.BasicBlock {
	bb, ok := a.blocks[label]
	if !ok {
		a.fail("reference to undefined block %q", label)
	}
	return bb
}

func (a *assembler) resolve(op *Operand) *Pseudo {
	switch {
	case op.Name != nil:
		p, ok := a.regs[*op.Name]
		if !ok {
			a.fail("reference to undefined register %%%s", *op.Name)
			return ir.Void
		}
		return p
	case op.Val != nil:
		return a.ctx.NewValue(*op.Val)
	case op.Sym != nil:
		sym := a.ctx.NewPseudo(ir.PseudoSym)
		sym.Sym = *op.Sym
		return sym
	default:
		a.fail("expected an operand")
		return ir.Void
	}
}

func (a *assembler) assembleInsn(bb *ir.BasicBlock, insn *Instruction) {
	switch {
	case insn.Ret != nil:
		i := a.ctx.NewInstruction(ir.OpRet)
		i.Size = insn.Ret.Bits
		if insn.Ret.Src != nil {
			bindOperand(a, i, &i.Src1, insn.Ret.Src)
		}
		emitInsn(bb, i)

	case insn.Br != nil:
		i := a.ctx.NewInstruction(ir.OpBr)
		i.BbTrue = a.block(insn.Br.Target)
		emitInsn(bb, i)

	case insn.Cbr != nil:
		i := a.ctx.NewInstruction(ir.OpCbr)
		bindOperand(a, i, &i.Cond, insn.Cbr.Cond)
		i.BbTrue = a.block(insn.Cbr.BbTrue)
		i.BbFalse = a.block(insn.Cbr.BbFalse)
		emitInsn(bb, i)

	case insn.Switch != nil:
		i := a.ctx.NewInstruction(ir.OpSwitch)
		bindOperand(a, i, &i.Cond, insn.Switch.Cond)
		for _, c := range insn.Switch.Cases {
			i.MultiJmp = append(i.MultiJmp, &ir.MultiJmp{Target: a.block(c.Target), Begin: c.Begin, End: c.End})
		}
		i.MultiJmp = append(i.MultiJmp, &ir.MultiJmp{Target: a.block(insn.Switch.Default), Begin: 1, End: 0})
		emitInsn(bb, i)

	case insn.Store != nil:
		i := a.ctx.NewInstruction(ir.OpStore)
		i.Size = insn.Store.Bits
		i.Type = &ir.Type{Bits: insn.Store.Bits}
		bindOperand(a, i, &i.Target, insn.Store.Val)
		a.bindMem(i, insn.Store.Addr)
		emitInsn(bb, i)

	case insn.Phi != nil:
		a.assemblePhi(bb, insn.Phi)

	case insn.Op != nil:
		a.assembleOp(bb, insn.Op)
	}
}

// emitInsn appends insn to bb and marks it live, the same bookkeeping
// internal/ir's own test helpers perform after building an instruction.
func emitInsn(bb *ir.BasicBlock, insn *ir.Instruction) {
	insn.Bb = bb
	bb.Insns = append(bb.Insns, insn)
}

// bindOperand resolves op and binds it into slot, wiring the use list the
// way internal/ir's own bind would for a linearizer-built instruction.
func bindOperand(a *assembler, insn *ir.Instruction, slot **ir.Pseudo, op *Operand) {
	if op.Mem != nil {
		a.fail("a memory reference is not valid here")
		return
	}
	p := a.resolve(op)
	ir.Bind(insn, p, slot)
}

func (a *assembler) bindMem(insn *ir.Instruction, m *MemRef) {
	base, ok := a.regs[m.Base]
	if !ok {
		a.fail("reference to undefined register %%%s", m.Base)
		base = ir.Void
	}
	ir.Bind(insn, base, &insn.Src1)
	if m.Sign == "-" {
		insn.Offset = -m.Offset
	} else {
		insn.Offset = m.Offset
	}
}

func (a *assembler) target(name string) *ir.Pseudo {
	p, ok := a.regs[name]
	if !ok {
		a.fail("internal: target %%%s was not pre-registered", name)
		return ir.Void
	}
	return p
}

func (a *assembler) assembleOp(bb *ir.BasicBlock, op *OpInsn) {
	entry, ok := opTable[op.Op]
	if !ok {
		a.fail("unknown opcode %q", op.Op)
		return
	}

	insn := a.ctx.NewInstruction(entry.op)
	insn.Size = op.Bits
	insn.Type = &ir.Type{Bits: op.Bits}
	insn.Target = a.target(op.Target)
	if insn.Target == ir.Void {
		return
	}
	insn.Target.Def = insn

	switch entry.kind {
	case kindBinary:
		if len(op.Args) != 2 {
			a.fail("%s expects two operands", op.Op)
			return
		}
		bindOperand(a, insn, &insn.Src1, op.Args[0])
		bindOperand(a, insn, &insn.Src2, op.Args[1])

	case kindUnary:
		if len(op.Args) != 1 {
			a.fail("%s expects one operand", op.Op)
			return
		}
		bindOperand(a, insn, &insn.Src1, op.Args[0])

	case kindSelect:
		if len(op.Args) != 3 {
			a.fail("sel expects three operands")
			return
		}
		bindOperand(a, insn, &insn.Src1, op.Args[0])
		bindOperand(a, insn, &insn.Src2, op.Args[1])
		bindOperand(a, insn, &insn.Src3, op.Args[2])

	case kindRange:
		if len(op.Args) != 3 {
			a.fail("range expects value and two bounds")
			return
		}
		bindOperand(a, insn, &insn.Src1, op.Args[0])
		bindOperand(a, insn, &insn.Src2, op.Args[1])
		bindOperand(a, insn, &insn.Src3, op.Args[2])

	case kindLoad:
		if len(op.Args) != 1 || op.Args[0].Mem == nil {
			a.fail("load expects a memory reference")
			return
		}
		a.bindMem(insn, op.Args[0].Mem)

	case kindSymaddr:
		if len(op.Args) != 1 || op.Args[0].Sym == nil {
			a.fail("symaddr expects a symbol reference")
			return
		}
		sym := a.resolve(op.Args[0])
		ir.Bind(insn, sym, &insn.Symbol)

	case kindCast:
		if len(op.Args) != 1 {
			a.fail("%s expects one operand", op.Op)
			return
		}
		if op.Attr == nil {
			a.fail("%s requires an orig-size/signedness suffix (e.g. .s16)", op.Op)
			return
		}
		orig, signed, err := parseSizeSign(*op.Attr)
		if err != nil {
			a.fail("%s: %s", op.Op, err)
			return
		}
		insn.OrigType = &ir.Type{Bits: orig, Signed: signed}
		bindOperand(a, insn, &insn.Src1, op.Args[0])
	}

	emitInsn(bb, insn)
}

// parseSizeSign splits a SizeSign token ("s16"/"u8") into its bit width and
// signedness.
func parseSizeSign(s string) (bits int, signed bool, err error) {
	if s == "" {
		return 0, false, fmt.Errorf("empty size/sign suffix")
	}
	signed = s[0] == 's'
	n, err := strconv.Atoi(s[1:])
	if err != nil {
		return 0, false, fmt.Errorf("invalid width %q", s[1:])
	}
	return n, signed, nil
}

// assemblePhi expands a merged phi line into an OP_PHI in bb plus one
// OP_PHI_SOURCE per entry, spliced into the named predecessor block right
// before its terminator — the shape internal/ir's phi.go expects to find,
// hidden behind the text format's more compact merged syntax.
func (a *assembler) assemblePhi(bb *ir.BasicBlock, phi *PhiInsn) {
	insn := a.ctx.NewInstruction(ir.OpPhi)
	insn.Size = phi.Bits
	insn.Type = &ir.Type{Bits: phi.Bits}
	insn.Target = a.target(phi.Target)
	if insn.Target == ir.Void {
		return
	}
	insn.Target.Def = insn

	insn.PhiList = make([]*Pseudo, 0, len(phi.Sources))
	for _, src := range phi.Sources {
		pred, ok := a.blocks[src.Block]
		if !ok {
			a.fail("phi references undefined block %q", src.Block)
			continue
		}
		val := a.resolve(src.Value)

		srcInsn := a.ctx.NewInstruction(ir.OpPhiSource)
		srcTarget := a.ctx.NewPseudo(ir.PseudoPhi)
		srcInsn.Target = srcTarget
		srcTarget.Def = srcInsn
		ir.Bind(srcInsn, val, &srcInsn.PhiSrc)
		insertBeforeTerminator(pred, srcInsn)

		insn.PhiList = append(insn.PhiList, nil)
		ir.Bind(insn, srcTarget, &insn.PhiList[len(insn.PhiList)-1])
	}

	emitInsn(bb, insn)
}

// insertBeforeTerminator splices insn into bb just before its last
// instruction (which, for every reachable block but the one under
// construction, is already a terminator).
func insertBeforeTerminator(bb *ir.BasicBlock, insn *ir.Instruction) {
	insn.Bb = bb
	if len(bb.Insns) == 0 {
		bb.Insns = append(bb.Insns, insn)
		return
	}
	last := len(bb.Insns) - 1
	bb.Insns = append(bb.Insns, nil)
	copy(bb.Insns[last+1:], bb.Insns[last:])
	bb.Insns[last] = insn
}
