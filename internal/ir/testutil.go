package ir

// Construction helpers shared by this package's tests: small, composable
// builders for pseudos, instructions and blocks that wire use-lists through
// bind the same way a real IR builder would, rather than poking struct
// fields directly and risking an invariant violation the tests don't mean
// to exercise.

func newTestContext() *Context {
	return &Context{}
}

func newBlock(label string) *BasicBlock {
	return &BasicBlock{Label: label}
}

func linkBlocks(parent, child *BasicBlock) {
	parent.Children = append(parent.Children, child)
	child.Parents = append(child.Parents, parent)
}

// emit appends insn to bb, sets its Bb back-pointer, and (if it has a
// target) points the target pseudo's Def at it.
func emit(bb *BasicBlock, insn *Instruction) *Instruction {
	insn.Bb = bb
	bb.Insns = append(bb.Insns, insn)
	if insn.Target != nil {
		insn.Target.Def = insn
	}
	return insn
}

// newReg allocates a REG pseudo with no defining instruction yet (the
// caller is expected to set p.Def once the defining instruction exists, or
// use newBinop/newUnop/etc. which does it for you).
func newReg(ctx *Context) *Pseudo {
	return ctx.NewPseudo(PseudoReg)
}

func newArg(ctx *Context, name string) *Pseudo {
	p := ctx.NewPseudo(PseudoArg)
	p.Name = name
	return p
}

func newSym(ctx *Context, name string) *Pseudo {
	p := ctx.NewPseudo(PseudoSym)
	p.Sym = name
	return p
}

// newBinop builds and binds a binary/compare instruction in bb, returning
// both the instruction and its fresh target pseudo.
func newBinop(ctx *Context, bb *BasicBlock, op Opcode, size int, src1, src2 *Pseudo) (*Instruction, *Pseudo) {
	insn := ctx.NewInstruction(op)
	insn.Size = size
	insn.Type = &Type{Bits: size}
	target := newReg(ctx)
	insn.Target = target
	bind(insn, src1, &insn.Src1)
	bind(insn, src2, &insn.Src2)
	emit(bb, insn)
	return insn, target
}

func newUnop(ctx *Context, bb *BasicBlock, op Opcode, size int, src1 *Pseudo) (*Instruction, *Pseudo) {
	insn := ctx.NewInstruction(op)
	insn.Size = size
	insn.Type = &Type{Bits: size}
	target := newReg(ctx)
	insn.Target = target
	bind(insn, src1, &insn.Src1)
	emit(bb, insn)
	return insn, target
}

// newConsumer adds a no-op-shaped consuming instruction so src's use list
// isn't empty (a dead_insn check on src's def would otherwise fire), e.g. to
// test an intermediate fold without the whole expression vanishing as dead
// code underneath it.
func newConsumer(ctx *Context, bb *BasicBlock, src *Pseudo) *Instruction {
	insn := ctx.NewInstruction(OpNot)
	insn.Size = 32
	insn.Type = &Type{Bits: 32}
	target := newReg(ctx)
	insn.Target = target
	bind(insn, src, &insn.Src1)
	emit(bb, insn)
	return insn
}
