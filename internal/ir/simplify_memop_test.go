package ir

import "testing"

func newLoad(ctx *Context, bb *BasicBlock, addr *Pseudo, offset int64) (*Instruction, *Pseudo) {
	insn := ctx.NewInstruction(OpLoad)
	insn.Size = 32
	insn.Type = &Type{Bits: 32}
	insn.Offset = offset
	target := newReg(ctx)
	insn.Target = target
	bind(insn, addr, &insn.Src1)
	emit(bb, insn)
	return insn, target
}

func newSymaddr(ctx *Context, bb *BasicBlock, sym *Pseudo) (*Instruction, *Pseudo) {
	insn := ctx.NewInstruction(OpSymaddr)
	insn.Size = 64
	insn.Type = &Type{Bits: 64, Pointer: true}
	target := newReg(ctx)
	insn.Target = target
	bind(insn, sym, &insn.Symbol)
	emit(bb, insn)
	return insn, target
}

func TestSimplifyMemopFoldsSymaddr(t *testing.T) {
	ctx := newTestContext()
	bb := newBlock("bb0")
	sym := newSym(ctx, "g")
	_, addr := newSymaddr(ctx, bb, sym)
	load, loadTarget := newLoad(ctx, bb, addr, 0)
	consumer := newConsumer(ctx, bb, loadTarget)
	_ = consumer

	m := simplifyMemop(ctx, load)
	if m == PhaseNone {
		t.Fatal("expected some progress folding symaddr into the load's address")
	}
	if load.Src1 != sym {
		t.Fatalf("load should now address the symbol directly, got %v", load.Src1)
	}
}

func TestSimplifyMemopAbsorbsConstantOffset(t *testing.T) {
	ctx := newTestContext()
	bb := newBlock("bb0")
	base := newReg(ctx)
	addInsn, addTarget := newBinop(ctx, bb, OpAdd, 64, base, ctx.NewValue(16))
	load, loadTarget := newLoad(ctx, bb, addTarget, 0)
	newConsumer(ctx, bb, loadTarget)
	_ = addInsn

	simplifyMemop(ctx, load)

	if load.Src1 != base {
		t.Fatalf("load's address should now be the base register, got %v", load.Src1)
	}
	if load.Offset != 16 {
		t.Fatalf("load's offset should have absorbed the constant 16, got %d", load.Offset)
	}
}
