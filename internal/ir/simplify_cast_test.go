package ir

import "testing"

func newCast(ctx *Context, bb *BasicBlock, op Opcode, origType *Type, newSize int, newType *Type, src *Pseudo) (*Instruction, *Pseudo) {
	insn := ctx.NewInstruction(op)
	insn.Size = newSize
	insn.Type = newType
	insn.OrigType = origType
	target := newReg(ctx)
	insn.Target = target
	bind(insn, src, &insn.Src1)
	emit(bb, insn)
	return insn, target
}

func TestSimplifyCastConstantFold(t *testing.T) {
	ctx := newTestContext()
	bb := newBlock("bb0")
	// A 64-bit-wide target keeps the folded value's int64 representation
	// exactly equal to the signed value it stands for (narrower widths store
	// the bit pattern unsign-extended, e.g. -1 at 32 bits is 4294967295).
	origType := &Type{Bits: 8, Signed: true}
	newType := &Type{Bits: 64, Signed: true}
	insn, target := newCast(ctx, bb, OpSCast, origType, 64, newType, ctx.NewValue(int64(int8(-1))))
	consumer := newConsumer(ctx, bb, target)

	simplifyCast(ctx, insn)

	if consumer.Src1.Kind != PseudoVal || consumer.Src1.Value != -1 {
		t.Fatalf("sign-extending cast of -1 should fold to -1, got %v", consumer.Src1)
	}
}

func TestSimplifyCastSameSizeSameSignRedundant(t *testing.T) {
	ctx := newTestContext()
	bb := newBlock("bb0")
	reg := newReg(ctx)
	origType := &Type{Bits: 32, Signed: false}
	newType := &Type{Bits: 32, Signed: false}
	insn, target := newCast(ctx, bb, OpCast, origType, 32, newType, reg)
	consumer := newConsumer(ctx, bb, target)

	simplifyCast(ctx, insn)

	if consumer.Src1 != reg {
		t.Fatalf("same-size same-signedness cast should collapse to its source, got %v", consumer.Src1)
	}
}

func TestSimplifyCastPointerBailsOut(t *testing.T) {
	ctx := newTestContext()
	bb := newBlock("bb0")
	reg := newReg(ctx)
	origType := &Type{Bits: 64, Pointer: true}
	newType := &Type{Bits: 64, Pointer: true}
	insn, _ := newCast(ctx, bb, OpPtrCast, origType, 64, newType, reg)
	newConsumer(ctx, bb, insn.Target)

	if m := simplifyCast(ctx, insn); m != PhaseNone {
		t.Fatal("a cast between pointer types should never be simplified here")
	}
}

func TestSimplifyCastOfMaskedAndIsRedundant(t *testing.T) {
	ctx := newTestContext()
	bb := newBlock("bb0")
	reg := newReg(ctx)
	// The mask's top bit (bit size-1) must be provably 0, or the cast could
	// still matter for sign interpretation; 0x7f qualifies at size 8, 0xff
	// would not.
	andInsn, andTarget := newBinop(ctx, bb, OpAnd, 32, reg, ctx.NewValue(0x7f))
	origType := &Type{Bits: 32, Signed: false}
	newType := &Type{Bits: 8, Signed: false}
	cast, castTarget := newCast(ctx, bb, OpCast, origType, 8, newType, andTarget)
	consumer := newConsumer(ctx, bb, castTarget)
	_ = andInsn

	simplifyCast(ctx, cast)

	if consumer.Src1 != andTarget {
		t.Fatalf("cast(and(x,0x7f), 8) should collapse to the and's result, got %v", consumer.Src1)
	}
}
