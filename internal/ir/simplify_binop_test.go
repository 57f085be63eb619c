package ir

import "testing"

func TestSimplifyBinopDeadInstructionIsKilled(t *testing.T) {
	ctx := newTestContext()
	bb := newBlock("bb0")
	a, b := newReg(ctx), newReg(ctx)
	insn, _ := newBinop(ctx, bb, OpAdd, 32, a, b)
	// No consumer: insn.Target has no users, so it's dead on arrival.

	m := simplifyBinop(ctx, insn)
	if m != RepeatCSE {
		t.Fatalf("expected RepeatCSE, got %v", m)
	}
	if insn.Bb != nil {
		t.Fatal("dead binop should be killed")
	}
}

func TestSimplifyConstantBinopFolds(t *testing.T) {
	ctx := newTestContext()
	bb := newBlock("bb0")
	insn, target := newBinop(ctx, bb, OpAdd, 32, ctx.NewValue(2), ctx.NewValue(3))
	consumer := newConsumer(ctx, bb, target)

	m := simplifyBinop(ctx, insn)
	if m != RepeatCSE {
		t.Fatalf("expected RepeatCSE, got %v", m)
	}
	if consumer.Src1.Kind != PseudoVal || consumer.Src1.Value != 5 {
		t.Fatalf("2+3 should fold to the constant 5, got %v", consumer.Src1)
	}
}

func TestSimplifyConstantRightsideAddZeroIsIdentity(t *testing.T) {
	ctx := newTestContext()
	bb := newBlock("bb0")
	reg := newReg(ctx)
	insn, target := newBinop(ctx, bb, OpAdd, 32, reg, ctx.NewValue(0))
	consumer := newConsumer(ctx, bb, target)

	simplifyBinop(ctx, insn)

	if consumer.Src1 != reg {
		t.Fatalf("x+0 should collapse to x, got %v", consumer.Src1)
	}
}

func TestSimplifyConstantRightsideSubBecomesAdd(t *testing.T) {
	ctx := newTestContext()
	bb := newBlock("bb0")
	reg := newReg(ctx)
	insn, target := newBinop(ctx, bb, OpSub, 32, reg, ctx.NewValue(5))
	newConsumer(ctx, bb, target)

	simplifyBinop(ctx, insn)

	if insn.Op != OpAdd {
		t.Fatalf("x-5 should become x+(-5), opcode is %v", insn.Op)
	}
	if insn.Src2.Kind != PseudoVal || insn.Src2.Value != -5 {
		t.Fatalf("new rightside should be constant -5, got %v", insn.Src2)
	}
}

func TestSimplifyMulByZero(t *testing.T) {
	ctx := newTestContext()
	bb := newBlock("bb0")
	reg := newReg(ctx)
	insn, target := newBinop(ctx, bb, OpMul, 32, reg, ctx.NewValue(0))
	consumer := newConsumer(ctx, bb, target)

	simplifyBinop(ctx, insn)

	if !IsZero(consumer.Src1) {
		t.Fatalf("x*0 should collapse to 0, got %v", consumer.Src1)
	}
}

func TestSimplifyDivideByNegativeOneBecomesNeg(t *testing.T) {
	ctx := newTestContext()
	bb := newBlock("bb0")
	reg := newReg(ctx)
	insn, _ := newBinop(ctx, bb, OpDivs, 32, reg, ctx.NewValue(-1))
	newConsumer(ctx, bb, insn.Target)

	simplifyBinop(ctx, insn)

	if insn.Op != OpNeg {
		t.Fatalf("x/-1 should become neg(x), got %v", insn.Op)
	}
}

func TestSimplifyBinopSameArgsSubIsZero(t *testing.T) {
	ctx := newTestContext()
	bb := newBlock("bb0")
	reg := newReg(ctx)
	insn, target := newBinop(ctx, bb, OpSub, 32, reg, reg)
	consumer := newConsumer(ctx, bb, target)

	simplifyBinop(ctx, insn)

	if !IsZero(consumer.Src1) {
		t.Fatalf("x-x should collapse to 0, got %v", consumer.Src1)
	}
}

func TestSimplifyBinopSameArgsAndIsIdentity(t *testing.T) {
	ctx := newTestContext()
	bb := newBlock("bb0")
	reg := newReg(ctx)
	insn, target := newBinop(ctx, bb, OpAnd, 32, reg, reg)
	consumer := newConsumer(ctx, bb, target)

	simplifyBinop(ctx, insn)

	if consumer.Src1 != reg {
		t.Fatalf("x&x should collapse to x, got %v", consumer.Src1)
	}
}

func TestSimplifyAssociativeBinopReordersConstants(t *testing.T) {
	ctx := newTestContext()
	bb := newBlock("bb0")
	reg := newReg(ctx)

	inner, innerTarget := newBinop(ctx, bb, OpAdd, 32, reg, ctx.NewValue(2))
	outer, outerTarget := newBinop(ctx, bb, OpAdd, 32, innerTarget, ctx.NewValue(3))
	newConsumer(ctx, bb, outerTarget)

	// inner's target has exactly one user (outer), required for the reorder.
	m := simplifyAssociativeBinop(ctx, outer)
	if m != RepeatCSE {
		t.Fatalf("expected RepeatCSE, got %v", m)
	}
	if inner.Src1.Kind != PseudoVal || inner.Src2.Kind != PseudoVal {
		t.Fatalf("inner should now hold both constants, got src1=%v src2=%v", inner.Src1, inner.Src2)
	}
	if outer.Src2 != reg {
		t.Fatalf("outer should now hold the register operand, got %v", outer.Src2)
	}
}
