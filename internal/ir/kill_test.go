package ir

import "testing"

func TestKillBinopUnbindsBothOperands(t *testing.T) {
	ctx := newTestContext()
	bb := newBlock("bb0")
	a, b := newReg(ctx), newReg(ctx)
	insn, _ := newBinop(ctx, bb, OpAdd, 32, a, b)

	m := Kill(ctx, insn, false)
	if m != RepeatCSE {
		t.Fatalf("expected RepeatCSE, got %v", m)
	}
	if insn.Bb != nil {
		t.Fatal("killed instruction must have Bb cleared")
	}
	if len(a.Users) != 0 || len(b.Users) != 0 {
		t.Fatal("both operands should have lost their use-list entry")
	}
}

func TestKillAlreadyDeadIsNoop(t *testing.T) {
	ctx := newTestContext()
	bb := newBlock("bb0")
	a, b := newReg(ctx), newReg(ctx)
	insn, _ := newBinop(ctx, bb, OpAdd, 32, a, b)
	Kill(ctx, insn, false)

	m := Kill(ctx, insn, false)
	if m != PhaseNone {
		t.Fatalf("killing a dead instruction twice should be a no-op, got %v", m)
	}
}

func TestKillEntryRefuses(t *testing.T) {
	ctx := newTestContext()
	bb := newBlock("bb0")
	insn := ctx.NewInstruction(OpEntry)
	emit(bb, insn)

	m := Kill(ctx, insn, true)
	if m != PhaseNone {
		t.Fatal("OP_ENTRY must never be killable")
	}
	if insn.Bb == nil {
		t.Fatal("refused kill must leave the instruction live")
	}
}

func TestKillVolatileLoadRefusesWithoutForce(t *testing.T) {
	ctx := newTestContext()
	bb := newBlock("bb0")
	addr := newReg(ctx)

	insn := ctx.NewInstruction(OpLoad)
	insn.Size = 32
	insn.Type = &Type{Bits: 32, Volatile: true}
	target := newReg(ctx)
	insn.Target = target
	bind(insn, addr, &insn.Src1)
	emit(bb, insn)

	if m := Kill(ctx, insn, false); m != PhaseNone {
		t.Fatal("a volatile load must refuse a non-forced kill")
	}
	if m := Kill(ctx, insn, true); m != RepeatCSE {
		t.Fatal("a forced kill must succeed even on a volatile load")
	}
}

func TestKillStoreRequiresForce(t *testing.T) {
	ctx := newTestContext()
	bb := newBlock("bb0")
	addr := newReg(ctx)
	val := ctx.NewValue(1)

	insn := ctx.NewInstruction(OpStore)
	insn.Size = 32
	insn.Type = &Type{Bits: 32}
	bind(insn, addr, &insn.Src1)
	bind(insn, val, &insn.Target) // OP_STORE's Target field holds the stored value
	emit(bb, insn)

	if m := Kill(ctx, insn, false); m != PhaseNone {
		t.Fatal("a store must refuse a non-forced kill")
	}
	if m := Kill(ctx, insn, true); m != RepeatCSE {
		t.Fatal("a forced kill must drop a store")
	}
	if len(addr.Users) != 0 {
		t.Fatal("forced store kill should release its address operand")
	}
}

func TestReplaceWithPseudoRetargetsUsers(t *testing.T) {
	ctx := newTestContext()
	bb := newBlock("bb0")
	a, b := newReg(ctx), newReg(ctx)
	insn, target := newBinop(ctx, bb, OpAdd, 32, a, b)
	consumer, _ := newUnop(ctx, bb, OpNot, 32, target)

	replaceWithPseudo(ctx, insn, ctx.NewValue(9))

	if consumer.Src1.Kind != PseudoVal || consumer.Src1.Value != 9 {
		t.Fatalf("consumer should now read the constant, got %v", consumer.Src1)
	}
	if insn.Bb != nil {
		t.Fatal("replaced instruction should be dead")
	}
	if len(a.Users) != 0 || len(b.Users) != 0 {
		t.Fatal("replaced instruction's own operands should be released")
	}
}
