package ir

// This file implements §4.2 Instruction kill, grounded on simplify.c's
// kill_insn: drop an instruction's hold on every operand it uses and mark it
// dead by clearing Bb, or refuse and leave it untouched.

// Kill removes insn from its block's live set by unbinding every operand
// slot it owns, then clearing Bb. Some opcodes refuse unless force is set
// (a load/store may have a side effect the caller hasn't proven absent; a
// call may not be provably pure). Entry is never killable. Returns
// RepeatCSE on success, PhaseNone on refusal or if insn is already dead.
func Kill(ctx *Context, insn *Instruction, force bool) PhaseMask {
	if insn == nil || insn.Bb == nil {
		return PhaseNone
	}

	switch insn.Op {
	case OpSel, OpRange:
		killUse(ctx, &insn.Src3)
		killUse(ctx, &insn.Src2)
		killUse(ctx, &insn.Src1)

	case OpAdd, OpSub, OpMul, OpDivu, OpDivs, OpModu, OpMods,
		OpShl, OpLsr, OpAsr, OpAnd, OpOr, OpXor, OpAndBool, OpOrBool,
		OpSetEQ, OpSetNE, OpSetLE, OpSetGE, OpSetLT, OpSetGT,
		OpSetB, OpSetA, OpSetBE, OpSetAE:
		killUse(ctx, &insn.Src2)
		killUse(ctx, &insn.Src1)

	case OpNot, OpNeg, OpSlice, OpCast, OpSCast, OpFPCast, OpPtrCast:
		killUse(ctx, &insn.Src1)

	case OpPhi:
		killUseList(ctx, insn.PhiList)

	case OpPhiSource:
		killUse(ctx, &insn.PhiSrc)

	case OpSetval:
		// Aliases OpSymaddr's Symbol field in the original's union; unlike
		// OpSymaddr below, OP_SETVAL's fallthrough group does unbind it.
		killUse(ctx, &insn.Symbol)

	case OpSymaddr:
		// The original leaves this SYM use for the (external) symbol-table
		// cleanup pass rather than unbinding it here; only the repeat flag
		// is raised.
		ctx.requestRepeat(RepeatSymbolCleanup)

	case OpCall:
		if !force && !isPureCall(insn) {
			return PhaseNone
		}
		for i := range insn.Args {
			killUse(ctx, &insn.Args[i])
		}
		if insn.Func != nil && insn.Func.Kind == PseudoReg {
			killUse(ctx, &insn.Func)
		}

	case OpLoad:
		if insn.Type.isVolatile() && !force {
			return PhaseNone
		}
		killUse(ctx, &insn.Src1)

	case OpStore:
		if !force {
			return PhaseNone
		}
		killUse(ctx, &insn.Src1)
		killUse(ctx, &insn.Target)

	case OpEntry:
		return PhaseNone

	case OpCbr, OpComputedGoto:
		killUse(ctx, &insn.Cond)

	default:
		// ret/br/switch/nop carry no killable operand slots of their own.
	}

	insn.Bb = nil
	ctx.requestRepeat(RepeatCSE)
	return RepeatCSE
}

// isPureCall reports whether insn's callee is a symbol marked pure — a call
// with no observable side effect, and therefore killable when its result is
// unused even without force.
func isPureCall(insn *Instruction) bool {
	if insn.Func == nil || insn.Func.Kind != PseudoSym {
		return false
	}
	return insn.Type.Pure
}

// deadInsn kills insn and the given operand slots if insn's result has no
// users, reporting whether it did so. Grounded on simplify.c's dead_insn,
// the trivial-DCE check every peephole rewriter runs first.
func deadInsn(ctx *Context, insn *Instruction, slots ...**Pseudo) bool {
	if HasUsers(insn.Target) {
		return false
	}
	insn.Bb = nil
	for _, s := range slots {
		if s != nil {
			killUse(ctx, s)
		}
	}
	ctx.requestRepeat(RepeatCSE)
	return true
}

// replaceWithPseudo retargets every user of insn's result onto pseudo, drops
// insn's own operand uses, and marks it dead. Grounded on simplify.c's
// replace_with_pseudo; unlike Kill it unconditionally proceeds (the caller
// has already established insn's result is being subsumed, not merely
// unused), and it covers exactly the value-producing opcodes replace calls
// are ever made against.
func replaceWithPseudo(ctx *Context, insn *Instruction, pseudo *Pseudo) PhaseMask {
	convertInstructionTarget(insn, pseudo)

	switch insn.Op {
	case OpSel, OpRange:
		killUse(ctx, &insn.Src3)
		killUse(ctx, &insn.Src2)
		killUse(ctx, &insn.Src1)

	case OpAdd, OpSub, OpMul, OpDivu, OpDivs, OpModu, OpMods,
		OpShl, OpLsr, OpAsr, OpAnd, OpOr, OpXor, OpAndBool, OpOrBool,
		OpSetEQ, OpSetNE, OpSetLE, OpSetGE, OpSetLT, OpSetGT,
		OpSetB, OpSetA, OpSetBE, OpSetAE:
		killUse(ctx, &insn.Src2)
		killUse(ctx, &insn.Src1)

	case OpNot, OpNeg, OpCast, OpSCast, OpFPCast, OpPtrCast:
		killUse(ctx, &insn.Src1)

	case OpSymaddr:
		killUse(ctx, &insn.Symbol)

	case OpLoad:
		killUse(ctx, &insn.Src1)

	default:
		panic("ir: replaceWithPseudo called on an opcode it doesn't cover: " + insn.Op.String())
	}

	insn.Bb = nil
	ctx.requestRepeat(RepeatCSE)
	return RepeatCSE
}
