package ir

// SimplifyInstruction is the per-opcode dispatcher: one call tries every
// rewrite rule applicable to insn's opcode and reports which further passes
// (if any) the result calls for. Grounded on simplify.c's
// simplify_instruction.
func SimplifyInstruction(ctx *Context, insn *Instruction) PhaseMask {
	if insn.Bb == nil {
		return PhaseNone
	}

	switch insn.Op {
	case OpAdd, OpMul, OpAnd, OpOr, OpXor, OpAndBool, OpOrBool:
		canonicalizeCommutative(ctx, insn)
		if m := simplifyBinop(ctx, insn); m != PhaseNone {
			return m
		}
		return simplifyAssociativeBinop(ctx, insn)

	case OpSetEQ, OpSetNE:
		canonicalizeCommutative(ctx, insn)
		return simplifyBinop(ctx, insn)

	case OpSetLE, OpSetGE, OpSetLT, OpSetGT, OpSetB, OpSetA, OpSetBE, OpSetAE:
		canonicalizeCompare(ctx, insn)
		return simplifyBinop(ctx, insn)

	case OpSub, OpDivu, OpDivs, OpModu, OpMods, OpShl, OpLsr, OpAsr:
		return simplifyBinop(ctx, insn)

	case OpNot, OpNeg:
		return simplifyUnop(ctx, insn)

	case OpLoad:
		if !HasUsers(insn.Target) {
			return Kill(ctx, insn, false)
		}
		return simplifyMemop(ctx, insn)

	case OpStore:
		return simplifyMemop(ctx, insn)

	case OpSymaddr:
		if deadInsn(ctx, insn) {
			return RepeatCSE | RepeatSymbolCleanup
		}
		return replaceWithPseudo(ctx, insn, insn.Symbol)

	case OpCast, OpSCast, OpFPCast, OpPtrCast:
		return simplifyCast(ctx, insn)

	case OpPhi:
		if deadInsn(ctx, insn) {
			killUseList(ctx, insn.PhiList)
			ctx.requestRepeat(RepeatCSE)
			return RepeatCSE
		}
		return cleanUpPhi(ctx, insn)

	case OpPhiSource:
		if deadInsn(ctx, insn, &insn.PhiSrc) {
			return RepeatCSE
		}

	case OpSel:
		return simplifySelect(ctx, insn)

	case OpCbr:
		return simplifyBranch(ctx, insn)

	case OpSwitch:
		return simplifySwitch(ctx, insn)

	case OpRange:
		return simplifyRange(ctx, insn)
	}

	return PhaseNone
}
