package ir

// This file implements §4.5's conditional-branch rewriter, grounded on
// simplify.c's simplify_branch/simplify_cond_branch.

// simplifyCondBranch rewrites `br (setne/eq %x, $0), a, b` to branch
// directly on %x, flipping the true/false targets if the comparison was
// SET_EQ (since branching "if %x" now means what "if %x != 0" meant).
// Grounded on simplify.c's simplify_cond_branch.
func simplifyCondBranch(ctx *Context, br *Instruction, cond *Pseudo, def *Instruction, slot **Pseudo) PhaseMask {
	bind(br, *slot, &br.Cond)
	removeUsageEntry(ctx, cond, &br.Cond)
	if def.Op == OpSetEQ {
		br.BbTrue, br.BbFalse = br.BbFalse, br.BbTrue
	}
	ctx.requestRepeat(RepeatCSE)
	return RepeatCSE
}

// simplifyBranch handles OP_CBR: a constant condition collapses to an
// unconditional branch; branching to the same block both ways becomes an
// unconditional branch with the condition dropped; a condition that is
// itself `setne/eq $0`, a select of two constants, or a widening cast can
// be simplified or bypassed. Grounded on simplify.c's simplify_branch.
func simplifyBranch(ctx *Context, insn *Instruction) PhaseMask {
	cond := insn.Cond

	if IsConstant(cond) {
		target := insn.BbFalse
		if cond.Value != 0 {
			target = insn.BbTrue
		}
		insertBranch(ctx, insn, target)
		ctx.requestRepeat(RepeatCSE)
		return RepeatCSE
	}

	if insn.BbTrue == insn.BbFalse {
		// Both arms already share the one CFG edge bb->target; only the
		// instruction's shape changes, not the block graph.
		insn.BbFalse = nil
		killUse(ctx, &insn.Cond)
		insn.Op = OpBr
		ctx.requestRepeat(RepeatCSE)
		return RepeatCSE
	}

	if cond.Kind == PseudoReg {
		def := cond.Def

		if def.Op == OpSetNE || def.Op == OpSetEQ {
			if IsConstant(def.Src1) && def.Src1.Value == 0 {
				return simplifyCondBranch(ctx, insn, cond, def, &def.Src2)
			}
			if IsConstant(def.Src2) && def.Src2.Value == 0 {
				return simplifyCondBranch(ctx, insn, cond, def, &def.Src1)
			}
		}

		if def.Op == OpSel {
			if IsConstant(def.Src2) && IsConstant(def.Src3) {
				val1, val2 := def.Src2.Value, def.Src3.Value
				if val1 == 0 && val2 == 0 {
					insertBranch(ctx, insn, insn.BbFalse)
					ctx.requestRepeat(RepeatCSE)
					return RepeatCSE
				}
				if val1 != 0 && val2 != 0 {
					insertBranch(ctx, insn, insn.BbTrue)
					ctx.requestRepeat(RepeatCSE)
					return RepeatCSE
				}
				if val2 != 0 {
					insn.BbTrue, insn.BbFalse = insn.BbFalse, insn.BbTrue
				}
				bind(insn, def.Src1, &insn.Cond)
				removeUsageEntry(ctx, cond, &insn.Cond)
				ctx.requestRepeat(RepeatCSE)
				return RepeatCSE
			}
		}

		if def.Op == OpCast || def.Op == OpSCast {
			origSize := 0
			if def.OrigType != nil {
				origSize = def.OrigType.bitSize()
			}
			if def.Size > origSize {
				bind(insn, def.Src1, &insn.Cond)
				removeUsageEntry(ctx, cond, &insn.Cond)
				ctx.requestRepeat(RepeatCSE)
				return RepeatCSE
			}
		}
	}

	return PhaseNone
}
