package ir

// This file implements §4.5's select rewriter, grounded on simplify.c's
// simplify_select.

// simplifySelect handles OP_SEL: a constant or self-selecting condition
// collapses to whichever side survives; two 0/1 constant sides collapse to
// a plain comparison; and `sel %c, 0, %c` collapses to the constant 0.
// Grounded on simplify.c's simplify_select.
func simplifySelect(ctx *Context, insn *Instruction) PhaseMask {
	if deadInsn(ctx, insn, &insn.Src1, &insn.Src2, &insn.Src3) {
		return RepeatCSE
	}

	cond, src1, src2 := insn.Src1, insn.Src2, insn.Src3
	if IsConstant(cond) || src1 == src2 {
		killUse(ctx, &insn.Src1)
		take, killSlot := src1, &insn.Src3
		if cond.Value == 0 {
			take, killSlot = src2, &insn.Src2
		}
		killUse(ctx, killSlot)
		return replaceWithPseudo(ctx, insn, take)
	}

	if IsConstant(src1) && IsConstant(src2) {
		val1, val2 := src1.Value, src2.Value
		if val1|val2 == 1 {
			newSrc2, op := src1, OpSetEQ
			if val1 != 0 {
				newSrc2, op = src2, OpSetNE
			}
			insn.Op = op
			// insn.Src1 is already cond.
			insn.Src2 = newSrc2
			ctx.requestRepeat(RepeatCSE)
			return RepeatCSE
		}
	}

	if cond == src2 && IsZero(src1) {
		killUse(ctx, &insn.Src1)
		killUse(ctx, &insn.Src3)
		return replaceWithPseudo(ctx, insn, ctx.NewValue(0))
	}

	return PhaseNone
}
