package ir

// This file implements §4.4 Canonicalization, grounded on simplify.c's
// canonical_order/canonicalize_commutative/canonicalize_compare, using
// switch_pseudo (uselist.go) to swap operands while keeping use lists
// consistent.

// canonicalOrder reports whether (p1, p2) are already in the preferred
// order: symbols and constants belong on the right. It is not a total
// order — two register operands are always reported as already ordered,
// matching simplify.c's canonical_order exactly.
func canonicalOrder(p1, p2 *Pseudo) bool {
	if p1.Kind == PseudoVal {
		return p2.Kind == PseudoVal
	}
	if p1.Kind == PseudoSym {
		return p2.Kind == PseudoSym || p2.Kind == PseudoVal
	}
	return true
}

// canonicalizeCommutative reorders insn.Src1/Src2 into canonical order for
// an opcode where operand order doesn't affect meaning (add, mul, and, or,
// xor, the bool ops, and the equality compares). Grounded on
// canonicalize_commutative.
func canonicalizeCommutative(ctx *Context, insn *Instruction) PhaseMask {
	if canonicalOrder(insn.Src1, insn.Src2) {
		return PhaseNone
	}
	switchPseudo(ctx, insn, &insn.Src1, insn, &insn.Src2)
	ctx.requestRepeat(RepeatCSE)
	return RepeatCSE
}

// canonicalizeCompare reorders insn.Src1/Src2 for a non-symmetric compare,
// swapping the opcode to its operand-order counterpart (e.g. SET_LT becomes
// SET_GT) so the comparison's meaning is preserved. Grounded on
// canonicalize_compare.
func canonicalizeCompare(ctx *Context, insn *Instruction) PhaseMask {
	if canonicalOrder(insn.Src1, insn.Src2) {
		return PhaseNone
	}
	switchPseudo(ctx, insn, &insn.Src1, insn, &insn.Src2)
	insn.Op = swapOf(insn.Op)
	ctx.requestRepeat(RepeatCSE)
	return RepeatCSE
}
