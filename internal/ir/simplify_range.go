package ir

// This file implements §4.5's range-check rewriter, grounded on simplify.c's
// is_in_range/simplify_range.

// isInRange reports whether a constant value falls within [low, high].
// Grounded on simplify.c's is_in_range.
func isInRange(src *Pseudo, low, high int64) bool {
	if !IsConstant(src) {
		return false
	}
	return src.Value >= low && src.Value <= high
}

// simplifyRange handles OP_RANGE: when the checked value and the bounds are
// all known constants and the value is proven in range, the check can never
// fire, so the instruction is dropped outright. Grounded on simplify.c's
// simplify_range, which kills the instruction unconditionally once it has
// determined the check is vacuous (kill_instruction, not a forced kill_insn
// call — by the time this fires, the range instruction has no result
// anything still depends on for its value, only for its ordering, and that
// ordering requirement is exactly what this proved unnecessary).
func simplifyRange(ctx *Context, insn *Instruction) PhaseMask {
	low := insn.Src2
	high := insn.Src3
	if !IsConstant(low) || !IsConstant(high) {
		return PhaseNone
	}
	if isInRange(insn.Src1, low.Value, high.Value) {
		return Kill(ctx, insn, false)
	}
	return PhaseNone
}
