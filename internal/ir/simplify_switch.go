package ir

// This file implements §4.5's switch rewriter, grounded on simplify.c's
// simplify_switch.

// simplifySwitch collapses a switch on a known constant to an
// unconditional branch to the matching case (or the default, Begin > End
// marking a default entry), warning if no case — default included —
// matches, which can only happen on unreachable code or a malformed
// switch. Grounded on simplify.c's simplify_switch.
func simplifySwitch(ctx *Context, insn *Instruction) PhaseMask {
	cond := insn.Cond
	if !IsConstant(cond) {
		return PhaseNone
	}
	val := cond.Value

	for _, jmp := range insn.MultiJmp {
		if jmp.Begin > jmp.End || (val >= jmp.Begin && val <= jmp.End) {
			insertBranch(ctx, insn, jmp.Target)
			ctx.requestRepeat(RepeatCSE)
			return RepeatCSE
		}
	}
	ctx.warn(insn.Pos, "impossible case statement")
	return PhaseNone
}
