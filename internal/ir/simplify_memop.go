package ir

// This file implements §4.5's load/store address-folding rewriter, grounded
// on simplify.c's simplify_memop/simplify_one_memop.

// simplifyOneMemop tries one step of address folding: collapsing a
// symbol-address computation into a direct symbol reference, or absorbing
// a constant offset from an add chain into insn.Offset. orig is the
// address insn.Src1 held when simplifyMemop started this walk, used to
// detect the producer looping back to its own output (an "address of
// itself plus a constant" cycle, which can only come from unreachable or
// buggy code). Grounded on simplify.c's simplify_one_memop.
func simplifyOneMemop(ctx *Context, insn *Instruction, orig *Pseudo) PhaseMask {
	addr := insn.Src1
	if addr.Kind != PseudoReg {
		return PhaseNone
	}
	def := addr.Def
	if def == nil {
		return PhaseNone
	}

	if def.Op == OpSymaddr && def.Symbol != nil {
		killUse(ctx, &insn.Src1)
		bind(insn, def.Symbol, &insn.Src1)
		ctx.requestRepeat(RepeatCSE | RepeatSymbolCleanup)
		return RepeatCSE | RepeatSymbolCleanup
	}

	if def.Op != OpAdd {
		return PhaseNone
	}

	newAddr, off := def.Src1, def.Src2
	if !IsConstant(off) {
		newAddr, off = def.Src2, def.Src1
		if !IsConstant(off) {
			return PhaseNone
		}
	}

	if newAddr == orig {
		if newAddr == Void {
			return PhaseNone
		}
		if ctx.RepeatPhase&RepeatCFGCleanup != 0 {
			// A pass that removes unreachable blocks hasn't run yet over
			// this rewrite; it may well turn out this memop is dead code,
			// in which case the loop isn't really a bug. Leave it for the
			// next sweep.
			return PhaseNone
		}
		ctx.warn(insn.Pos, "crazy programmer")
		return Kill(ctx, insn, true)
	}

	insn.Offset += off.Value
	bind(insn, newAddr, &insn.Src1)
	removeUsageEntry(ctx, addr, &insn.Src1)
	ctx.requestRepeat(RepeatCSE | RepeatSymbolCleanup)
	return RepeatCSE | RepeatSymbolCleanup
}

// simplifyMemop repeatedly walks the address-defining chain of a load or
// store until a step makes no further progress. Grounded on simplify.c's
// simplify_memop.
func simplifyMemop(ctx *Context, insn *Instruction) PhaseMask {
	orig := insn.Src1
	var ret PhaseMask
	for {
		one := simplifyOneMemop(ctx, insn, orig)
		ret |= one
		if one == PhaseNone {
			break
		}
	}
	return ret
}
