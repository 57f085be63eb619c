package ir

// This file implements §4.5's cast rewriter, grounded on simplify.c's
// simplify_cast/get_cast_value.

// getCastValue extends val from origBits (sign-extending if sign is set)
// then truncates to newBits. Grounded on simplify.c's get_cast_value — a
// thin wrapper over EvalCast kept as a separate name for the 1:1 mapping.
func getCastValue(val int64, origBits, newBits int, sign bool) int64 {
	return EvalCast(origBits, sign, newBits, val)
}

// simplifyCast folds or drops a cast: a cast of a constant is folded
// outright; a cast that only narrows what an AND has already masked off is
// redundant; a no-op same-size, same-signedness cast (or same-size
// float-to-float cast) collapses to its source. Grounded on simplify.c's
// simplify_cast.
func simplifyCast(ctx *Context, insn *Instruction) PhaseMask {
	if deadInsn(ctx, insn, &insn.Src1) {
		return RepeatCSE
	}

	origType := insn.OrigType
	if origType == nil {
		return PhaseNone
	}
	if origType.isPtr() || insn.Type.isPtr() {
		return PhaseNone
	}
	if origType.isFloat() && !insn.Type.isFloat() {
		return PhaseNone
	}

	origSize := origType.bitSize()
	size := insn.Size
	src := insn.Src1

	if IsConstant(src) {
		val := getCastValue(src.Value, origSize, size, origType.isSigned())
		return replaceWithPseudo(ctx, insn, ctx.NewValue(val))
	}

	if src.Kind == PseudoReg {
		def := src.Def
		if def != nil && def.Op == OpAnd && def.Size >= size {
			if mask := def.Src2; mask.Kind == PseudoVal {
				if size > 0 && uint64(mask.Value)>>uint(size-1) == 0 {
					return replaceWithPseudo(ctx, insn, src)
				}
			}
		}
	}

	if size == origSize {
		wantOp := OpCast
		if origType.isSigned() {
			wantOp = OpSCast
		}
		if insn.Op == wantOp {
			return replaceWithPseudo(ctx, insn, src)
		}
		if insn.Op == OpFPCast && origType.isFloat() {
			return replaceWithPseudo(ctx, insn, src)
		}
	}

	return PhaseNone
}
