package ir

// This file implements (part of) §4.5 Peephole rewriters for NOT/NEG,
// grounded on simplify.c's simplify_unop/simplify_constant_unop.

// simplifyConstantUnop folds a unary op over a known constant operand.
func simplifyConstantUnop(ctx *Context, insn *Instruction) PhaseMask {
	res, ok := EvalUnop(insn.Op, insn.Size, insn.Src1.Value)
	if !ok {
		return PhaseNone
	}
	return replaceWithPseudo(ctx, insn, ctx.NewValue(res))
}

// simplifyUnop handles NOT/NEG: trivial dead-code, constant folding, and
// double-negation collapse (`not(not(x))` / `neg(neg(x))` → `x`). Grounded
// on simplify.c's simplify_unop.
func simplifyUnop(ctx *Context, insn *Instruction) PhaseMask {
	if deadInsn(ctx, insn, &insn.Src1) {
		return RepeatCSE
	}
	if IsConstant(insn.Src1) {
		return simplifyConstantUnop(ctx, insn)
	}

	switch insn.Op {
	case OpNot:
		if def := insn.Src1.Def; def != nil && def.Op == OpNot {
			return replaceWithPseudo(ctx, insn, def.Src1)
		}
	case OpNeg:
		if def := insn.Src1.Def; def != nil && def.Op == OpNeg {
			return replaceWithPseudo(ctx, insn, def.Src1)
		}
	}
	return PhaseNone
}
