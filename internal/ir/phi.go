package ir

// This file implements §4.6's φ-node handler, grounded on simplify.c's
// phi_parent/get_phisources/clean_up_phi/if_convert_phi.

// phiParent picks the block that determines a φ-source's value: if pseudo
// is itself defined in source, source is the determining block; otherwise,
// if source has exactly one child and one parent, it climbs to that parent.
// It climbs at most one level and does not look past that parent. Grounded
// on simplify.c's phi_parent.
func phiParent(source *BasicBlock, pseudo *Pseudo) *BasicBlock {
	if pseudo.Kind == PseudoReg {
		if pseudo.Def.Bb == source {
			return source
		}
	}
	if len(source.Children) != 1 || len(source.Parents) != 1 {
		return source
	}
	return source.Parents[0]
}

// getPhiSources copies insn's non-VOID phi-source definitions into sources,
// reporting whether there were exactly len(sources) of them (a VOID entry
// marks a predecessor edge that was since removed, and is skipped rather
// than counted). Grounded on simplify.c's get_phisources.
func getPhiSources(sources []*Instruction, insn *Instruction) bool {
	i := 0
	for _, phi := range insn.PhiList {
		if phi == Void {
			continue
		}
		if i >= len(sources) {
			return false
		}
		sources[i] = phi.Def
		i++
	}
	return i == len(sources)
}

// ifConvertPhi turns a two-predecessor φ-node fed directly by a single
// conditional-branch block into a select, when that branch block is the
// exclusive common ancestor of both incoming values. Grounded on
// simplify.c's if_convert_phi.
func ifConvertPhi(ctx *Context, insn *Instruction) PhaseMask {
	var array [2]*Instruction
	if !getPhiSources(array[:], insn) {
		return PhaseNone
	}

	bb := insn.Bb
	if len(bb.Parents) != 2 {
		return PhaseNone
	}
	parents := [2]*BasicBlock{bb.Parents[0], bb.Parents[1]}

	p1, bb1 := array[0].PhiSrc, array[0].Bb
	p2, bb2 := array[1].PhiSrc, array[1].Bb

	if !((bb1 == parents[0] && bb2 == parents[1]) || (bb1 == parents[1] && bb2 == parents[0])) {
		return PhaseNone
	}

	source := phiParent(bb1, p1)
	if source != phiParent(bb2, p2) {
		return PhaseNone
	}

	if len(source.Insns) == 0 {
		return PhaseNone
	}
	br := source.Insns[len(source.Insns)-1]
	if br.Op != OpCbr {
		return PhaseNone
	}

	if br.BbTrue == bb2 || br.BbFalse == bb1 {
		p1, p2 = p2, p1
	}

	insertSelect(ctx, source, br, insn, p1, p2)
	Kill(ctx, insn, false)
	ctx.requestRepeat(RepeatCSE)
	return RepeatCSE
}

// cleanUpPhi collapses a φ-node all of whose live sources agree on the same
// incoming value to a direct reference to that value; otherwise it defers to
// ifConvertPhi. Grounded on simplify.c's clean_up_phi.
func cleanUpPhi(ctx *Context, insn *Instruction) PhaseMask {
	var last *Instruction
	same := true

	for _, phi := range insn.PhiList {
		if phi == Void {
			continue
		}
		def := phi.Def
		if def.PhiSrc == Void || def.Bb == nil {
			continue
		}
		if last != nil {
			if last.PhiSrc != def.PhiSrc {
				same = false
			}
			continue
		}
		last = def
	}

	if same {
		pseudo := Void
		if last != nil {
			pseudo = last.PhiSrc
		}
		convertInstructionTarget(insn, pseudo)
		Kill(ctx, insn, false)
		ctx.requestRepeat(RepeatCSE)
		return RepeatCSE
	}

	return ifConvertPhi(ctx, insn)
}

// insertSelect replaces the φ-node insn with a plain select fed by br's
// condition, reusing insn's target pseudo as the select's result, and
// inserts that select just before br in source's instruction list. Not
// present in simplify.c itself (the real insert_select's body lives in the
// external flow-graph builder this module doesn't implement, only declared
// extern in linearize.h), so this is a necessary minimal stand-in: a setcc
// of the branch condition is unneeded since OP_CBR's Cond is already a
// boolean-valued pseudo, so the select can consume it directly.
func insertSelect(ctx *Context, source *BasicBlock, br *Instruction, phi *Instruction, ifTrue, ifFalse *Pseudo) {
	sel := ctx.NewInstruction(OpSel)
	sel.Bb = source
	sel.Size = phi.Size
	sel.Type = phi.Type
	sel.Pos = br.Pos

	bind(sel, br.Cond, &sel.Src1)
	bind(sel, ifTrue, &sel.Src2)
	bind(sel, ifFalse, &sel.Src3)

	sel.Target = phi.Target
	sel.Target.Def = sel
	phi.Target = nil

	idx := len(source.Insns) - 1
	source.Insns = append(source.Insns, nil)
	copy(source.Insns[idx+1:], source.Insns[idx:])
	source.Insns[idx] = sel
}
