package ir

// This file implements the small CFG-edge bookkeeping the branch and switch
// rewriters need when a conditional terminator collapses to an
// unconditional one. Not present in simplify.c itself (that bookkeeping
// lives in the external linearizer/flow-graph builder this module doesn't
// implement), but simplify_branch/simplify_switch call straight into it
// (insert_branch), so a minimal version is supplied here rather than left
// unreachable.

func containsBB(list []*BasicBlock, bb *BasicBlock) bool {
	for _, b := range list {
		if b == bb {
			return true
		}
	}
	return false
}

func removeBBFromList(list []*BasicBlock, bb *BasicBlock) []*BasicBlock {
	out := list[:0]
	for _, b := range list {
		if b != bb {
			out = append(out, b)
		}
	}
	return out
}

// insertBranch rewrites insn (a CBR or SWITCH terminator) in place into an
// unconditional BR to target, dropping CFG edges to every other child of
// insn.Bb and flagging a CFG cleanup pass (some of those children may now
// be unreachable).
func insertBranch(ctx *Context, insn *Instruction, target *BasicBlock) {
	bb := insn.Bb
	for _, child := range bb.Children {
		if child == target {
			continue
		}
		child.Parents = removeBBFromList(child.Parents, bb)
	}
	bb.Children = append(bb.Children[:0], target)
	if !containsBB(target.Parents, bb) {
		target.Parents = append(target.Parents, bb)
	}

	switch insn.Op {
	case OpCbr, OpComputedGoto:
		killUse(ctx, &insn.Cond)
	case OpSwitch:
		killUse(ctx, &insn.Cond)
		insn.MultiJmp = nil
	}
	insn.Op = OpBr
	insn.BbTrue = target
	insn.BbFalse = nil
	ctx.requestRepeat(RepeatCFGCleanup)
}
