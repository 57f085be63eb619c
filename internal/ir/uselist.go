package ir

// This file implements §4.1 Use-list maintenance: bind/unbind/retarget,
// grounded on linearize.h's use_pseudo/has_use_list and simplify.c's
// rem_usage/delete_pseudo_user_list_entry/kill_use/remove_use/switch_pseudo.

// bind stores p into *slot and, if p tracks users, appends (insn, slot) to
// its use list. Grounded on linearize.h's use_pseudo.
func bind(insn *Instruction, p *Pseudo, slot **Pseudo) {
	*slot = p
	if HasUseList(p) {
		p.Users = append(p.Users, Use{Insn: insn, Slot: slot})
	}
}

// Bind is bind exported for IR builders outside this package (the textual
// assembler, or any other linearizer stand-in) that need to populate an
// operand slot with the same use-list bookkeeping the simplifier relies on.
func Bind(insn *Instruction, p *Pseudo, slot **Pseudo) {
	bind(insn, p, slot)
}

// findUse locates the use-list entry keyed by slot; returns -1 if absent.
func findUse(p *Pseudo, slot **Pseudo) int {
	for i := range p.Users {
		if p.Users[i].Slot == slot {
			return i
		}
	}
	return -1
}

// dropUse removes exactly one use-list entry keyed by slot from p.Users.
// A missing entry is a fatal invariant violation (spec.md §4.1).
func dropUse(p *Pseudo, slot **Pseudo) {
	i := findUse(p, slot)
	if i < 0 {
		panic("ir: use-list invariant violation: missing (instruction, slot) entry")
	}
	p.Users = append(p.Users[:i], p.Users[i+1:]...)
}

// removeUsageEntry drops the use-list entry p holds for slot without
// touching *slot itself (the caller already overwrote it, or never will).
// Flags symbol cleanup when p is a SYM pseudo. Grounded on simplify.c's
// remove_usage.
func removeUsageEntry(ctx *Context, p *Pseudo, slot **Pseudo) {
	if !HasUseList(p) {
		return
	}
	if p.Kind == PseudoSym {
		ctx.requestRepeat(RepeatSymbolCleanup)
	}
	dropUse(p, slot)
}

// unbind reads p = *slot, writes VOID to *slot, and removes the matching
// use-list entry. If cascade is set and p's use list becomes empty, p's
// defining instruction is killed too (non-forced). Grounded on simplify.c's
// rem_usage as driven by kill_use (cascade=true) and remove_use
// (cascade=false).
func unbind(ctx *Context, slot **Pseudo, cascade bool) {
	p := *slot
	*slot = Void
	removeUsageEntry(ctx, p, slot)
	if cascade && HasUseList(p) && !HasUsers(p) {
		Kill(ctx, p.Def, false)
	}
}

// killUse is unbind with cascading kill (linearize.h's kill_use).
func killUse(ctx *Context, slot **Pseudo) {
	if slot == nil {
		return
	}
	unbind(ctx, slot, true)
}

// removeUse is unbind without cascading kill (simplify.c's remove_use): the
// slot is retargeted elsewhere in the same rewrite and the old definition
// must not be killed just because this one use went away.
func removeUse(ctx *Context, slot **Pseudo) {
	if slot == nil {
		return
	}
	unbind(ctx, slot, false)
}

// killUseList unbinds (cascading) every non-VOID entry of a φ-list.
func killUseList(ctx *Context, list []*Pseudo) {
	for i := range list {
		if list[i] == Void {
			continue
		}
		killUse(ctx, &list[i])
	}
}

// retarget moves every user of oldTarget onto newPseudo: for each
// (user, slot) pair, write newPseudo into *slot and move the use-list entry
// (a no-op if newPseudo is VAL or VOID, neither of which track users).
// oldTarget's use list ends up empty.
func retarget(oldTarget, newPseudo *Pseudo) {
	users := oldTarget.Users
	oldTarget.Users = nil
	for _, u := range users {
		*u.Slot = newPseudo
		if HasUseList(newPseudo) {
			newPseudo.Users = append(newPseudo.Users, u)
		}
	}
}

// convertInstructionTarget retargets every user of insn's current result
// onto pseudo. Matches the original's convert_instruction_target, used by
// replaceWithPseudo and phi handling.
func convertInstructionTarget(insn *Instruction, pseudo *Pseudo) {
	if insn.Target != nil {
		retarget(insn.Target, pseudo)
	}
}

// switchPseudo swaps the pseudos held by two operand slots (possibly on the
// same instruction), keeping both use lists consistent. Grounded on
// simplify.c's switch_pseudo: bind each slot to the other's old value
// first (so both use lists gain their new entry), then drop each old
// now-stale entry.
func switchPseudo(ctx *Context, insn1 *Instruction, slot1 **Pseudo, insn2 *Instruction, slot2 **Pseudo) {
	p1, p2 := *slot1, *slot2
	bind(insn1, p2, slot1)
	bind(insn2, p1, slot2)
	removeUsageEntry(ctx, p1, slot1)
	removeUsageEntry(ctx, p2, slot2)
}
