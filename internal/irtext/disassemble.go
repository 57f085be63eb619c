package irtext

import (
	"fmt"
	"strings"

	"sparseir/internal/ir"
)

// disassembler names every pseudo it has printed so repeat references in
// later instructions come out as the same %name, mirroring the naming a
// human author of the text format would pick.
type disassembler struct {
	names map[*ir.Pseudo]string
	next  int
}

// Disassemble renders ep back into the textual notation Assemble accepts,
// used both to print simplification results and to round-trip fixtures in
// tests.
func Disassemble(ep *ir.Entrypoint) string {
	d := &disassembler{names: map[*ir.Pseudo]string{}}
	var b strings.Builder

	fmt.Fprintf(&b, "fn @%s(", ep.Name)
	first := true
	for _, p := range collectArgs(ep) {
		if !first {
			b.WriteString(", ")
		}
		first = false
		fmt.Fprintf(&b, "%%%s:%d", p.Name, p.Bits)
		d.names[p] = p.Name
	}
	b.WriteString(") {\n")

	for _, bb := range ep.Blocks {
		fmt.Fprintf(&b, "%s:\n", bb.Label)
		for _, insn := range bb.Insns {
			if insn.Bb == nil || insn.Op == ir.OpEntry || insn.Op == ir.OpPhiSource {
				continue
			}
			line := d.insn(insn)
			if line != "" {
				fmt.Fprintf(&b, "  %s\n", line)
			}
		}
	}
	b.WriteString("}\n")
	return b.String()
}

// collectArgs walks every instruction's operands looking for PseudoArg
// values, in first-seen order — Entrypoint itself does not keep a params
// list, only the pseudos reachable from its body.
func collectArgs(ep *ir.Entrypoint) []*ir.Pseudo {
	var out []*ir.Pseudo
	seen := map[*ir.Pseudo]bool{}
	add := func(p *ir.Pseudo) {
		if p != nil && p.Kind == ir.PseudoArg && !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	for _, bb := range ep.Blocks {
		for _, insn := range bb.Insns {
			if insn.Bb == nil {
				continue
			}
			for _, p := range operandsOf(insn) {
				add(p)
			}
		}
	}
	return out
}

func operandsOf(insn *ir.Instruction) []*ir.Pseudo {
	out := []*ir.Pseudo{insn.Src1, insn.Src2, insn.Src3, insn.Cond, insn.Symbol, insn.Target, insn.PhiSrc}
	out = append(out, insn.PhiList...)
	return out
}

func (d *disassembler) name(p *ir.Pseudo) string {
	switch p.Kind {
	case ir.PseudoVal:
		return fmt.Sprintf("$%d", p.Value)
	case ir.PseudoSym:
		return fmt.Sprintf("<%s>", p.Sym)
	case ir.PseudoVoid:
		return "VOID"
	}
	if n, ok := d.names[p]; ok {
		return "%" + n
	}
	n := fmt.Sprintf("t%d", d.next)
	d.next++
	d.names[p] = n
	return "%" + n
}

func (d *disassembler) insn(insn *ir.Instruction) string {
	switch insn.Op {
	case ir.OpRet:
		if insn.Src1 == nil {
			return fmt.Sprintf("ret.%d", insn.Size)
		}
		return fmt.Sprintf("ret.%d %s", insn.Size, d.name(insn.Src1))

	case ir.OpBr:
		return fmt.Sprintf("br %s", insn.BbTrue.Label)

	case ir.OpCbr:
		return fmt.Sprintf("cbr %s, %s, %s", d.name(insn.Cond), insn.BbTrue.Label, insn.BbFalse.Label)

	case ir.OpSwitch:
		var cases []string
		def := "?"
		for _, j := range insn.MultiJmp {
			if j.Begin > j.End {
				def = j.Target.Label
				continue
			}
			cases = append(cases, fmt.Sprintf("case %d..%d -> %s", j.Begin, j.End, j.Target.Label))
		}
		return fmt.Sprintf("switch %s { %s default -> %s }", d.name(insn.Cond), strings.Join(cases, " "), def)

	case ir.OpStore:
		return fmt.Sprintf("store.%d %s, %s", insn.Size, d.name(insn.Target), d.memref(insn))

	case ir.OpPhi:
		var parts []string
		for i, src := range insn.PhiList {
			bb := phiSourceBlock(insn, i)
			parts = append(parts, fmt.Sprintf("%s: %s", bb, d.name(phiSourceValue(src))))
		}
		return fmt.Sprintf("%s = phi.%d [%s]", d.name(insn.Target), insn.Size, strings.Join(parts, ", "))

	case ir.OpLoad:
		return fmt.Sprintf("%s = load.%d %s", d.name(insn.Target), insn.Size, d.memref(insn))

	case ir.OpSymaddr:
		return fmt.Sprintf("%s = symaddr.%d <%s>", d.name(insn.Target), insn.Size, insn.Symbol.Sym)

	case ir.OpCast, ir.OpSCast:
		sign := "u"
		if insn.OrigType.Signed {
			sign = "s"
		}
		return fmt.Sprintf("%s = %s.%d.%s%d %s", d.name(insn.Target), opName(insn.Op), insn.Size, sign, insn.OrigType.Bits, d.name(insn.Src1))

	case ir.OpSel:
		return fmt.Sprintf("%s = sel.%d %s, %s, %s", d.name(insn.Target), insn.Size, d.name(insn.Src1), d.name(insn.Src2), d.name(insn.Src3))

	case ir.OpRange:
		return fmt.Sprintf("%s = range.%d %s, %s, %s", d.name(insn.Target), insn.Size, d.name(insn.Src1), d.name(insn.Src2), d.name(insn.Src3))

	case ir.OpNot, ir.OpNeg:
		return fmt.Sprintf("%s = %s.%d %s", d.name(insn.Target), opName(insn.Op), insn.Size, d.name(insn.Src1))

	default:
		if ir.IsBinary(insn.Op) || ir.IsCompare(insn.Op) {
			return fmt.Sprintf("%s = %s.%d %s, %s", d.name(insn.Target), opName(insn.Op), insn.Size, d.name(insn.Src1), d.name(insn.Src2))
		}
		return ""
	}
}

// memref renders a load/store's address operand as "[%base]" or
// "[%base+N]"/"[%base-N]".
func (d *disassembler) memref(insn *ir.Instruction) string {
	if insn.Offset == 0 {
		return fmt.Sprintf("[%s]", d.name(insn.Src1))
	}
	sign, off := "+", insn.Offset
	if off < 0 {
		sign, off = "-", -off
	}
	return fmt.Sprintf("[%s%s%d]", d.name(insn.Src1), sign, off)
}

func opName(op ir.Opcode) string { return op.String() }

// phiSourceBlock and phiSourceValue recover the predecessor label and
// incoming value for one phi slot, walking back through the phi-source
// instruction Assemble spliced into that predecessor.
func phiSourceBlock(phi *ir.Instruction, i int) string {
	src := phi.PhiList[i]
	if src == nil || src.Def == nil || src.Def.Bb == nil {
		return "?"
	}
	return src.Def.Bb.Label
}

func phiSourceValue(src *ir.Pseudo) *ir.Pseudo {
	if src == nil || src.Def == nil {
		return ir.Void
	}
	return src.Def.PhiSrc
}
