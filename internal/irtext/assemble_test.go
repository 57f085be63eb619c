package irtext

import (
	"strings"
	"testing"

	"sparseir/internal/ir"
)

func assembleOK(t *testing.T, src string) *ir.Entrypoint {
	t.Helper()
	ep, errs := Assemble(&ir.Context{}, src)
	if len(errs) != 0 {
		t.Fatalf("unexpected assemble errors: %v", errs)
	}
	return ep
}

func TestRoundTripBinary(t *testing.T) {
	src := "fn @sum(%a:32, %b:32) {\nbb0:\n  %t1 = add.32 %a, %b\n  ret.32 %t1\n}\n"
	ep := assembleOK(t, src)
	if len(ep.Blocks) != 1 || len(ep.Blocks[0].Insns) != 3 {
		t.Fatalf("expected entry+add+ret, got %d insns", len(ep.Blocks[0].Insns))
	}
	out := Disassemble(ep)
	ep2 := assembleOK(t, out)
	if ep2.Blocks[0].Insns[1].Op != ir.OpAdd {
		t.Fatalf("round trip lost the add, got %v", ep2.Blocks[0].Insns[1].Op)
	}
}

func TestAssembleCompare(t *testing.T) {
	src := "fn @cmp(%a:32, %b:32) {\nbb0:\n  %t1 = set_lt.1 %a, %b\n  ret.1 %t1\n}\n"
	ep := assembleOK(t, src)
	insn := ep.Blocks[0].Insns[1]
	if insn.Op != ir.OpSetLT || insn.Size != 1 {
		t.Fatalf("expected a 1-bit SET_LT, got op=%v size=%d", insn.Op, insn.Size)
	}
}

func TestRoundTripCast(t *testing.T) {
	src := "fn @widen(%a:16) {\nbb0:\n  %t1 = cast.32.u16 %a\n  ret.32 %t1\n}\n"
	ep := assembleOK(t, src)
	insn := ep.Blocks[0].Insns[1]
	if insn.Op != ir.OpCast || insn.Size != 32 || insn.OrigType.Bits != 16 || insn.OrigType.Signed {
		t.Fatalf("unexpected cast: %+v / %+v", insn, insn.OrigType)
	}
	out := Disassemble(ep)
	if !strings.Contains(out, "cast.32.u16") {
		t.Fatalf("disassembly should round-trip the orig-size/sign suffix, got %q", out)
	}
}

func TestAssembleMemop(t *testing.T) {
	src := "fn @deref(%p:32) {\nbb0:\n  %t1 = load.32 [%p+4]\n  store.32 %t1, [%p]\n  ret.32 %t1\n}\n"
	ep := assembleOK(t, src)
	load := ep.Blocks[0].Insns[1]
	store := ep.Blocks[0].Insns[2]
	if load.Op != ir.OpLoad || load.Src1.Name != "p" || load.Offset != 4 {
		t.Fatalf("unexpected load: %+v", load)
	}
	if store.Op != ir.OpStore || store.Target != load.Target || store.Offset != 0 {
		t.Fatalf("unexpected store: %+v", store)
	}
}

func TestAssembleSelect(t *testing.T) {
	src := "fn @pick(%c:1, %a:32, %b:32) {\nbb0:\n  %t1 = sel.32 %c, %a, %b\n  ret.32 %t1\n}\n"
	ep := assembleOK(t, src)
	sel := ep.Blocks[0].Insns[1]
	if sel.Op != ir.OpSel || sel.Src1.Name != "c" || sel.Src2.Name != "a" || sel.Src3.Name != "b" {
		t.Fatalf("unexpected select: %+v", sel)
	}
}

func TestAssembleBranch(t *testing.T) {
	src := "fn @f(%c:1) {\nbb0:\n  cbr %c, bb1, bb2\nbb1:\n  ret.32 $1\nbb2:\n  ret.32 $2\n}\n"
	ep := assembleOK(t, src)
	br := ep.Blocks[0].Insns[1]
	if br.Op != ir.OpCbr || br.BbTrue.Label != "bb1" || br.BbFalse.Label != "bb2" {
		t.Fatalf("unexpected branch: %+v", br)
	}
	if len(ep.Blocks[0].Children) != 2 {
		t.Fatalf("expected two CFG edges out of bb0, got %d", len(ep.Blocks[0].Children))
	}
}

func TestAssembleSwitch(t *testing.T) {
	src := "fn @f(%v:32) {\nbb0:\n  switch %v { case 1..5 -> bb1 case 6..10 -> bb2 default -> bb3 }\nbb1:\n  ret.32 $0\nbb2:\n  ret.32 $1\nbb3:\n  ret.32 $2\n}\n"
	ep := assembleOK(t, src)
	sw := ep.Blocks[0].Insns[1]
	if sw.Op != ir.OpSwitch || len(sw.MultiJmp) != 3 {
		t.Fatalf("unexpected switch: %+v", sw)
	}
	if sw.MultiJmp[2].Begin <= sw.MultiJmp[2].End {
		t.Fatal("the default case must encode Begin > End")
	}
}

func TestRoundTripPhi(t *testing.T) {
	src := "fn @f(%c:1, %a:32, %b:32) {\n" +
		"bb0:\n  cbr %c, bb1, bb2\n" +
		"bb1:\n  br bb3\n" +
		"bb2:\n  br bb3\n" +
		"bb3:\n  %t1 = phi.32 [bb1: %a, bb2: %b]\n  ret.32 %t1\n}\n"
	ep := assembleOK(t, src)
	join := ep.Blocks[3]
	phi := join.Insns[0]
	if phi.Op != ir.OpPhi || len(phi.PhiList) != 2 {
		t.Fatalf("unexpected phi: %+v", phi)
	}
	bb1 := ep.Blocks[1]
	if len(bb1.Insns) != 2 || bb1.Insns[0].Op != ir.OpPhiSource {
		t.Fatalf("expected a synthesized phi-source in bb1 before its branch, got %+v", bb1.Insns)
	}
	if bb1.Insns[0].PhiSrc.Name != "a" {
		t.Fatalf("bb1's phi-source should carry %%a, got %v", bb1.Insns[0].PhiSrc)
	}

	out := Disassemble(ep)
	if !strings.Contains(out, "%a:32") || !strings.Contains(out, "%b:32") {
		t.Fatalf("disassembly should list both phi-fed arguments, got %q", out)
	}
	if !strings.Contains(out, "phi.32") {
		t.Fatalf("disassembly should print the phi, got %q", out)
	}
}

func TestAssembleRange(t *testing.T) {
	src := "fn @f(%v:32) {\nbb0:\n  %t1 = range.32 %v, $0, $10\n  ret.1 %t1\n}\n"
	ep := assembleOK(t, src)
	rng := ep.Blocks[0].Insns[1]
	if rng.Op != ir.OpRange || rng.Src2.Value != 0 || rng.Src3.Value != 10 {
		t.Fatalf("unexpected range: %+v", rng)
	}
}

func TestAssembleUndefinedRegisterReportsMessage(t *testing.T) {
	src := "fn @f(%a:32) {\nbb0:\n  %t1 = add.32 %a, %missing\n  ret.32 %t1\n}\n"
	_, errs := Assemble(&ir.Context{}, src)
	if len(errs) == 0 {
		t.Fatal("expected an assemble error for the undefined register")
	}
	if !strings.Contains(errs[0].Message, "missing") {
		t.Fatalf("error should name the undefined register, got %q", errs[0].Message)
	}
}

func TestAssembleSyntaxErrorReportsPosition(t *testing.T) {
	src := "fn @f(%a:32) {\nbb0:\n  %t1 = \n}\n"
	_, errs := Assemble(&ir.Context{}, src)
	if len(errs) == 0 {
		t.Fatal("expected a parse error")
	}
	if errs[0].Pos.Line == 0 {
		t.Fatalf("a syntax error should carry a line number, got %+v", errs[0].Pos)
	}
}
