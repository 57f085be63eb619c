// Package irtext is the textual assembly notation for the IR this module
// simplifies: a small, line-based syntax for functions, basic blocks and
// instructions, parsed with participle. It stands in for the linearizer
// spec.md treats as an external collaborator — it hands internal/ir fully
// wired Entrypoint values (blocks linked, every operand bound through the
// same use-list primitives a real front end would call) without doing any
// C parsing, type checking or lowering of its own.
package irtext

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// Lexer tokenizes the assembly notation. Mirrors the teacher grammar's
// stateful lexer construction: comments, identifiers, numbers and operators
// each get their own rule, ordered so the longest/most specific match wins.
var Lexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{"Comment", `;[^\n]*`, nil},
		{"SizeSign", `[su][0-9]+`, nil},
		{"Ident", `[a-zA-Z_][a-zA-Z0-9_]*`, nil},
		{"Int", `-?[0-9]+`, nil},
		{"Range", `\.\.`, nil},
		{"Arrow", `->`, nil},
		{"Punct", `[%@$.:,=(){}\[\]+\-<>]`, nil},
		{"Whitespace", `[ \t\r\n]+`, nil},
	},
})

// File is one assembled function.
type File struct {
	Fn *Function `@@`
}

// Function is "fn @name(%param:bits, ...) { block... }".
type Function struct {
	Name   string    `"fn" "@" @Ident`
	Params []*Param  `"(" (@@ ("," @@)*)? ")"`
	Blocks []*Block  `"{" @@+ "}"`
}

// Param is one function argument: a name and its bit width.
type Param struct {
	Name string `"%" @Ident`
	Bits int    `":" @Int`
}

// Block is a label followed by its straight-line instruction list.
type Block struct {
	Label string         `@Ident ":"`
	Insns []*Instruction `@@*`
}

// Instruction is one line of the body: exactly one of the shapes below.
// Grouped as an alternation the way the teacher's grammar.go picks between
// SourceElement variants.
type Instruction struct {
	Ret    *RetInsn    `(  @@`
	Br     *BrInsn      ` | @@`
	Cbr    *CbrInsn     ` | @@`
	Switch *SwitchInsn  ` | @@`
	Store  *StoreInsn   ` | @@`
	Phi    *PhiInsn      ` | @@`
	Op     *OpInsn       ` | @@ )`
}

// RetInsn is "ret.bits [operand]"; the operand is absent for a void return.
type RetInsn struct {
	Bits int      `"ret" "." @Int`
	Src  *Operand `@@?`
}

// BrInsn is an unconditional jump to a block label.
type BrInsn struct {
	Target string `"br" @Ident`
}

// CbrInsn is a two-way conditional branch.
type CbrInsn struct {
	Cond    *Operand `"cbr" @@`
	BbTrue  string   `"," @Ident`
	BbFalse string   `"," @Ident`
}

// SwitchInsn is a multi-way branch over an integer value.
type SwitchInsn struct {
	Cond    *Operand      `"switch" @@ "{"`
	Cases   []*SwitchCase `@@*`
	Default string        `"default" "->" @Ident "}"`
}

// SwitchCase is one inclusive value range and its target block.
type SwitchCase struct {
	Begin  int64  `"case" @Int`
	End    int64  `".." @Int`
	Target string `"->" @Ident`
}

// StoreInsn writes a value to memory; it has no result.
type StoreInsn struct {
	Bits int      `"store" "." @Int`
	Val  *Operand `@@ ","`
	Addr *MemRef  `@@`
}

// PhiInsn merges values from named predecessor blocks. Assemble synthesizes
// the per-predecessor phi-source instructions this expands to; the text
// format only ever shows the merged form.
type PhiInsn struct {
	Target  string      `"%" @Ident "=" "phi" "."`
	Bits    int         `@Int`
	Sources []*PhiEntry `"[" @@ ("," @@)* "]"`
}

// PhiEntry is one "block: value" pair of a phi's source list.
type PhiEntry struct {
	Block string   `@Ident ":"`
	Value *Operand `@@`
}

// OpInsn covers every instruction that names a known opcode mnemonic and
// assigns a single result: binary/compare/unary ops, select, load, symaddr,
// cast/scast and range. Which fields Assemble expects populated depends on
// Op, the same way a single union-backed Instruction does in internal/ir.
type OpInsn struct {
	Target string     `"%" @Ident "="`
	Op     string     `@Ident`
	Bits   int        `"." @Int`
	Attr   *string    `("." @SizeSign)?`
	Args   []*Operand `@@ ("," @@)*`
}

// Operand is one instruction argument: a register/argument reference, an
// integer literal, a symbol reference, or a memory address.
type Operand struct {
	Name *string `(  "%" @Ident`
	Val  *int64  ` | "$" @Int`
	Sym  *string ` | "<" @Ident ">"`
	Mem  *MemRef ` | @@ )`
}

// MemRef is "[%base]" or "[%base+offset]"/"[%base-offset]".
type MemRef struct {
	Base   string `"[" "%" @Ident`
	Sign   string `( @("+" | "-")?`
	Offset int64  `  @Int )? "]"`
}
