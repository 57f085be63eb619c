// Package diag collects the warnings the simplifier emits through
// ir.Context.Warn and renders them the way the teacher's
// internal/errors.ErrorReporter renders a CompilerError: a level, a
// position, and the offending source line underlined. This package only
// ever produces Warning-level entries — Error/Note/Help have nothing
// upstream of it to report.
package diag

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"sparseir/internal/ir"
)

// Warning is one diagnostic raised during simplification.
type Warning struct {
	Pos     ir.Position
	Message string
}

// Sink accumulates warnings as a Context runs. A *Sink's Warnf method has
// the ir.WarnFunc signature, so `ctx.Warn = sink.Warnf` wires it directly.
type Sink struct {
	Source   string
	Filename string
	Warnings []Warning
}

// Warnf records one warning. Safe to assign as ctx.Warn.
func (s *Sink) Warnf(pos ir.Position, format string, args ...any) {
	s.Warnings = append(s.Warnings, Warning{Pos: pos, Message: fmt.Sprintf(format, args...)})
}

// Render formats every accumulated warning, one per paragraph, in the
// teacher's "level: message" + "--> file:line:col" + source-line-with-caret
// shape. useColor false disables fatih/color's styling (CI logs, piped
// output) without needing a second code path.
func (s *Sink) Render(useColor bool) string {
	color.NoColor = !useColor

	lines := strings.Split(s.Source, "\n")
	bold := color.New(color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()
	levelColor := color.New(color.FgYellow, color.Bold).SprintFunc()
	caretColor := color.New(color.FgYellow, color.Bold).SprintFunc()

	var b strings.Builder
	for _, w := range s.Warnings {
		fmt.Fprintf(&b, "%s: %s\n", levelColor("warning"), w.Message)

		width := len(fmt.Sprintf("%d", w.Pos.Line))
		if width < 3 {
			width = 3
		}
		indent := strings.Repeat(" ", width)
		filename := s.Filename
		if filename == "" {
			filename = w.Pos.File
		}
		fmt.Fprintf(&b, "%s %s %s:%d:%d\n", indent, dim("-->"), filename, w.Pos.Line, w.Pos.Column)
		fmt.Fprintf(&b, "%s %s\n", indent, dim("│"))

		if w.Pos.Line > 0 && w.Pos.Line <= len(lines) {
			fmt.Fprintf(&b, "%s %s %s\n",
				bold(fmt.Sprintf("%*d", width, w.Pos.Line)), dim("│"), lines[w.Pos.Line-1])
			col := w.Pos.Column - 1
			if col < 0 {
				col = 0
			}
			fmt.Fprintf(&b, "%s %s %s%s\n", indent, dim("│"), strings.Repeat(" ", col), caretColor("^"))
		}
		b.WriteString("\n")
	}
	return b.String()
}
