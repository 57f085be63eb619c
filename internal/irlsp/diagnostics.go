package irlsp

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	"sparseir/internal/diag"
	"sparseir/internal/irtext"
)

// assembleErrorDiagnostics converts a failed Assemble's errors into LSP
// diagnostics. Grounded on the teacher's ConvertParseErrors: same
// 0-based line/column conversion, same rough fixed-width span.
func assembleErrorDiagnostics(errs []irtext.AssembleError) []protocol.Diagnostic {
	var diagnostics []protocol.Diagnostic
	for _, e := range errs {
		diagnostics = append(diagnostics, protocol.Diagnostic{
			Range: protocol.Range{
				Start: protocol.Position{
					Line:      uint32(max0(e.Pos.Line - 1)),
					Character: uint32(max0(e.Pos.Column - 1)),
				},
				End: protocol.Position{
					Line:      uint32(max0(e.Pos.Line - 1)),
					Character: uint32(max0(e.Pos.Column - 1 + 5)),
				},
			},
			Severity: ptrSeverity(protocol.DiagnosticSeverityError),
			Source:   ptrString("sparseir-assemble"),
			Message:  e.Message,
		})
	}
	return diagnostics
}

// warningDiagnostics converts the simplifier's accumulated warnings into
// LSP diagnostics at Warning severity.
func warningDiagnostics(warnings []diag.Warning) []protocol.Diagnostic {
	var diagnostics []protocol.Diagnostic
	for _, w := range warnings {
		diagnostics = append(diagnostics, protocol.Diagnostic{
			Range: protocol.Range{
				Start: protocol.Position{
					Line:      uint32(max0(w.Pos.Line - 1)),
					Character: uint32(max0(w.Pos.Column - 1)),
				},
				End: protocol.Position{
					Line:      uint32(max0(w.Pos.Line - 1)),
					Character: uint32(max0(w.Pos.Column - 1 + 5)),
				},
			},
			Severity: ptrSeverity(protocol.DiagnosticSeverityWarning),
			Source:   ptrString("sparseir-simplify"),
			Message:  w.Message,
		})
	}
	return diagnostics
}

func max0(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

func ptrSeverity(s protocol.DiagnosticSeverity) *protocol.DiagnosticSeverity { return &s }

func ptrString(s string) *string { return &s }
