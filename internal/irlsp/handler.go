// Package irlsp implements the language-server side of editing .sir text:
// on every open/change it reassembles the buffer, runs it through the
// fixpoint driver, and publishes the accumulated warnings plus any
// assemble errors as LSP diagnostics. Grounded on the teacher's
// internal/lsp.KansoHandler, trimmed to the handlers spec.md §6.1 actually
// asks for (no completion, no semantic tokens — nothing in this system
// has a notion of either).
package irlsp

import (
	"fmt"
	"net/url"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"sparseir/internal/diag"
	"sparseir/internal/driver"
	"sparseir/internal/ir"
	"sparseir/internal/irtext"
)

var log = commonlog.GetLogger("sparseir-lsp")

// Handler implements the subset of the LSP protocol.Handler callbacks this
// server wires up. One Handler serves every open document.
type Handler struct {
	mu      sync.RWMutex
	content map[string]string

	// WtautologicalCompare is copied into ir.Context.WtautologicalCompare:
	// whether a self-comparison produces a warning diagnostic.
	WtautologicalCompare bool
}

// NewHandler creates an empty Handler with no open documents.
func NewHandler() *Handler {
	return &Handler{content: make(map[string]string)}
}

func (h *Handler) Initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	log.Info("initialize")
	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: ptrBool(true),
				Change:    ptrSyncKind(protocol.TextDocumentSyncKindFull),
			},
		},
	}, nil
}

func (h *Handler) Initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	log.Info("initialized")
	return nil
}

func (h *Handler) Shutdown(ctx *glsp.Context) error {
	log.Info("shutdown")
	return nil
}

func (h *Handler) TextDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	return h.refresh(ctx, params.TextDocument.URI, params.TextDocument.Text)
}

func (h *Handler) TextDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	if len(params.ContentChanges) == 0 {
		return nil
	}
	// TextDocumentSyncKindFull means the last change event carries the
	// whole new buffer, not an incremental edit.
	last := params.ContentChanges[len(params.ContentChanges)-1]
	change, ok := last.(protocol.TextDocumentContentChangeEventWhole)
	if !ok {
		return fmt.Errorf("unexpected incremental change event for %s", params.TextDocument.URI)
	}
	return h.refresh(ctx, params.TextDocument.URI, change.Text)
}

func (h *Handler) TextDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	path, err := uriToPath(string(params.TextDocument.URI))
	if err != nil {
		return err
	}
	log.Debugf("closed %s", path)
	h.mu.Lock()
	delete(h.content, path)
	h.mu.Unlock()
	return nil
}

// refresh reassembles src, simplifies it to a fixpoint, and publishes the
// resulting diagnostics (assemble errors, or else accumulated warnings).
func (h *Handler) refresh(ctx *glsp.Context, uri protocol.DocumentUri, src string) error {
	path, err := uriToPath(string(uri))
	if err != nil {
		return err
	}

	h.mu.Lock()
	h.content[path] = src
	h.mu.Unlock()

	log.Debugf("reassembling %s", path)
	diagnostics := h.Diagnostics(path, src)
	if ctx != nil {
		sendDiagnostics(ctx, uri, diagnostics)
	}
	return nil
}

// Diagnostics assembles and simplifies src, returning the LSP diagnostics
// an editor should show for it. Exposed directly so tests (and any
// non-protocol caller) can drive it without a *glsp.Context.
func (h *Handler) Diagnostics(path, src string) []protocol.Diagnostic {
	sctx := &ir.Context{WtautologicalCompare: h.WtautologicalCompare}
	sink := &diag.Sink{Source: src, Filename: path}
	sctx.Warn = sink.Warnf

	ep, errs := irtext.Assemble(sctx, src)
	if len(errs) > 0 {
		return assembleErrorDiagnostics(errs)
	}

	driver.Run(sctx, ep, driver.Config{})
	return warningDiagnostics(sink.Warnings)
}

func uriToPath(rawURI string) (string, error) {
	u, err := url.Parse(rawURI)
	if err != nil {
		return "", fmt.Errorf("invalid URI %s: %w", rawURI, err)
	}
	path := u.Path
	if runtime.GOOS == "windows" && strings.HasPrefix(path, "/") && len(path) > 2 && path[2] == ':' {
		path = path[1:]
	}
	return filepath.FromSlash(path), nil
}

func sendDiagnostics(ctx *glsp.Context, uri protocol.DocumentUri, diagnostics []protocol.Diagnostic) {
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

func ptrBool(b bool) *bool { return &b }

func ptrSyncKind(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind { return &k }
