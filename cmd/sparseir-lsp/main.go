package main

import (
	"log"
	"os"

	"github.com/tliron/commonlog"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"sparseir/internal/irlsp"
)

const lsName = "sparseir"

var version = "0.0.1"

func main() {
	commonlog.Configure(1, nil)

	h := irlsp.NewHandler()
	h.WtautologicalCompare = true

	handler := protocol.Handler{
		Initialize:            h.Initialize,
		Initialized:           h.Initialized,
		Shutdown:              h.Shutdown,
		TextDocumentDidOpen:   h.TextDocumentDidOpen,
		TextDocumentDidChange: h.TextDocumentDidChange,
		TextDocumentDidClose:  h.TextDocumentDidClose,
	}

	s := server.NewServer(&handler, lsName, false)

	log.Println("Starting sparseir LSP server...")
	if err := s.RunStdio(); err != nil {
		log.Println("Error starting sparseir LSP server:", err)
		os.Exit(1)
	}
}
