// Package mcpserver exposes the Kronus journal and document store to coding
// agents over MCP stdio. Each tool follows the same pattern: a struct with
// the store injected, Definition() returning the schema, Handle() doing the
// work.
package mcpserver

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/GuiArSt/kronus/internal/persistence"
)

// Version is reported in the MCP handshake.
const Version = "1.0.0"

// New builds the stdio MCP server over the shared store.
func New(store *persistence.Store) *server.MCPServer {
	s := server.NewMCPServer(
		"kronus",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	saveEntry := NewSaveEntryTool(store)
	s.AddTool(saveEntry.Definition(), saveEntry.Handle)

	listEntries := NewListEntriesTool(store)
	s.AddTool(listEntries.Definition(), listEntries.Handle)

	searchEntries := NewSearchEntriesTool(store)
	s.AddTool(searchEntries.Definition(), searchEntries.Handle)

	deleteEntry := NewDeleteEntryTool(store)
	s.AddTool(deleteEntry.Definition(), deleteEntry.Handle)

	saveSummary := NewSaveSummaryTool(store)
	s.AddTool(saveSummary.Definition(), saveSummary.Handle)

	getDocument := NewGetDocumentTool(store)
	s.AddTool(getDocument.Definition(), getDocument.Handle)

	listDocuments := NewListDocumentsTool(store)
	s.AddTool(listDocuments.Definition(), listDocuments.Handle)

	return s
}

// ServeStdio blocks serving the MCP protocol on stdin/stdout.
func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}
