package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/GuiArSt/kronus/internal/persistence"
)

// SaveSummaryTool handles project_save_summary: the living per-project
// summary document coding agents keep current between sessions.
type SaveSummaryTool struct {
	store *persistence.Store
}

func NewSaveSummaryTool(store *persistence.Store) *SaveSummaryTool {
	return &SaveSummaryTool{store: store}
}

func (t *SaveSummaryTool) Definition() mcp.Tool {
	return mcp.NewTool("project_save_summary",
		mcp.WithDescription(
			"Create or update the living summary document for a project. "+
				"Pass the id returned by a previous call to update in place; omit it to create a new summary.",
		),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Project name"),
		),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("Full replacement markdown body of the summary"),
		),
		mcp.WithString("id",
			mcp.Description("Existing document ID to update"),
		),
		mcp.WithString("description",
			mcp.Description("One-line project description"),
		),
	)
}

func (t *SaveSummaryTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title := req.GetString("title", "")
	content := req.GetString("content", "")
	if title == "" || content == "" {
		return mcp.NewToolResultError("'title' and 'content' are required"), nil
	}
	doc := persistence.Document{
		ID:          req.GetString("id", ""),
		DocType:     persistence.DocTypeProjectSummary,
		Title:       title,
		Description: req.GetString("description", ""),
		Content:     content,
	}
	if err := t.store.SaveDocument(ctx, &doc); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("saving summary: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Saved project summary %s: %s", doc.ID, doc.Title)), nil
}

// GetDocumentTool handles document_get.
type GetDocumentTool struct {
	store *persistence.Store
}

func NewGetDocumentTool(store *persistence.Store) *GetDocumentTool {
	return &GetDocumentTool{store: store}
}

func (t *GetDocumentTool) Definition() mcp.Tool {
	return mcp.NewTool("document_get",
		mcp.WithDescription("Fetch one stored document (writing, skill, or project summary) with its full body."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Document ID as returned by document_list"),
		),
	)
}

func (t *GetDocumentTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if id == "" {
		return mcp.NewToolResultError("'id' is required"), nil
	}
	doc, err := t.store.GetDocument(ctx, id)
	if err != nil {
		if err == persistence.ErrNotFound {
			return mcp.NewToolResultError(fmt.Sprintf("no document with id %s", id)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("fetching document: %v", err)), nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n", doc.Title)
	fmt.Fprintf(&b, "type: %s | id: %s\n", doc.DocType, doc.ID)
	if doc.Description != "" {
		fmt.Fprintf(&b, "description: %s\n", doc.Description)
	}
	b.WriteString("\n")
	b.WriteString(doc.Content)
	return mcp.NewToolResultText(b.String()), nil
}

// ListDocumentsTool handles document_list.
type ListDocumentsTool struct {
	store *persistence.Store
}

func NewListDocumentsTool(store *persistence.Store) *ListDocumentsTool {
	return &ListDocumentsTool{store: store}
}

func (t *ListDocumentsTool) Definition() mcp.Tool {
	return mcp.NewTool("document_list",
		mcp.WithDescription("List stored documents of one type without their bodies."),
		mcp.WithString("doc_type",
			mcp.Required(),
			mcp.Description("One of: writing, skill, project-summary"),
		),
	)
}

func (t *ListDocumentsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	docType := req.GetString("doc_type", "")
	switch docType {
	case persistence.DocTypeWriting, persistence.DocTypeSkill, persistence.DocTypeProjectSummary:
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown doc_type %q: use writing, skill, or project-summary", docType)), nil
	}
	docs, err := t.store.ListDocumentsByType(ctx, docType)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing documents: %v", err)), nil
	}
	if len(docs) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No %s documents found.", docType)), nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d documents:\n\n", len(docs))
	for i, d := range docs {
		fmt.Fprintf(&b, "[%d] %s - %s\n", i+1, d.ID, d.Title)
		if d.Description != "" {
			fmt.Fprintf(&b, "    %s\n", d.Description)
		}
	}
	return mcp.NewToolResultText(b.String()), nil
}

// intArg extracts an integer argument, returning defaultVal when the key is
// missing or not a number (JSON numbers decode as float64).
func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}
