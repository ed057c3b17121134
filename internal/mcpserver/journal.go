package mcpserver

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/GuiArSt/kronus/internal/persistence"
)

// SaveEntryTool handles the journal_save_entry MCP tool.
type SaveEntryTool struct {
	store *persistence.Store
}

func NewSaveEntryTool(store *persistence.Store) *SaveEntryTool {
	return &SaveEntryTool{store: store}
}

func (t *SaveEntryTool) Definition() mcp.Tool {
	return mcp.NewTool("journal_save_entry",
		mcp.WithDescription(
			"Record a developer journal entry for a commit or work session. "+
				"Call this after completing a meaningful unit of work so future sessions can recall what was done and why.",
		),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Short summary of the work, like a commit subject line"),
		),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("The entry body: what changed, why, dead ends, follow-ups"),
		),
		mcp.WithString("repo",
			mcp.Description("Repository name the work happened in"),
		),
		mcp.WithString("commit_hash",
			mcp.Description("Commit hash the entry documents, if any"),
		),
		mcp.WithString("tags",
			mcp.Description("Comma-separated tags"),
		),
		mcp.WithString("entry_date",
			mcp.Description("Entry date as YYYY-MM-DD (default: today)"),
		),
	)
}

func (t *SaveEntryTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title := req.GetString("title", "")
	content := req.GetString("content", "")
	if title == "" || content == "" {
		return mcp.NewToolResultError("'title' and 'content' are required"), nil
	}

	entry := persistence.JournalEntry{
		Repo:       req.GetString("repo", ""),
		CommitHash: req.GetString("commit_hash", ""),
		Title:      title,
		Content:    content,
		Tags:       req.GetString("tags", ""),
	}
	if d := req.GetString("entry_date", ""); d != "" {
		when, err := time.Parse("2006-01-02", d)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid entry_date %q: use YYYY-MM-DD", d)), nil
		}
		entry.EntryDate = when
	}

	if err := t.store.SaveJournalEntry(ctx, &entry); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("saving entry: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Saved journal entry %s: %s", entry.ID, entry.Title)), nil
}

// ListEntriesTool handles journal_list_entries.
type ListEntriesTool struct {
	store *persistence.Store
}

func NewListEntriesTool(store *persistence.Store) *ListEntriesTool {
	return &ListEntriesTool{store: store}
}

func (t *ListEntriesTool) Definition() mcp.Tool {
	return mcp.NewTool("journal_list_entries",
		mcp.WithDescription("List journal entries, newest first. Bodies are truncated; fetch details with journal_search."),
		mcp.WithString("repo",
			mcp.Description("Only entries for this repository"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Max entries to return (default: 20)"),
		),
	)
}

func (t *ListEntriesTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var (
		entries []persistence.JournalEntry
		err     error
	)
	if repo := req.GetString("repo", ""); repo != "" {
		entries, err = t.store.ListJournalEntriesByRepo(ctx, repo)
	} else {
		entries, err = t.store.ListJournalEntries(ctx)
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing entries: %v", err)), nil
	}

	limit := intArg(req, "limit", 20)
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	if len(entries) == 0 {
		return mcp.NewToolResultText("No journal entries found."), nil
	}
	return mcp.NewToolResultText(renderEntries(entries, 200)), nil
}

// SearchEntriesTool handles journal_search.
type SearchEntriesTool struct {
	store *persistence.Store
}

func NewSearchEntriesTool(store *persistence.Store) *SearchEntriesTool {
	return &SearchEntriesTool{store: store}
}

func (t *SearchEntriesTool) Definition() mcp.Tool {
	return mcp.NewTool("journal_search",
		mcp.WithDescription("Search journal entries by title, body, or tags."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search text"),
		),
	)
}

func (t *SearchEntriesTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := req.GetString("query", "")
	if query == "" {
		return mcp.NewToolResultError("'query' is required"), nil
	}
	entries, err := t.store.SearchJournal(ctx, query)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}
	if len(entries) == 0 {
		return mcp.NewToolResultText("No journal entries matched."), nil
	}
	return mcp.NewToolResultText(renderEntries(entries, 500)), nil
}

// DeleteEntryTool handles journal_delete_entry.
type DeleteEntryTool struct {
	store *persistence.Store
}

func NewDeleteEntryTool(store *persistence.Store) *DeleteEntryTool {
	return &DeleteEntryTool{store: store}
}

func (t *DeleteEntryTool) Definition() mcp.Tool {
	return mcp.NewTool("journal_delete_entry",
		mcp.WithDescription("Delete one journal entry by ID."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Entry ID as returned by journal_list_entries"),
		),
	)
}

func (t *DeleteEntryTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if id == "" {
		return mcp.NewToolResultError("'id' is required"), nil
	}
	if err := t.store.DeleteJournalEntry(ctx, id); err != nil {
		if err == persistence.ErrNotFound {
			return mcp.NewToolResultError(fmt.Sprintf("no entry with id %s", id)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("deleting entry: %v", err)), nil
	}
	return mcp.NewToolResultText("Deleted entry " + id), nil
}

func renderEntries(entries []persistence.JournalEntry, snippetLen int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d entries:\n\n", len(entries))
	for i, e := range entries {
		fmt.Fprintf(&b, "[%d] %s - %s (%s)\n", i+1, e.ID, e.Title, e.EntryDate.Format("2006-01-02"))
		if e.Repo != "" {
			fmt.Fprintf(&b, "    repo: %s", e.Repo)
			if e.CommitHash != "" {
				fmt.Fprintf(&b, " @ %s", e.CommitHash)
			}
			b.WriteString("\n")
		}
		if e.Tags != "" {
			fmt.Fprintf(&b, "    tags: %s\n", e.Tags)
		}
		fmt.Fprintf(&b, "    %s\n\n", truncate(e.Content, snippetLen))
	}
	return b.String()
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
