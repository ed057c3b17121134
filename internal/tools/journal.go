package tools

import (
	"fmt"
	"strings"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"

	"github.com/GuiArSt/kronus/internal/persistence"
)

type SaveJournalInput struct {
	ID         string `json:"id,omitempty"`
	Repo       string `json:"repo,omitempty"`
	CommitHash string `json:"commit_hash,omitempty"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	Tags       string `json:"tags,omitempty"`
	EntryDate  string `json:"entry_date,omitempty"` // YYYY-MM-DD, defaults to today
}

type SaveJournalOutput struct {
	ID string `json:"id"`
}

type ListJournalInput struct {
	Repo string `json:"repo,omitempty"`
}

type JournalEntryOutput struct {
	ID         string `json:"id"`
	Repo       string `json:"repo,omitempty"`
	CommitHash string `json:"commit_hash,omitempty"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	Tags       string `json:"tags,omitempty"`
	EntryDate  string `json:"entry_date"`
}

type JournalListOutput struct {
	Entries []JournalEntryOutput `json:"entries"`
}

type SearchJournalInput struct {
	Query string `json:"query"`
}

type DeleteJournalInput struct {
	ID string `json:"id"`
}

type DeleteOutput struct {
	Deleted bool `json:"deleted"`
}

func journalOutput(entries []persistence.JournalEntry) JournalListOutput {
	out := JournalListOutput{Entries: make([]JournalEntryOutput, 0, len(entries))}
	for _, e := range entries {
		out.Entries = append(out.Entries, JournalEntryOutput{
			ID:         e.ID,
			Repo:       e.Repo,
			CommitHash: e.CommitHash,
			Title:      e.Title,
			Content:    e.Content,
			Tags:       e.Tags,
			EntryDate:  e.EntryDate.Format("2006-01-02"),
		})
	}
	return out
}

func registerJournalTools(g *genkit.Genkit, r *Registry) []ai.ToolRef {
	save := genkit.DefineTool(g, "save_journal_entry",
		"Create or update a developer journal entry. Pass id to update an existing entry. Confirm the content with the owner before calling.",
		func(ctx *ai.ToolContext, input SaveJournalInput) (SaveJournalOutput, error) {
			if strings.TrimSpace(input.Title) == "" {
				return SaveJournalOutput{}, fmt.Errorf("title must be non-empty")
			}
			entry := persistence.JournalEntry{
				ID:         input.ID,
				Repo:       input.Repo,
				CommitHash: input.CommitHash,
				Title:      input.Title,
				Content:    input.Content,
				Tags:       input.Tags,
			}
			if input.EntryDate != "" {
				d, err := time.Parse("2006-01-02", input.EntryDate)
				if err != nil {
					return SaveJournalOutput{}, fmt.Errorf("entry_date must be YYYY-MM-DD: %w", err)
				}
				entry.EntryDate = d
			}
			if err := r.store.SaveJournalEntry(ctx, &entry); err != nil {
				return SaveJournalOutput{}, err
			}
			return SaveJournalOutput{ID: entry.ID}, nil
		},
	)

	list := genkit.DefineTool(g, "list_journal_entries",
		"List journal entries, newest first. Optionally filter by repo name.",
		func(ctx *ai.ToolContext, input ListJournalInput) (JournalListOutput, error) {
			var (
				entries []persistence.JournalEntry
				err     error
			)
			if input.Repo != "" {
				entries, err = r.store.ListJournalEntriesByRepo(ctx, input.Repo)
			} else {
				entries, err = r.store.ListJournalEntries(ctx)
			}
			if err != nil {
				return JournalListOutput{}, err
			}
			return journalOutput(entries), nil
		},
	)

	search := genkit.DefineTool(g, "search_journal",
		"Search journal entries by title, content or tags.",
		func(ctx *ai.ToolContext, input SearchJournalInput) (JournalListOutput, error) {
			if strings.TrimSpace(input.Query) == "" {
				return JournalListOutput{}, fmt.Errorf("query must be non-empty")
			}
			entries, err := r.store.SearchJournal(ctx, input.Query)
			if err != nil {
				return JournalListOutput{}, err
			}
			return journalOutput(entries), nil
		},
	)

	del := genkit.DefineTool(g, "delete_journal_entry",
		"Delete a journal entry by id. Confirm with the owner before calling.",
		func(ctx *ai.ToolContext, input DeleteJournalInput) (DeleteOutput, error) {
			if err := r.store.DeleteJournalEntry(ctx, input.ID); err != nil {
				return DeleteOutput{}, err
			}
			return DeleteOutput{Deleted: true}, nil
		},
	)

	return []ai.ToolRef{save, list, search, del}
}
