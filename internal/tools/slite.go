package tools

import (
	"errors"
	"fmt"
	"strings"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"

	"github.com/GuiArSt/kronus/internal/persistence"
)

type ListSliteNotesInput struct{}

type SearchSliteNotesInput struct {
	Query string `json:"query"`
}

type GetSliteNoteInput struct {
	ID string `json:"id"`
}

type SliteNoteOutput struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content,omitempty"`
	URL     string `json:"url,omitempty"`
}

type SliteNoteListOutput struct {
	Notes []SliteNoteOutput `json:"notes"`
}

func sliteListOutput(notes []persistence.SliteNote, includeContent bool) SliteNoteListOutput {
	out := SliteNoteListOutput{Notes: make([]SliteNoteOutput, 0, len(notes))}
	for _, n := range notes {
		item := SliteNoteOutput{ID: n.ID, Title: n.Title, URL: n.URL}
		if includeContent {
			item.Content = n.Content
		}
		out.Notes = append(out.Notes, item)
	}
	return out
}

func registerSliteTools(g *genkit.Genkit, r *Registry) []ai.ToolRef {
	list := genkit.DefineTool(g, "list_slite_notes",
		"List mirrored Slite notes without their bodies.",
		func(ctx *ai.ToolContext, input ListSliteNotesInput) (SliteNoteListOutput, error) {
			notes, err := r.store.ListSliteNotes(ctx)
			if err != nil {
				return SliteNoteListOutput{}, err
			}
			return sliteListOutput(notes, false), nil
		},
	)

	search := genkit.DefineTool(g, "search_slite_notes",
		"Search mirrored Slite notes by title or content.",
		func(ctx *ai.ToolContext, input SearchSliteNotesInput) (SliteNoteListOutput, error) {
			if strings.TrimSpace(input.Query) == "" {
				return SliteNoteListOutput{}, fmt.Errorf("query must be non-empty")
			}
			notes, err := r.store.SearchSliteNotes(ctx, input.Query)
			if err != nil {
				return SliteNoteListOutput{}, err
			}
			return sliteListOutput(notes, true), nil
		},
	)

	get := genkit.DefineTool(g, "get_slite_note",
		"Fetch one mirrored Slite note by id, including its content.",
		func(ctx *ai.ToolContext, input GetSliteNoteInput) (SliteNoteOutput, error) {
			note, err := r.store.GetSliteNote(ctx, input.ID)
			if errors.Is(err, persistence.ErrNotFound) {
				return SliteNoteOutput{}, fmt.Errorf("note %q not found in the local mirror", input.ID)
			}
			if err != nil {
				return SliteNoteOutput{}, err
			}
			return SliteNoteOutput{ID: note.ID, Title: note.Title, Content: note.Content, URL: note.URL}, nil
		},
	)

	return []ai.ToolRef{list, search, get}
}
