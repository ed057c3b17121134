package tools

import (
	"fmt"
	"strings"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"

	"github.com/GuiArSt/kronus/internal/persistence"
)

type SaveMediaInput struct {
	ID       string `json:"id,omitempty"`
	Kind     string `json:"kind"` // image, audio, video, link
	Title    string `json:"title"`
	Location string `json:"location"` // file path or URL
	Note     string `json:"note,omitempty"`
}

type SaveMediaOutput struct {
	ID string `json:"id"`
}

type ListMediaInput struct{}

type MediaOutput struct {
	ID       string `json:"id"`
	Kind     string `json:"kind"`
	Title    string `json:"title"`
	Location string `json:"location"`
	Note     string `json:"note,omitempty"`
}

type MediaListOutput struct {
	Media []MediaOutput `json:"media"`
}

func registerMediaTools(g *genkit.Genkit, r *Registry) []ai.ToolRef {
	save := genkit.DefineTool(g, "save_media",
		"Record a media reference (image, audio, video or link) in the repository. Confirm with the owner before calling.",
		func(ctx *ai.ToolContext, input SaveMediaInput) (SaveMediaOutput, error) {
			if strings.TrimSpace(input.Title) == "" || strings.TrimSpace(input.Location) == "" {
				return SaveMediaOutput{}, fmt.Errorf("title and location must be non-empty")
			}
			m := persistence.Media{
				ID:       input.ID,
				Kind:     input.Kind,
				Title:    input.Title,
				Location: input.Location,
				Note:     input.Note,
			}
			if err := r.store.SaveMedia(ctx, &m); err != nil {
				return SaveMediaOutput{}, err
			}
			return SaveMediaOutput{ID: m.ID}, nil
		},
	)

	list := genkit.DefineTool(g, "list_media",
		"List recorded media references.",
		func(ctx *ai.ToolContext, input ListMediaInput) (MediaListOutput, error) {
			items, err := r.store.ListMedia(ctx)
			if err != nil {
				return MediaListOutput{}, err
			}
			out := MediaListOutput{Media: make([]MediaOutput, 0, len(items))}
			for _, m := range items {
				out.Media = append(out.Media, MediaOutput{
					ID: m.ID, Kind: m.Kind, Title: m.Title, Location: m.Location, Note: m.Note,
				})
			}
			return out, nil
		},
	)

	return []ai.ToolRef{save, list}
}
