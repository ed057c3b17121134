package tools

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"

	"github.com/GuiArSt/kronus/internal/persistence"
)

type SaveDocumentInput struct {
	ID          string `json:"id,omitempty"`
	DocType     string `json:"doc_type"` // writing, skill or project-summary
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Content     string `json:"content"`
	Metadata    string `json:"metadata,omitempty"` // raw JSON
	WrittenAt   string `json:"written_at,omitempty"`
}

type SaveDocumentOutput struct {
	ID string `json:"id"`
}

type GetDocumentInput struct {
	ID string `json:"id"`
}

type ListDocumentsInput struct {
	DocType string `json:"doc_type"`
}

type DocumentOutput struct {
	ID          string `json:"id"`
	DocType     string `json:"doc_type"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Content     string `json:"content,omitempty"`
	WrittenAt   string `json:"written_at,omitempty"`
}

type DocumentListOutput struct {
	Documents []DocumentOutput `json:"documents"`
}

var allowedDocTypes = map[string]bool{
	persistence.DocTypeWriting:        true,
	persistence.DocTypeSkill:          true,
	persistence.DocTypeProjectSummary: true,
}

func documentOutput(d persistence.Document, includeContent bool) DocumentOutput {
	out := DocumentOutput{
		ID:          d.ID,
		DocType:     d.DocType,
		Title:       d.Title,
		Description: d.Description,
	}
	if includeContent {
		out.Content = d.Content
	}
	if d.WrittenAt != nil {
		out.WrittenAt = d.WrittenAt.Format("2006-01-02")
	}
	return out
}

func registerRepositoryTools(g *genkit.Genkit, r *Registry) []ai.ToolRef {
	save := genkit.DefineTool(g, "save_document",
		"Create or update a repository document (writing, skill or project-summary). Pass id to update. Confirm the content with the owner before calling.",
		func(ctx *ai.ToolContext, input SaveDocumentInput) (SaveDocumentOutput, error) {
			if !allowedDocTypes[input.DocType] {
				return SaveDocumentOutput{}, fmt.Errorf("unknown doc_type %q", input.DocType)
			}
			if strings.TrimSpace(input.Title) == "" {
				return SaveDocumentOutput{}, fmt.Errorf("title must be non-empty")
			}
			doc := persistence.Document{
				ID:          input.ID,
				DocType:     input.DocType,
				Title:       input.Title,
				Description: input.Description,
				Content:     input.Content,
				Metadata:    input.Metadata,
			}
			if input.WrittenAt != "" {
				d, err := time.Parse("2006-01-02", input.WrittenAt)
				if err != nil {
					return SaveDocumentOutput{}, fmt.Errorf("written_at must be YYYY-MM-DD: %w", err)
				}
				doc.WrittenAt = &d
			}
			if err := r.store.SaveDocument(ctx, &doc); err != nil {
				return SaveDocumentOutput{}, err
			}
			return SaveDocumentOutput{ID: doc.ID}, nil
		},
	)

	get := genkit.DefineTool(g, "get_document",
		"Fetch one repository document by id, including its full content.",
		func(ctx *ai.ToolContext, input GetDocumentInput) (DocumentOutput, error) {
			doc, err := r.store.GetDocument(ctx, input.ID)
			if errors.Is(err, persistence.ErrNotFound) {
				return DocumentOutput{}, fmt.Errorf("document %q not found", input.ID)
			}
			if err != nil {
				return DocumentOutput{}, err
			}
			return documentOutput(doc, true), nil
		},
	)

	list := genkit.DefineTool(g, "list_documents",
		"List repository documents of one type (writing, skill or project-summary) without their bodies.",
		func(ctx *ai.ToolContext, input ListDocumentsInput) (DocumentListOutput, error) {
			if !allowedDocTypes[input.DocType] {
				return DocumentListOutput{}, fmt.Errorf("unknown doc_type %q", input.DocType)
			}
			docs, err := r.store.ListDocumentsByType(ctx, input.DocType)
			if err != nil {
				return DocumentListOutput{}, err
			}
			out := DocumentListOutput{Documents: make([]DocumentOutput, 0, len(docs))}
			for _, d := range docs {
				out.Documents = append(out.Documents, documentOutput(d, false))
			}
			return out, nil
		},
	)

	del := genkit.DefineTool(g, "delete_document",
		"Delete a repository document by id. Confirm with the owner before calling.",
		func(ctx *ai.ToolContext, input GetDocumentInput) (DeleteOutput, error) {
			if err := r.store.DeleteDocument(ctx, input.ID); err != nil {
				return DeleteOutput{}, err
			}
			return DeleteOutput{Deleted: true}, nil
		},
	)

	return []ai.ToolRef{save, get, list, del}
}
