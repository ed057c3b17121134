package tools

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/google/uuid"

	"github.com/GuiArSt/kronus/internal/persistence"
)

const imageModel = "googleai/imagen-3.0-generate-002"

type GenerateImageInput struct {
	Prompt string `json:"prompt"`
	Title  string `json:"title,omitempty"`
}

type GenerateImageOutput struct {
	MediaID string `json:"media_id"`
	Path    string `json:"path"`
}

// registerImageTools wires image generation through the Google plugin. The
// tool fails with a configuration hint when no Google credential is loaded.
func registerImageTools(g *genkit.Genkit, r *Registry) []ai.ToolRef {
	gen := genkit.DefineTool(g, "generate_image",
		"Generate an image from a text prompt, save it to disk and record it as media. Requires a Google API key.",
		func(ctx *ai.ToolContext, input GenerateImageInput) (GenerateImageOutput, error) {
			if strings.TrimSpace(input.Prompt) == "" {
				return GenerateImageOutput{}, fmt.Errorf("prompt must be non-empty")
			}
			resp, err := genkit.Generate(ctx, g,
				ai.WithModelName(imageModel),
				ai.WithPrompt("%s", input.Prompt),
			)
			if err != nil {
				return GenerateImageOutput{}, fmt.Errorf("generate image: %w", err)
			}
			data, ext, err := firstImage(resp.Message)
			if err != nil {
				return GenerateImageOutput{}, err
			}
			dir := r.imageDir()
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return GenerateImageOutput{}, fmt.Errorf("create image dir: %w", err)
			}
			path := filepath.Join(dir, uuid.NewString()+ext)
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return GenerateImageOutput{}, fmt.Errorf("write image: %w", err)
			}
			title := input.Title
			if title == "" {
				title = input.Prompt
				if len(title) > 80 {
					title = title[:80]
				}
			}
			m := persistence.Media{Kind: "image", Title: title, Location: path, Note: input.Prompt}
			if err := r.store.SaveMedia(ctx, &m); err != nil {
				return GenerateImageOutput{}, err
			}
			return GenerateImageOutput{MediaID: m.ID, Path: path}, nil
		},
	)
	return []ai.ToolRef{gen}
}

func (r *Registry) imageDir() string {
	if r.imagesPath != "" {
		return r.imagesPath
	}
	return filepath.Join(os.TempDir(), "kronus-images")
}

// firstImage pulls the first media part out of a model message. Providers
// return images as data URLs.
func firstImage(msg *ai.Message) ([]byte, string, error) {
	if msg == nil {
		return nil, "", fmt.Errorf("model returned no message")
	}
	for _, part := range msg.Content {
		if part.Kind != ai.PartMedia {
			continue
		}
		payload := part.Text
		ext := ".png"
		if strings.Contains(part.ContentType, "jpeg") {
			ext = ".jpg"
		}
		if idx := strings.Index(payload, "base64,"); idx >= 0 {
			payload = payload[idx+len("base64,"):]
		}
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, "", fmt.Errorf("decode image payload: %w", err)
		}
		return data, ext, nil
	}
	return nil, "", fmt.Errorf("model returned no image part")
}
