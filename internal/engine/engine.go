// Package engine orchestrates a chat turn: skill resolution, repository
// loading, prompt assembly, tool selection and the provider-chained model
// call, streaming chunks onto the event bus as they arrive.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/GuiArSt/kronus/internal/bus"
	"github.com/GuiArSt/kronus/internal/config"
	kotel "github.com/GuiArSt/kronus/internal/otel"
	"github.com/GuiArSt/kronus/internal/prompt"
	"github.com/GuiArSt/kronus/internal/repository"
	"github.com/GuiArSt/kronus/internal/shared"
	"github.com/GuiArSt/kronus/internal/skillset"
	"github.com/GuiArSt/kronus/internal/soul"
	"github.com/GuiArSt/kronus/internal/tokenutil"
	"github.com/GuiArSt/kronus/internal/tools"
)

// Engine holds everything a turn needs. One instance serves all
// conversations.
type Engine struct {
	g        *genkit.Genkit
	soul     *soul.Loader
	skills   *skillset.Registry
	repo     *repository.Loader
	tools    *tools.Registry
	bus      *bus.Bus
	metrics  *kotel.Metrics
	logger   *slog.Logger
	chain    []provider
	identity prompt.Identity
	now      func() time.Time
}

// Deps wires the engine's collaborators.
type Deps struct {
	LLM      config.LLMConfig
	Soul     *soul.Loader
	Skills   *skillset.Registry
	Repo     *repository.Loader
	Tools    *tools.Registry
	Bus      *bus.Bus
	Metrics  *kotel.Metrics
	Logger   *slog.Logger
	Identity prompt.Identity
}

// New initializes Genkit with every credentialed plugin, registers the tool
// definitions once, and builds the fallback chain.
func New(ctx context.Context, deps Deps) *Engine {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	g := initGenkit(ctx, deps.LLM, logger)
	deps.Tools.RegisterAll(g)
	return &Engine{
		g:        g,
		soul:     deps.Soul,
		skills:   deps.Skills,
		repo:     deps.Repo,
		tools:    deps.Tools,
		bus:      deps.Bus,
		metrics:  deps.Metrics,
		logger:   logger,
		chain:    buildChain(deps.LLM),
		identity: deps.Identity,
		now:      time.Now,
	}
}

// TurnRequest is one chat message plus the client-held conversation state.
type TurnRequest struct {
	ConversationID string
	TurnID         string
	Message        string
	History        []Message
	// ActiveSkills names the skills active for this turn. Nil means a
	// legacy client: no skill merge and no catalogue in the prompt. An
	// empty non-nil list is skill mode with nothing active.
	ActiveSkills *[]string
	// LegacySoul/LegacyTools are explicit flag records from pre-skill
	// clients. They widen the merge, never narrow it.
	LegacySoul  *skillset.SoulConfig
	LegacyTools *skillset.ToolsConfig
	// Model optionally pins a provider-qualified model for this turn.
	Model string
	// ReasoningEnabled asks the provider for extended thinking where the
	// model supports it.
	ReasoningEnabled bool
}

// SkillMode reports whether the client sent a skill list, empty or not.
// Requests without one take the legacy path.
func (r TurnRequest) SkillMode() bool { return r.ActiveSkills != nil }

// TurnResult is the completed turn.
type TurnResult struct {
	Reply        string
	FinishReason string
	ActiveSkills []string
	Provider     string
	InputTokens  int
	OutputTokens int
}

// Turn runs one chat turn end to end. Chunks stream onto the bus as
// chat.chunk events keyed by TurnID; the result mirrors the final
// chat.done event.
func (e *Engine) Turn(ctx context.Context, req TurnRequest) (*TurnResult, error) {
	start := e.now()
	if strings.TrimSpace(req.Message) == "" {
		return nil, e.fail(req.TurnID, requestError(fmt.Errorf("message must be non-empty")))
	}
	if req.TurnID == "" {
		req.TurnID = shared.NewTraceID()
	}
	ctx = shared.WithTraceID(ctx, req.TurnID)
	if req.ConversationID != "" {
		ctx = shared.WithConversationID(ctx, req.ConversationID)
	}
	logger := e.logger.With("trace_id", req.TurnID, "conversation_id", req.ConversationID)

	soulText, err := e.soul.Get()
	if err != nil {
		return nil, e.fail(req.TurnID, configurationError(fmt.Errorf("load soul: %w", err)))
	}

	// Legacy clients send no skill list at all: they get no merge input
	// and no catalogue section. Registry failure in skill mode degrades to
	// lean instead of failing the turn.
	var all, active []skillset.Skill
	if req.SkillMode() {
		var malformed int
		all, malformed, err = e.skills.LoadAll(ctx)
		if err != nil {
			logger.Warn("skill registry unavailable, continuing lean", "error", err.Error())
			all = nil
		}
		if malformed > 0 && e.metrics != nil {
			e.metrics.MalformedSkillDocs.Add(ctx, int64(malformed))
		}
		var unknown []string
		active, unknown = skillset.Resolve(all, *req.ActiveSkills)
		if len(unknown) > 0 {
			logger.Warn("ignoring unknown skill slugs", "slugs", strings.Join(unknown, ","))
		}
	}

	merged := skillset.Merge(active)
	if req.LegacySoul != nil || req.LegacyTools != nil {
		var ls skillset.SoulConfig
		var lt skillset.ToolsConfig
		if req.LegacySoul != nil {
			ls = *req.LegacySoul
		}
		if req.LegacyTools != nil {
			lt = *req.LegacyTools
		}
		merged = merged.WidenLegacy(ls, lt)
	}

	section, failedCats := e.repo.Load(ctx, merged.Soul)
	if e.metrics != nil {
		for _, cat := range failedCats {
			e.metrics.CategoryFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("category", cat)))
		}
		e.metrics.RepositoryTokens.Record(ctx, int64(section.TokenEstimate))
	}

	activeSlugs := make([]string, 0, len(active))
	for _, sk := range active {
		activeSlugs = append(activeSlugs, sk.Slug)
	}
	session := skillset.NewSession(activeSlugs)
	ctx = skillset.WithSession(ctx, session)

	systemPrompt := prompt.Assemble(prompt.Input{
		SoulText:     soulText,
		Now:          e.now(),
		Identity:     e.identity,
		ActiveSkills: active,
		Catalogue:    all,
		Repository:   section.Content,
	})
	promptTokens := tokenutil.EstimateTokens(systemPrompt)
	if e.metrics != nil {
		e.metrics.PromptTokens.Record(ctx, int64(promptTokens))
	}

	toolRefs := e.tools.Build(merged.Tools)
	msgs := historyToMessages(SanitizeHistory(req.History))

	candidates, err := e.candidates(req.Model)
	if err != nil {
		return nil, e.fail(req.TurnID, configurationError(err))
	}

	res, turnErr := e.generate(ctx, logger, req, systemPrompt, msgs, toolRefs, candidates)
	if turnErr != nil {
		return nil, e.fail(req.TurnID, turnErr)
	}
	res.ActiveSkills = session.Slugs()
	res.InputTokens = promptTokens + tokenutil.EstimateTokens(req.Message)
	res.OutputTokens = tokenutil.EstimateTokens(res.Reply)

	e.bus.Publish(bus.TopicChatDone, bus.ChatDoneEvent{
		TurnID:       req.TurnID,
		FinishReason: res.FinishReason,
		ActiveSkills: res.ActiveSkills,
		InputTokens:  res.InputTokens,
		OutputTokens: res.OutputTokens,
	})

	if e.metrics != nil {
		e.metrics.ChatTurns.Add(ctx, 1, metric.WithAttributes(attribute.String("provider", res.Provider)))
		e.metrics.GenerationDuration.Record(ctx, e.now().Sub(start).Seconds())
		e.metrics.SkillActivations.Add(ctx, int64(len(res.ActiveSkills)))
	}

	if res.Reply == "" {
		logger.Warn("generation produced no text output",
			"provider", res.Provider, "finish_reason", res.FinishReason)
	}
	logger.Info("chat turn complete",
		"provider", res.Provider,
		"finish_reason", res.FinishReason,
		"active_skills", strings.Join(res.ActiveSkills, ","),
		"prompt_tokens", res.InputTokens,
		"reply_tokens", res.OutputTokens,
		"duration_ms", time.Since(start).Milliseconds())

	return res, nil
}

// candidates returns the providers to try, honoring an explicit model pin.
func (e *Engine) candidates(model string) ([]provider, error) {
	if len(e.chain) == 0 {
		return nil, fmt.Errorf("no LLM provider credentialed; set ANTHROPIC_API_KEY, OPENAI_API_KEY or GEMINI_API_KEY")
	}
	if model == "" {
		return e.chain, nil
	}
	pinned, err := resolveModel(e.chain, model)
	if err != nil {
		return nil, err
	}
	out := []provider{pinned}
	for _, p := range e.chain {
		if p.name != pinned.name {
			out = append(out, p)
		}
	}
	return out, nil
}

// generate walks the provider chain. Fallback happens only when no chunk
// has been streamed yet; once output reached the client the turn fails in
// place.
func (e *Engine) generate(ctx context.Context, logger *slog.Logger, req TurnRequest, systemPrompt string, msgs []*ai.Message, toolRefs []ai.ToolRef, candidates []provider) (*TurnResult, *TurnError) {
	// Escape % so ai.WithSystem's formatting cannot corrupt the prompt.
	escapedSystem := strings.ReplaceAll(systemPrompt, "%", "%%")

	var lastErr error
	for i, p := range candidates {
		if i > 0 {
			logger.Warn("falling back to next provider", "provider", p.name, "error", fmt.Sprint(lastErr))
			if e.metrics != nil {
				e.metrics.ProviderFallbacks.Add(ctx, 1, metric.WithAttributes(attribute.String("provider", p.name)))
			}
		}

		opts := []ai.GenerateOption{
			ai.WithModelName(p.modelName()),
			ai.WithSystem(escapedSystem),
			ai.WithPrompt("%s", req.Message),
		}
		if len(msgs) > 0 {
			opts = append(opts, ai.WithMessages(msgs...))
		}
		if len(toolRefs) > 0 {
			opts = append(opts, ai.WithTools(toolRefs...))
			opts = append(opts, ai.WithMaxTurns(3))
		}
		if rc := reasoningConfig(p.name, req.ReasoningEnabled); rc != nil {
			opts = append(opts, ai.WithConfig(rc))
		}

		stream := genkit.GenerateStream(ctx, e.g, opts...)

		var full strings.Builder
		var doneReply, finishReason string
		streamed := false
		var streamErr error
		for streamVal, err := range stream {
			if err != nil {
				streamErr = err
				break
			}
			if streamVal.Chunk != nil {
				for _, part := range streamVal.Chunk.Content {
					if part.Kind == ai.PartText && part.Text != "" {
						streamed = true
						full.WriteString(part.Text)
						e.bus.Publish(bus.TopicChatChunk, bus.ChatChunkEvent{TurnID: req.TurnID, Text: part.Text})
						if e.metrics != nil {
							e.metrics.StreamChunks.Add(ctx, 1)
						}
					}
				}
			}
			if streamVal.Done && streamVal.Response != nil {
				doneReply = streamVal.Response.Text()
				finishReason = string(streamVal.Response.FinishReason)
			}
		}

		if streamErr != nil {
			lastErr = streamErr
			class := ClassifyError(streamErr)
			if e.metrics != nil {
				e.metrics.GenerationErrors.Add(ctx, 1, metric.WithAttributes(
					attribute.String("provider", p.name),
					attribute.String("class", string(class)),
				))
			}
			if !streamed && fallbackWorthy(class) {
				continue
			}
			return nil, generationError(streamErr)
		}

		reply := full.String()
		if reply == "" {
			reply = doneReply
		}
		if finishReason == "" {
			finishReason = "stop"
		}
		return &TurnResult{Reply: reply, FinishReason: finishReason, Provider: p.name}, nil
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no provider attempted")
	}
	return nil, &TurnError{Category: CategoryConfiguration, Class: ClassifyError(lastErr),
		Err: fmt.Errorf("all providers exhausted: %w", lastErr)}
}

// fail publishes the error event and returns the error for the caller.
func (e *Engine) fail(turnID string, terr *TurnError) error {
	e.bus.Publish(bus.TopicChatError, bus.ChatErrorEvent{
		TurnID:   turnID,
		Category: string(terr.Category),
		Message:  shared.Redact(terr.Error()),
	})
	return terr
}

// historyToMessages converts sanitized client history to Genkit messages.
func historyToMessages(items []Message) []*ai.Message {
	var msgs []*ai.Message
	for _, item := range items {
		var role ai.Role
		switch item.Role {
		case RoleUser:
			role = ai.RoleUser
		case RoleAssistant:
			role = ai.RoleModel
		case RoleSystem:
			role = ai.RoleSystem
		case RoleTool:
			role = ai.RoleTool
		default:
			continue
		}
		msgs = append(msgs, &ai.Message{
			Role:    role,
			Content: []*ai.Part{ai.NewTextPart(item.Content)},
		})
	}
	return msgs
}
