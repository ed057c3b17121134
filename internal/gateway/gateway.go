// Package gateway is the HTTP surface of the Kronus daemon: a chat endpoint
// streaming over SSE or websocket, the skill catalogue, and a health check,
// behind bearer-token auth and CORS.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/GuiArSt/kronus/internal/bus"
	"github.com/GuiArSt/kronus/internal/config"
	"github.com/GuiArSt/kronus/internal/engine"
	"github.com/GuiArSt/kronus/internal/shared"
	"github.com/GuiArSt/kronus/internal/skillset"
)

const maxChatBodyBytes = 1 << 20 // 1MB; history is text, not media

// turnFunc runs one chat turn. It is the engine's Turn method in
// production and a stub in tests.
type turnFunc func(ctx context.Context, req engine.TurnRequest) (*engine.TurnResult, error)

// Server is the Kronus HTTP gateway.
type Server struct {
	cfg    config.GatewayConfig
	turn   turnFunc
	bus    *bus.Bus
	skills *skillset.Registry
	logger *slog.Logger

	httpSrv *http.Server
}

// New creates a gateway server. The engine and gateway must share the same
// bus instance; chat responses are streamed from bus events keyed by turn ID.
func New(cfg config.GatewayConfig, eng *engine.Engine, b *bus.Bus, skills *skillset.Registry, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:    cfg,
		bus:    b,
		skills: skills,
		logger: logger,
	}
	if eng != nil {
		s.turn = eng.Turn
	}
	return s
}

// Handler builds the full middleware-wrapped handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/api/v1/skills", s.handleSkills)
	mux.HandleFunc("/api/v1/chat", s.handleChat)
	mux.HandleFunc("/api/v1/chat/ws", s.handleChatWS)

	var h http.Handler = mux
	h = limitRequestBody(maxChatBodyBytes, h)
	h = NewAuthMiddleware(s.cfg.AuthToken).Wrap(h)
	h = NewCORSMiddleware(s.cfg.CORS).Wrap(h)
	return h
}

// ListenAndServe runs the gateway until the context is canceled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr := s.cfg.Addr
	if addr == "" {
		addr = "127.0.0.1:8471"
	}
	s.httpSrv = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("gateway listening", "addr", addr)
		errCh <- s.httpSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.httpSrv.Shutdown(shutCtx)
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// skillSummary is one catalogue row. Content bodies are deliberately
// omitted; they belong to the model prompt, not the UI.
type skillSummary struct {
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon,omitempty"`
	Color       string `json:"color,omitempty"`
	Priority    int    `json:"priority"`
}

func (s *Server) handleSkills(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	all, malformed, err := s.skills.LoadAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("loading skills: %v", err))
		return
	}
	out := make([]skillSummary, 0, len(all))
	for _, sk := range all {
		out = append(out, skillSummary{
			Slug:        sk.Slug,
			Title:       sk.Title,
			Description: sk.Description,
			Icon:        sk.Config.Icon,
			Color:       sk.Config.Color,
			Priority:    sk.Config.Priority,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"skills":    out,
		"malformed": malformed,
	})
}

// chatRequest is the wire shape of one chat turn. The client owns the
// transcript and replays it in history; active_skills round-trips the
// skill session between turns. A request that omits active_skills
// entirely is a legacy client and gets no skill merge or catalogue; an
// empty list is skill mode with nothing active. soul_config/tools_config
// are the legacy explicit-flag records and only ever widen the merge.
type chatRequest struct {
	ConversationID   string                `json:"conversation_id,omitempty"`
	Message          string                `json:"message"`
	History          []engine.Message      `json:"history,omitempty"`
	ActiveSkills     *[]string             `json:"active_skills,omitempty"`
	SoulConfig       *skillset.SoulConfig  `json:"soul_config,omitempty"`
	ToolsConfig      *skillset.ToolsConfig `json:"tools_config,omitempty"`
	Model            string                `json:"model,omitempty"`
	ReasoningEnabled bool                  `json:"reasoning_enabled,omitempty"`
}

func (cr chatRequest) toTurn(turnID string) engine.TurnRequest {
	return engine.TurnRequest{
		ConversationID:   cr.ConversationID,
		TurnID:           turnID,
		Message:          cr.Message,
		History:          cr.History,
		ActiveSkills:     cr.ActiveSkills,
		LegacySoul:       cr.SoulConfig,
		LegacyTools:      cr.ToolsConfig,
		Model:            cr.Model,
		ReasoningEnabled: cr.ReasoningEnabled,
	}
}

// handleChat implements POST /api/v1/chat as an SSE stream: chunk events
// while the model generates, then exactly one done or error event.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	turnID := shared.NewTraceID()

	// Subscribe before launching the turn so no chunk is lost.
	sub := s.bus.Subscribe("chat.")
	defer s.bus.Unsubscribe(sub)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	turnCtx, cancelTurn := context.WithCancel(context.WithoutCancel(r.Context()))
	defer cancelTurn()
	go func() {
		_, _ = s.turn(turnCtx, req.toTurn(turnID))
	}()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("sse: client disconnected", "turn_id", turnID)
			return
		case event, ok := <-sub.Ch():
			if !ok {
				return
			}
			sse, final := chatEventToSSE(event, turnID)
			if sse == nil {
				continue
			}
			if err := writeSSE(w, *sse); err != nil {
				return
			}
			flusher.Flush()
			if final {
				return
			}
		}
	}
}

// streamSSEEvent is one SSE data frame on the chat stream.
type streamSSEEvent struct {
	Type         string   `json:"type"` // chunk | done | error
	TurnID       string   `json:"turn_id"`
	Token        string   `json:"token,omitempty"`
	FinishReason string   `json:"finish_reason,omitempty"`
	ActiveSkills []string `json:"active_skills,omitempty"`
	InputTokens  int      `json:"input_tokens,omitempty"`
	OutputTokens int      `json:"output_tokens,omitempty"`
	Category     string   `json:"category,omitempty"`
	Error        string   `json:"error,omitempty"`
}

// chatEventToSSE maps a bus event to an SSE frame. Events for other turns
// return nil. final reports whether the stream is complete.
func chatEventToSSE(event bus.Event, turnID string) (*streamSSEEvent, bool) {
	switch payload := event.Payload.(type) {
	case bus.ChatChunkEvent:
		if payload.TurnID != turnID {
			return nil, false
		}
		return &streamSSEEvent{Type: "chunk", TurnID: turnID, Token: payload.Text}, false
	case bus.ChatDoneEvent:
		if payload.TurnID != turnID {
			return nil, false
		}
		return &streamSSEEvent{
			Type:         "done",
			TurnID:       turnID,
			FinishReason: payload.FinishReason,
			ActiveSkills: payload.ActiveSkills,
			InputTokens:  payload.InputTokens,
			OutputTokens: payload.OutputTokens,
		}, true
	case bus.ChatErrorEvent:
		if payload.TurnID != turnID {
			return nil, false
		}
		return &streamSSEEvent{
			Type:     "error",
			TurnID:   turnID,
			Category: payload.Category,
			Error:    payload.Message,
		}, true
	default:
		return nil, false
	}
}

func writeSSE(w http.ResponseWriter, ev streamSSEEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data)
	return err
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
