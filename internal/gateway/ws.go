package gateway

import (
	"context"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/GuiArSt/kronus/internal/shared"
)

// handleChatWS implements GET /api/v1/chat/ws. Each JSON frame the client
// sends is one chat turn; the server answers with chunk frames followed by
// exactly one done or error frame, then reads the next turn. One turn is in
// flight per connection at a time.
func (s *Server) handleChatWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		// Same-origin is always allowed by the library; cross-origin
		// requests must match the configured allowlist.
		OriginPatterns: s.cfg.CORS.AllowedOrigins,
	})
	if err != nil {
		return
	}
	s.logger.Info("ws: client connected")
	defer func() {
		s.logger.Info("ws: client disconnecting")
		_ = conn.Close(websocket.StatusNormalClosure, "bye")
	}()

	ctx := r.Context()
	for {
		var req chatRequest
		if err := wsjson.Read(ctx, conn, &req); err != nil {
			return
		}
		if err := s.runWSTurn(ctx, conn, req); err != nil {
			_ = conn.Close(websocket.StatusInternalError, "stream error")
			return
		}
	}
}

func (s *Server) runWSTurn(ctx context.Context, conn *websocket.Conn, req chatRequest) error {
	turnID := shared.NewTraceID()

	sub := s.bus.Subscribe("chat.")
	defer s.bus.Unsubscribe(sub)

	turnCtx, cancelTurn := context.WithCancel(context.WithoutCancel(ctx))
	defer cancelTurn()
	go func() {
		_, _ = s.turn(turnCtx, req.toTurn(turnID))
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-sub.Ch():
			if !ok {
				return nil
			}
			frame, final := chatEventToSSE(event, turnID)
			if frame == nil {
				continue
			}
			if err := wsjson.Write(ctx, conn, frame); err != nil {
				return err
			}
			if final {
				return nil
			}
		}
	}
}
