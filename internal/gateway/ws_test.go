package gateway

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/GuiArSt/kronus/internal/bus"
	"github.com/GuiArSt/kronus/internal/config"
	"github.com/GuiArSt/kronus/internal/engine"
)

func TestChatWSRunsTwoTurns(t *testing.T) {
	var b *bus.Bus
	turn := func(ctx context.Context, req engine.TurnRequest) (*engine.TurnResult, error) {
		b.Publish(bus.TopicChatChunk, bus.ChatChunkEvent{TurnID: req.TurnID, Text: "echo: " + req.Message})
		b.Publish(bus.TopicChatDone, bus.ChatDoneEvent{TurnID: req.TurnID, FinishReason: "stop"})
		return &engine.TurnResult{}, nil
	}
	s, bb := testServer(t, config.GatewayConfig{}, turn)
	b = bb
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+srv.URL[len("http"):]+"/api/v1/chat/ws", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	for _, msg := range []string{"first", "second"} {
		if err := wsjson.Write(ctx, conn, chatRequest{Message: msg}); err != nil {
			t.Fatalf("write %q: %v", msg, err)
		}
		var chunk streamSSEEvent
		if err := wsjson.Read(ctx, conn, &chunk); err != nil {
			t.Fatalf("read chunk: %v", err)
		}
		if chunk.Type != "chunk" || chunk.Token != "echo: "+msg {
			t.Errorf("chunk = %+v", chunk)
		}
		var done streamSSEEvent
		if err := wsjson.Read(ctx, conn, &done); err != nil {
			t.Fatalf("read done: %v", err)
		}
		if done.Type != "done" || done.FinishReason != "stop" {
			t.Errorf("done = %+v", done)
		}
	}
}
