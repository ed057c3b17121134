package bus

import (
	"testing"
	"time"
)

func recvOne(t *testing.T, sub *Subscription) Event {
	t.Helper()
	select {
	case ev := <-sub.Ch():
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestPublishPrefixMatch(t *testing.T) {
	b := New()
	sub := b.Subscribe("chat.")
	defer b.Unsubscribe(sub)

	b.Publish(TopicChatChunk, ChatChunkEvent{TurnID: "t1", Text: "hello"})
	ev := recvOne(t, sub)
	if ev.Topic != TopicChatChunk {
		t.Fatalf("expected %s, got %s", TopicChatChunk, ev.Topic)
	}
	payload, ok := ev.Payload.(ChatChunkEvent)
	if !ok || payload.Text != "hello" {
		t.Fatalf("unexpected payload %+v", ev.Payload)
	}
}

func TestPublishNonMatchingPrefix(t *testing.T) {
	b := New()
	sub := b.Subscribe("mirror.")
	defer b.Unsubscribe(sub)

	b.Publish(TopicChatDone, ChatDoneEvent{TurnID: "t1"})
	select {
	case ev := <-sub.Ch():
		t.Fatalf("unexpected event %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	b := New()
	sub := b.Subscribe("")
	b.Unsubscribe(sub)
	if _, ok := <-sub.Ch(); ok {
		t.Fatal("channel should be closed")
	}
	// Double unsubscribe must not panic.
	b.Unsubscribe(sub)
}

func TestSlowConsumerDropsNotBlocks(t *testing.T) {
	b := New()
	sub := b.Subscribe("chat.")
	defer b.Unsubscribe(sub)

	done := make(chan struct{})
	go func() {
		for i := 0; i < defaultBufferSize*2; i++ {
			b.Publish(TopicChatChunk, ChatChunkEvent{TurnID: "t", Text: "x"})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on slow consumer")
	}
}
