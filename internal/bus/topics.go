package bus

// Chat stream topics.
const (
	TopicChatChunk = "chat.chunk"
	TopicChatDone  = "chat.done"
	TopicChatError = "chat.error"
)

// ChatChunkEvent carries one streamed text chunk of a chat turn.
type ChatChunkEvent struct {
	TurnID string
	Text   string
}

// ChatDoneEvent signals the end of a chat turn's stream.
type ChatDoneEvent struct {
	TurnID       string
	FinishReason string
	ActiveSkills []string // skill slugs active after the turn (self-activation included)
	InputTokens  int
	OutputTokens int
}

// ChatErrorEvent signals an abnormal end of a chat turn.
type ChatErrorEvent struct {
	TurnID   string
	Category string
	Message  string
}
