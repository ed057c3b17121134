package engine

import (
	"regexp"
	"strings"
)

// Roles accepted in client-supplied history.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
	RoleTool      = "tool"
)

// Message is one prior turn supplied by the client. History is stateless:
// the client owns the transcript and replays it each request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

var (
	// Control characters other than tab and newline.
	reControl = regexp.MustCompile(`[\x00-\x08\x0b\x0c\x0e-\x1f\x7f]`)
	// Chat template sentinel tags that would let pasted text pose as
	// protocol frames.
	reSentinel = regexp.MustCompile(`(?i)<\s*\|?\s*(system|im_start|im_end|endoftext)\s*\|?\s*>`)
)

// sanitizeText strips control characters and chat sentinel tags from one
// message body.
func sanitizeText(s string) string {
	s = reControl.ReplaceAllString(s, "")
	s = reSentinel.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// SanitizeHistory cleans client history for the model call. Messages with
// unknown roles or empty bodies are dropped, except a trailing assistant
// message, which is kept as an empty placeholder so providers that require
// strict user/assistant alternation accept the transcript.
func SanitizeHistory(history []Message) []Message {
	out := make([]Message, 0, len(history))
	for i, m := range history {
		role := strings.ToLower(strings.TrimSpace(m.Role))
		switch role {
		case RoleUser, RoleAssistant, RoleSystem, RoleTool:
		default:
			continue
		}
		content := sanitizeText(m.Content)
		if content == "" {
			if role == RoleAssistant && i == len(history)-1 {
				out = append(out, Message{Role: role, Content: "..."})
			}
			continue
		}
		out = append(out, Message{Role: role, Content: content})
	}
	return out
}
