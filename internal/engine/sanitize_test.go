package engine

import (
	"testing"
)

func TestSanitizeHistoryDropsUnknownRolesAndEmpties(t *testing.T) {
	in := []Message{
		{Role: "user", Content: "hello"},
		{Role: "narrator", Content: "should vanish"},
		{Role: "assistant", Content: "   "},
		{Role: "USER", Content: "mixed case role"},
	}
	out := SanitizeHistory(in)
	if len(out) != 2 {
		t.Fatalf("out = %+v", out)
	}
	if out[0].Content != "hello" || out[1].Content != "mixed case role" {
		t.Fatalf("out = %+v", out)
	}
	if out[1].Role != "user" {
		t.Fatalf("role not normalized: %q", out[1].Role)
	}
}

func TestSanitizeHistoryKeepsTrailingAssistantPlaceholder(t *testing.T) {
	in := []Message{
		{Role: "user", Content: "continue please"},
		{Role: "assistant", Content: ""},
	}
	out := SanitizeHistory(in)
	if len(out) != 2 {
		t.Fatalf("out = %+v", out)
	}
	if out[1].Role != RoleAssistant || out[1].Content == "" {
		t.Fatalf("trailing assistant not preserved as placeholder: %+v", out[1])
	}

	// Same empty assistant mid-history is dropped.
	in = []Message{
		{Role: "assistant", Content: ""},
		{Role: "user", Content: "hi"},
	}
	out = SanitizeHistory(in)
	if len(out) != 1 || out[0].Role != RoleUser {
		t.Fatalf("mid-history empty assistant kept: %+v", out)
	}
}

func TestSanitizeTextStripsControlAndSentinels(t *testing.T) {
	in := "hi\x00there <|im_start|> <system> go\x1b on"
	got := sanitizeText(in)
	if got != "hithere   go on" {
		t.Fatalf("sanitizeText = %q", got)
	}
}

func TestHistoryToMessagesRoleMapping(t *testing.T) {
	msgs := historyToMessages([]Message{
		{Role: RoleUser, Content: "u"},
		{Role: RoleAssistant, Content: "a"},
		{Role: RoleSystem, Content: "s"},
		{Role: RoleTool, Content: "t"},
	})
	if len(msgs) != 4 {
		t.Fatalf("msgs = %d", len(msgs))
	}
	wantRoles := []string{"user", "model", "system", "tool"}
	for i, want := range wantRoles {
		if string(msgs[i].Role) != want {
			t.Errorf("role %d = %s, want %s", i, msgs[i].Role, want)
		}
	}
	if len(msgs[0].Content) != 1 || msgs[0].Content[0].Text != "u" {
		t.Fatalf("content part wrong: %+v", msgs[0].Content)
	}
}
