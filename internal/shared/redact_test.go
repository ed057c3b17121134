package shared

import (
	"strings"
	"testing"
)

func TestRedactBearerToken(t *testing.T) {
	in := "calling api with Bearer abcdefghijklmnop1234567890"
	out := Redact(in)
	if strings.Contains(out, "abcdefghijklmnop1234567890") {
		t.Fatalf("token survived redaction: %q", out)
	}
	if !strings.Contains(out, "[REDACTED]") {
		t.Fatalf("expected placeholder in %q", out)
	}
}

func TestRedactProviderKeys(t *testing.T) {
	cases := []string{
		"sk-ant-REDACTED",
		"AIzaSyA-aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
		"lin_api_aaaaaaaaaaaaaaaaaaaaaaaa",
	}
	for _, c := range cases {
		if out := Redact("key is " + c); strings.Contains(out, c) {
			t.Errorf("key %q survived redaction: %q", c, out)
		}
	}
}

func TestRedactKeepsPlainText(t *testing.T) {
	in := "nothing secret here, just a journal entry about refactoring"
	if out := Redact(in); out != in {
		t.Fatalf("plain text mutated: %q", out)
	}
}

func TestRedactEnvValue(t *testing.T) {
	if got := RedactEnvValue("LINEAR_API_KEY", "lin_api_xyz"); got != "[REDACTED]" {
		t.Fatalf("expected redaction, got %q", got)
	}
	if got := RedactEnvValue("KRONUS_HOME", "/home/g/.kronus"); got != "/home/g/.kronus" {
		t.Fatalf("non-secret value mutated: %q", got)
	}
}
