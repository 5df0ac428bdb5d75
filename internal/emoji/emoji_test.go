package emoji

import "testing"

func TestGetEmoji(t *testing.T) {
	t.Cleanup(func() { SetEmojiDisabled(false) })

	SetEmojiDisabled(false)
	if got := GetEmoji("summary"); got != "📝" {
		t.Errorf("expected emoji, got %q", got)
	}

	SetEmojiDisabled(true)
	if !IsEmojiDisabled() {
		t.Fatal("expected emoji to be disabled")
	}
	if got := GetEmoji("summary"); got != "[SUM]" {
		t.Errorf("expected fallback, got %q", got)
	}

	if got := GetEmoji("no-such-key"); got != "[?]" {
		t.Errorf("expected unknown marker, got %q", got)
	}
}

func TestFallback(t *testing.T) {
	if got := Fallback("answer"); got != "[ANS]" {
		t.Errorf("Fallback(answer) = %q", got)
	}
	if got := Fallback("missing"); got != "[?]" {
		t.Errorf("Fallback(missing) = %q", got)
	}
}
