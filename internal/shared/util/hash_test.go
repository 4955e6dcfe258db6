package util

import "testing"

func TestShortHash(t *testing.T) {
	url := "https://www.example.com/pricing"
	got := ShortHash(url)
	if got != ShortHash(url) {
		t.Fatalf("expected stable hash, got %s", got)
	}
	for _, ch := range got {
		if !((ch >= 'a' && ch <= 'f') || (ch >= '0' && ch <= '9')) {
			t.Fatalf("hash contains non-hex character: %c", ch)
		}
	}
	if len(got) != 12 {
		t.Fatalf("expected 12 hex characters, got %d", len(got))
	}
	if got == ShortHash("https://www.example.com/") {
		t.Fatalf("expected different pages to hash differently")
	}
}
