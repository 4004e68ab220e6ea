package utils

import (
	"strings"
	"testing"
)

func TestNewFriendCode(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		code := NewFriendCode()
		if len(code) != FriendCodeLength {
			t.Fatalf("expected length %d, got %d (%q)", FriendCodeLength, len(code), code)
		}
		for _, r := range code {
			if !strings.ContainsRune(friendCodeAlphabet, r) {
				t.Fatalf("unexpected character %q in code %q", r, code)
			}
		}
		seen[code] = true
	}
	if len(seen) < 90 {
		t.Fatalf("expected mostly unique codes, got %d distinct out of 100", len(seen))
	}
}
