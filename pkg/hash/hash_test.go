package hash

import (
	"testing"
)

func TestSHA256Hex(t *testing.T) {
	// Known SHA256 of "hello"
	want := "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"
	got := SHA256Hex("hello")
	if got != want {
		t.Errorf("SHA256Hex(\"hello\") = %s, want %s", got, want)
	}
}

func TestSHA256Hex_Empty(t *testing.T) {
	// SHA256 of empty string
	want := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	got := SHA256Hex("")
	if got != want {
		t.Errorf("SHA256Hex(\"\") = %s, want %s", got, want)
	}
}

func TestAnswerKey_Deterministic(t *testing.T) {
	url := "https://youtube.com/watch?v=abc123"
	question := "What is the derivative of x^2?"

	if AnswerKey(url, question) != AnswerKey(url, question) {
		t.Error("AnswerKey should be deterministic")
	}
}

func TestAnswerKey_DistinctQuestions(t *testing.T) {
	url := "https://youtube.com/watch?v=abc123"

	// No normalization: case and whitespace variants are distinct keys.
	a := AnswerKey(url, "What is momentum?")
	b := AnswerKey(url, "what is momentum?")
	c := AnswerKey(url, "What is momentum? ")

	if a == b || a == c || b == c {
		t.Error("textually distinct questions should produce distinct keys")
	}
}

func TestAnswerKey_SeparatorPreventsCollision(t *testing.T) {
	// Without a separator, (url+"a", "b") and (url, "ab") would collide.
	a := AnswerKey("https://youtu.be/abca", "b")
	b := AnswerKey("https://youtu.be/abc", "ab")
	if a == b {
		t.Error("url/question boundary should be unambiguous")
	}
}

func TestShortHash(t *testing.T) {
	fullHash := SHA256Hex("user-42")

	tests := []struct {
		name      string
		input     string
		prefixLen int
		want      string
	}{
		{"12 char prefix", "user-42", 12, fullHash[:12]},
		{"8 char prefix", "user-42", 8, fullHash[:8]},
		{"full hash if prefix too long", "user-42", 100, fullHash},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ShortHash(tt.input, tt.prefixLen)
			if got != tt.want {
				t.Errorf("ShortHash(%q, %d) = %s, want %s", tt.input, tt.prefixLen, got, tt.want)
			}
		})
	}
}
