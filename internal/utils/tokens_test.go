package utils_test

import (
	"strings"
	"testing"

	"github.com/KaramelBytes/cord19-explorer/internal/utils"
)

func TestCountWords(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want int
	}{
		{"empty", "", 0},
		{"spaces only", "   \t\n", 0},
		{"hyphenated stays one token", "SARS-CoV-2 causes severe disease", 4},
		{"mixed whitespace", "a  b\tc\nd", 4},
	}
	for _, c := range cases {
		if got := utils.CountWords(c.in); got != c.want {
			t.Errorf("%s: got %d want %d", c.name, got, c.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	text := strings.Repeat("abcd ", 40)
	got := utils.Truncate(text, 80)
	if n := len([]rune(got)); n != 80 {
		t.Fatalf("len=%d, want 80", n)
	}
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("expected ellipsis, got %q", got)
	}
	if utils.Truncate("short", 80) != "short" {
		t.Fatalf("short text should be unchanged")
	}
	if utils.Truncate("abc", 0) != "" {
		t.Fatalf("zero limit should be empty")
	}
}
