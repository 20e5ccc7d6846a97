package cmd

import (
	"testing"
	"unicode/utf8"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{"short string untouched", "North Plot", 30, "North Plot"},
		{"long string gets ellipsis", "abcdefghij", 8, "abcde..."},
		{"tiny budget cuts hard", "abcdefghij", 3, "abc"},
		{"multibyte name cut on rune boundary", "Überlinger Weidefläche Süd", 10, "Überlin..."},
		{"cjk name cut on rune boundary", "北部放牧地その一", 6, "北部放..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.input, tt.maxLen)
			if got != tt.want {
				t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("truncate(%q, %d) produced invalid UTF-8", tt.input, tt.maxLen)
			}
		})
	}
}
