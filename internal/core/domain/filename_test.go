package domain

import (
	"strings"
	"testing"
	"unicode"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain name unchanged",
			input:    "parcel",
			expected: "parcel",
		},
		{
			name:     "spaces collapse to underscores",
			input:    "Field A",
			expected: "Field_A",
		},
		{
			name:     "run of whitespace collapses to one underscore",
			input:    "Field \t  A",
			expected: "Field_A",
		},
		{
			name:     "reserved characters replaced",
			input:    `a<b>c:d"e/f\g|h?i*j`,
			expected: "a_b_c_d_e_f_g_h_i_j",
		},
		{
			name:     "leading and trailing whitespace",
			input:    "  North Plot  ",
			expected: "_North_Plot_",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "mixed reserved and whitespace",
			input:    "plots/2024: west side",
			expected: "plots_2024__west_side",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeFilename(tt.input)
			if got != tt.expected {
				t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestSanitizeFilenameIdempotent(t *testing.T) {
	inputs := []string{
		"Field A",
		`a<b>c:d"e/f\g|h?i*j`,
		"  spaced  out  ",
		"already_clean",
		"",
		"tabs\tand\nnewlines",
	}

	for _, input := range inputs {
		once := SanitizeFilename(input)
		twice := SanitizeFilename(once)
		if once != twice {
			t.Errorf("SanitizeFilename not idempotent for %q: first %q, second %q", input, once, twice)
		}
	}
}

func TestSanitizeFilenameTotality(t *testing.T) {
	inputs := []string{
		"Field A",
		`<>:"/\|?*`,
		" \t\n mixed \r\n content / here ",
		"unicode – names — fine",
	}

	for _, input := range inputs {
		got := SanitizeFilename(input)

		if strings.ContainsAny(got, `<>:"/\|?*`) {
			t.Errorf("SanitizeFilename(%q) = %q still contains reserved characters", input, got)
		}
		for _, r := range got {
			if unicode.IsSpace(r) {
				t.Errorf("SanitizeFilename(%q) = %q still contains whitespace", input, got)
				break
			}
		}
		if got != strings.TrimSpace(got) {
			t.Errorf("SanitizeFilename(%q) = %q has leading or trailing whitespace", input, got)
		}
	}
}
