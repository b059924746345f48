package sanitizer

import "testing"

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"already clean", "New Delhi", "New Delhi"},
		{"outer spaces", "  Mumbai  ", "Mumbai"},
		{"inner runs", "New    Delhi", "New Delhi"},
		{"tabs and newlines", "Navi\t\nMumbai", "Navi Mumbai"},
		{"empty", "", ""},
		{"whitespace only", " \t ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TrimAndNormalize(tt.input); got != tt.want {
				t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeCityKey(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"New Delhi", "new delhi"},
		{"  NEW   delhi ", "new delhi"},
		{"Bengaluru", "bengaluru"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := NormalizeCityKey(tt.input); got != tt.want {
				t.Errorf("NormalizeCityKey(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeCityKey_PrefixIsConsistent(t *testing.T) {
	stored := NormalizeCityKey("New Delhi")
	query := NormalizeCityKey(" new  de")
	if len(query) > len(stored) || stored[:len(query)] != query {
		t.Errorf("query %q should be a prefix of %q", query, stored)
	}
}

func TestNormalizeCode(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"del", "DEL"},
		{" ai 202 ", "AI202"},
		{"AI-202", "AI-202"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := NormalizeCode(tt.input); got != tt.want {
				t.Errorf("NormalizeCode(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Asha.Rao@Example.COM "); got != "asha.rao@example.com" {
		t.Errorf("NormalizeEmail() = %q", got)
	}
}
