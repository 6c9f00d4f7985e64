package pathutil

import "testing"

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"alien (1979)", "alien (1979)"},
		{"Mission: Impossible (1996)", "Mission - Impossible (1996)"},
		{"Face/Off (1997)", "Face-Off (1997)"},
		{"What?  Now", "What Now"},
		{`AC/DC "Live"`, "AC-DC 'Live'"},
		{"...", "unknown"},
		{"", "unknown"},
		{"con", "con_"},
		{"Zoë Saldaña", "Zoë Saldaña"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := SanitizeName(tt.in, "unknown"); got != tt.want {
				t.Errorf("SanitizeName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizePath(t *testing.T) {
	if got := NormalizePath("a/b/c"); got != "a/b/c" {
		t.Errorf("NormalizePath() = %q", got)
	}
}
