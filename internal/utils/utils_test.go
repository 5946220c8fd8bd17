package utils

import (
	"testing"
	"time"
)

func TestSanitizeTitle(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Wow! 100% Viral??", "wow__100__viral__"},
		{"plain", "plain"},
		{"MixedCase123", "mixedcase123"},
		{"", ""},
		{"a b", "a_b"},
	}
	for _, tc := range cases {
		if got := SanitizeTitle(tc.in); got != tc.want {
			t.Errorf("SanitizeTitle(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFps(t *testing.T) {
	if got := Fps(30); got != 33*time.Millisecond {
		t.Errorf("Fps(30) = %v, want 33ms", got)
	}
	if got := Fps(24); got != 41*time.Millisecond {
		t.Errorf("Fps(24) = %v, want 41ms", got)
	}
}
