package utils

import (
	"regexp"
	"strings"
	"time"
)

var titleChars = regexp.MustCompile(`[^a-zA-Z0-9]`)

func Fps(fps int) time.Duration {
	return time.Duration(1000/fps) * time.Millisecond
}

func Mills() int64 {
	return time.Now().UnixNano() / int64(time.Millisecond)
}

// SanitizeTitle turns a clip title into a filename stem: every character
// outside [a-zA-Z0-9] becomes an underscore, then the result is lowercased.
func SanitizeTitle(title string) string {
	return strings.ToLower(titleChars.ReplaceAllString(title, "_"))
}
