package utils

import "strings"

// ContainsAny checks if s contains any of the substrings (case-insensitive).
func ContainsAny(s string, substrings ...string) bool {
	sLower := strings.ToLower(s)
	for _, sub := range substrings {
		if strings.Contains(sLower, strings.ToLower(sub)) {
			return true
		}
	}
	return false
}

// FirstLine returns the first non-empty line of command output, trimmed.
func FirstLine(output string) string {
	for _, line := range strings.Split(output, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}
