package util

import "strings"

// CleanText collapses whitespace and strips non-breaking spaces that listing
// markup tends to carry.
func CleanText(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(s)
}
