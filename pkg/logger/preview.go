package logger

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Preview flattens s onto one line and cuts it to at most maxLen cells for
// log fields. Cuts never split a rune.
func Preview(s string, maxLen int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if ansi.StringWidth(s) <= maxLen {
		return s
	}

	return ansi.Truncate(s, maxLen, "") + "..."
}
