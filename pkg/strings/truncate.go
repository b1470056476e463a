// Package strings holds text helpers for table output.
package strings

import (
	"strings"
)

// DescriptionWidth is the widest a description column is rendered.
const DescriptionWidth = 60

const ellipsis = "..."

// Truncate folds s onto a single line and shortens it to at most width
// runes, ending with "..." when cut. Widths below 4 are treated as 4.
func Truncate(s string, width int) string {
	width = max(width, len(ellipsis)+1)

	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-len(ellipsis)]) + ellipsis
}
