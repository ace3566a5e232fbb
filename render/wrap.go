package render

import (
	"strings"
	"unicode/utf8"
)

// Wrap breaks text into at most maxLines rows of at most maxWidth
// characters, splitting on spaces. A word longer than a whole row is cut
// hard. The result is always maxLines long, padded with empty rows.
func Wrap(text string, maxWidth int, maxLines int) []string {
	lines := make([]string, 0, maxLines)
	current := ""

	for _, word := range strings.Fields(text) {
		need := utf8.RuneCountInString(word)
		if current != "" {
			need += utf8.RuneCountInString(current) + 1
		}

		if need <= maxWidth {
			if current != "" {
				current += " "
			}
			current += word
			continue
		}

		if current != "" {
			lines = append(lines, current)
		}

		if len(lines) >= maxLines {
			current = ""
			break
		}

		runes := []rune(word)
		if len(runes) > maxWidth {
			current = string(runes[:maxWidth])
		} else {
			current = word
		}
	}

	if current != "" && len(lines) < maxLines {
		lines = append(lines, current)
	}

	for len(lines) < maxLines {
		lines = append(lines, "")
	}

	return lines
}
