// Package classifier tags complaint text with a category, priority and
// emotion using fixed keyword tables. It never fails.
package classifier

import (
	"strings"
	"unicode/utf8"
)

const summaryLimit = 100

type Analysis struct {
	Summary  string `json:"summary"`
	Category string `json:"category"`
	Priority string `json:"priority"`
	Emotion  string `json:"emotion"`
}

func Classify(text string) Analysis {
	lowered := strings.ToLower(text)
	return Analysis{
		Summary:  Summarize(text),
		Category: firstMatch(categories, lowered),
		Priority: firstMatch(priorities, lowered),
		Emotion:  firstMatch(emotions, lowered),
	}
}

// ComplaintText joins title and description the way submissions and
// reanalysis both classify them.
func ComplaintText(title, description string) string {
	return strings.TrimSpace(title + " " + description)
}

// Summarize keeps the first 100 code points and appends "..." when the text
// is longer.
func Summarize(text string) string {
	if utf8.RuneCountInString(text) <= summaryLimit {
		return text
	}
	n := 0
	for i := range text {
		if n == summaryLimit {
			return text[:i] + "..."
		}
		n++
	}
	return text
}
