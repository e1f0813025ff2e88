package adapter

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"
)

var (
	spoilerRe = regexp.MustCompile(`(?s)~!.*?!~`)
	brRe      = regexp.MustCompile(`(?i)<br\s*/?>`)
	boldRe    = regexp.MustCompile(`(?i)</?(?:b|strong)>`)
	italicRe  = regexp.MustCompile(`(?i)</?(?:i|em)>`)
	tagRe     = regexp.MustCompile(`<[^>]*>`)
	blankRe   = regexp.MustCompile(`\n{3,}`)
)

// CleanHTML converts an HTML fragment into markdown-safe plain text.
// Spoiler sections are dropped, bold/italic markers are mapped to their
// markdown forms, and remaining tags are stripped.
func CleanHTML(s string) string {
	s = spoilerRe.ReplaceAllString(s, "")
	s = brRe.ReplaceAllString(s, "\n")
	s = boldRe.ReplaceAllString(s, "**")
	s = italicRe.ReplaceAllString(s, "_")
	s = tagRe.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	// Underline markdown has no Telegram equivalent here; fold into bold.
	s = strings.ReplaceAll(s, "__", "**")
	s = blankRe.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"Jan 2, 2006",
	"Jan 02, 2006",
}

// ParseDate parses a remote date string into epoch seconds.
// Unknown formats and empty strings yield 0 (absent), never an error.
func ParseDate(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Unix()
		}
	}
	return 0
}

// Year renders the year of an epoch date, or an empty string for absent.
func Year(epoch int64) string {
	if epoch == 0 {
		return ""
	}
	return time.Unix(epoch, 0).UTC().Format("2006")
}

// Score is a numeric rating that distinguishes absent from zero.
type Score struct {
	Value float64
	Known bool
}

// NewScore builds a known score.
func NewScore(v float64) Score { return Score{Value: v, Known: true} }

// String renders the score, or the "not rated" sentinel when absent.
func (s Score) String() string {
	if !s.Known {
		return "not rated"
	}
	if s.Value == float64(int64(s.Value)) {
		return fmt.Sprintf("%d", int64(s.Value))
	}
	return fmt.Sprintf("%.1f", s.Value)
}

// OrNA returns the string itself, or "N/A" when empty.
func OrNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

// Truncate shortens s to at most n runes, appending an ellipsis when cut.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return strings.TrimSpace(string(runes[:n])) + "..."
}
