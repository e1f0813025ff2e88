// Package model defines the domain types used across the application.
package model

import "time"

// Candidate identifies one of several possible results of a search query.
type Candidate struct {
	ID    string
	Label string
	Hint  string // rendered into the selection prompt (year, artist, ...)
	// SortDate orders candidates most-recent-first where the remote
	// provides a meaningful date; zero keeps insertion order.
	SortDate int64
}

// Link is a titled external URL on a detail record.
type Link struct {
	Title string
	URL   string
}

// Field is a single name/value pair rendered into a view.
type Field struct {
	Name   string
	Value  string
	Inline bool
}

// DetailRecord is the typed result of a detail lookup at a remote service.
// Common fields are normalized by the parser; service-specific data lives
// in Fields or, for structured payloads, in Extra (owned by the service's
// view builder).
type DetailRecord struct {
	ID          string
	Title       string
	Description string
	Thumbnail   string
	Banner      string
	Links       []Link
	Adult       bool
	Fields      []Field
	Extra       any
}

// RenderedView is a presentation-ready page. Views are value objects and
// are never mutated after construction.
type RenderedView struct {
	Title    string
	Body     string
	Fields   []Field
	URL      string
	ImageURL string
	ThumbURL string
	Footer   string
}

// PageSequence is an ordered, finite, 1-indexed sequence of rendered views.
type PageSequence []RenderedView

// Timer is a scheduled user-visible reminder.
type Timer struct {
	ID          int64 // storage row id
	UserTimerID int64 // per-owner id; smallest positive integer not in use
	OwnerID     int64
	ChatID      int64
	Text        string
	FireAt      int64  // epoch seconds
	FireAtHuman string // human form of the delay at creation time
	RepeatSec   int64  // 0 = one-shot; otherwise 60..86400
	JumpLink    string
	CreatedAt   time.Time
}

// Repeating reports whether the timer fires more than once.
func (t Timer) Repeating() bool { return t.RepeatSec > 0 }

// ContentEqual reports whether two timers are the same reminder by content.
// Per-owner IDs are ignored; this is the me-too duplicate check.
func (t Timer) ContentEqual(o Timer) bool {
	return t.OwnerID == o.OwnerID &&
		t.Text == o.Text &&
		t.FireAt == o.FireAt &&
		t.FireAtHuman == o.FireAtHuman
}
