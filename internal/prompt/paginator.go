package prompt

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"lookup_bot/internal/model"
)

// SessionTTL is the inactivity window after which paging controls detach.
const SessionTTL = 90 * time.Second

// Session is the state of one active paginated view. Page index wraps
// around at both ends and is never persisted.
type Session struct {
	Token     string
	OwnerID   int64
	ChatID    int64
	MessageID int
	Dropdown  bool

	pages      model.PageSequence
	idx        int
	lastActive time.Time
}

// NewSession creates a session positioned on the first page.
func NewSession(ownerID, chatID int64, pages model.PageSequence) *Session {
	return &Session{
		Token:      uuid.NewString(),
		OwnerID:    ownerID,
		ChatID:     chatID,
		pages:      pages,
		lastActive: time.Now(),
	}
}

// Current returns the page under the cursor.
func (s *Session) Current() model.RenderedView { return s.pages[s.idx] }

// Pages returns the full sequence, for building per-page controls.
func (s *Session) Pages() model.PageSequence { return s.pages }

// Index returns the 1-based page number.
func (s *Session) Index() int { return s.idx + 1 }

// Len returns the number of pages.
func (s *Session) Len() int { return len(s.pages) }

// MultiPage reports whether forward/back controls are needed. A sequence of
// length 1 is delivered with only a close control.
func (s *Session) MultiPage() bool { return len(s.pages) > 1 }

// Next advances one page, wrapping past the end.
func (s *Session) Next() { s.idx = (s.idx + 1) % len(s.pages); s.touch() }

// Prev retreats one page, wrapping past the start.
func (s *Session) Prev() { s.idx = (s.idx - 1 + len(s.pages)) % len(s.pages); s.touch() }

// Select jumps to the 1-based page n. It reports false (a no-op) when n is
// out of range or already the page shown.
func (s *Session) Select(n int) bool {
	if n < 1 || n > len(s.pages) || n == s.idx+1 {
		return false
	}
	s.idx = n - 1
	s.touch()
	return true
}

// Expired reports whether the session passed its inactivity window.
func (s *Session) Expired(now time.Time) bool {
	return now.Sub(s.lastActive) > SessionTTL
}

func (s *Session) touch() { s.lastActive = time.Now() }

// Sessions tracks the live paginator sessions of one bot instance.
type Sessions struct {
	mu   sync.Mutex
	byID map[string]*Session
}

// NewSessions creates an empty session registry.
func NewSessions() *Sessions {
	return &Sessions{byID: make(map[string]*Session)}
}

// Put registers a session under its token.
func (r *Sessions) Put(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[s.Token] = s
}

// Get returns the session for a token, or nil.
func (r *Sessions) Get(token string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byID[token]
}

// Remove drops a session.
func (r *Sessions) Remove(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, token)
}

// Expire removes every session past its inactivity window and returns them
// so the caller can detach their controls.
func (r *Sessions) Expire(now time.Time) []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	var expired []*Session
	for token, s := range r.byID {
		if s.Expired(now) {
			expired = append(expired, s)
			delete(r.byID, token)
		}
	}
	return expired
}

// Clear drops all sessions (cog teardown).
func (r *Sessions) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID = make(map[string]*Session)
}
