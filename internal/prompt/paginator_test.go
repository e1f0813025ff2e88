package prompt

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"lookup_bot/internal/model"
)

func pages(n int) model.PageSequence {
	var ps model.PageSequence
	for i := 1; i <= n; i++ {
		ps = append(ps, model.RenderedView{Title: "page", Body: string(rune('0' + i))})
	}
	return ps
}

func TestSessionWrapAround(t *testing.T) {
	s := NewSession(1, 100, pages(3))

	if diff := cmp.Diff(1, s.Index()); diff != "" {
		t.Fatalf("start index mismatch (-want +got):\n%s", diff)
	}

	s.Next()
	s.Next()
	if diff := cmp.Diff(3, s.Index()); diff != "" {
		t.Fatalf("index mismatch (-want +got):\n%s", diff)
	}

	s.Next() // wraps to first
	if diff := cmp.Diff(1, s.Index()); diff != "" {
		t.Fatalf("wrap forward mismatch (-want +got):\n%s", diff)
	}

	s.Prev() // wraps to last
	if diff := cmp.Diff(3, s.Index()); diff != "" {
		t.Fatalf("wrap backward mismatch (-want +got):\n%s", diff)
	}
}

func TestSessionSinglePageHasNoArrows(t *testing.T) {
	s := NewSession(1, 100, pages(1))
	if s.MultiPage() {
		t.Error("single page must not offer forward/back controls")
	}
}

func TestSessionSelect(t *testing.T) {
	s := NewSession(1, 100, pages(4))

	if !s.Select(3) {
		t.Fatal("select 3 should succeed")
	}
	if diff := cmp.Diff(3, s.Index()); diff != "" {
		t.Fatalf("index mismatch (-want +got):\n%s", diff)
	}
	if s.Select(3) {
		t.Error("selecting the shown page must be a no-op")
	}
	if s.Select(0) || s.Select(5) {
		t.Error("out-of-range select must be a no-op")
	}
}

func TestSessionsExpire(t *testing.T) {
	r := NewSessions()
	fresh := NewSession(1, 100, pages(2))
	stale := NewSession(2, 100, pages(2))
	stale.lastActive = time.Now().Add(-2 * SessionTTL)
	r.Put(fresh)
	r.Put(stale)

	expired := r.Expire(time.Now())
	if len(expired) != 1 || expired[0].Token != stale.Token {
		t.Fatalf("expected only the stale session to expire, got %d", len(expired))
	}
	if r.Get(stale.Token) != nil {
		t.Error("expired session still registered")
	}
	if r.Get(fresh.Token) == nil {
		t.Error("fresh session evicted")
	}
}

func TestSessionsClear(t *testing.T) {
	r := NewSessions()
	s := NewSession(1, 100, pages(2))
	r.Put(s)
	r.Clear()
	if r.Get(s.Token) != nil {
		t.Error("session survived Clear")
	}
}
