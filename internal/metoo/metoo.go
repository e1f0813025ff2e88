// Package metoo tracks short-lived opt-in prompts that let other users
// subscribe to a freshly created timer.
package metoo

import (
	"sync"
	"time"

	"lookup_bot/internal/model"
)

// Window is how long a prompt accepts subscriptions.
const Window = 30 * time.Second

type entry struct {
	template  model.Timer
	expiresAt time.Time
}

// Registry maps prompt message IDs to timer templates. Entries expire
// after the window; late subscriptions are ignored. Nothing here is
// persisted: pending windows are lost on restart, which is acceptable.
type Registry struct {
	mu   sync.Mutex
	byID map[int]entry
	now  func() time.Time
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[int]entry), now: time.Now}
}

// SetClock overrides the wall clock (useful for testing).
func (r *Registry) SetClock(now func() time.Time) {
	r.now = now
}

// Register opens a subscription window anchored to a prompt message.
func (r *Registry) Register(promptMessageID int, template model.Timer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[promptMessageID] = entry{
		template:  template,
		expiresAt: r.now().Add(Window),
	}
}

// Subscribe returns a copy of the template owned by userID, or ok=false
// when the prompt is unknown or its window has closed.
func (r *Registry) Subscribe(promptMessageID int, userID int64) (model.Timer, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, found := r.byID[promptMessageID]
	if !found || r.now().After(e.expiresAt) {
		return model.Timer{}, false
	}
	t := e.template
	t.ID = 0
	t.UserTimerID = 0
	t.OwnerID = userID
	return t, true
}

// Evict removes a prompt's entry.
func (r *Registry) Evict(promptMessageID int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, promptMessageID)
}

// Expired returns the prompt message IDs whose window has closed and
// removes them, so the caller can delete the prompt messages.
func (r *Registry) Expired() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []int
	now := r.now()
	for id, e := range r.byID {
		if now.After(e.expiresAt) {
			ids = append(ids, id)
			delete(r.byID, id)
		}
	}
	return ids
}

// Clear drops every pending window (cog teardown).
func (r *Registry) Clear() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]int, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	r.byID = make(map[int]entry)
	return ids
}
