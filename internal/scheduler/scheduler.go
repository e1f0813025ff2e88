// Package scheduler delivers due timers in the background.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"lookup_bot/internal/model"
	"lookup_bot/internal/storage"
	"lookup_bot/internal/timerparse"
)

// ErrUnreachable marks a permanent delivery failure: the chat is gone or
// the bot was removed from it. The timer is dropped without retry.
var ErrUnreachable = errors.New("chat unreachable")

// Sender delivers a timer notification to its origin chat, mentioning the
// owner. Transient failures return an ordinary error; permanent ones wrap
// ErrUnreachable.
type Sender interface {
	SendTimer(chatID, ownerID int64, text string) error
}

// lateThreshold is the delivery skew above which a delay notice is added.
const lateThreshold = 30 * time.Second

// consecutive tick panics before the scheduler gives up and notifies the
// operator, to avoid tight-loop log flooding.
const maxConsecutivePanics = 5

// Scheduler periodically fires due timers and reschedules repeating ones.
type Scheduler struct {
	store  storage.Storage
	sender Sender
	log    *slog.Logger
	tick   time.Duration
	now    func() time.Time

	// NotifyOperator, when set, receives a one-time message before the
	// scheduler stops itself after repeated crashes.
	NotifyOperator func(text string)
}

// New creates a Scheduler with the default 5-second tick.
func New(store storage.Storage, sender Sender, log *slog.Logger) *Scheduler {
	return &Scheduler{
		store:  store,
		sender: sender,
		log:    log,
		tick:   5 * time.Second,
		now:    time.Now,
	}
}

// SetTickInterval overrides the default tick (useful for testing).
func (s *Scheduler) SetTickInterval(d time.Duration) {
	s.tick = d
}

// SetClock overrides the wall clock (useful for testing).
func (s *Scheduler) SetClock(now func() time.Time) {
	s.now = now
}

// Run starts the scheduler loop, blocking until ctx is cancelled. Timers
// dequeued but not yet delivered at cancellation stay in the store and are
// delivered on the next startup.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	panics := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s.safeTick(ctx) {
				panics = 0
				continue
			}
			panics++
			if panics >= maxConsecutivePanics {
				s.log.Error("scheduler stopping after repeated panics", "count", panics)
				if s.NotifyOperator != nil {
					s.NotifyOperator(fmt.Sprintf("Timer scheduler stopped after %d consecutive crashes; restart the bot.", panics))
				}
				return
			}
		}
	}
}

// safeTick runs one tick under a panic guard; it reports false on panic.
func (s *Scheduler) safeTick(ctx context.Context) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("scheduler tick panicked", "panic", r)
			ok = false
		}
	}()
	s.deliverDue(ctx)
	return true
}

func (s *Scheduler) deliverDue(ctx context.Context) {
	now := s.now().Unix()
	due, err := s.store.DueTimers(ctx, now)
	if err != nil {
		s.log.Error("list due timers", "error", err)
		return
	}

	for _, t := range due {
		if ctx.Err() != nil {
			return
		}
		s.deliver(ctx, t, now)
	}
}

func (s *Scheduler) deliver(ctx context.Context, t model.Timer, now int64) {
	err := s.sender.SendTimer(t.ChatID, t.OwnerID, ComposeDelivery(t, now))
	switch {
	case errors.Is(err, ErrUnreachable):
		s.log.Warn("timer chat unreachable, dropping", "owner_id", t.OwnerID, "timer_id", t.UserTimerID, "chat_id", t.ChatID)
	case err != nil:
		// Transient: leave the timer in place, retry next tick.
		s.log.Error("deliver timer", "owner_id", t.OwnerID, "timer_id", t.UserTimerID, "error", err)
		return
	default:
		s.log.Debug("timer delivered", "owner_id", t.OwnerID, "timer_id", t.UserTimerID)
	}

	if t.Repeating() && err == nil {
		s.reschedule(ctx, t, now)
		return
	}
	if err := s.store.RemoveTimer(ctx, t.OwnerID, t.UserTimerID); err != nil {
		s.log.Error("remove fired timer", "owner_id", t.OwnerID, "timer_id", t.UserTimerID, "error", err)
	}
}

// reschedule advances a repeating timer to the smallest fire_at strictly
// greater than now by whole repeat increments.
func (s *Scheduler) reschedule(ctx context.Context, t model.Timer, now int64) {
	t.FireAt = NextFire(t.FireAt, t.RepeatSec, now)
	if t.RepeatSec < 60 {
		t.RepeatSec = 60
	}
	if err := s.store.ReplaceTimer(ctx, &t); err != nil {
		s.log.Error("reschedule timer", "owner_id", t.OwnerID, "timer_id", t.UserTimerID, "error", err)
	}
}

// NextFire returns the smallest fireAt + k*repeatSec strictly greater than
// now. Stored repeat intervals below 60 seconds are clamped up.
func NextFire(fireAt, repeatSec, now int64) int64 {
	if repeatSec < 60 {
		repeatSec = 60
	}
	next := fireAt + repeatSec
	if next <= now {
		k := (now-fireAt)/repeatSec + 1
		next = fireAt + k*repeatSec
	}
	return next
}

// ComposeDelivery builds the notification text for a due timer. Deliveries
// more than 30 seconds past fire_at carry a delay notice.
func ComposeDelivery(t model.Timer, now int64) string {
	var b strings.Builder
	if t.Text != "" {
		fmt.Fprintf(&b, "Reminder: %s", t.Text)
	} else {
		b.WriteString("Reminder!")
	}
	if t.Repeating() {
		fmt.Fprintf(&b, "\nRepeats every %s.", timerparse.FormatDuration(time.Duration(t.RepeatSec)*time.Second))
	}
	if late := now - t.FireAt; late > int64(lateThreshold/time.Second) {
		fmt.Fprintf(&b, "\nDelayed by %s.", timerparse.FormatDuration(time.Duration(late)*time.Second))
	}
	if t.JumpLink != "" {
		fmt.Fprintf(&b, "\n%s", t.JumpLink)
	}
	return b.String()
}
