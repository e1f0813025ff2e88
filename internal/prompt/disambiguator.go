// Package prompt implements the interactive halves of the lookup pipeline:
// choosing one of several candidates and paging through rendered views.
// Both are framework-agnostic; the bot supplies the chat capabilities.
package prompt

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"lookup_bot/internal/adapter"
	"lookup_bot/internal/model"
)

const (
	// MaxChoices caps the disambiguation list; excess candidates are
	// silently truncated.
	MaxChoices = 20

	replyTimeout = 60 * time.Second
)

// PromptIO is the capability for emitting a prompt message and awaiting a
// matching reply from the same user in the same chat.
type PromptIO interface {
	Send(text string) (messageID int, err error)
	// AwaitReply yields the next reply matching the predicate, or ok=false
	// on timeout or context cancellation.
	AwaitReply(ctx context.Context, match func(string) bool, timeout time.Duration) (reply string, ok bool)
	// Delete removes a message best-effort; missing messages are swallowed.
	Delete(messageID int)
}

// Disambiguator collapses a candidate list into a single chosen id by
// prompting the requesting user.
type Disambiguator struct {
	io PromptIO
}

// NewDisambiguator creates a Disambiguator over the given prompt capability.
func NewDisambiguator(io PromptIO) *Disambiguator {
	return &Disambiguator{io: io}
}

// Choose returns the id of exactly one candidate, or adapter.ErrCancelled
// when the user cancels or the prompt times out. A single candidate is
// returned without prompting.
func (d *Disambiguator) Choose(ctx context.Context, candidates []model.Candidate) (string, error) {
	if len(candidates) == 0 {
		return "", adapter.ErrEmptyResult
	}
	if len(candidates) == 1 {
		return candidates[0].ID, nil
	}

	shown := candidates
	if len(shown) > MaxChoices {
		shown = shown[:MaxChoices]
	}

	msgID, err := d.io.Send(renderChoices(shown))
	if err != nil {
		return "", fmt.Errorf("send prompt: %w", err)
	}
	defer d.io.Delete(msgID)

	reply, ok := d.io.AwaitReply(ctx, func(s string) bool {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		return err == nil && n >= 0 && n <= len(shown)
	}, replyTimeout)
	if !ok {
		return "", adapter.ErrCancelled
	}

	n, _ := strconv.Atoi(strings.TrimSpace(reply))
	if n == 0 {
		return "", adapter.ErrCancelled
	}
	return shown[n-1].ID, nil
}

func renderChoices(cs []model.Candidate) string {
	var b strings.Builder
	b.WriteString("Multiple results found. Reply with a number, or 0 to cancel:\n")
	for i, c := range cs {
		if c.Hint != "" {
			fmt.Fprintf(&b, "\n%d. %s (%s)", i+1, c.Label, c.Hint)
		} else {
			fmt.Fprintf(&b, "\n%d. %s", i+1, c.Label)
		}
	}
	return b.String()
}
