package bot

import (
	"fmt"
	"strings"
	"time"

	"lookup_bot/internal/model"
	"lookup_bot/internal/timerparse"
)

// FormatView renders one page of a sequence as a Telegram message.
func FormatView(v model.RenderedView, index, total int) string {
	var b strings.Builder
	b.WriteString(v.Title)
	if v.Body != "" {
		b.WriteString("\n\n")
		b.WriteString(v.Body)
	}
	if len(v.Fields) > 0 {
		b.WriteString("\n")
		for _, f := range v.Fields {
			fmt.Fprintf(&b, "\n%s: %s", f.Name, f.Value)
		}
	}
	if v.URL != "" {
		b.WriteString("\n\n")
		b.WriteString(v.URL)
	}
	if v.Footer != "" {
		b.WriteString("\n")
		b.WriteString(v.Footer)
	}
	if total > 1 {
		fmt.Fprintf(&b, "\n\nPage %d/%d", index, total)
	}
	return b.String()
}

// FormatTimerList renders an owner's timers for display.
func FormatTimerList(timers []model.Timer, now time.Time) string {
	if len(timers) == 0 {
		return "You have no timers. Use /timer in <duration> <text> to set one."
	}
	var b strings.Builder
	b.WriteString("Your timers:\n")
	for _, t := range timers {
		fmt.Fprintf(&b, "\n#%d ", t.UserTimerID)
		if t.Text != "" {
			fmt.Fprintf(&b, "%q ", t.Text)
		}
		remaining := time.Duration(t.FireAt-now.Unix()) * time.Second
		if remaining > 0 {
			fmt.Fprintf(&b, "fires in %s", timerparse.FormatDuration(remaining))
		} else {
			b.WriteString("due")
		}
		if t.Repeating() {
			fmt.Fprintf(&b, ", repeats every %s", timerparse.FormatDuration(time.Duration(t.RepeatSec)*time.Second))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// FormatTimerCreated renders the creation confirmation.
func FormatTimerCreated(t model.Timer) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Timer #%d set: fires in %s", t.UserTimerID, t.FireAtHuman)
	if t.Repeating() {
		fmt.Fprintf(&b, ", then every %s", timerparse.FormatDuration(time.Duration(t.RepeatSec)*time.Second))
	}
	if t.Text != "" {
		fmt.Fprintf(&b, ".\n%q", t.Text)
	} else {
		b.WriteString(".")
	}
	return b.String()
}
