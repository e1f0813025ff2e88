// Package timerparse extracts "in <duration>" and "every <duration>"
// phrases from timer command text and renders durations back into the
// human form used in replies and stored records.
package timerparse

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Bounds of accepted durations.
const (
	MinDelay  = 20 * time.Second
	MaxDelay  = 24 * time.Hour
	MinRepeat = time.Minute
	MaxRepeat = 24 * time.Hour

	// MaxTextLen caps the residual reminder text.
	MaxTextLen = 200
)

// Canonical unit kinds, used to restrict repeat durations.
const (
	UnitWeek   = "w"
	UnitDay    = "d"
	UnitHour   = "h"
	UnitMinute = "m"
	UnitSecond = "s"
)

type unitDef struct {
	kind string
	dur  time.Duration
}

// "m" is minutes only because no "mo"/month spelling is in the table; a
// token like "5mo" simply fails to match a unit.
var units = map[string]unitDef{
	"weeks": {UnitWeek, 7 * 24 * time.Hour},
	"week":  {UnitWeek, 7 * 24 * time.Hour},
	"w":     {UnitWeek, 7 * 24 * time.Hour},

	"days": {UnitDay, 24 * time.Hour},
	"day":  {UnitDay, 24 * time.Hour},
	"d":    {UnitDay, 24 * time.Hour},

	"hours": {UnitHour, time.Hour},
	"hour":  {UnitHour, time.Hour},
	"hrs":   {UnitHour, time.Hour},
	"hr":    {UnitHour, time.Hour},
	"h":     {UnitHour, time.Hour},

	"minutes": {UnitMinute, time.Minute},
	"minute":  {UnitMinute, time.Minute},
	"mins":    {UnitMinute, time.Minute},
	"min":     {UnitMinute, time.Minute},
	"m":       {UnitMinute, time.Minute},

	"seconds": {UnitSecond, time.Second},
	"second":  {UnitSecond, time.Second},
	"secs":    {UnitSecond, time.Second},
	"sec":     {UnitSecond, time.Second},
	"s":       {UnitSecond, time.Second},
}

// Result is the outcome of scanning a timer command string.
type Result struct {
	Delay       time.Duration
	HasDelay    bool
	Repeat      time.Duration
	HasRepeat   bool
	RepeatUnits []string // canonical kinds seen in the every-duration
	Text        string   // residual reminder text
}

// Extract scans the command string for at most one "in" duration and one
// "every" duration, first at the beginning (keyword optional; a bare
// leading duration counts as "in"), then at the end. The residual text has
// a leading "to " stripped.
func Extract(input string) Result {
	tokens := strings.Fields(input)
	var res Result

	// Head scan.
	for len(tokens) > 0 {
		kw := strings.ToLower(tokens[0])
		switch {
		case kw == "in" && !res.HasDelay:
			if d, _, next, ok := matchDuration(tokens, 1); ok {
				res.Delay, res.HasDelay = d, true
				tokens = tokens[next:]
				continue
			}
		case kw == "every" && !res.HasRepeat:
			if d, kinds, next, ok := matchDuration(tokens, 1); ok {
				res.Repeat, res.HasRepeat = d, true
				res.RepeatUnits = kinds
				tokens = tokens[next:]
				continue
			}
		case !res.HasDelay:
			if d, _, next, ok := matchDuration(tokens, 0); ok {
				res.Delay, res.HasDelay = d, true
				tokens = tokens[next:]
				continue
			}
		}
		break
	}

	// Tail scan: repeatedly strip a trailing [in|every]? <duration>.
	for len(tokens) > 0 {
		j, kw, d, kinds, ok := matchTail(tokens)
		if !ok {
			break
		}
		switch {
		case kw == "every" && !res.HasRepeat:
			res.Repeat, res.HasRepeat = d, true
			res.RepeatUnits = kinds
		case kw != "every" && !res.HasDelay:
			res.Delay, res.HasDelay = d, true
		default:
			// A second duration of an already-seen kind stops scanning.
			j = -1
		}
		if j < 0 {
			break
		}
		tokens = tokens[:j]
	}

	res.Text = strings.Join(tokens, " ")
	if rest, found := strings.CutPrefix(res.Text, "to "); found {
		res.Text = rest
	}
	return res
}

// ParseDuration parses a string that must consist entirely of one duration
// list, e.g. "1 hour and 30 minutes" or "90m".
func ParseDuration(s string) (time.Duration, []string, bool) {
	tokens := strings.Fields(s)
	d, kinds, next, ok := matchDuration(tokens, 0)
	if !ok || next != len(tokens) {
		return 0, nil, false
	}
	return d, kinds, true
}

// matchTail finds the largest suffix of tokens that is an optional
// "in"/"every" keyword followed by a duration consuming to the end.
func matchTail(tokens []string) (start int, keyword string, d time.Duration, kinds []string, ok bool) {
	for j := 0; j < len(tokens); j++ {
		kw := ""
		k := j
		low := strings.ToLower(tokens[j])
		if low == "in" || low == "every" {
			kw = low
			k = j + 1
		}
		dur, kd, next, matched := matchDuration(tokens, k)
		if matched && next == len(tokens) {
			return j, kw, dur, kd, true
		}
	}
	return 0, "", 0, nil, false
}

// matchDuration consumes a comma/"and"-separated list of <integer> <unit>
// terms starting at i. Attached forms ("30m") are accepted. It returns the
// summed duration, the canonical unit kinds seen, and the index after the
// last consumed token.
func matchDuration(tokens []string, i int) (time.Duration, []string, int, bool) {
	var total time.Duration
	var kinds []string
	seen := map[string]bool{}
	pos := i
	matchedAny := false

	for pos < len(tokens) {
		probe := pos
		if matchedAny {
			// Optional separator, only if another term follows.
			if strings.ToLower(tokens[probe]) == "and" || tokens[probe] == "," {
				probe++
			}
		}
		d, kind, next, ok := matchTerm(tokens, probe)
		if !ok {
			break
		}
		total += d
		if !seen[kind] {
			seen[kind] = true
			kinds = append(kinds, kind)
		}
		pos = next
		matchedAny = true
	}

	if !matchedAny {
		return 0, nil, i, false
	}
	return total, kinds, pos, true
}

// matchTerm consumes one <integer> <unit> pair, either as two tokens or as
// a single attached token like "45s".
func matchTerm(tokens []string, i int) (time.Duration, string, int, bool) {
	if i >= len(tokens) {
		return 0, "", i, false
	}
	tok := strings.TrimSuffix(tokens[i], ",")

	if n, err := strconv.Atoi(tok); err == nil && n > 0 {
		if i+1 >= len(tokens) {
			return 0, "", i, false
		}
		unit := strings.ToLower(strings.TrimSuffix(tokens[i+1], ","))
		def, ok := units[unit]
		if !ok {
			return 0, "", i, false
		}
		return time.Duration(n) * def.dur, def.kind, i + 2, true
	}

	// Attached form: digits followed by a unit suffix.
	cut := 0
	for cut < len(tok) && tok[cut] >= '0' && tok[cut] <= '9' {
		cut++
	}
	if cut == 0 || cut == len(tok) {
		return 0, "", i, false
	}
	n, err := strconv.Atoi(tok[:cut])
	if err != nil || n <= 0 {
		return 0, "", i, false
	}
	def, ok := units[strings.ToLower(tok[cut:])]
	if !ok {
		return 0, "", i, false
	}
	return time.Duration(n) * def.dur, def.kind, i + 1, true
}

// ValidateDelay checks one-shot bounds: 20 seconds to 24 hours.
func ValidateDelay(d time.Duration) error {
	if d < MinDelay {
		return fmt.Errorf("timers must be at least %s away", FormatDuration(MinDelay))
	}
	if d > MaxDelay {
		return fmt.Errorf("timers may be at most %s away", FormatDuration(MaxDelay))
	}
	return nil
}

// ValidateRepeat checks repeat bounds: 1 minute to 24 hours, expressed in
// hours and minutes only.
func ValidateRepeat(d time.Duration, kinds []string) error {
	for _, k := range kinds {
		if k != UnitHour && k != UnitMinute {
			return fmt.Errorf("repeat intervals accept only hours and minutes")
		}
	}
	if d < MinRepeat {
		return fmt.Errorf("repeat intervals must be at least %s", FormatDuration(MinRepeat))
	}
	if d > MaxRepeat {
		return fmt.Errorf("repeat intervals may be at most %s", FormatDuration(MaxRepeat))
	}
	return nil
}

// ValidateText checks the reminder text length.
func ValidateText(text string) error {
	if len([]rune(text)) > MaxTextLen {
		return fmt.Errorf("reminder text may be at most %d characters", MaxTextLen)
	}
	return nil
}

// FormatDuration renders a duration in the human form used everywhere a
// duration is shown ("1 hour, 30 minutes"). Parsing the output yields the
// same duration.
func FormatDuration(d time.Duration) string {
	if d <= 0 {
		return "0 seconds"
	}
	type part struct {
		name string
		dur  time.Duration
	}
	parts := []part{
		{"day", 24 * time.Hour},
		{"hour", time.Hour},
		{"minute", time.Minute},
		{"second", time.Second},
	}
	var out []string
	rem := d
	for _, p := range parts {
		n := rem / p.dur
		if n == 0 {
			continue
		}
		rem -= n * p.dur
		name := p.name
		if n != 1 {
			name += "s"
		}
		out = append(out, fmt.Sprintf("%d %s", n, name))
	}
	if len(out) == 0 {
		return "0 seconds"
	}
	return strings.Join(out, ", ")
}

// StripMarkdown removes surrounding markdown punctuation from inherited
// reply text.
func StripMarkdown(s string) string {
	return strings.Trim(strings.TrimSpace(s), "*_`~|")
}
