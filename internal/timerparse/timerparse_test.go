package timerparse

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Result
	}{
		{
			name: "leading in duration",
			in:   "in 5 minutes take out the bread",
			want: Result{Delay: 5 * time.Minute, HasDelay: true, Text: "take out the bread"},
		},
		{
			name: "bare leading duration counts as in",
			in:   "30m stand up",
			want: Result{Delay: 30 * time.Minute, HasDelay: true, Text: "stand up"},
		},
		{
			name: "trailing duration",
			in:   "stand up in 30m",
			want: Result{Delay: 30 * time.Minute, HasDelay: true, Text: "stand up"},
		},
		{
			name: "trailing duration without keyword",
			in:   "stand up 30m",
			want: Result{Delay: 30 * time.Minute, HasDelay: true, Text: "stand up"},
		},
		{
			name: "every only",
			in:   "every 30m check oven",
			want: Result{Repeat: 30 * time.Minute, HasRepeat: true, RepeatUnits: []string{UnitMinute}, Text: "check oven"},
		},
		{
			name: "in and every at the head",
			in:   "in 1h every 2h drink water",
			want: Result{
				Delay: time.Hour, HasDelay: true,
				Repeat: 2 * time.Hour, HasRepeat: true, RepeatUnits: []string{UnitHour},
				Text: "drink water",
			},
		},
		{
			name: "in and every at the tail",
			in:   "drink water in 1h every 2h",
			want: Result{
				Delay: time.Hour, HasDelay: true,
				Repeat: 2 * time.Hour, HasRepeat: true, RepeatUnits: []string{UnitHour},
				Text: "drink water",
			},
		},
		{
			name: "compound duration with and",
			in:   "in 1 hour and 30 minutes leave",
			want: Result{Delay: 90 * time.Minute, HasDelay: true, Text: "leave"},
		},
		{
			name: "compound duration with comma",
			in:   "in 1 week, 2 days pay rent",
			want: Result{Delay: 9 * 24 * time.Hour, HasDelay: true, Text: "pay rent"},
		},
		{
			name: "leading to stripped",
			in:   "in 20s to check the door",
			want: Result{Delay: 20 * time.Second, HasDelay: true, Text: "check the door"},
		},
		{
			name: "mo is not minutes",
			in:   "in 5mo do taxes",
			want: Result{Text: "in 5mo do taxes"},
		},
		{
			name: "no duration at all",
			in:   "just some text",
			want: Result{Text: "just some text"},
		},
		{
			name: "second in duration stops scanning",
			in:   "in 5m wait in 10m",
			want: Result{Delay: 5 * time.Minute, HasDelay: true, Text: "wait in 10m"},
		},
		{
			name: "duration in the middle is text",
			in:   "call me in 5m okay",
			want: Result{Text: "call me in 5m okay"},
		},
		{
			name: "empty input",
			in:   "",
			want: Result{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.in)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		want   time.Duration
		wantOK bool
	}{
		{name: "two tokens", in: "45 seconds", want: 45 * time.Second, wantOK: true},
		{name: "attached", in: "45s", want: 45 * time.Second, wantOK: true},
		{name: "hrs alias", in: "2 hrs", want: 2 * time.Hour, wantOK: true},
		{name: "compound", in: "1 hour, 30 minutes", want: 90 * time.Minute, wantOK: true},
		{name: "trailing garbage rejected", in: "5m later", wantOK: false},
		{name: "empty", in: "", wantOK: false},
		{name: "month suffix rejected", in: "5mo", wantOK: false},
		{name: "zero amount rejected", in: "0m", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _, ok := ParseDuration(tt.in)
			if diff := cmp.Diff(tt.wantOK, ok); diff != "" {
				t.Fatalf("ok mismatch (-want +got):\n%s", diff)
			}
			if ok {
				if diff := cmp.Diff(tt.want, got); diff != "" {
					t.Errorf("duration mismatch (-want +got):\n%s", diff)
				}
			}
		})
	}
}

func TestValidateDelayBounds(t *testing.T) {
	if err := ValidateDelay(20 * time.Second); err != nil {
		t.Errorf("20s must be accepted: %v", err)
	}
	if err := ValidateDelay(19 * time.Second); err == nil {
		t.Error("19s must be rejected")
	}
	if err := ValidateDelay(24 * time.Hour); err != nil {
		t.Errorf("24h must be accepted: %v", err)
	}
	if err := ValidateDelay(24*time.Hour + time.Second); err == nil {
		t.Error("24h1s must be rejected")
	}
}

func TestValidateRepeatBounds(t *testing.T) {
	if err := ValidateRepeat(time.Minute, []string{UnitMinute}); err != nil {
		t.Errorf("60s must be accepted: %v", err)
	}
	if err := ValidateRepeat(59*time.Second, []string{UnitMinute}); err == nil {
		t.Error("59s must be rejected")
	}
	if err := ValidateRepeat(2*time.Minute, []string{UnitSecond}); err == nil {
		t.Error("seconds unit must be rejected in repeats")
	}
	if err := ValidateRepeat(25*time.Hour, []string{UnitHour}); err == nil {
		t.Error("over 24h must be rejected")
	}
}

func TestValidateText(t *testing.T) {
	ok := make([]rune, MaxTextLen)
	for i := range ok {
		ok[i] = 'a'
	}
	if err := ValidateText(string(ok)); err != nil {
		t.Errorf("length %d must be accepted: %v", MaxTextLen, err)
	}
	if err := ValidateText(string(ok) + "a"); err == nil {
		t.Errorf("length %d must be rejected", MaxTextLen+1)
	}
}

func TestFormatDurationRoundTrip(t *testing.T) {
	durations := []time.Duration{
		20 * time.Second,
		time.Minute,
		90 * time.Minute,
		2 * time.Hour,
		26*time.Hour + 31*time.Minute + 5*time.Second,
		24 * time.Hour,
	}
	for _, d := range durations {
		s := FormatDuration(d)
		got, _, ok := ParseDuration(s)
		if !ok {
			t.Errorf("FormatDuration(%v) = %q does not parse back", d, s)
			continue
		}
		if diff := cmp.Diff(d, got); diff != "" {
			t.Errorf("round trip of %v via %q (-want +got):\n%s", d, s, diff)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{in: 90 * time.Minute, want: "1 hour, 30 minutes"},
		{in: time.Minute, want: "1 minute"},
		{in: 0, want: "0 seconds"},
		{in: 25 * time.Hour, want: "1 day, 1 hour"},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, FormatDuration(tt.in)); diff != "" {
			t.Errorf("FormatDuration(%v) (-want +got):\n%s", tt.in, diff)
		}
	}
}

func TestStripMarkdown(t *testing.T) {
	if got := StripMarkdown("**buy milk**"); got != "buy milk" {
		t.Errorf("got %q", got)
	}
	if got := StripMarkdown("  _note_ "); got != "note" {
		t.Errorf("got %q", got)
	}
}
