package bot

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"lookup_bot/internal/model"
	"lookup_bot/internal/storage"
	"lookup_bot/internal/timerparse"
)

const timerUsage = "Usage: /timer in <duration> [every <interval>] [text] - see /help for the full timer reference."

func (b *Bot) handleTimer(ctx context.Context, msg *tgbotapi.Message) {
	args := strings.TrimSpace(msg.CommandArguments())
	if args == "" {
		if msg.ReplyToMessage == nil {
			b.reply(msg.Chat.ID, timerUsage)
			return
		}
		b.handleTimerCreate(ctx, msg, args)
		return
	}

	sub, rest, _ := strings.Cut(args, " ")
	switch sub {
	case "list":
		b.handleTimerList(ctx, msg, strings.TrimSpace(rest))
	case "modify":
		b.handleTimerModify(ctx, msg, strings.TrimSpace(rest))
	case "remove":
		b.handleTimerRemove(ctx, msg, strings.TrimSpace(rest))
	default:
		b.handleTimerCreate(ctx, msg, args)
	}
}

func (b *Bot) handleTimerCreate(ctx context.Context, msg *tgbotapi.Message, args string) {
	chatID := msg.Chat.ID

	// An empty /timer sent as a reply inherits the replied-to message's
	// text and scans that for durations instead.
	if args == "" && msg.ReplyToMessage != nil {
		args = timerparse.StripMarkdown(msg.ReplyToMessage.Text)
	}

	res := timerparse.Extract(args)
	if !res.HasDelay && !res.HasRepeat {
		b.reply(chatID, timerUsage)
		return
	}

	// A bare "every X" schedules the first fire one interval out.
	delay := res.Delay
	if !res.HasDelay {
		delay = res.Repeat
	}
	if err := timerparse.ValidateDelay(delay); err != nil {
		b.reply(chatID, err.Error())
		return
	}
	var repeatSec int64
	if res.HasRepeat {
		if err := timerparse.ValidateRepeat(res.Repeat, res.RepeatUnits); err != nil {
			b.reply(chatID, err.Error())
			return
		}
		repeatSec = int64(res.Repeat / time.Second)
	}
	text := timerparse.StripMarkdown(res.Text)
	if err := timerparse.ValidateText(text); err != nil {
		b.reply(chatID, err.Error())
		return
	}

	now := time.Now()
	t := &model.Timer{
		OwnerID:     msg.From.ID,
		ChatID:      chatID,
		Text:        text,
		FireAt:      now.Add(delay).Unix(),
		FireAtHuman: timerparse.FormatDuration(delay),
		RepeatSec:   repeatSec,
		JumpLink:    jumpLink(msg.Chat, msg.MessageID),
		CreatedAt:   now,
	}
	if err := b.store.AddTimer(ctx, t); err != nil {
		b.reply(chatID, fmt.Sprintf("Failed to save timer: %v", err))
		return
	}

	b.reply(chatID, FormatTimerCreated(*t))

	if !msg.Chat.IsPrivate() {
		b.sendMeTooPrompt(*t)
	}
}

// sendMeTooPrompt emits the opt-in message that lets other chat members
// subscribe to a copy of a freshly created timer.
func (b *Bot) sendMeTooPrompt(t model.Timer) {
	msg := tgbotapi.NewMessage(t.ChatID, "Want this reminder too? Tap below within 30 seconds.")
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⏰ Me too", "metoo:+"),
		),
	)
	sent, err := b.api.Send(msg)
	if err != nil {
		b.log.Error("send me-too prompt", "chat_id", t.ChatID, "error", err)
		return
	}
	b.metoo.Register(sent.MessageID, t)
	b.metooChats.put(sent.MessageID, t.ChatID)
}

func (b *Bot) handleTimerList(ctx context.Context, msg *tgbotapi.Message, sortKey string) {
	chatID := msg.Chat.ID

	timers, err := b.store.ListTimers(ctx, msg.From.ID)
	if err != nil {
		b.reply(chatID, fmt.Sprintf("Error: %v", err))
		return
	}

	switch sortKey {
	case "", "time":
		sort.SliceStable(timers, func(i, j int) bool { return timers[i].FireAt < timers[j].FireAt })
	case "added":
		// Insertion order as returned by the store.
	case "id":
		sort.SliceStable(timers, func(i, j int) bool { return timers[i].UserTimerID < timers[j].UserTimerID })
	default:
		b.reply(chatID, "Usage: /timer list [time|added|id]")
		return
	}

	b.reply(chatID, FormatTimerList(timers, time.Now()))
}

func (b *Bot) handleTimerRemove(ctx context.Context, msg *tgbotapi.Message, args string) {
	chatID := msg.Chat.ID
	ownerID := msg.From.ID

	switch args {
	case "":
		b.reply(chatID, "Usage: /timer remove <id|last|all>")
		return
	case "all":
		b.confirmRemoveAll(ctx, chatID, ownerID)
		return
	case "last":
		timers, err := b.store.ListTimers(ctx, ownerID)
		if err != nil || len(timers) == 0 {
			b.reply(chatID, "You have no timers.")
			return
		}
		last := timers[len(timers)-1]
		if err := b.store.RemoveTimer(ctx, ownerID, last.UserTimerID); err != nil {
			b.reply(chatID, fmt.Sprintf("Error: %v", err))
			return
		}
		b.reply(chatID, fmt.Sprintf("Timer #%d removed.", last.UserTimerID))
		return
	}

	id, err := parseTimerID(args)
	if err != nil {
		b.reply(chatID, "Usage: /timer remove <id|last|all>")
		return
	}
	if _, err := b.store.GetTimer(ctx, ownerID, id); err != nil {
		b.reply(chatID, fmt.Sprintf("Timer #%d not found.", id))
		return
	}
	if err := b.store.RemoveTimer(ctx, ownerID, id); err != nil {
		b.reply(chatID, fmt.Sprintf("Error: %v", err))
		return
	}
	b.reply(chatID, fmt.Sprintf("Timer #%d removed.", id))
}

func (b *Bot) confirmRemoveAll(ctx context.Context, chatID, ownerID int64) {
	timers, err := b.store.ListTimers(ctx, ownerID)
	if err != nil {
		b.reply(chatID, fmt.Sprintf("Error: %v", err))
		return
	}
	if len(timers) == 0 {
		b.reply(chatID, "You have no timers.")
		return
	}

	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("Delete all %d timer(s)? This cannot be undone.", len(timers)))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Yes, delete all", "rmall:yes"),
			tgbotapi.NewInlineKeyboardButtonData("Cancel", "rmall:no"),
		),
	)
	sent, err := b.api.Send(msg)
	if err != nil {
		b.log.Error("send delete-all confirmation", "error", err)
		return
	}
	b.confirms.put(confirmEntry{
		chatID:    chatID,
		messageID: sent.MessageID,
		ownerID:   ownerID,
		expiresAt: time.Now().Add(confirmWindow),
	})
}

func (b *Bot) handleTimerModify(ctx context.Context, msg *tgbotapi.Message, args string) {
	chatID := msg.Chat.ID

	mode, rest, _ := strings.Cut(args, " ")
	idStr, value, _ := strings.Cut(strings.TrimSpace(rest), " ")
	value = strings.TrimSpace(value)

	id, err := parseTimerID(idStr)
	if err != nil || value == "" {
		b.reply(chatID, "Usage: /timer modify time|repeat|text <id> <value>")
		return
	}

	t, err := b.store.GetTimer(ctx, msg.From.ID, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			b.reply(chatID, fmt.Sprintf("Timer #%d not found.", id))
		} else {
			b.reply(chatID, fmt.Sprintf("Error: %v", err))
		}
		return
	}

	switch mode {
	case "time":
		d, _, ok := timerparse.ParseDuration(value)
		if !ok {
			b.reply(chatID, fmt.Sprintf("Cannot parse duration %q.", value))
			return
		}
		if err := timerparse.ValidateDelay(d); err != nil {
			b.reply(chatID, err.Error())
			return
		}
		t.FireAt = time.Now().Add(d).Unix()
		t.FireAtHuman = timerparse.FormatDuration(d)
	case "repeat":
		if value == "off" {
			t.RepeatSec = 0
			break
		}
		d, kinds, ok := timerparse.ParseDuration(value)
		if !ok {
			b.reply(chatID, fmt.Sprintf("Cannot parse duration %q.", value))
			return
		}
		if err := timerparse.ValidateRepeat(d, kinds); err != nil {
			b.reply(chatID, err.Error())
			return
		}
		t.RepeatSec = int64(d / time.Second)
	case "text":
		text := timerparse.StripMarkdown(value)
		if err := timerparse.ValidateText(text); err != nil {
			b.reply(chatID, err.Error())
			return
		}
		t.Text = text
	default:
		b.reply(chatID, "Usage: /timer modify time|repeat|text <id> <value>")
		return
	}

	if err := b.store.ReplaceTimer(ctx, t); err != nil {
		b.reply(chatID, fmt.Sprintf("Error: %v", err))
		return
	}
	b.reply(chatID, fmt.Sprintf("Timer #%d updated.", id))
}

// jumpLink builds a t.me link back to the creating message, where the chat
// type supports one.
func jumpLink(chat *tgbotapi.Chat, messageID int) string {
	switch {
	case chat == nil || !chat.IsSuperGroup():
		return ""
	case chat.UserName != "":
		return fmt.Sprintf("https://t.me/%s/%d", chat.UserName, messageID)
	default:
		return fmt.Sprintf("https://t.me/c/%d/%d", -chat.ID-1000000000000, messageID)
	}
}

// confirmWindow is how long a delete-all confirmation stays actionable.
const confirmWindow = 30 * time.Second

type confirmEntry struct {
	chatID    int64
	messageID int
	ownerID   int64
	expiresAt time.Time
}

// confirmRegistry tracks pending delete-all confirmations by their prompt
// message id.
type confirmRegistry struct {
	mu   sync.Mutex
	byID map[int]confirmEntry
}

func newConfirmRegistry() *confirmRegistry {
	return &confirmRegistry{byID: make(map[int]confirmEntry)}
}

func (r *confirmRegistry) put(e confirmEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[e.messageID] = e
}

func (r *confirmRegistry) get(messageID int) (confirmEntry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.byID[messageID]
	if ok && time.Now().After(e.expiresAt) {
		delete(r.byID, messageID)
		return confirmEntry{}, false
	}
	return e, ok
}

func (r *confirmRegistry) remove(messageID int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, messageID)
}

// expired returns and removes entries past their window.
func (r *confirmRegistry) expired(now time.Time) []confirmEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []confirmEntry
	for id, e := range r.byID {
		if now.After(e.expiresAt) {
			out = append(out, e)
			delete(r.byID, id)
		}
	}
	return out
}
