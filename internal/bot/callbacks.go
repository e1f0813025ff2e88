package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil {
		return
	}

	parts := strings.SplitN(cb.Data, ":", 3)

	b.log.Debug("callback",
		"data", cb.Data,
		"chat_id", cb.Message.Chat.ID,
		"user_id", cb.From.ID,
	)

	switch parts[0] {
	case "pg":
		if len(parts) == 3 {
			b.handlePagerCallback(cb, parts[1], parts[2])
			return
		}
	case "metoo":
		b.handleMeTooCallback(ctx, cb)
		return
	case "rmall":
		if len(parts) == 2 {
			b.handleRemoveAllCallback(ctx, cb, parts[1] == "yes")
			return
		}
	}
	b.answerCallback(cb.ID, "")
}

func (b *Bot) answerCallback(id, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(id, text)); err != nil {
		b.log.Error("answer callback", "error", err)
	}
}

func (b *Bot) handlePagerCallback(cb *tgbotapi.CallbackQuery, token, op string) {
	s := b.sessions.Get(token)
	if s == nil {
		b.answerCallback(cb.ID, "This view has expired.")
		return
	}
	if cb.From.ID != s.OwnerID {
		// Non-owner presses are ignored with a single notice.
		b.answerCallback(cb.ID, "Not your menu.")
		return
	}

	switch op {
	case "prev":
		s.Prev()
		b.redrawPage(s)
	case "next":
		s.Next()
		b.redrawPage(s)
	case "close":
		b.sessions.Remove(token)
		b.deleteMessage(s.ChatID, s.MessageID)
	default:
		if raw, ok := strings.CutPrefix(op, "sel:"); ok {
			n, err := strconv.Atoi(raw)
			if err == nil && s.Select(n) {
				b.redrawPage(s)
			} else {
				// Picking the page already shown is a no-op.
				b.answerCallback(cb.ID, "Already showing this page.")
				return
			}
		}
	}
	b.answerCallback(cb.ID, "")
}

func (b *Bot) handleMeTooCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	userID := cb.From.ID

	t, ok := b.metoo.Subscribe(cb.Message.MessageID, userID)
	if !ok {
		b.answerCallback(cb.ID, "This reminder window has closed.")
		return
	}

	// Duplicate suppression: a second tap never stores a second copy.
	existing, err := b.store.ListTimers(ctx, userID)
	if err == nil {
		for _, e := range existing {
			if e.ContentEqual(t) {
				b.answerCallback(cb.ID, "You already have this reminder.")
				return
			}
		}
	}

	if err := b.store.AddTimer(ctx, &t); err != nil {
		b.log.Error("add me-too timer", "user_id", userID, "error", err)
		b.answerCallback(cb.ID, "Failed to add the reminder.")
		return
	}
	b.answerCallback(cb.ID, fmt.Sprintf("Reminder #%d added: fires in %s.", t.UserTimerID, t.FireAtHuman))
}

func (b *Bot) handleRemoveAllCallback(ctx context.Context, cb *tgbotapi.CallbackQuery, confirmed bool) {
	msgID := cb.Message.MessageID

	e, ok := b.confirms.get(msgID)
	if !ok {
		b.answerCallback(cb.ID, "This confirmation has expired.")
		return
	}
	if cb.From.ID != e.ownerID {
		b.answerCallback(cb.ID, "Not your confirmation.")
		return
	}

	b.confirms.remove(msgID)
	b.deleteMessage(e.chatID, msgID)

	if !confirmed {
		b.answerCallback(cb.ID, "Cancelled.")
		return
	}
	if err := b.store.RemoveAllTimers(ctx, e.ownerID); err != nil {
		b.reply(e.chatID, fmt.Sprintf("Error: %v", err))
		return
	}
	b.answerCallback(cb.ID, "")
	b.reply(e.chatID, "All your timers have been removed.")
}
