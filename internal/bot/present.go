package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"lookup_bot/internal/model"
	"lookup_bot/internal/prompt"
)

// presenter delivers page sequences to one chat on behalf of one user.
type presenter struct {
	bot      *Bot
	chatID   int64
	ownerID  int64
	dropdown bool
}

func (b *Bot) presenter(chatID, ownerID int64, dropdown bool) *presenter {
	return &presenter{bot: b, chatID: chatID, ownerID: ownerID, dropdown: dropdown}
}

func (p *presenter) Present(ctx context.Context, pages model.PageSequence) error {
	return p.bot.presentPages(p.chatID, p.ownerID, pages, p.dropdown)
}

func (b *Bot) presentPages(chatID, ownerID int64, pages model.PageSequence, dropdown bool) error {
	s := prompt.NewSession(ownerID, chatID, pages)
	s.Dropdown = dropdown

	msg := tgbotapi.NewMessage(chatID, FormatView(s.Current(), s.Index(), s.Len()))
	msg.ReplyMarkup = pagerKeyboard(s)
	sent, err := b.api.Send(msg)
	if err != nil {
		return err
	}

	s.MessageID = sent.MessageID
	b.sessions.Put(s)
	return nil
}

// redrawPage replaces the paginator message's text and controls with the
// session's current page.
func (b *Bot) redrawPage(s *prompt.Session) {
	edit := tgbotapi.NewEditMessageTextAndMarkup(
		s.ChatID, s.MessageID,
		FormatView(s.Current(), s.Index(), s.Len()),
		pagerKeyboard(s),
	)
	if _, err := b.api.Request(edit); err != nil {
		b.log.Error("redraw page", "chat_id", s.ChatID, "message_id", s.MessageID, "error", err)
	}
}

func pagerKeyboard(s *prompt.Session) tgbotapi.InlineKeyboardMarkup {
	closeBtn := tgbotapi.NewInlineKeyboardButtonData("✕", "pg:"+s.Token+":close")
	if !s.MultiPage() {
		return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(closeBtn))
	}
	if s.Dropdown {
		return dropdownKeyboard(s, closeBtn)
	}
	return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("‹", "pg:"+s.Token+":prev"),
		closeBtn,
		tgbotapi.NewInlineKeyboardButtonData("›", "pg:"+s.Token+":next"),
	))
}

// dropdownKeyboard is the menu paging surface: one button per page, labelled
// with the page title and a shortened subtitle. The current page gets a
// marker instead of being omitted so the layout stays stable across redraws.
func dropdownKeyboard(s *prompt.Session, closeBtn tgbotapi.InlineKeyboardButton) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, s.Len()+1)
	for i, v := range s.Pages() {
		label := pageLabel(i+1, v)
		if i+1 == s.Index() {
			label = "· " + label
		}
		data := fmt.Sprintf("pg:%s:sel:%d", s.Token, i+1)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, data)))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(closeBtn))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// pageLabel renders a menu option, kept well under Telegram's button text
// limit.
func pageLabel(n int, v model.RenderedView) string {
	label := fmt.Sprintf("%d. %s", n, v.Title)
	if sub := subtitle(v); sub != "" {
		label += ": " + sub
	}
	if r := []rune(label); len(r) > 48 {
		label = string(r[:47]) + "…"
	}
	return label
}

func subtitle(v model.RenderedView) string {
	line, _, _ := strings.Cut(v.Body, "\n")
	return strings.TrimSpace(line)
}
