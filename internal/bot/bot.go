// Package bot wires the lookup pipeline and the timer subsystem to Telegram.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"lookup_bot/internal/adapter"
	"lookup_bot/internal/config"
	"lookup_bot/internal/metoo"
	"lookup_bot/internal/prompt"
	"lookup_bot/internal/scheduler"
	"lookup_bot/internal/service"
	"lookup_bot/internal/storage"
	"lookup_bot/internal/webclient"
)

type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Bot is the Telegram bot that handles lookup commands and timers.
type Bot struct {
	api        telegramAPI
	store      storage.Storage
	cfg        *config.Config
	client     *webclient.Client
	pipeline   *adapter.Pipeline
	services   map[string]*adapter.Descriptor
	sessions   *prompt.Sessions
	metoo      *metoo.Registry
	// metooChats remembers which chat each me-too prompt lives in, for
	// deleting the prompt when its window closes.
	metooChats *messageChats
	confirms   *confirmRegistry
	replies    *replyRouter
	log        *slog.Logger
}

// New creates a Bot with the given Telegram token, storage, and config.
func New(token string, store storage.Storage, cfg *config.Config, log *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	client := webclient.NewPooled()
	return &Bot{
		api:        api,
		store:      store,
		cfg:        cfg,
		client:     client,
		pipeline:   adapter.NewPipeline(client, log),
		services:   buildServices(cfg),
		sessions:   prompt.NewSessions(),
		metoo:      metoo.NewRegistry(),
		metooChats: newMessageChats(),
		confirms:   newConfirmRegistry(),
		replies:    newReplyRouter(),
		log:        log,
	}, nil
}

func buildServices(cfg *config.Config) map[string]*adapter.Descriptor {
	return map[string]*adapter.Descriptor{
		"anime":     service.NewAniList("ANIME"),
		"manga":     service.NewAniList("MANGA"),
		"character": service.NewAniListCharacter(),
		"movie":     service.NewTMDB("movie", cfg.TMDBAPIKey),
		"tvshow":    service.NewTMDB("tv", cfg.TMDBAPIKey),
		"pokedex":   service.NewPokeAPI(),
		"game":      service.NewCheapShark(),
		"country":   service.NewRestCountries(),
		"phone":     service.NewGSMArena(),
	}
}

// Run starts the bot's long-polling loop, blocking until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	housekeeping := time.NewTicker(5 * time.Second)
	defer housekeeping.Stop()

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.teardown()
			return
		case <-housekeeping.C:
			b.expirePrompts()
		case update := <-updates:
			if update.CallbackQuery != nil {
				b.handleCallback(ctx, update.CallbackQuery)
				continue
			}
			if update.Message == nil {
				continue
			}
			if b.replies.route(update.Message) {
				continue
			}
			if !update.Message.IsCommand() {
				continue
			}
			if !b.cfg.IsUserAllowed(update.Message.From.ID) {
				b.reply(update.Message.Chat.ID, "Access denied.")
				continue
			}
			b.handleCommand(ctx, update.Message)
		}
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	cmd := msg.Command()
	chatID := msg.Chat.ID

	b.log.Debug("command", "cmd", cmd, "args", msg.CommandArguments(), "chat_id", chatID)

	if svc, ok := b.services[cmd]; ok {
		// Lookup commands block on user replies; they must not stall the
		// update loop that delivers those replies.
		go b.handleLookup(ctx, msg, svc)
		return
	}

	switch cmd {
	case "start":
		b.handleStart(chatID)
	case "help":
		b.handleHelp(chatID)
	case "ip":
		go b.handleIP(ctx, msg)
	case "timer":
		b.handleTimer(ctx, msg)
	default:
		b.reply(chatID, "Unknown command. Use /help for a list of commands.")
	}
}

// expirePrompts runs periodic housekeeping: dead paginator sessions lose
// their controls, closed me-too windows and stale delete-all confirmations
// lose their prompt messages.
func (b *Bot) expirePrompts() {
	now := time.Now()
	for _, s := range b.sessions.Expire(now) {
		b.detachControls(s.ChatID, s.MessageID)
	}
	for _, id := range b.metoo.Expired() {
		if chatID, ok := b.metooChats.remove(id); ok {
			b.deleteMessage(chatID, id)
		}
	}
	for _, c := range b.confirms.expired(now) {
		b.deleteMessage(c.chatID, c.messageID)
	}
}

func (b *Bot) teardown() {
	for _, s := range b.sessions.Expire(time.Now().Add(prompt.SessionTTL + time.Second)) {
		b.detachControls(s.ChatID, s.MessageID)
	}
	b.sessions.Clear()
	for _, id := range b.metoo.Clear() {
		if chatID, ok := b.metooChats.remove(id); ok {
			b.deleteMessage(chatID, id)
		}
	}
	b.client.Close()
}

// SendMessage sends a text message to the given chat.
func (b *Bot) SendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.DisableWebPagePreview = true
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("send message", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) reply(chatID int64, text string) {
	b.SendMessage(chatID, text)
}

// SendTimer delivers a scheduler notification, mentioning the timer's owner.
// Permanent chat failures are reported as scheduler.ErrUnreachable.
func (b *Bot) SendTimer(chatID, ownerID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("[⏰](tg://user?id=%d) %s", ownerID, text))
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.DisableWebPagePreview = true
	if _, err := b.api.Send(msg); err != nil {
		if unreachableErr(err) {
			return fmt.Errorf("%w: %v", scheduler.ErrUnreachable, err)
		}
		return err
	}
	return nil
}

func unreachableErr(err error) bool {
	s := err.Error()
	return strings.Contains(s, "Forbidden") ||
		strings.Contains(s, "chat not found") ||
		strings.Contains(s, "group chat was upgraded") ||
		strings.Contains(s, "user is deactivated")
}

func (b *Bot) deleteMessage(chatID int64, messageID int) {
	if _, err := b.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		b.log.Debug("delete message", "chat_id", chatID, "message_id", messageID, "error", err)
	}
}

func (b *Bot) detachControls(chatID int64, messageID int) {
	edit := tgbotapi.NewEditMessageReplyMarkup(chatID, messageID, tgbotapi.InlineKeyboardMarkup{
		InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{},
	})
	if _, err := b.api.Request(edit); err != nil {
		b.log.Debug("detach controls", "chat_id", chatID, "message_id", messageID, "error", err)
	}
}
