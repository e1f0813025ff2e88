package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"lookup_bot/internal/adapter"
	"lookup_bot/internal/prompt"
	"lookup_bot/internal/service"
)

func (b *Bot) handleStart(chatID int64) {
	b.reply(chatID, `Welcome to Lookup Bot!

Search anime, movies, games, countries and more, and set reminders.

Quick start:
1. /anime <title> - look up an anime
2. /movie <title> - look up a movie
3. /timer in 30m check the oven - set a reminder

Use /help for the full command reference.`)
}

func (b *Bot) handleHelp(chatID int64) {
	b.reply(chatID, `Lookups:
/anime <title> - AniList anime search
/manga <title> - AniList manga search
/character <name> - AniList character search
/movie <title> - TMDB movie search
/tvshow <title> - TMDB TV search
/pokedex <name or number> - Pokédex entry
/game <title> - game deals
/country <name> - country facts
/phone <model> - phone specs
/ip <address> [address ...] - IP geolocation (up to 20)

Timers:
/timer in <duration> [every <interval>] [text] - set a reminder
/timer list [time|added|id] - list your timers
/timer modify time <id> <duration> - change fire time
/timer modify repeat <id> <duration|off> - change repeat
/timer modify text <id> <text> - change reminder text
/timer remove <id|last|all> - delete timer(s)

Durations: 30s, 5 minutes, 1h30m, 2 hours and 15 minutes, ...`)
}

func (b *Bot) handleLookup(ctx context.Context, msg *tgbotapi.Message, svc *adapter.Descriptor) {
	chatID := msg.Chat.ID
	query := strings.TrimSpace(msg.CommandArguments())
	if query == "" {
		b.reply(chatID, "Usage: /"+msg.Command()+" <query>")
		return
	}
	if (svc.Name == "movie" || svc.Name == "tv") && b.cfg.TMDBAPIKey == "" {
		b.reply(chatID, "TMDB lookups are not configured.")
		return
	}

	env := adapter.Env{NSFW: b.cfg.IsChatNSFW(chatID)}
	chooser := prompt.NewDisambiguator(b.promptIO(chatID, msg.From.ID))
	present := b.presenter(chatID, msg.From.ID, svc.DropdownPager)

	err := b.pipeline.Run(ctx, svc, query, env, chooser, present)
	if err != nil {
		if text, visible := adapter.UserMessage(err); visible {
			b.reply(chatID, text)
		}
		return
	}
}

func (b *Bot) handleIP(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	args := strings.TrimSpace(msg.CommandArguments())
	if args == "" {
		b.reply(chatID, "Usage: /ip <address> [address ...]")
		return
	}
	if b.cfg.IPDataAPIKey == "" {
		b.reply(chatID, "IP lookups are not configured.")
		return
	}

	addrs := strings.FieldsFunc(args, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\n'
	})

	pages, err := service.IPLookup(ctx, b.client, b.cfg.IPDataAPIKey, addrs)
	if err != nil {
		if text, visible := adapter.UserMessage(err); visible {
			b.reply(chatID, text)
		}
		return
	}
	if err := b.presentPages(chatID, msg.From.ID, pages, false); err != nil {
		b.log.Error("present ip pages", "chat_id", chatID, "error", err)
	}
}
