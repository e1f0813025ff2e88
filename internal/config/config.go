// Package config handles application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds the application configuration.
type Config struct {
	TelegramBotToken string
	DatabasePath     string
	LogLevel         string
	AllowedUsers     []int64
	// NSFWChats lists chat IDs where adult-flagged results may be shown.
	// Chats not in the list are treated as non-NSFW.
	NSFWChats    []int64
	TMDBAPIKey   string
	IPDataAPIKey string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}

	dbPath := os.Getenv("DATABASE_PATH")
	if dbPath == "" {
		dbPath = "./data/bot.db"
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	allowedUsers, err := parseIDList(os.Getenv("ALLOWED_USERS"), "ALLOWED_USERS")
	if err != nil {
		return nil, err
	}
	nsfwChats, err := parseIDList(os.Getenv("NSFW_CHATS"), "NSFW_CHATS")
	if err != nil {
		return nil, err
	}

	return &Config{
		TelegramBotToken: token,
		DatabasePath:     dbPath,
		LogLevel:         logLevel,
		AllowedUsers:     allowedUsers,
		NSFWChats:        nsfwChats,
		TMDBAPIKey:       os.Getenv("TMDB_API_KEY"),
		IPDataAPIKey:     os.Getenv("IPDATA_API_KEY"),
	}, nil
}

func parseIDList(raw, name string) ([]int64, error) {
	if raw == "" {
		return nil, nil
	}
	var ids []int64
	for _, s := range strings.Split(raw, ",") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ID %q in %s: %w", s, name, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// IsUserAllowed checks whether a user ID is in the allow list.
// Returns true if the allow list is empty (all users permitted).
func (c *Config) IsUserAllowed(userID int64) bool {
	if len(c.AllowedUsers) == 0 {
		return true
	}
	for _, id := range c.AllowedUsers {
		if id == userID {
			return true
		}
	}
	return false
}

// IsChatNSFW reports whether adult results may be rendered in the chat.
// Unknown chats are treated as non-NSFW.
func (c *Config) IsChatNSFW(chatID int64) bool {
	for _, id := range c.NSFWChats {
		if id == chatID {
			return true
		}
	}
	return false
}
