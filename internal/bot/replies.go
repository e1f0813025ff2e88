package bot

import (
	"context"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// replyRouter hands plain-text messages to handlers blocked in AwaitReply.
// A message is consumed by at most one waiter: the first registered waiter
// for the same chat and user whose predicate accepts the text.
type replyRouter struct {
	mu      sync.Mutex
	waiters []*replyWaiter
}

type replyWaiter struct {
	chatID int64
	userID int64
	match  func(string) bool
	ch     chan string
}

func newReplyRouter() *replyRouter {
	return &replyRouter{}
}

// route offers a message to the waiters. It reports whether the message was
// consumed.
func (r *replyRouter) route(msg *tgbotapi.Message) bool {
	if msg.From == nil || msg.Text == "" {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, w := range r.waiters {
		if w.chatID != msg.Chat.ID || w.userID != msg.From.ID || !w.match(msg.Text) {
			continue
		}
		r.waiters = append(r.waiters[:i], r.waiters[i+1:]...)
		w.ch <- msg.Text
		return true
	}
	return false
}

func (r *replyRouter) add(w *replyWaiter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.waiters = append(r.waiters, w)
}

func (r *replyRouter) remove(w *replyWaiter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, x := range r.waiters {
		if x == w {
			r.waiters = append(r.waiters[:i], r.waiters[i+1:]...)
			return
		}
	}
}

// promptIO binds prompt.PromptIO to one chat and one user.
type promptIO struct {
	bot    *Bot
	chatID int64
	userID int64
}

func (b *Bot) promptIO(chatID, userID int64) *promptIO {
	return &promptIO{bot: b, chatID: chatID, userID: userID}
}

func (p *promptIO) Send(text string) (int, error) {
	msg := tgbotapi.NewMessage(p.chatID, text)
	msg.DisableWebPagePreview = true
	sent, err := p.bot.api.Send(msg)
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

func (p *promptIO) AwaitReply(ctx context.Context, match func(string) bool, timeout time.Duration) (string, bool) {
	w := &replyWaiter{
		chatID: p.chatID,
		userID: p.userID,
		match:  match,
		ch:     make(chan string, 1),
	}
	p.bot.replies.add(w)
	defer p.bot.replies.remove(w)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case reply := <-w.ch:
		return reply, true
	case <-timer.C:
		return "", false
	case <-ctx.Done():
		return "", false
	}
}

func (p *promptIO) Delete(messageID int) {
	p.bot.deleteMessage(p.chatID, messageID)
}

// messageChats is a small message-id to chat-id index, used to delete
// prompt messages whose registries only remember message ids.
type messageChats struct {
	mu   sync.Mutex
	byID map[int]int64
}

func newMessageChats() *messageChats {
	return &messageChats{byID: make(map[int]int64)}
}

func (m *messageChats) put(messageID int, chatID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[messageID] = chatID
}

func (m *messageChats) remove(messageID int) (int64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	chatID, ok := m.byID[messageID]
	delete(m.byID, messageID)
	return chatID, ok
}
