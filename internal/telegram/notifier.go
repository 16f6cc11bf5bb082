// Package telegram pushes complaint alerts to the admin team's Telegram
// chat. The notifier is one-way: it never reads updates, and a send
// failure is logged without failing the write that triggered it.
package telegram

import (
	"fmt"
	"log"
	"strconv"

	"gripelogger/backend/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Alerter is what the handlers depend on. NopAlerter is used when no bot
// token is configured.
type Alerter interface {
	ComplaintCreated(c *models.Complaint)
	ComplaintResolved(c *models.Complaint)
}

// NopAlerter discards all alerts.
type NopAlerter struct{}

func (NopAlerter) ComplaintCreated(*models.Complaint)  {}
func (NopAlerter) ComplaintResolved(*models.Complaint) {}

// Notifier sends alerts through a Telegram bot to a single chat.
type Notifier struct {
	BotAPI *tgbotapi.BotAPI
	ChatID int64
}

// NewNotifier authenticates the bot and resolves the target chat ID.
func NewNotifier(token, chatID string) (*Notifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID %q: %w", chatID, err)
	}

	log.Printf("INFO: Telegram alerts enabled, bot account %s", bot.Self.UserName)
	return &Notifier{BotAPI: bot, ChatID: id}, nil
}

func (n *Notifier) ComplaintCreated(c *models.Complaint) {
	n.send(fmt.Sprintf("📨 New complaint (%s priority)\n%s", c.Priority, c.Title))
}

func (n *Notifier) ComplaintResolved(c *models.Complaint) {
	text := fmt.Sprintf("✅ Complaint resolved\n%s", c.Title)
	if c.ResolutionNote != "" {
		text += "\n" + c.ResolutionNote
	}
	n.send(text)
}

func (n *Notifier) send(text string) {
	msg := tgbotapi.NewMessage(n.ChatID, text)
	if _, err := n.BotAPI.Send(msg); err != nil {
		log.Printf("ERROR: Failed to send Telegram alert: %v", err)
	}
}
