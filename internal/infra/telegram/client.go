// internal/infra/telegram/client.go
package telegram

import (
	"context"
	"fmt"

	"gopkg.in/telebot.v3"
)

// sender is the part of *telebot.Bot the client needs.
type sender interface {
	Send(to telebot.Recipient, what interface{}, opts ...interface{}) (*telebot.Message, error)
}

// Client implements notify.Notifier by sending to one fixed chat using the
// gopkg.in/telebot.v3 library.
type Client struct {
	bot  sender
	chat telebot.Recipient
}

// NewClient builds a send-only bot. apiURL may be empty for the public
// Bot API. No updates are polled.
func NewClient(token, apiURL string, chatID int64) (*Client, error) {
	bot, err := telebot.NewBot(telebot.Settings{
		Token:   token,
		URL:     apiURL,
		Offline: true,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create telegram bot: %w", err)
	}
	return &Client{bot: bot, chat: telebot.ChatID(chatID)}, nil
}

// Send sends text to the configured chat.
func (c *Client) Send(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := c.bot.Send(c.chat, text, &telebot.SendOptions{DisableWebPagePreview: true}); err != nil {
		return fmt.Errorf("error sending telegram message: %w", err)
	}
	return nil
}
