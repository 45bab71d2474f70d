package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Messenger delivers replies to a chat.
type Messenger interface {
	Send(ctx context.Context, chatID int64, reply Reply) (messageID int, err error)
	Delete(ctx context.Context, chatID int64, messageID int) error
}

// telegramClient is the subset of *tgbotapi.BotAPI used for delivery.
type telegramClient interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// TelegramMessenger sends replies through the Telegram Bot API.
type TelegramMessenger struct {
	client telegramClient
}

// NewTelegramMessenger wraps client, normally a *tgbotapi.BotAPI.
func NewTelegramMessenger(client telegramClient) *TelegramMessenger {
	return &TelegramMessenger{client: client}
}

var _ Messenger = (*TelegramMessenger)(nil)

// Send posts reply to chatID and returns the id of the sent message.
func (m *TelegramMessenger) Send(ctx context.Context, chatID int64, reply Reply) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	msg := tgbotapi.NewMessage(chatID, reply.Text)
	if reply.HTML {
		msg.ParseMode = tgbotapi.ModeHTML
	}

	sent, err := m.client.Send(msg)
	if err != nil {
		return 0, fmt.Errorf("send message to chat %d: %w", chatID, err)
	}
	return sent.MessageID, nil
}

// Delete removes a message the bot sent earlier.
func (m *TelegramMessenger) Delete(ctx context.Context, chatID int64, messageID int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := m.client.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		return fmt.Errorf("delete message %d in chat %d: %w", messageID, chatID, err)
	}
	return nil
}
