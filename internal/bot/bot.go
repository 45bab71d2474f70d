package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/SscSPs/finance_bot/internal/middleware"
)

// Bot handles Telegram updates end to end.
type Bot struct {
	dispatcher *Dispatcher
	messenger  Messenger
	cleaner    *Cleaner
}

// NewBot creates a Bot.
func NewBot(dispatcher *Dispatcher, messenger Messenger, cleaner *Cleaner) *Bot {
	return &Bot{
		dispatcher: dispatcher,
		messenger:  messenger,
		cleaner:    cleaner,
	}
}

// ProcessUpdate answers one update. It never fails: errors are turned into
// replies by the dispatcher, and delivery failures are only logged.
func (b *Bot) ProcessUpdate(ctx context.Context, update tgbotapi.Update) {
	logger := middleware.GetLoggerFromCtx(ctx).With(slog.Int("update_id", update.UpdateID))

	msg := update.Message
	if msg == nil || msg.Chat == nil {
		logger.Debug("Ignoring update without a message")
		return
	}

	in := Inbound{
		Text:      msg.Text,
		ChatID:    msg.Chat.ID,
		MessageID: msg.MessageID,
		Timestamp: int64(msg.Date),
	}
	if msg.From != nil {
		in.SenderID = strconv.FormatInt(msg.From.ID, 10)
		in.FirstName = msg.From.FirstName
	}

	logger = logger.With(
		slog.Int64("chat_id", in.ChatID),
		slog.String("sender_id", in.SenderID),
	)
	ctx = middleware.WithLogger(ctx, logger)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Recovered from panic while handling update", slog.String("panic", fmt.Sprint(r)))
		}
	}()

	reply := b.dispatcher.Handle(ctx, in)
	if reply.IsEmpty() {
		return
	}

	sentID, err := b.messenger.Send(ctx, in.ChatID, reply)
	if err != nil {
		logger.Warn("Failed to send reply", slog.String("error", err.Error()))
		return
	}

	if reply.DeleteAfter > 0 && b.cleaner != nil {
		b.cleaner.Schedule(in.ChatID, sentID, reply.DeleteAfter)
	}
}
