package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"scrapbot/internal/bot"
	"scrapbot/internal/session"
)

// Bot is the optional Telegram channel. The chat id doubles as the session
// key, so a Telegram conversation and a web conversation never collide.
type Bot struct {
	api    *tgbotapi.BotAPI
	engine *bot.Engine
	store  session.Store
	logger *zap.Logger
}

func New(token string, engine *bot.Engine, store session.Store, logger *zap.Logger) (*Bot, error) {
	botAPI, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}

	logger.Info("Telegram bot authorized",
		zap.String("username", botAPI.Self.UserName),
		zap.Int64("id", botAPI.Self.ID))

	return &Bot{
		api:    botAPI,
		engine: engine,
		store:  store,
		logger: logger,
	}, nil
}

// Run long-polls updates until the context is cancelled. Updates arrive one
// at a time, so turns for a chat are naturally serialized here.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("Shutting down Telegram bot")
			b.api.StopReceivingUpdates()
			return nil

		case update := <-updates:
			if update.Message == nil {
				continue
			}
			b.processMessage(ctx, update.Message)
		}
	}
}

func (b *Bot) processMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	key := sessionKey(chatID)

	if msg.IsCommand() && msg.Command() == "start" {
		if err := b.store.Clear(ctx, key); err != nil {
			b.logger.Error("Failed to clear session",
				zap.Int64("chat_id", chatID),
				zap.Error(err))
		}
		b.send(tgbotapi.NewMessage(chatID, bot.WelcomeMessage()))
		return
	}

	sess, err := b.store.Get(ctx, key)
	if err != nil {
		b.logger.Error("Failed to get session",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.send(tgbotapi.NewMessage(chatID, "⚠️ Something went wrong, please try again."))
		return
	}

	reply := b.engine.Handle(ctx, sess, msg.Text)

	if err := b.store.Save(ctx, key, sess); err != nil {
		b.logger.Error("Failed to save session",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}

	b.send(tgbotapi.NewMessage(chatID, reply.Text))
	if reply.Image != "" {
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(reply.Image))
		if _, err := b.api.Send(photo); err != nil {
			b.logger.Warn("Failed to send material image",
				zap.Int64("chat_id", chatID),
				zap.Error(err))
		}
	}
}

func (b *Bot) send(msg tgbotapi.MessageConfig) {
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send message",
			zap.Int64("chat_id", msg.ChatID),
			zap.Error(err))
	}
}

func sessionKey(chatID int64) string {
	return fmt.Sprintf("tg:%d", chatID)
}
