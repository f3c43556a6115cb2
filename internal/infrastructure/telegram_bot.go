package infrastructure

import (
	"context"
	"strconv"
	"sync"
	"xiaoliu/internal/entities"
	"xiaoliu/internal/interfaces"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	platformTelegram = "telegram"
	pollTimeout      = 60

	RateLimitedReply = ErrorMarker + " 消息过于频繁，请稍后再试"
)

type TelegramBotConfig struct {
	Client   *TelegramClient
	Router   interfaces.ChatRouter
	Limiter  *MessageRateLimiter
	Greeting string
}

// TelegramBot feeds Telegram text messages through the chat router and
// sends each reply back to the originating chat.
type TelegramBot struct {
	client    *TelegramClient
	messenger interfaces.Messenger
	router    interfaces.ChatRouter
	limiter   *MessageRateLimiter
	greeting  string
	keyboard  tgbotapi.ReplyKeyboardMarkup
}

func NewTelegramBot(cfg TelegramBotConfig) *TelegramBot {
	return &TelegramBot{
		client:    cfg.Client,
		messenger: cfg.Client,
		router:    cfg.Router,
		limiter:   cfg.Limiter,
		greeting:  cfg.Greeting,
		keyboard:  FeatureKeyboard(cfg.Router.Features()),
	}
}

// Run long-polls for updates until ctx is cancelled. Each update is handled
// on its own goroutine so a slow inference call does not stall other chats.
func (b *TelegramBot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = pollTimeout
	updates := b.client.Bot.GetUpdatesChan(u)

	log.Info().Str("bot", b.client.Bot.Self.UserName).Msg("telegram polling started")

	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			b.client.Bot.StopReceivingUpdates()
			log.Info().Msg("telegram polling stopped")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				b.HandleUpdate(ctx, update)
			}()
		}
	}
}

// HandleUpdate processes a single update. Non-text updates are ignored.
func (b *TelegramBot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.Text == "" {
		return
	}

	chatID := msg.Chat.ID
	from := strconv.FormatInt(chatID, 10)
	logger := log.With().Str("platform", platformTelegram).Int64("chat_id", chatID).Logger()

	if msg.IsCommand() && msg.Command() == "start" {
		if err := b.client.SendMessageWithKeyboard(chatID, b.greeting, b.keyboard); err != nil {
			logger.Error().Err(err).Msg("failed to send welcome message")
		}
		return
	}

	if !b.limiter.Allow(from) {
		logger.Warn().Msg("telegram chat rate limited")
		b.reply(&logger, from, RateLimitedReply)
		return
	}

	in := entities.Message{From: from, Content: msg.Text, Platform: platformTelegram}
	resp, err := b.router.Route(ctx, in.ToChatRequest())
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		logger.Error().Err(err).Msg("failed to route telegram message")
		b.reply(&logger, from, ErrorReply(err))
		return
	}
	b.reply(&logger, from, resp.Response)
}

func (b *TelegramBot) reply(logger *zerolog.Logger, to, text string) {
	if err := b.messenger.SendMessage(to, text); err != nil {
		logger.Error().Err(err).Msg("failed to send telegram reply")
	}
}
