package infrastructure

import (
	"fmt"
	"net/http"
	"strconv"
	"xiaoliu/internal/interfaces"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

var _ interfaces.Messenger = (*TelegramClient)(nil)

type TelegramClient struct {
	Bot *tgbotapi.BotAPI
}

func NewTelegramClient(token string) (*TelegramClient, error) {
	return NewTelegramClientWithEndpoint(token, tgbotapi.APIEndpoint, &http.Client{})
}

// NewTelegramClientWithEndpoint talks to a custom Bot API endpoint, e.g. a
// local Bot API server. endpoint uses the tgbotapi.APIEndpoint format.
func NewTelegramClientWithEndpoint(token, endpoint string, client *http.Client) (*TelegramClient, error) {
	bot, err := tgbotapi.NewBotAPIWithClient(token, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	return &TelegramClient{Bot: bot}, nil
}

// SendMessage sends plain text; model replies are not guaranteed to be
// valid Markdown, so no parse mode is set.
func (t *TelegramClient) SendMessage(to, content string) error {
	chatID, err := strconv.ParseInt(to, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid telegram chat id %q: %w", to, err)
	}
	_, err = t.Bot.Send(tgbotapi.NewMessage(chatID, content))
	return err
}

// SendMessageWithKeyboard sends text together with a reply keyboard.
func (t *TelegramClient) SendMessageWithKeyboard(chatID int64, content string, keyboard tgbotapi.ReplyKeyboardMarkup) error {
	msg := tgbotapi.NewMessage(chatID, content)
	msg.ReplyMarkup = keyboard
	_, err := t.Bot.Send(msg)
	return err
}
