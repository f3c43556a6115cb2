package infrastructure

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"xiaoliu/internal/entities"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type sentMessage struct {
	ChatID      string
	Text        string
	ReplyMarkup string
}

// fakeBotAPI answers getMe and records sendMessage calls.
type fakeBotAPI struct {
	mu   sync.Mutex
	sent []sentMessage
}

func (f *fakeBotAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch {
	case strings.HasSuffix(r.URL.Path, "/getMe"):
		w.Write([]byte(`{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"小柳","username":"xiaoliu_bot"}}`))
	case strings.HasSuffix(r.URL.Path, "/sendMessage"):
		r.ParseForm()
		f.mu.Lock()
		f.sent = append(f.sent, sentMessage{
			ChatID:      r.FormValue("chat_id"),
			Text:        r.FormValue("text"),
			ReplyMarkup: r.FormValue("reply_markup"),
		})
		f.mu.Unlock()
		w.Write([]byte(`{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":42,"type":"private"}}}`))
	default:
		w.Write([]byte(`{"ok":true,"result":[]}`))
	}
}

func (f *fakeBotAPI) messages() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMessage(nil), f.sent...)
}

type fakeRouter struct {
	reply string
	err   error
	got   []entities.ChatRequest
}

func (r *fakeRouter) Route(ctx context.Context, req entities.ChatRequest) (entities.ChatResponse, error) {
	r.got = append(r.got, req)
	if r.err != nil {
		return entities.ChatResponse{}, r.err
	}
	return entities.NewChatResponse(r.reply), nil
}

func (r *fakeRouter) Features() []entities.Feature {
	return []entities.Feature{
		{Name: "文档生成", Commands: []string{"生成文档"}},
		{Name: "代码分析", Commands: []string{"分析代码"}},
		{Name: "配色方案", Commands: []string{"配色"}},
	}
}

func newTestBot(t *testing.T, router *fakeRouter, limiter *MessageRateLimiter) (*TelegramBot, *fakeBotAPI) {
	t.Helper()
	api := &fakeBotAPI{}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	client, err := NewTelegramClientWithEndpoint("test-token", srv.URL+"/bot%s/%s", srv.Client())
	if err != nil {
		t.Fatalf("failed to create telegram client: %v", err)
	}
	bot := NewTelegramBot(TelegramBotConfig{
		Client:   client,
		Router:   router,
		Limiter:  limiter,
		Greeting: "是的柳哥，我是小柳！已成功接入，随时为您服务！",
	})
	return bot, api
}

func textUpdate(chatID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{
		Message: &tgbotapi.Message{
			Chat: &tgbotapi.Chat{ID: chatID},
			Text: text,
		},
	}
}

func TestHandleUpdateRoutesText(t *testing.T) {
	router := &fakeRouter{reply: "小柳AI助手运行正常！"}
	bot, api := newTestBot(t, router, nil)

	bot.HandleUpdate(context.Background(), textUpdate(42, "小柳状态"))

	if len(router.got) != 1 || router.got[0].Message != "小柳状态" || router.got[0].UserID != "42" {
		t.Fatalf("router got %+v", router.got)
	}
	sent := api.messages()
	if len(sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(sent))
	}
	if sent[0].ChatID != "42" || sent[0].Text != "小柳AI助手运行正常！" {
		t.Errorf("sent %+v", sent[0])
	}
}

func TestHandleUpdateStartSendsKeyboard(t *testing.T) {
	router := &fakeRouter{}
	bot, api := newTestBot(t, router, nil)

	update := textUpdate(7, "/start")
	update.Message.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: 6}}
	bot.HandleUpdate(context.Background(), update)

	if len(router.got) != 0 {
		t.Errorf("/start should not be routed, router got %+v", router.got)
	}
	sent := api.messages()
	if len(sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(sent))
	}
	if !strings.Contains(sent[0].Text, "小柳") {
		t.Errorf("welcome text = %q", sent[0].Text)
	}
	for _, phrase := range []string{"生成文档", "分析代码", "配色"} {
		if !strings.Contains(sent[0].ReplyMarkup, phrase) {
			t.Errorf("keyboard %q missing %q", sent[0].ReplyMarkup, phrase)
		}
	}
}

func TestHandleUpdateIgnoresNonText(t *testing.T) {
	router := &fakeRouter{}
	bot, api := newTestBot(t, router, nil)

	bot.HandleUpdate(context.Background(), tgbotapi.Update{})
	bot.HandleUpdate(context.Background(), textUpdate(1, ""))

	if len(router.got) != 0 || len(api.messages()) != 0 {
		t.Error("empty updates should be ignored")
	}
}

func TestHandleUpdateRateLimited(t *testing.T) {
	router := &fakeRouter{reply: "ok"}
	limiter := NewMessageRateLimiter(0.001, 1)
	defer limiter.Close()
	bot, api := newTestBot(t, router, limiter)

	bot.HandleUpdate(context.Background(), textUpdate(9, "随便聊聊"))
	bot.HandleUpdate(context.Background(), textUpdate(9, "随便聊聊"))

	if len(router.got) != 1 {
		t.Fatalf("router called %d times, want 1", len(router.got))
	}
	sent := api.messages()
	if len(sent) != 2 || sent[1].Text != RateLimitedReply {
		t.Errorf("sent %+v", sent)
	}
}

func TestHandleUpdateRouteError(t *testing.T) {
	router := &fakeRouter{err: errors.New("boom")}
	bot, api := newTestBot(t, router, nil)

	bot.HandleUpdate(context.Background(), textUpdate(5, "随便聊聊"))

	sent := api.messages()
	if len(sent) != 1 || !strings.HasPrefix(sent[0].Text, ErrorMarker) {
		t.Errorf("sent %+v", sent)
	}
}

func TestFeatureKeyboardLayout(t *testing.T) {
	kb := FeatureKeyboard([]entities.Feature{
		{Commands: []string{"a"}},
		{Commands: []string{"b"}},
		{Commands: nil},
		{Commands: []string{"c"}},
	})
	if len(kb.Keyboard) != 2 {
		t.Fatalf("got %d rows, want 2", len(kb.Keyboard))
	}
	if len(kb.Keyboard[0]) != 2 || kb.Keyboard[1][0].Text != "c" {
		t.Errorf("unexpected layout %+v", kb.Keyboard)
	}
	if !kb.ResizeKeyboard {
		t.Error("keyboard should be resizable")
	}
}
