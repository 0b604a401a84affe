package telegram

import (
	"net/http"
	"time"

	"github.com/spf13/cast"
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
	"gopkg.in/telebot.v3/middleware"
)

type Telegram struct {
	logger   *zap.Logger
	settings Settings
	client   *tele.Bot
}

type Settings struct {
	Token  string
	Client *http.Client
}

type Option func(telegram *Telegram)

// WithStatus 注册 /status 命令，回复 fn 的返回值
func WithStatus(fn func() string) Option {
	return func(t *Telegram) {
		t.client.Handle("/status", func(c tele.Context) error {
			return c.Send(fn())
		})
	}
}

func NewTelegram(logger *zap.Logger, settings Settings, options ...Option) (*Telegram, error) {
	client, err := tele.NewBot(tele.Settings{
		ParseMode: tele.ModeMarkdown,
		Token:     settings.Token,
		Poller:    &tele.LongPoller{Timeout: 10 * time.Second},
		Client:    settings.Client,
	})
	if err != nil {
		return nil, err
	}

	client.Use(middleware.AutoRespond())

	err = client.SetCommands([]tele.Command{
		{Text: "/start", Description: "Show the bot menu"},
		{Text: "/status", Description: "Evaluation loop status"},
	})
	if err != nil {
		return nil, err
	}

	client.Handle("/start", func(c tele.Context) error {
		return c.Send("Challenge status notifications are sent to this chat. Use /status to see the evaluation loop.")
	})

	bot := &Telegram{
		logger:   logger,
		settings: settings,
		client:   client,
	}
	for _, option := range options {
		option(bot)
	}
	return bot, nil
}

// Apply 在创建之后追加选项
func (r *Telegram) Apply(options ...Option) {
	for _, option := range options {
		option(r)
	}
}

func (r *Telegram) Start() {
	go r.client.Start()
}

func (r *Telegram) Stop() {
	r.client.Stop()
}

// Notify 向指定会话发送 Markdown 消息
func (r *Telegram) Notify(chatId, msg string) error {
	_, err := r.client.Send(tele.ChatID(cast.ToInt64(chatId)), msg, &tele.SendOptions{ParseMode: tele.ModeMarkdown})
	if err != nil {
		r.logger.Warn("telegram send failed", zap.String("chat_id", chatId), zap.Error(err))
	}
	return err
}
