package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dushixiang/propdesk/internal/config"
	"github.com/dushixiang/propdesk/internal/models"
	"github.com/dushixiang/propdesk/internal/telegram"
	"github.com/dushixiang/propdesk/pkg/n8n"
	"github.com/dushixiang/propdesk/pkg/objective"
	"github.com/dustin/go-humanize"
	"github.com/valyala/fasttemplate"
	"go.uber.org/zap"
)

const statusChangeTemplate = `*{{headline}}*
Account {{login}} ({{platform}}) on {{challenge}}
Trader: {{trader}}

{{objectives}}`

// StatusChange 账户状态变化
type StatusChange struct {
	Account       models.BrokerAccount
	ChallengeName string
	From          string
	To            string
	Report        *objective.Report
}

// MessageSender 聊天消息发送
type MessageSender interface {
	Notify(chatId, msg string) error
}

// EventSink 自动化事件接收方
type EventSink interface {
	Notify(ctx context.Context, event n8n.Event) error
}

// NotifyService 将账户状态变化推送到 Telegram 与 n8n，失败只记录日志
type NotifyService struct {
	logger *zap.Logger
	chatID string
	sender MessageSender
	sink   EventSink
}

func NewNotifyService(logger *zap.Logger, conf *config.Config, tg *telegram.Telegram, hook *n8n.Webhook) *NotifyService {
	s := &NotifyService{logger: logger, chatID: conf.Telegram.ChatID}
	if tg != nil {
		s.sender = tg
	}
	if hook != nil && hook.Enabled() {
		s.sink = hook
	}
	return s
}

func (s *NotifyService) AccountStatusChanged(ctx context.Context, change StatusChange) {
	if s.sender != nil && s.chatID != "" {
		if err := s.sender.Notify(s.chatID, renderStatusChange(change)); err != nil {
			s.logger.Error("failed to send telegram notification",
				zap.String("account_id", change.Account.ID),
				zap.Error(err))
		}
	}

	if s.sink != nil {
		event := n8n.Event{
			Type:       eventType(change.To),
			AccountID:  change.Account.ID,
			Login:      change.Account.Login,
			Email:      change.Account.TraderEmail,
			Passed:     change.To == models.AccountStatusPassed,
			OccurredAt: time.Now().UTC(),
		}
		if change.Report != nil {
			event.Objectives = change.Report.Objectives
		}
		if err := s.sink.Notify(ctx, event); err != nil {
			s.logger.Error("failed to deliver n8n event",
				zap.String("account_id", change.Account.ID),
				zap.String("event", event.Type),
				zap.Error(err))
		}
	}
}

func eventType(status string) string {
	switch status {
	case models.AccountStatusPassed:
		return n8n.EventAccountPassed
	case models.AccountStatusFailed:
		return n8n.EventAccountFailed
	default:
		return "account." + status
	}
}

func renderStatusChange(change StatusChange) string {
	headline := fmt.Sprintf("Challenge %s", strings.ToUpper(change.To))
	switch change.To {
	case models.AccountStatusPassed:
		headline = "✅ Challenge passed"
	case models.AccountStatusFailed:
		headline = "❌ Challenge failed"
	}

	trader := change.Account.TraderName
	if trader == "" {
		trader = change.Account.TraderEmail
	}
	if trader == "" {
		trader = "-"
	}

	var lines []string
	if change.Report != nil {
		for _, o := range change.Report.Objectives {
			mark := "✅"
			if !o.Passed {
				mark = "❌"
			}
			lines = append(lines, fmt.Sprintf("%s %s: %s (%s%%)",
				mark,
				telegram.EscapeMarkdown(o.Name),
				humanize.CommafWithDigits(o.ObservedAbsolute, 2),
				humanize.FtoaWithDigits(o.ObservedPercentOfTarget, 1),
			))
		}
	}

	tmpl := fasttemplate.New(statusChangeTemplate, "{{", "}}")
	return tmpl.ExecuteString(map[string]interface{}{
		"headline":   headline,
		"login":      telegram.EscapeMarkdown(change.Account.Login),
		"platform":   strings.ToUpper(change.Account.Platform),
		"challenge":  telegram.EscapeMarkdown(change.ChallengeName),
		"trader":     telegram.EscapeMarkdown(trader),
		"objectives": strings.Join(lines, "\n"),
	})
}
