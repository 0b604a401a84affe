package n8n

import (
	"context"
	"fmt"
	"time"

	"github.com/dushixiang/propdesk/pkg/objective"
	"github.com/dushixiang/propdesk/pkg/restclient"
	"github.com/google/uuid"
)

// 事件类型
const (
	EventAccountPassed = "account.passed"
	EventAccountFailed = "account.failed"
)

// Event 推送到 n8n 的账户事件
type Event struct {
	ID         string                `json:"id"`
	Type       string                `json:"type"`
	AccountID  string                `json:"account_id"`
	Login      string                `json:"login"`
	Email      string                `json:"email,omitempty"`
	Passed     bool                  `json:"passed"`
	Objectives []objective.Objective `json:"objectives"`
	OccurredAt time.Time             `json:"occurred_at"`
}

// Webhook n8n webhook 触发器
type Webhook struct {
	enabled bool
	rest    *restclient.Client
}

// New url 为空时 Notify 不做任何事
func New(url string, enabled bool, opts restclient.Options) *Webhook {
	return &Webhook{
		enabled: enabled && url != "",
		rest:    restclient.New(url, opts),
	}
}

func (w *Webhook) Enabled() bool {
	return w.enabled
}

func (w *Webhook) Notify(ctx context.Context, event Event) error {
	if !w.enabled {
		return nil
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	if _, err := w.rest.PostJSON(ctx, "", event, nil); err != nil {
		return fmt.Errorf("n8n: deliver %s for %s: %w", event.Type, event.AccountID, err)
	}
	return nil
}
