package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/dushixiang/propdesk/pkg/objective"
	"github.com/dushixiang/propdesk/pkg/restclient"
)

type Config struct {
	Server      ServerConf      `json:"server"`
	MetaApi     MetaApiConf     `json:"metaapi"`
	Strapi      StrapiConf      `json:"strapi"`
	WooCommerce WooCommerceConf `json:"woocommerce"`
	N8n         N8nConf         `json:"n8n"`
	Telegram    TelegramConf    `json:"telegram"`
	Evaluation  EvaluationConf  `json:"evaluation"`
}

type ServerConf struct {
	JwtSecret string `json:"jwt_secret"` // 为空时每次启动随机生成
}

// HTTPConf 外部接口的通用请求参数
type HTTPConf struct {
	TimeoutSeconds int     `json:"timeout_seconds"`
	MaxRetries     int     `json:"max_retries"`
	RatePerSecond  float64 `json:"rate_per_second"`
}

type MetaApiConf struct {
	BaseURL string   `json:"base_url"`
	Token   string   `json:"token"`
	HTTP    HTTPConf `json:"http"`
}

type StrapiConf struct {
	BaseURL    string   `json:"base_url"`
	Token      string   `json:"token"`
	Collection string   `json:"collection"` // 默认 /api/challenges
	HTTP       HTTPConf `json:"http"`
}

type WooCommerceConf struct {
	Enabled        bool     `json:"enabled"`
	BaseURL        string   `json:"base_url"`
	ConsumerKey    string   `json:"consumer_key"`
	ConsumerSecret string   `json:"consumer_secret"`
	HTTP           HTTPConf `json:"http"`
}

type N8nConf struct {
	Enabled    bool     `json:"enabled"`
	WebhookURL string   `json:"webhook_url"`
	HTTP       HTTPConf `json:"http"`
}

type TelegramConf struct {
	Enabled bool   `json:"enabled"`
	Token   string `json:"token"`
	ChatID  string `json:"chat_id"`
}

type EvaluationConf struct {
	IntervalMinutes       int     `json:"interval_minutes"`        // 评估周期（分钟），默认15
	DefaultInitialBalance float64 `json:"default_initial_balance"` // 无法确定初始资金时使用，默认10000
	Autostart             bool    `json:"autostart"`               // 启动后自动开始评估循环
}

const (
	defaultMetaApiURL      = "https://metastats-api-v1.new-york.agiliumtrade.ai"
	defaultIntervalMinutes = 15
	defaultTimeoutSeconds  = 15
	defaultMaxRetries      = 3
)

// Validate 校验必填项并补全默认值
func (c *Config) Validate() error {
	var errs []error

	if c.MetaApi.BaseURL == "" {
		c.MetaApi.BaseURL = defaultMetaApiURL
	}
	if c.MetaApi.Token == "" {
		errs = append(errs, errors.New("metaapi.token is required"))
	}
	if c.Strapi.BaseURL == "" {
		errs = append(errs, errors.New("strapi.base_url is required"))
	}
	if c.WooCommerce.Enabled && (c.WooCommerce.BaseURL == "" || c.WooCommerce.ConsumerKey == "" || c.WooCommerce.ConsumerSecret == "") {
		errs = append(errs, errors.New("woocommerce.base_url, consumer_key and consumer_secret are required when enabled"))
	}
	if c.N8n.Enabled && c.N8n.WebhookURL == "" {
		errs = append(errs, errors.New("n8n.webhook_url is required when enabled"))
	}
	if c.Telegram.Enabled && (c.Telegram.Token == "" || c.Telegram.ChatID == "") {
		errs = append(errs, errors.New("telegram.token and telegram.chat_id are required when enabled"))
	}

	if c.Evaluation.IntervalMinutes <= 0 {
		c.Evaluation.IntervalMinutes = defaultIntervalMinutes
	}
	if c.Evaluation.IntervalMinutes > 59 {
		errs = append(errs, fmt.Errorf("evaluation.interval_minutes must be between 1 and 59, got %d", c.Evaluation.IntervalMinutes))
	}
	if c.Evaluation.DefaultInitialBalance <= 0 {
		c.Evaluation.DefaultInitialBalance = objective.DefaultInitialBalance
	}

	return errors.Join(errs...)
}

// Options 转换为 restclient 参数
func (h HTTPConf) Options() restclient.Options {
	timeout := h.TimeoutSeconds
	if timeout <= 0 {
		timeout = defaultTimeoutSeconds
	}
	retries := h.MaxRetries
	if retries <= 0 {
		retries = defaultMaxRetries
	}
	return restclient.Options{
		Timeout:       time.Duration(timeout) * time.Second,
		MaxRetries:    retries,
		RetryMin:      500 * time.Millisecond,
		RetryMax:      10 * time.Second,
		RatePerSecond: h.RatePerSecond,
		Burst:         1,
	}
}
