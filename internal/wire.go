//go:build wireinject
// +build wireinject

package internal

import (
	"net/http"
	"time"

	"github.com/google/wire"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dushixiang/propdesk/internal/config"
	"github.com/dushixiang/propdesk/internal/handler"
	"github.com/dushixiang/propdesk/internal/service"
	"github.com/dushixiang/propdesk/internal/telegram"
	"github.com/dushixiang/propdesk/pkg/metaapi"
	"github.com/dushixiang/propdesk/pkg/n8n"
	"github.com/dushixiang/propdesk/pkg/strapi"
	"github.com/dushixiang/propdesk/pkg/woocommerce"
)

const (
	telegramHTTPTimeout = 10 * time.Second
)

var (
	handlerSet = wire.NewSet(
		handler.NewSetupHandler,
		handler.NewAuthHandler,
		handler.NewChallengeHandler,
		handler.NewAccountHandler,
		handler.NewEvaluatorHandler,
		handler.NewLoopHandler,
		handler.NewPurchaseHandler,
		wire.Struct(new(handler.Handlers), "*"),
	)

	clientSet = wire.NewSet(
		provideMetaApiClient,
		provideStrapiClient,
		provideWooCommerceClient,
		provideN8nWebhook,
		provideTelegram,
	)

	serviceSet = wire.NewSet(
		service.NewAuthService,
		service.NewChallengeService,
		service.NewAccountService,
		service.NewNotifyService,
		service.NewEvaluationService,
		service.NewEvaluationLoop,
		service.NewPurchaseService,
	)
)

// InitializeApp 初始化应用
func InitializeApp(logger *zap.Logger, db *gorm.DB, conf *config.Config) (*AppComponents, error) {
	wire.Build(
		handlerSet,
		clientSet,
		serviceSet,
		wire.Struct(new(AppComponents), "*"),
	)
	return nil, nil
}

// provideTelegram provides telegram instance
func provideTelegram(logger *zap.Logger, conf *config.Config) *telegram.Telegram {
	if !conf.Telegram.Enabled {
		return nil
	}

	httpClient := &http.Client{Timeout: telegramHTTPTimeout}

	tg, err := telegram.NewTelegram(logger, telegram.Settings{
		Token:  conf.Telegram.Token,
		Client: httpClient,
	})
	if err != nil {
		logger.Error("failed to init telegram", zap.Error(err))
		return nil
	}

	return tg
}

// provideMetaApiClient provides MetaStats client
func provideMetaApiClient(conf *config.Config, logger *zap.Logger) *metaapi.Client {
	logger.Info("MetaApi client initialized", zap.String("base_url", conf.MetaApi.BaseURL))
	return metaapi.New(conf.MetaApi.BaseURL, conf.MetaApi.Token, conf.MetaApi.HTTP.Options())
}

// provideStrapiClient provides Strapi CMS client
func provideStrapiClient(conf *config.Config, logger *zap.Logger) *strapi.Client {
	logger.Info("Strapi client initialized",
		zap.String("base_url", conf.Strapi.BaseURL),
		zap.Bool("has_token", conf.Strapi.Token != ""))
	return strapi.New(conf.Strapi.BaseURL, conf.Strapi.Token, conf.Strapi.Collection, conf.Strapi.HTTP.Options())
}

// provideWooCommerceClient returns nil when purchase import is disabled
func provideWooCommerceClient(conf *config.Config) *woocommerce.Client {
	if !conf.WooCommerce.Enabled {
		return nil
	}
	c := conf.WooCommerce
	return woocommerce.New(c.BaseURL, c.ConsumerKey, c.ConsumerSecret, c.HTTP.Options())
}

// provideN8nWebhook provides webhook sink, disabled unless configured
func provideN8nWebhook(conf *config.Config) *n8n.Webhook {
	return n8n.New(conf.N8n.WebhookURL, conf.N8n.Enabled, conf.N8n.HTTP.Options())
}
