package internal

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/dushixiang/propdesk/internal/config"
	"github.com/dushixiang/propdesk/internal/handler"
	"github.com/dushixiang/propdesk/internal/middleware"
	"github.com/dushixiang/propdesk/internal/models"
	"github.com/dushixiang/propdesk/internal/service"
	"github.com/dushixiang/propdesk/internal/telegram"
	"github.com/dushixiang/propdesk/pkg/nostd"
	"github.com/dushixiang/propdesk/web"
	"github.com/go-orz/orz"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func Run(configPath string) error {
	app := NewPropdeskApp()

	framework, err := orz.NewFramework(
		orz.WithConfig(configPath),
		orz.WithLoggerFromConfig(),
		orz.WithDatabase(),
		orz.WithHTTP(),
		orz.WithApplication(app),
	)
	if err != nil {
		return err
	}

	return framework.Run()
}

func NewPropdeskApp() orz.Application {
	return &PropdeskApp{}
}

var _ orz.Application = (*PropdeskApp)(nil)

type AppComponents struct {
	Handlers *handler.Handlers

	EvaluationLoop  *service.EvaluationLoop
	PurchaseService *service.PurchaseService

	tg *telegram.Telegram
}

type PropdeskApp struct {
	components *AppComponents
	conf       *config.Config
}

// GetComponents 获取应用组件
func (r *PropdeskApp) GetComponents() *AppComponents {
	return r.components
}

func (r *PropdeskApp) Configure(app *orz.App) error {
	logger := app.Logger()
	e := app.GetEcho()
	db := app.GetDatabase()

	var conf config.Config
	err := app.GetConfig().App.Unmarshal(&conf)
	if err != nil {
		return fmt.Errorf("failed to unmarshal config: %v", err)
	}
	if err := conf.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if err := db.AutoMigrate(models.All()...); err != nil {
		logger.Fatal("database auto migrate failed", zap.Error(err))
	}

	components, err := InitializeApp(logger, db, &conf)
	if err != nil {
		return fmt.Errorf("failed to initialize app: %v", err)
	}
	r.components = components
	r.conf = &conf

	e.HidePort = true
	e.HideBanner = true

	e.Use(echomw.Gzip())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		Skipper:      echomw.DefaultSkipper,
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodHead, http.MethodPut, http.MethodPatch, http.MethodPost, http.MethodDelete},
	}))
	e.Use(echomw.RecoverWithConfig(echomw.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			sugar := logger.Sugar()
			sugar.Error(fmt.Sprintf("[PANIC RECOVER] %v %s\n", err, stack))
			return err
		},
	}))
	e.Use(middleware.WithErrorHandler(logger))
	customValidator := nostd.CustomValidator{Validator: validator.New()}
	if err := customValidator.TransInit(); err != nil {
		logger.Sugar().Fatal("failed to init custom validator", zap.Error(err))
	}
	e.Validator = &customValidator

	e.Use(echomw.StaticWithConfig(echomw.StaticConfig{
		Skipper: func(c echo.Context) bool {
			return strings.HasPrefix(c.Request().RequestURI, "/api")
		},
		Index:      "index.html",
		HTML5:      true,
		Filesystem: http.FS(web.Assets()),
	}))

	api := e.Group("/api")
	components.Handlers.RegisterRoutes(api, logger)

	if err := r.Init(logger); err != nil {
		logger.Fatal("app init failed", zap.Error(err))
	}
	return nil
}

func (r *PropdeskApp) Init(logger *zap.Logger) error {
	logger.Info("=================================================")
	logger.Info("Propdesk Objective Evaluator Starting...")
	logger.Info("=================================================")

	components := r.GetComponents()
	if components == nil {
		return fmt.Errorf("components not initialized")
	}

	if components.tg != nil {
		components.tg.Apply(telegram.WithStatus(components.EvaluationLoop.Summary))
		components.tg.Start()
		logger.Info("telegram bot started")
	}

	if !components.PurchaseService.Enabled() {
		logger.Info("woocommerce sync disabled")
	}

	if !r.conf.Evaluation.Autostart {
		logger.Info("evaluation loop autostart disabled, start it via POST /api/loop/start")
		return nil
	}

	go func() {
		if err := components.EvaluationLoop.Start(context.Background()); err != nil {
			logger.Error("evaluation loop error", zap.Error(err))
		}
	}()
	return nil
}
