package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dushixiang/propdesk/internal/models"
	"github.com/dushixiang/propdesk/internal/repo"
	"github.com/dushixiang/propdesk/internal/xe"
	"github.com/dushixiang/propdesk/pkg/nostd"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AccountService 挑战账户管理
type AccountService struct {
	logger           *zap.Logger
	AccountRepo      *repo.BrokerAccountRepo
	challengeService *ChallengeService
}

func NewAccountService(logger *zap.Logger, db *gorm.DB, challengeService *ChallengeService) *AccountService {
	return &AccountService{
		logger:           logger,
		AccountRepo:      repo.NewBrokerAccountRepo(db),
		challengeService: challengeService,
	}
}

type CreateAccountRequest struct {
	Login          string  `json:"login" validate:"required"`
	Server         string  `json:"server"`
	Platform       string  `json:"platform" validate:"required"`
	MetaApiID      string  `json:"metaapi_id" validate:"required"`
	ChallengeID    string  `json:"challenge_id" validate:"required"`
	InitialBalance float64 `json:"initial_balance" validate:"gte=0"`
	TraderEmail    string  `json:"trader_email"`
	TraderName     string  `json:"trader_name"`
}

// UpdateAccountRequest 空值字段保持不变
type UpdateAccountRequest struct {
	Server         *string  `json:"server"`
	ChallengeID    *string  `json:"challenge_id"`
	InitialBalance *float64 `json:"initial_balance" validate:"omitempty,gte=0"`
	TraderEmail    *string  `json:"trader_email"`
	TraderName     *string  `json:"trader_name"`
	Status         *string  `json:"status" validate:"omitempty,oneof=active passed failed disabled"`
}

func (s *AccountService) Create(ctx context.Context, req CreateAccountRequest) (*models.BrokerAccount, error) {
	platform := strings.ToLower(strings.TrimSpace(req.Platform))
	if platform != models.PlatformMT4 && platform != models.PlatformMT5 {
		return nil, xe.ErrInvalidPlatform
	}
	if req.TraderEmail != "" && !nostd.IsEmail(req.TraderEmail) {
		return nil, fmt.Errorf("%w: trader_email", xe.ErrInvalidParams)
	}
	if _, err := s.challengeService.Get(ctx, req.ChallengeID); err != nil {
		return nil, err
	}

	_, err := s.AccountRepo.FindByMetaApiID(ctx, req.MetaApiID)
	if err == nil {
		return nil, xe.ErrMetaApiIDExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	account := &models.BrokerAccount{
		ID:             ulid.Make().String(),
		Login:          strings.TrimSpace(req.Login),
		Server:         strings.TrimSpace(req.Server),
		Platform:       platform,
		MetaApiID:      strings.TrimSpace(req.MetaApiID),
		ChallengeID:    req.ChallengeID,
		InitialBalance: req.InitialBalance,
		TraderEmail:    req.TraderEmail,
		TraderName:     req.TraderName,
		Status:         models.AccountStatusActive,
	}
	if err := s.AccountRepo.Create(ctx, account); err != nil {
		return nil, err
	}

	s.logger.Info("broker account created",
		zap.String("account_id", account.ID),
		zap.String("login", account.Login),
		zap.String("platform", account.Platform))
	return account, nil
}

func (s *AccountService) Update(ctx context.Context, id string, req UpdateAccountRequest) (*models.BrokerAccount, error) {
	account, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.ChallengeID != nil && *req.ChallengeID != account.ChallengeID {
		if _, err := s.challengeService.Get(ctx, *req.ChallengeID); err != nil {
			return nil, err
		}
		account.ChallengeID = *req.ChallengeID
	}
	if req.Server != nil {
		account.Server = strings.TrimSpace(*req.Server)
	}
	if req.InitialBalance != nil {
		account.InitialBalance = *req.InitialBalance
	}
	if req.TraderEmail != nil {
		if *req.TraderEmail != "" && !nostd.IsEmail(*req.TraderEmail) {
			return nil, fmt.Errorf("%w: trader_email", xe.ErrInvalidParams)
		}
		account.TraderEmail = *req.TraderEmail
	}
	if req.TraderName != nil {
		account.TraderName = *req.TraderName
	}
	if req.Status != nil {
		account.Status = *req.Status
	}

	if err := s.AccountRepo.Save(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// Disable 停用账户，不再参与定时评估
func (s *AccountService) Disable(ctx context.Context, id string) error {
	account, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if account.Status == models.AccountStatusDisabled {
		return nil
	}
	account.Status = models.AccountStatusDisabled
	if err := s.AccountRepo.Save(ctx, account); err != nil {
		return err
	}
	s.logger.Info("broker account disabled", zap.String("account_id", id))
	return nil
}

func (s *AccountService) Get(ctx context.Context, id string) (*models.BrokerAccount, error) {
	account, err := s.AccountRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", xe.ErrAccountNotFound, id)
		}
		return nil, err
	}
	return account, nil
}

// List status 为空时返回全部账户
func (s *AccountService) List(ctx context.Context, status string) ([]models.BrokerAccount, error) {
	return s.AccountRepo.FindByStatus(ctx, status)
}
