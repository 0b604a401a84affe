package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dushixiang/propdesk/internal/models"
	"github.com/dushixiang/propdesk/internal/repo"
	"github.com/dushixiang/propdesk/internal/xe"
	"github.com/dushixiang/propdesk/pkg/objective"
	"github.com/dushixiang/propdesk/pkg/strapi"
	"github.com/go-orz/orz"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ChallengeSource 挑战配置来源
type ChallengeSource interface {
	ListChallenges(ctx context.Context) ([]strapi.Challenge, error)
}

// ChallengeService 挑战配置同步与查询
type ChallengeService struct {
	*orz.Service
	logger        *zap.Logger
	source        ChallengeSource
	ChallengeRepo *repo.ChallengeRepo
}

func NewChallengeService(logger *zap.Logger, db *gorm.DB, source *strapi.Client) *ChallengeService {
	return newChallengeService(logger, db, source)
}

func newChallengeService(logger *zap.Logger, db *gorm.DB, source ChallengeSource) *ChallengeService {
	return &ChallengeService{
		Service:       orz.NewService(db),
		logger:        logger,
		source:        source,
		ChallengeRepo: repo.NewChallengeRepo(db),
	}
}

// SyncResult 同步统计
type SyncResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
}

// Sync 将 Strapi 中的挑战写入本地
func (s *ChallengeService) Sync(ctx context.Context) (*SyncResult, error) {
	remote, err := s.source.ListChallenges(ctx)
	if err != nil {
		return nil, fmt.Errorf("sync challenges: %w", err)
	}

	result := &SyncResult{}
	now := time.Now()
	err = s.Transaction(ctx, func(ctx context.Context) error {
		for _, rc := range remote {
			existing, err := s.ChallengeRepo.FindByStrapiID(ctx, rc.ID)
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				challenge := models.Challenge{ID: ulid.Make().String()}
				apply(&challenge, rc, now)
				if err := s.ChallengeRepo.Create(ctx, &challenge); err != nil {
					return err
				}
				result.Created++
			case err != nil:
				return err
			default:
				apply(existing, rc, now)
				if err := s.ChallengeRepo.Save(ctx, existing); err != nil {
					return err
				}
				result.Updated++
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("sync challenges: %w", err)
	}

	s.logger.Info("challenges synced",
		zap.Int("remote", len(remote)),
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated))
	return result, nil
}

func apply(c *models.Challenge, rc strapi.Challenge, syncedAt time.Time) {
	c.StrapiID = rc.ID
	c.Name = rc.Name
	c.Phase = rc.Phase
	c.Price = rc.Price
	c.InitialBalance = rc.InitialBalance
	c.MinimumTradingDays = rc.Rules.MinimumTradingDays
	c.MaximumDailyLossPercent = rc.Rules.MaximumDailyLossPercent
	c.MaxDrawdownPercent = rc.Rules.MaxDrawdownPercent
	c.ProfitTargetPercent = rc.Rules.ProfitTargetPercent
	c.SyncedAt = syncedAt
}

func (s *ChallengeService) List(ctx context.Context) ([]models.Challenge, error) {
	return s.ChallengeRepo.FindAllOrdered(ctx)
}

func (s *ChallengeService) Get(ctx context.Context, id string) (*models.Challenge, error) {
	challenge, err := s.ChallengeRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", xe.ErrChallengeNotFound, id)
		}
		return nil, err
	}
	return challenge, nil
}

// Rules 挑战的评估规则
func (s *ChallengeService) Rules(ctx context.Context, id string) (*objective.Rules, error) {
	challenge, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	rules := challenge.Rules()
	return &rules, nil
}
