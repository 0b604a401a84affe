package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dushixiang/propdesk/internal/config"
	"github.com/dushixiang/propdesk/internal/models"
	"github.com/dushixiang/propdesk/internal/repo"
	"github.com/dushixiang/propdesk/internal/xe"
	"github.com/dushixiang/propdesk/pkg/nostd"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const tokenIssuer = "propdesk"

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserNotActive      = errors.New("user is disabled")
)

// AuthService 后台登录与令牌
type AuthService struct {
	logger        *zap.Logger
	userRepo      *repo.AdminUserRepo
	jwtSecret     string
	jwtExpiration time.Duration
}

func NewAuthService(logger *zap.Logger, db *gorm.DB, conf *config.Config) *AuthService {
	secret := conf.Server.JwtSecret
	if secret == "" {
		logger.Warn("server.jwt_secret not configured, tokens will not survive a restart")
		secret = uuid.NewString()
	}
	return &AuthService{
		logger:        logger,
		userRepo:      repo.NewAdminUserRepo(db),
		jwtSecret:     secret,
		jwtExpiration: 24 * time.Hour,
	}
}

// JWTClaims JWT载荷
type JWTClaims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      UserInfo  `json:"user"`
}

type UserInfo struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Nickname string `json:"nickname"`
	Role     string `json:"role"`
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest, ip string) (*LoginResponse, error) {
	user, err := s.userRepo.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("login failed: user not found",
				zap.String("username", req.Username),
				zap.String("ip", ip))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.IsActive {
		s.logger.Warn("login failed: user not active",
			zap.String("username", req.Username),
			zap.String("ip", ip))
		return nil, ErrUserNotActive
	}

	if err := nostd.BcryptMatch([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Warn("login failed: invalid password",
			zap.String("username", req.Username),
			zap.String("ip", ip))
		return nil, ErrInvalidCredentials
	}

	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, ip); err != nil {
		s.logger.Error("failed to update last login", zap.Error(err))
	}

	token, expiresAt, err := s.issue(user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user logged in",
		zap.String("username", user.Username),
		zap.String("ip", ip))

	return &LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      userInfo(user),
	}, nil
}

func (s *AuthService) issue(user *models.AdminUser) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.jwtExpiration)
	claims := JWTClaims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// ValidateToken 校验令牌，只接受 HS256
func (s *AuthService) ValidateToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.jwtSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(tokenIssuer))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", xe.ErrInvalidToken, err)
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, xe.ErrInvalidToken
}

// CreateUser 首次初始化时创建管理员
func (s *AuthService) CreateUser(ctx context.Context, username, password, nickname, role string) error {
	_, err := s.userRepo.FindByUsername(ctx, username)
	if err == nil {
		return xe.ErrAccountAlreadyUsed
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	passwordHash, err := nostd.BcryptEncode([]byte(password))
	if err != nil {
		return err
	}

	user := &models.AdminUser{
		ID:           ulid.Make().String(),
		Username:     username,
		PasswordHash: string(passwordHash),
		Nickname:     nickname,
		Role:         role,
		IsActive:     true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return err
	}

	s.logger.Info("user created", zap.String("username", username))
	return nil
}

func (s *AuthService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := nostd.BcryptMatch([]byte(user.PasswordHash), []byte(oldPassword)); err != nil {
		return xe.ErrIncorrectOldPassword
	}

	passwordHash, err := nostd.BcryptEncode([]byte(newPassword))
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePassword(ctx, userID, string(passwordHash)); err != nil {
		return err
	}

	s.logger.Info("password changed", zap.String("user_id", userID))
	return nil
}

func (s *AuthService) GetCurrentUser(ctx context.Context, userID string) (*UserInfo, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, xe.ErrNotFound
		}
		return nil, err
	}
	info := userInfo(user)
	return &info, nil
}

// NeedsSetup 还没有任何后台用户时需要初始化
func (s *AuthService) NeedsSetup(ctx context.Context) (bool, error) {
	count, err := s.userRepo.Count(ctx)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}

func userInfo(user *models.AdminUser) UserInfo {
	return UserInfo{
		ID:       user.ID,
		Username: user.Username,
		Nickname: user.Nickname,
		Role:     user.Role,
	}
}
