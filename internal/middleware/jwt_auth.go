package middleware

import (
	"net/http"
	"slices"

	"github.com/dushixiang/propdesk/internal/service"
	"github.com/dushixiang/propdesk/pkg/nostd"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// JWTAuthConfig JWT认证配置
type JWTAuthConfig struct {
	AuthService *service.AuthService
	Logger      *zap.Logger
}

// JWTAuth 校验 Bearer 令牌并把用户信息写入 Context
func JWTAuth(config JWTAuthConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := nostd.GetToken(c)
			if token == "" {
				config.Logger.Warn("JWT token missing",
					zap.String("path", c.Request().URL.Path),
					zap.String("remote_ip", c.RealIP()))

				return c.JSON(http.StatusUnauthorized, map[string]interface{}{
					"error": "unauthorized: missing token",
				})
			}

			claims, err := config.AuthService.ValidateToken(token)
			if err != nil {
				config.Logger.Warn("invalid JWT token",
					zap.String("path", c.Request().URL.Path),
					zap.String("remote_ip", c.RealIP()),
					zap.Error(err))

				return c.JSON(http.StatusUnauthorized, map[string]interface{}{
					"error": "unauthorized: token invalid or expired",
				})
			}

			c.Set("user_id", claims.UserID)
			c.Set("username", claims.Username)
			c.Set("role", claims.Role)

			return next(c)
		}
	}
}

// RequireRole 仅允许指定角色访问，需放在 JWTAuth 之后
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get("role").(string)
			if !slices.Contains(roles, role) {
				return c.JSON(http.StatusForbidden, map[string]interface{}{
					"error": "forbidden: insufficient role",
				})
			}
			return next(c)
		}
	}
}
