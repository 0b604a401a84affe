package middleware

import (
	"errors"
	"net/http"

	"github.com/dushixiang/propdesk/internal/xe"
	"github.com/go-orz/orz"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// WithErrorHandler 将错误统一转换为 JSON 响应
func WithErrorHandler(logger *zap.Logger) func(next echo.HandlerFunc) echo.HandlerFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if err == nil {
				return nil
			}

			var he *echo.HTTPError
			if errors.As(err, &he) {
				return c.JSON(he.Code, orz.Map{
					"code":    he.Code,
					"message": err.Error(),
				})
			}

			var oe *orz.Error
			if errors.As(err, &oe) {
				code := http.StatusBadRequest
				switch {
				case errors.Is(err, xe.ErrInvalidToken):
					code = http.StatusUnauthorized
				case errors.Is(err, xe.ErrPermissionDenied):
					code = http.StatusForbidden
				case xe.IsNotFound(err):
					code = http.StatusNotFound
				}
				return c.JSON(code, orz.Map{
					"code":    oe.Code,
					"message": err.Error(),
				})
			}

			logger.Error("api", zap.String("path", c.Path()), zap.Error(err))

			return c.JSON(http.StatusInternalServerError, orz.Map{
				"code":    http.StatusInternalServerError,
				"message": err.Error(),
			})
		}
	}
}
