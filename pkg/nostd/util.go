package nostd

import (
	"strings"

	"github.com/labstack/echo/v4"
)

const TokenQuery = "token"

// GetToken 优先读取 Authorization: Bearer，其次读取 ?token=，便于直接下载导出文件
func GetToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") {
			return ""
		}
		return strings.TrimSpace(token)
	}
	return c.QueryParam(TokenQuery)
}
