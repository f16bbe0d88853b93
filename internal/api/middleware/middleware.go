package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// SetupMiddleware は全ルート共通のミドルウェアをまとめて登録する
func SetupMiddleware(e *echo.Echo) {
	e.Use(middleware.RequestID())

	// zap による構造化リクエストログ
	e.Use(RequestLogger())

	e.Use(middleware.Recover())

	// 座席選択UIはブラウザから直接叩くため CORS を許可する
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{echo.GET, echo.POST, echo.DELETE},
		AllowHeaders: []string{echo.HeaderContentType, "X-User-ID"},
	}))
}
