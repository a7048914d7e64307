package router

import (
	"github.com/labstack/echo/v4"
)

func New(
	e *echo.Echo,
	session echo.MiddlewareFunc,
	apiLimit echo.MiddlewareFunc,
	authLimit echo.MiddlewareFunc,
	csrf echo.MiddlewareFunc,
	fieldCtrl interface {
		Create(echo.Context) error
		List(echo.Context) error
		Get(echo.Context) error
		Update(echo.Context) error
		Delete(echo.Context) error
		Export(echo.Context) error
	},
	satCtrl interface {
		Images(echo.Context) error
		Stats(echo.Context) error
		Sync(echo.Context) error
	},
	notifCtrl interface {
		List(echo.Context) error
		UnreadCount(echo.Context) error
		MarkRead(echo.Context) error
		Dismiss(echo.Context) error
		Subscribe(echo.Context) error
		Unsubscribe(echo.Context) error
	},
	secCtrl interface {
		IssueCSRF(echo.Context) error
		WhoAmI(echo.Context) error
	},
	healthCtrl interface{ Health(echo.Context) error },
) *echo.Echo {
	e.GET("/health", healthCtrl.Health)

	// token issuance runs the stricter auth-class limit
	sec := e.Group("/security", session, authLimit)
	sec.GET("/csrf", secCtrl.IssueCSRF)

	// everything else: session, general limit, anti-forgery on mutations
	api := e.Group("", session, apiLimit, csrf)

	api.GET("/whoami", secCtrl.WhoAmI)

	api.GET("/fields", fieldCtrl.List)
	api.POST("/fields", fieldCtrl.Create)
	api.GET("/fields/:id", fieldCtrl.Get)
	api.PATCH("/fields/:id", fieldCtrl.Update)
	api.DELETE("/fields/:id", fieldCtrl.Delete)
	api.GET("/fields/:id/export", fieldCtrl.Export)

	api.GET("/satellite/:id", satCtrl.Images)
	api.GET("/ndvi/:id", satCtrl.Stats)
	api.POST("/sync/:id", satCtrl.Sync)

	api.GET("/notifications", notifCtrl.List)
	api.GET("/notifications/unread_count", notifCtrl.UnreadCount)
	api.PATCH("/notifications", notifCtrl.MarkRead)
	api.DELETE("/notifications", notifCtrl.Dismiss)

	api.POST("/push/subscriptions", notifCtrl.Subscribe)
	api.DELETE("/push/subscriptions", notifCtrl.Unsubscribe)

	return e
}
