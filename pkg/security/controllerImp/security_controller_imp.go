package controllerImp

import (
	"net/http"

	"github.com/labstack/echo/v4"

	mw "soilwatch/pkg/middleware"
)

type SecurityCtrl struct{ csrf *mw.CSRFManager }

func New(csrf *mw.CSRFManager) *SecurityCtrl { return &SecurityCtrl{csrf} }

// IssueCSRF hands out the session's anti-forgery token and mirrors it in a
// strict, http-only cookie.
func (h *SecurityCtrl) IssueCSRF(c echo.Context) error {
	uid := c.Get("uid").(string)
	tok, remaining := h.csrf.Issue(uid)
	c.SetCookie(&http.Cookie{
		Name:     mw.CSRFCookieName,
		Value:    tok,
		Path:     "/",
		MaxAge:   int(remaining.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	return c.JSON(http.StatusOK, echo.Map{"token": tok})
}

func (h *SecurityCtrl) WhoAmI(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	return c.JSON(http.StatusOK, echo.Map{"uid": uid})
}
