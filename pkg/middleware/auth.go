package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// Session validates the HS256 session token issued by the external auth
// provider and puts the user id into the echo context. With an empty
// secret it degrades to a fixed dev identity (no provider in local runs).
func Session(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if secret == "" {
				c.Set("uid", "U_DEV_DEFAULT")
				return next(c)
			}

			raw := tokenFrom(c)
			if raw == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing session token"})
			}

			tok, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid session token"})
			}

			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid session token"})
			}
			uid, _ := claims["sub"].(string)
			if uid == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid session token"})
			}
			c.Set("uid", uid)
			return next(c)
		}
	}
}

func tokenFrom(c echo.Context) string {
	if h := c.Request().Header.Get(echo.HeaderAuthorization); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	if ck, err := c.Cookie("session"); err == nil {
		return ck.Value
	}
	return ""
}
