package middleware

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
)

const (
	CSRFCookieName = "_csrf"
	CSRFHeaderName = "X-CSRF-Token"
)

var (
	ErrCSRFTokenMissing = errors.New("CSRF token missing")
	ErrCSRFTokenInvalid = errors.New("CSRF token invalid")
)

// CSRFManager keeps one token per session uid, expiring after the TTL.
// An expired token is replaced transparently on the next Issue call; a
// legitimate session never hard-fails on expiry alone.
type CSRFManager struct {
	mu     sync.RWMutex
	tokens map[string]csrfToken
	ttl    time.Duration
	now    func() time.Time
}

type csrfToken struct {
	value     string
	expiresAt time.Time
}

func NewCSRFManager(ttl time.Duration) *CSRFManager {
	return &CSRFManager{tokens: make(map[string]csrfToken), ttl: ttl, now: time.Now}
}

// Issue returns the session's current token and its remaining lifetime,
// minting a fresh one when none exists or the previous one expired. The
// remaining lifetime caps the cookie so it never outlives the
// server-side token.
func (m *CSRFManager) Issue(uid string) (string, time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if t, ok := m.tokens[uid]; ok && now.Before(t.expiresAt) {
		return t.value, t.expiresAt.Sub(now)
	}
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic("csrf: crypto/rand unavailable: " + err.Error())
	}
	tok := base64.RawURLEncoding.EncodeToString(buf)
	m.tokens[uid] = csrfToken{value: tok, expiresAt: now.Add(m.ttl)}
	return tok, m.ttl
}

func (m *CSRFManager) Validate(uid, submitted string) error {
	if submitted == "" {
		return ErrCSRFTokenMissing
	}
	m.mu.RLock()
	t, ok := m.tokens[uid]
	m.mu.RUnlock()
	if !ok || m.now().After(t.expiresAt) {
		return ErrCSRFTokenInvalid
	}
	if subtle.ConstantTimeCompare([]byte(t.value), []byte(submitted)) != 1 {
		return ErrCSRFTokenInvalid
	}
	return nil
}

// CSRF rejects state-changing requests whose submitted token does not
// match the session-bound one. Safe methods pass through.
func CSRF(m *CSRFManager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			switch c.Request().Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
				return next(c)
			}
			uid, _ := c.Get("uid").(string)
			if err := m.Validate(uid, c.Request().Header.Get(CSRFHeaderName)); err != nil {
				return c.JSON(http.StatusForbidden, echo.Map{"error": err.Error()})
			}
			return next(c)
		}
	}
}
