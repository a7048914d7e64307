package controllerImp

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"soilwatch/entities"
	svc "soilwatch/pkg/notify/service"
)

type NotificationCtrl struct{ s svc.NotificationService }

func New(s svc.NotificationService) *NotificationCtrl { return &NotificationCtrl{s} }

func (h *NotificationCtrl) List(c echo.Context) error {
	uid := c.Get("uid").(string)
	unread := c.QueryParam("unread") == "1" || c.QueryParam("unread") == "true"
	list, err := h.s.List(uid, unread)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "listing failed"})
	}
	return c.JSON(http.StatusOK, list)
}

func (h *NotificationCtrl) UnreadCount(c echo.Context) error {
	uid := c.Get("uid").(string)
	n, err := h.s.UnreadCount(uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "count failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"count": n})
}

type markReq struct {
	IDs        []string `json:"ids"`
	MarkAll    bool     `json:"mark_all"`
	DismissAll bool     `json:"dismiss_all"`
}

func (h *NotificationCtrl) MarkRead(c echo.Context) error {
	uid := c.Get("uid").(string)
	var req markReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid json"})
	}
	if len(req.IDs) == 0 && !req.MarkAll {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "ids or mark_all required"})
	}
	if err := h.s.MarkRead(uid, req.IDs, req.MarkAll); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

func (h *NotificationCtrl) Dismiss(c echo.Context) error {
	uid := c.Get("uid").(string)
	var req markReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid json"})
	}
	if len(req.IDs) == 0 && !req.DismissAll {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "ids or dismiss_all required"})
	}
	if err := h.s.Dismiss(uid, req.IDs, req.DismissAll); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

type subscribeReq struct {
	Endpoint string `json:"endpoint"`
	P256dh   string `json:"p256dh"`
	Auth     string `json:"auth"`
}

func (h *NotificationCtrl) Subscribe(c echo.Context) error {
	uid := c.Get("uid").(string)
	var req subscribeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid json"})
	}
	if req.Endpoint == "" || req.P256dh == "" || req.Auth == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "endpoint, p256dh and auth are required"})
	}
	sub := &entities.PushSubscription{Endpoint: req.Endpoint, P256dh: req.P256dh, Auth: req.Auth}
	if err := h.s.Subscribe(uid, sub); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "subscribe failed"})
	}
	return c.JSON(http.StatusCreated, sub)
}

func (h *NotificationCtrl) Unsubscribe(c echo.Context) error {
	uid := c.Get("uid").(string)
	var req subscribeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid json"})
	}
	if req.Endpoint == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "endpoint required"})
	}
	if err := h.s.Unsubscribe(uid, req.Endpoint); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "unsubscribe failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}
