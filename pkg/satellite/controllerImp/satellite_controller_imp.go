package controllerImp

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"soilwatch/pkg/provider"
	svc "soilwatch/pkg/satellite/service"
)

type SatelliteCtrl struct{ s svc.StatsService }

func New(s svc.StatsService) *SatelliteCtrl { return &SatelliteCtrl{s} }

// Images answers GET /satellite/:id with the raw imagery listing.
func (h *SatelliteCtrl) Images(c echo.Context) error {
	uid := c.Get("uid").(string)
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid field id"})
	}
	days, _ := strconv.Atoi(c.QueryParam("days"))
	snap, err := h.s.Summary(c.Request().Context(), uint(id), uid, days)
	if err != nil {
		return upstreamError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"needs_sync": snap.NeedsSync, "images": snap.Images})
}

// Stats answers GET /ndvi/:id with the derived snapshot.
func (h *SatelliteCtrl) Stats(c echo.Context) error {
	uid := c.Get("uid").(string)
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid field id"})
	}
	days, _ := strconv.Atoi(c.QueryParam("days"))
	snap, err := h.s.Summary(c.Request().Context(), uint(id), uid, days)
	if err != nil {
		return upstreamError(c, err)
	}
	return c.JSON(http.StatusOK, snap)
}

// Sync answers POST /sync/:id, the on-demand reconnect trigger.
func (h *SatelliteCtrl) Sync(c echo.Context) error {
	uid := c.Get("uid").(string)
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid field id"})
	}
	rec, err := h.s.SyncNow(c.Request().Context(), uint(id), uid)
	if err != nil {
		return upstreamError(c, err)
	}
	resp := echo.Map{"status": rec.Status}
	if rec.ProviderPolygonID != nil {
		resp["provider_polygon_id"] = *rec.ProviderPolygonID
	}
	if rec.ErrorReason != "" {
		resp["error_reason"] = rec.ErrorReason
	}
	return c.JSON(http.StatusOK, resp)
}

func upstreamError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, provider.ErrNotConfigured):
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"configured": false, "error": "satellite provider not configured"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "upstream failure"})
	}
}
