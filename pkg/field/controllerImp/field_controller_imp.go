package controllerImp

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"soilwatch/entities"
	"soilwatch/pkg/export"
	obsrepo "soilwatch/pkg/satellite/repository"

	"soilwatch/pkg/field/service"
)

type FieldCtrl struct {
	s   service.FieldService
	obs obsrepo.ObservationRepository
}

func New(s service.FieldService, obs obsrepo.ObservationRepository) *FieldCtrl {
	return &FieldCtrl{s: s, obs: obs}
}

type createReq struct {
	Name           string          `json:"name"`
	Boundary       json.RawMessage `json:"boundary"`
	AreaHa         *float64        `json:"area_ha"`
	Crop           string          `json:"crop"`
	AlertThreshold float64         `json:"alert_threshold"`
	AlertsEnabled  bool            `json:"alerts_enabled"`
}

func (h *FieldCtrl) Create(c echo.Context) error {
	uid := c.Get("uid").(string)
	var req createReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid json"})
	}
	f := &entities.Field{
		UserID:         uid,
		Name:           req.Name,
		Boundary:       []byte(req.Boundary),
		AreaHa:         req.AreaHa,
		Crop:           req.Crop,
		AlertThreshold: req.AlertThreshold,
		AlertsEnabled:  req.AlertsEnabled,
	}
	out, err := h.s.CreateField(f)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *FieldCtrl) List(c echo.Context) error {
	uid := c.Get("uid").(string)
	list, err := h.s.ListFields(uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "listing failed"})
	}
	return c.JSON(http.StatusOK, list)
}

func (h *FieldCtrl) Get(c echo.Context) error {
	uid := c.Get("uid").(string)
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid field id"})
	}
	f, err := h.s.GetFieldByID(uint(id), uid)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}
	return c.JSON(http.StatusOK, f)
}

func (h *FieldCtrl) Update(c echo.Context) error {
	uid := c.Get("uid").(string)
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid field id"})
	}
	var p service.FieldPatch
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid json"})
	}
	f, err := h.s.UpdateField(uint(id), uid, p)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		case errors.Is(err, gorm.ErrRecordNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, f)
}

func (h *FieldCtrl) Delete(c echo.Context) error {
	uid := c.Get("uid").(string)
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid field id"})
	}
	ok, err := h.s.DeleteField(uint(id), uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

// Export streams the field's cached observations as an xlsx workbook.
func (h *FieldCtrl) Export(c echo.Context) error {
	uid := c.Get("uid").(string)
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid field id"})
	}
	f, err := h.s.GetFieldByID(uint(id), uid)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}
	obs, err := h.obs.Window(f.FieldID, time.Now().UTC().AddDate(-1, 0, 0))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "export failed"})
	}
	wb, err := export.Build(f, obs)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "export failed"})
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", export.Filename(f)))
	c.Response().WriteHeader(http.StatusOK)
	return wb.Write(c.Response())
}
