package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/unit-reservation/internal/middleware"
	"github.com/iliyamo/unit-reservation/internal/service"
)

// FloorHandler reads floor writes as multipart forms with the fields
// towerId, label, number and an optional floorPlanImage file.
type FloorHandler struct {
	svc *service.FloorService
	log *zap.Logger
}

func NewFloorHandler(svc *service.FloorService, log *zap.Logger) *FloorHandler {
	return &FloorHandler{svc: svc, log: log}
}

func (h *FloorHandler) List(c echo.Context) error {
	params, err := pageParams(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	q := service.FloorQuery{Params: params}
	if q.TowerID, err = queryUint(c, "towerId"); err != nil {
		return respondError(c, h.log, err)
	}
	res, err := h.svc.List(c.Request().Context(), middleware.CallerFrom(c), q)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *FloorHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	fl, err := h.svc.Get(c.Request().Context(), middleware.CallerFrom(c), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, fl)
}

func (h *FloorHandler) Create(c echo.Context) error {
	f, err := parseForm(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	in := service.FloorInput{TowerID: uint64Or0(f.optUint("towerId")), Plan: f.file("floorPlanImage")}
	if v := f.optStr("label"); v != nil {
		in.Label = *v
	}
	if v := f.optInt("number"); v != nil {
		in.Number = *v
	}
	if f.err != nil {
		return respondError(c, h.log, f.err)
	}
	fl, err := h.svc.Create(c.Request().Context(), middleware.CallerFrom(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, fl)
}

func (h *FloorHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	f, err := parseForm(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	p := service.FloorPatch{
		TowerID: f.optUint("towerId"),
		Label:   f.optStr("label"),
		Number:  f.optInt("number"),
		Plan:    f.file("floorPlanImage"),
	}
	if f.err != nil {
		return respondError(c, h.log, f.err)
	}
	fl, err := h.svc.Update(c.Request().Context(), middleware.CallerFrom(c), id, p)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, fl)
}

func (h *FloorHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	if err := h.svc.Delete(c.Request().Context(), middleware.CallerFrom(c), id); err != nil {
		return respondError(c, h.log, err)
	}
	return c.NoContent(http.StatusNoContent)
}
