package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/unit-reservation/internal/middleware"
	"github.com/iliyamo/unit-reservation/internal/model"
	"github.com/iliyamo/unit-reservation/internal/service"
)

type UserHandler struct {
	svc *service.UserService
	log *zap.Logger
}

func NewUserHandler(svc *service.UserService, log *zap.Logger) *UserHandler {
	return &UserHandler{svc: svc, log: log}
}

func (h *UserHandler) List(c echo.Context) error {
	params, err := pageParams(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	q := service.UserQuery{Params: params, Role: model.Role(c.QueryParam("role"))}
	res, err := h.svc.List(c.Request().Context(), middleware.CallerFrom(c), q)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *UserHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	u, err := h.svc.Get(c.Request().Context(), middleware.CallerFrom(c), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *UserHandler) Create(c echo.Context) error {
	var in service.UserInput
	if err := bind(c, &in); err != nil {
		return respondError(c, h.log, err)
	}
	u, err := h.svc.Create(c.Request().Context(), middleware.CallerFrom(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, u)
}

func (h *UserHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	var p service.UserPatch
	if err := bind(c, &p); err != nil {
		return respondError(c, h.log, err)
	}
	u, err := h.svc.Update(c.Request().Context(), middleware.CallerFrom(c), id, p)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *UserHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	if err := h.svc.Delete(c.Request().Context(), middleware.CallerFrom(c), id); err != nil {
		return respondError(c, h.log, err)
	}
	return c.NoContent(http.StatusNoContent)
}
