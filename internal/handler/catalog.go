package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/unit-reservation/internal/auth"
	"github.com/iliyamo/unit-reservation/internal/middleware"
	"github.com/iliyamo/unit-reservation/internal/pagination"
	"github.com/iliyamo/unit-reservation/internal/service"
)

// catalogService is implemented by the tower, room type and facility services.
type catalogService[T any] interface {
	List(ctx context.Context, caller *auth.Caller, q service.NameQuery) (pagination.Result[T], error)
	Get(ctx context.Context, caller *auth.Caller, id uint64) (T, error)
	Create(ctx context.Context, caller *auth.Caller, in service.NameInput) (T, error)
	Update(ctx context.Context, caller *auth.Caller, id uint64, in service.NameInput) (T, error)
	Delete(ctx context.Context, caller *auth.Caller, id uint64) error
}

// CatalogHandler serves JSON CRUD for a name-only master-data resource.
type CatalogHandler[T any] struct {
	svc catalogService[T]
	log *zap.Logger
}

func NewCatalogHandler[T any](svc catalogService[T], log *zap.Logger) *CatalogHandler[T] {
	return &CatalogHandler[T]{svc: svc, log: log}
}

func (h *CatalogHandler[T]) List(c echo.Context) error {
	params, err := pageParams(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	q := service.NameQuery{Params: params, Name: c.QueryParam("name")}
	res, err := h.svc.List(c.Request().Context(), middleware.CallerFrom(c), q)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *CatalogHandler[T]) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	v, err := h.svc.Get(c.Request().Context(), middleware.CallerFrom(c), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, v)
}

func (h *CatalogHandler[T]) Create(c echo.Context) error {
	var in service.NameInput
	if err := bind(c, &in); err != nil {
		return respondError(c, h.log, err)
	}
	v, err := h.svc.Create(c.Request().Context(), middleware.CallerFrom(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, v)
}

func (h *CatalogHandler[T]) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	var in service.NameInput
	if err := bind(c, &in); err != nil {
		return respondError(c, h.log, err)
	}
	v, err := h.svc.Update(c.Request().Context(), middleware.CallerFrom(c), id, in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, v)
}

func (h *CatalogHandler[T]) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	if err := h.svc.Delete(c.Request().Context(), middleware.CallerFrom(c), id); err != nil {
		return respondError(c, h.log, err)
	}
	return c.NoContent(http.StatusNoContent)
}
