package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/unit-reservation/internal/apperr"
	"github.com/iliyamo/unit-reservation/internal/middleware"
	"github.com/iliyamo/unit-reservation/internal/model"
	"github.com/iliyamo/unit-reservation/internal/service"
)

type ReservationHandler struct {
	svc *service.ReservationService
	log *zap.Logger
}

func NewReservationHandler(svc *service.ReservationService, log *zap.Logger) *ReservationHandler {
	return &ReservationHandler{svc: svc, log: log}
}

type statusRequest struct {
	Status model.ReservationStatus `json:"status" validate:"required,oneof=booked declined"`
}

type successResponse struct {
	Success bool `json:"success"`
}

func (h *ReservationHandler) List(c echo.Context) error {
	params, err := pageParams(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	q := service.ReservationQuery{Params: params, Status: model.ReservationStatus(c.QueryParam("status"))}
	if q.UnitID, err = queryUint(c, "unitId"); err != nil {
		return respondError(c, h.log, err)
	}
	if q.SalesmanID, err = queryUint(c, "salesmanId"); err != nil {
		return respondError(c, h.log, err)
	}
	res, err := h.svc.List(c.Request().Context(), middleware.CallerFrom(c), q)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *ReservationHandler) Get(c echo.Context) error {
	res, err := h.svc.Get(c.Request().Context(), middleware.CallerFrom(c), c.Param("uuid"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *ReservationHandler) Create(c echo.Context) error {
	var in service.CreateReservationInput
	if err := bind(c, &in); err != nil {
		return respondError(c, h.log, err)
	}
	res, err := h.svc.Create(c.Request().Context(), middleware.CallerFrom(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, res)
}

// UploadPaymentProof expects a multipart paymentProof file and moves the
// reservation to paid.
func (h *ReservationHandler) UploadPaymentProof(c echo.Context) error {
	fh, err := c.FormFile("paymentProof")
	if err != nil {
		return respondError(c, h.log, apperr.Wrap(apperr.BadRequest, "paymentProof file is required", err))
	}
	err = h.svc.UploadPaymentProof(c.Request().Context(), middleware.CallerFrom(c), c.Param("uuid"), upload(fh))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, successResponse{Success: true})
}

func (h *ReservationHandler) UpdateStatus(c echo.Context) error {
	var req statusRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, h.log, err)
	}
	err := h.svc.UpdateStatus(c.Request().Context(), middleware.CallerFrom(c), c.Param("uuid"), req.Status)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, successResponse{Success: true})
}
