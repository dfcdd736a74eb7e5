package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/unit-reservation/internal/middleware"
	"github.com/iliyamo/unit-reservation/internal/model"
	"github.com/iliyamo/unit-reservation/internal/service"
)

// UnitHandler serves /units.  Writes are multipart: scalar fields plus
// repeated facilities[] ids and images[] files.
type UnitHandler struct {
	svc *service.UnitService
	log *zap.Logger
}

func NewUnitHandler(svc *service.UnitService, log *zap.Logger) *UnitHandler {
	return &UnitHandler{svc: svc, log: log}
}

func (h *UnitHandler) List(c echo.Context) error {
	params, err := pageParams(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	q := service.UnitQuery{Params: params, UnitCode: c.QueryParam("unitCode")}
	for name, dst := range map[string]*uint64{
		"floorId":    &q.FloorID,
		"roomTypeId": &q.RoomTypeID,
		"facilityId": &q.FacilityID,
	} {
		if *dst, err = queryUint(c, name); err != nil {
			return respondError(c, h.log, err)
		}
	}
	res, err := h.svc.List(c.Request().Context(), middleware.CallerFrom(c), q)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *UnitHandler) Get(c echo.Context) error {
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

func unitPatch(f *form) service.UnitPatch {
	p := service.UnitPatch{
		FloorID:       f.optUint("floorId"),
		RoomTypeID:    f.optUint("roomTypeId"),
		PriceOffer:    f.optFloat("priceOffer"),
		SemiGrossArea: f.optFloat("semiGrossArea"),
		UnitCode:      f.optStr("unitCode"),
		Facilities:    f.uints("facilities[]", "facilities"),
		Images:        f.files("images[]", "images"),
	}
	if st := f.optStr("status"); st != nil {
		v := model.UnitStatus(*st)
		p.Status = &v
	}
	return p
}

func (h *UnitHandler) Create(c echo.Context) error {
	f, err := parseForm(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	p := unitPatch(f)
	if f.err != nil {
		return respondError(c, h.log, f.err)
	}
	in := service.UnitInput{
		FloorID:    uint64Or0(p.FloorID),
		RoomTypeID: uint64Or0(p.RoomTypeID),
		Facilities: p.Facilities,
		Images:     p.Images,
	}
	if p.Status != nil {
		in.Status = *p.Status
	}
	if p.PriceOffer != nil {
		in.PriceOffer = *p.PriceOffer
	}
	if p.SemiGrossArea != nil {
		in.SemiGrossArea = *p.SemiGrossArea
	}
	if p.UnitCode != nil {
		in.UnitCode = *p.UnitCode
	}
	u, err := h.svc.Create(c.Request().Context(), middleware.CallerFrom(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, u)
}

func (h *UnitHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	f, err := parseForm(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	p := unitPatch(f)
	if f.err != nil {
		return respondError(c, h.log, f.err)
	}
	u, err := h.svc.Update(c.Request().Context(), middleware.CallerFrom(c), id, p)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *UnitHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	if err := h.svc.Delete(c.Request().Context(), middleware.CallerFrom(c), id); err != nil {
		return respondError(c, h.log, err)
	}
	return c.NoContent(http.StatusNoContent)
}
