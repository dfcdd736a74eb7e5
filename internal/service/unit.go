package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/iliyamo/unit-reservation/internal/apperr"
	"github.com/iliyamo/unit-reservation/internal/auth"
	"github.com/iliyamo/unit-reservation/internal/model"
	"github.com/iliyamo/unit-reservation/internal/pagination"
	"github.com/iliyamo/unit-reservation/internal/repository"
	"github.com/iliyamo/unit-reservation/internal/storage"
)

// UnitInput creates a unit.  Status may be empty or available.
type UnitInput struct {
	FloorID       uint64
	RoomTypeID    uint64
	Status        model.UnitStatus
	PriceOffer    float64
	SemiGrossArea float64
	UnitCode      string
	Facilities    []uint64
	Images        []storage.Upload
}

// UnitPatch updates a unit.  Nil fields and empty lists are left as they are.
type UnitPatch struct {
	FloorID       *uint64
	RoomTypeID    *uint64
	Status        *model.UnitStatus
	PriceOffer    *float64
	SemiGrossArea *float64
	UnitCode      *string
	Facilities    []uint64
	Images        []storage.Upload
}

type UnitQuery struct {
	pagination.Params
	UnitCode   string `query:"unitCode"`
	FloorID    uint64 `query:"floorId"`
	RoomTypeID uint64 `query:"roomTypeId"`
	FacilityID uint64 `query:"facilityId"`
}

type UnitService struct {
	store  repository.Store
	blobs  storage.Store
	policy storage.ImagePolicy
	log    *zap.Logger
}

func NewUnitService(store repository.Store, blobs storage.Store, policy storage.ImagePolicy, log *zap.Logger) *UnitService {
	return &UnitService{store: store, blobs: blobs, policy: policy, log: log}
}

func (s *UnitService) List(ctx context.Context, caller *auth.Caller, q UnitQuery) (pagination.Result[model.UnitDetail], error) {
	if err := auth.Authorize(caller); err != nil {
		return pagination.Result[model.UnitDetail]{}, err
	}
	f := repository.UnitFilter{
		UnitCode:   strings.TrimSpace(q.UnitCode),
		FloorID:    q.FloorID,
		RoomTypeID: q.RoomTypeID,
		FacilityID: q.FacilityID,
	}
	res, err := pagination.Paginate[model.UnitDetail](ctx, s.store.Units(), f, q.Params)
	if err != nil {
		return res, internal(err)
	}
	return res, nil
}

func (s *UnitService) Get(ctx context.Context, caller *auth.Caller, id uint64) (model.UnitDetail, error) {
	if err := auth.Authorize(caller); err != nil {
		return model.UnitDetail{}, err
	}
	d, err := s.store.Units().GetDetail(ctx, id)
	if err != nil {
		return model.UnitDetail{}, lookup(err, "unit not found")
	}
	return d, nil
}

// Create inserts the unit with its facilities and images in one transaction.
func (s *UnitService) Create(ctx context.Context, caller *auth.Caller, in UnitInput) (model.UnitDetail, error) {
	if err := auth.Authorize(caller, model.RoleAdmin); err != nil {
		return model.UnitDetail{}, err
	}
	u := model.Unit{
		UnitCode:      strings.TrimSpace(in.UnitCode),
		FloorID:       in.FloorID,
		RoomTypeID:    in.RoomTypeID,
		PriceOffer:    in.PriceOffer,
		SemiGrossArea: in.SemiGrossArea,
		Status:        in.Status,
	}
	if u.Status == "" {
		u.Status = model.UnitAvailable
	}
	if err := checkStatus(u.Status); err != nil {
		return model.UnitDetail{}, err
	}
	if err := checkUnit(u); err != nil {
		return model.UnitDetail{}, err
	}
	if err := s.policy.CheckAll(in.Images); err != nil {
		return model.UnitDetail{}, err
	}

	blobs := newBlobTx(s.blobs, s.log)
	err := runWithBlobs(ctx, s.store, blobs, func(tx repository.Gateway) error {
		if err := checkUnitRefs(ctx, tx, u); err != nil {
			return err
		}
		if err := tx.Units().Create(ctx, &u); err != nil {
			return internal(err)
		}
		if err := replaceFacilities(ctx, tx, u.ID, in.Facilities); err != nil {
			return err
		}
		return replaceImages(ctx, tx, u.ID, in.Images, blobs)
	})
	if err != nil {
		return model.UnitDetail{}, err
	}
	return s.detail(ctx, u.ID)
}

// Update applies p.  Facilities and images are replaced only when given.
func (s *UnitService) Update(ctx context.Context, caller *auth.Caller, id uint64, p UnitPatch) (model.UnitDetail, error) {
	if err := auth.Authorize(caller, model.RoleAdmin); err != nil {
		return model.UnitDetail{}, err
	}
	if p.Status != nil {
		if err := checkStatus(*p.Status); err != nil {
			return model.UnitDetail{}, err
		}
	}
	if err := s.policy.CheckAll(p.Images); err != nil {
		return model.UnitDetail{}, err
	}

	blobs := newBlobTx(s.blobs, s.log)
	err := runWithBlobs(ctx, s.store, blobs, func(tx repository.Gateway) error {
		u, err := tx.Units().Get(ctx, id)
		if err != nil {
			return lookup(err, "unit not found")
		}
		p.apply(&u)
		if err := checkUnit(u); err != nil {
			return err
		}
		if err := checkUnitRefs(ctx, tx, u); err != nil {
			return err
		}
		if err := tx.Units().Update(ctx, &u); err != nil {
			return lookup(err, "unit not found")
		}
		if err := replaceFacilities(ctx, tx, u.ID, p.Facilities); err != nil {
			return err
		}
		return replaceImages(ctx, tx, u.ID, p.Images, blobs)
	})
	if err != nil {
		return model.UnitDetail{}, err
	}
	return s.detail(ctx, id)
}

// Delete removes a unit without reservations, together with its images.
func (s *UnitService) Delete(ctx context.Context, caller *auth.Caller, id uint64) error {
	if err := auth.Authorize(caller, model.RoleAdmin); err != nil {
		return err
	}
	blobs := newBlobTx(s.blobs, s.log)
	return runWithBlobs(ctx, s.store, blobs, func(tx repository.Gateway) error {
		if _, err := tx.Units().Get(ctx, id); err != nil {
			return lookup(err, "unit not found")
		}
		n, err := tx.Reservations().Count(ctx, repository.ReservationFilter{UnitID: id})
		if err != nil {
			return internal(err)
		}
		if n > 0 {
			return apperr.BadRequestf("unit has reservations")
		}
		imgs, err := tx.Units().Images(ctx, id)
		if err != nil {
			return internal(err)
		}
		for _, img := range imgs {
			blobs.retire(img.ImageURL)
		}
		return lookup(tx.Units().Delete(ctx, id), "unit not found")
	})
}

func (s *UnitService) detail(ctx context.Context, id uint64) (model.UnitDetail, error) {
	d, err := s.store.Units().GetDetail(ctx, id)
	if err != nil {
		return model.UnitDetail{}, lookup(err, "unit not found")
	}
	return d, nil
}

func (p UnitPatch) apply(u *model.Unit) {
	if p.FloorID != nil {
		u.FloorID = *p.FloorID
	}
	if p.RoomTypeID != nil {
		u.RoomTypeID = *p.RoomTypeID
	}
	if p.Status != nil {
		u.Status = *p.Status
	}
	if p.PriceOffer != nil {
		u.PriceOffer = *p.PriceOffer
	}
	if p.SemiGrossArea != nil {
		u.SemiGrossArea = *p.SemiGrossArea
	}
	if p.UnitCode != nil {
		u.UnitCode = strings.TrimSpace(*p.UnitCode)
	}
}

// checkStatus allows only available to be set by hand.  The other
// statuses come from reservations.
func checkStatus(st model.UnitStatus) error {
	if st != model.UnitAvailable {
		return apperr.BadRequestf("status must be available")
	}
	return nil
}

func checkUnit(u model.Unit) error {
	switch {
	case u.UnitCode == "":
		return apperr.BadRequestf("unitCode is required")
	case u.FloorID == 0:
		return apperr.BadRequestf("floorId is required")
	case u.RoomTypeID == 0:
		return apperr.BadRequestf("roomTypeId is required")
	case u.PriceOffer < 0 || u.SemiGrossArea < 0:
		return apperr.BadRequestf("priceOffer and semiGrossArea must not be negative")
	}
	return nil
}

func checkUnitRefs(ctx context.Context, tx repository.Gateway, u model.Unit) error {
	if _, err := tx.Floors().Get(ctx, u.FloorID); err != nil {
		return mustExist(err, "floor not found")
	}
	if _, err := tx.RoomTypes().Get(ctx, u.RoomTypeID); err != nil {
		return mustExist(err, "room type not found")
	}
	return nil
}
