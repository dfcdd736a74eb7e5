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

type FloorInput struct {
	TowerID uint64
	Label   string
	Number  int
	Plan    *storage.Upload
}

// FloorPatch updates a floor.  A new Plan replaces the stored one.
type FloorPatch struct {
	TowerID *uint64
	Label   *string
	Number  *int
	Plan    *storage.Upload
}

type FloorQuery struct {
	pagination.Params
	TowerID uint64 `query:"towerId"`
}

// FloorService manages floors and their floor-plan images.
type FloorService struct {
	store  repository.Store
	blobs  storage.Store
	policy storage.ImagePolicy
	log    *zap.Logger
}

func NewFloorService(store repository.Store, blobs storage.Store, policy storage.ImagePolicy, log *zap.Logger) *FloorService {
	return &FloorService{store: store, blobs: blobs, policy: policy, log: log}
}

func (s *FloorService) List(ctx context.Context, caller *auth.Caller, q FloorQuery) (pagination.Result[model.Floor], error) {
	if err := auth.Authorize(caller); err != nil {
		return pagination.Result[model.Floor]{}, err
	}
	res, err := pagination.Paginate[model.Floor](ctx, s.store.Floors(), repository.FloorFilter{TowerID: q.TowerID}, q.Params)
	if err != nil {
		return res, internal(err)
	}
	return res, nil
}

func (s *FloorService) Get(ctx context.Context, caller *auth.Caller, id uint64) (model.Floor, error) {
	if err := auth.Authorize(caller); err != nil {
		return model.Floor{}, err
	}
	fl, err := s.store.Floors().Get(ctx, id)
	if err != nil {
		return model.Floor{}, lookup(err, "floor not found")
	}
	return fl, nil
}

func (s *FloorService) Create(ctx context.Context, caller *auth.Caller, in FloorInput) (model.Floor, error) {
	if err := auth.Authorize(caller, model.RoleAdmin); err != nil {
		return model.Floor{}, err
	}
	fl := model.Floor{TowerID: in.TowerID, Label: strings.TrimSpace(in.Label), Number: in.Number}
	if err := checkFloor(fl); err != nil {
		return model.Floor{}, err
	}
	if err := s.checkPlan(in.Plan); err != nil {
		return model.Floor{}, err
	}

	blobs := newBlobTx(s.blobs, s.log)
	err := runWithBlobs(ctx, s.store, blobs, func(tx repository.Gateway) error {
		if _, err := tx.Towers().Get(ctx, fl.TowerID); err != nil {
			return mustExist(err, "tower not found")
		}
		if in.Plan != nil {
			ref, err := blobs.save(ctx, *in.Plan)
			if err != nil {
				return err
			}
			fl.FloorPlanImageURL = ref
		}
		return internal(tx.Floors().Create(ctx, &fl))
	})
	if err != nil {
		return model.Floor{}, err
	}
	return fl, nil
}

func (s *FloorService) Update(ctx context.Context, caller *auth.Caller, id uint64, p FloorPatch) (model.Floor, error) {
	if err := auth.Authorize(caller, model.RoleAdmin); err != nil {
		return model.Floor{}, err
	}
	if err := s.checkPlan(p.Plan); err != nil {
		return model.Floor{}, err
	}

	var fl model.Floor
	blobs := newBlobTx(s.blobs, s.log)
	err := runWithBlobs(ctx, s.store, blobs, func(tx repository.Gateway) error {
		var err error
		fl, err = tx.Floors().Get(ctx, id)
		if err != nil {
			return lookup(err, "floor not found")
		}
		if p.TowerID != nil && *p.TowerID != fl.TowerID {
			if _, err := tx.Towers().Get(ctx, *p.TowerID); err != nil {
				return mustExist(err, "tower not found")
			}
			fl.TowerID = *p.TowerID
		}
		if p.Label != nil {
			fl.Label = strings.TrimSpace(*p.Label)
		}
		if p.Number != nil {
			fl.Number = *p.Number
		}
		if err := checkFloor(fl); err != nil {
			return err
		}
		if p.Plan != nil {
			ref, err := blobs.save(ctx, *p.Plan)
			if err != nil {
				return err
			}
			blobs.retire(fl.FloorPlanImageURL)
			fl.FloorPlanImageURL = ref
		}
		return lookup(tx.Floors().Update(ctx, &fl), "floor not found")
	})
	if err != nil {
		return model.Floor{}, err
	}
	return fl, nil
}

// Delete removes a floor without units and, after commit, its plan image.
func (s *FloorService) Delete(ctx context.Context, caller *auth.Caller, id uint64) error {
	if err := auth.Authorize(caller, model.RoleAdmin); err != nil {
		return err
	}
	blobs := newBlobTx(s.blobs, s.log)
	return runWithBlobs(ctx, s.store, blobs, func(tx repository.Gateway) error {
		fl, err := tx.Floors().Get(ctx, id)
		if err != nil {
			return lookup(err, "floor not found")
		}
		n, err := tx.Units().Count(ctx, repository.UnitFilter{FloorID: id})
		if err != nil {
			return internal(err)
		}
		if n > 0 {
			return apperr.BadRequestf("floor has units")
		}
		blobs.retire(fl.FloorPlanImageURL)
		return lookup(tx.Floors().Delete(ctx, id), "floor not found")
	})
}

func (s *FloorService) checkPlan(u *storage.Upload) error {
	if u == nil {
		return nil
	}
	return s.policy.Check(*u)
}

func checkFloor(fl model.Floor) error {
	if fl.TowerID == 0 {
		return apperr.BadRequestf("towerId is required")
	}
	if fl.Label == "" {
		return apperr.BadRequestf("label is required")
	}
	return nil
}
