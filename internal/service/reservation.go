package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iliyamo/unit-reservation/internal/apperr"
	"github.com/iliyamo/unit-reservation/internal/auth"
	"github.com/iliyamo/unit-reservation/internal/model"
	"github.com/iliyamo/unit-reservation/internal/pagination"
	"github.com/iliyamo/unit-reservation/internal/queue"
	"github.com/iliyamo/unit-reservation/internal/repository"
	"github.com/iliyamo/unit-reservation/internal/storage"
)

// CustomerInput is the customer block of a reservation request.
type CustomerInput struct {
	Name           string `json:"name" validate:"required"`
	KTPNumber      string `json:"ktpNumber"`
	NPWPNumber     string `json:"npwpNumber"`
	Email          string `json:"email" validate:"required,email"`
	PhoneNumber    string `json:"phoneNumber"`
	Address        string `json:"address"`
	City           string `json:"city"`
	Province       string `json:"province"`
	CustomerSource string `json:"customerSource"`
}

// ReservationInput is the reservation block of a reservation request.
type ReservationInput struct {
	UnitID              uint64            `json:"unitId" validate:"required"`
	MediaSourceCategory string            `json:"mediaSourceCategory"`
	MediaSourceDesc     string            `json:"mediaSourceDesc"`
	Notes               string            `json:"notes"`
	PaymentType         model.PaymentType `json:"paymentType" validate:"required,oneof=cash credit installment mortgage"`
}

type CreateReservationInput struct {
	Customer    CustomerInput    `json:"customer"`
	Reservation ReservationInput `json:"reservation"`
}

// ReservationQuery selects a page of reservations.
type ReservationQuery struct {
	pagination.Params
	UnitID     uint64                  `query:"unitId"`
	SalesmanID uint64                  `query:"salesmanId"`
	Status     model.ReservationStatus `query:"status"`
}

var reservationRoles = []model.Role{model.RoleSalesman, model.RoleSupervisor}

// ReservationService drives the reservation lifecycle and keeps each
// unit's status in step with its reservation.
type ReservationService struct {
	store  repository.Store
	blobs  storage.Store
	policy storage.ImagePolicy
	events EventPublisher
	log    *zap.Logger
}

func NewReservationService(store repository.Store, blobs storage.Store, policy storage.ImagePolicy, events EventPublisher, log *zap.Logger) *ReservationService {
	if events == nil {
		events = queue.NopPublisher{}
	}
	return &ReservationService{store: store, blobs: blobs, policy: policy, events: events, log: log}
}

// Create inserts a customer and a reservation for an existing unit in one
// transaction.  The reservation starts as reserved and the unit keeps its
// status.
func (s *ReservationService) Create(ctx context.Context, caller *auth.Caller, in CreateReservationInput) (model.Reservation, error) {
	if err := auth.Authorize(caller, reservationRoles...); err != nil {
		return model.Reservation{}, err
	}
	if err := in.check(); err != nil {
		return model.Reservation{}, err
	}

	var res model.Reservation
	err := s.store.RunInTx(ctx, func(tx repository.Gateway) error {
		if _, err := tx.Units().Get(ctx, in.Reservation.UnitID); err != nil {
			return lookup(err, "unit not found")
		}
		c := in.Customer.model()
		if err := tx.Customers().Create(ctx, &c); err != nil {
			return internal(err)
		}
		res = model.Reservation{
			UUID:                uuid.NewString(),
			UnitID:              in.Reservation.UnitID,
			CustomerID:          c.ID,
			SalesmanID:          caller.ID,
			MediaSourceCategory: in.Reservation.MediaSourceCategory,
			MediaSourceDesc:     in.Reservation.MediaSourceDesc,
			Notes:               in.Reservation.Notes,
			PaymentType:         in.Reservation.PaymentType,
			Status:              model.ReservationReserved,
		}
		if err := tx.Reservations().Create(ctx, &res); err != nil {
			return internal(err)
		}
		return nil
	})
	if err != nil {
		return model.Reservation{}, err
	}
	s.publish(ctx, res, caller.ID)
	return res, nil
}

// UploadPaymentProof stores the proof image, marks the reservation paid and
// the unit reserved.  A previous proof is deleted after the commit.
func (s *ReservationService) UploadPaymentProof(ctx context.Context, caller *auth.Caller, id string, proof storage.Upload) error {
	if err := auth.Authorize(caller, reservationRoles...); err != nil {
		return err
	}
	if err := s.policy.Check(proof); err != nil {
		return err
	}
	if _, err := s.store.Reservations().Get(ctx, id); err != nil {
		return lookup(err, "reservation not found")
	}

	blobs := newBlobTx(s.blobs, s.log)
	ref, err := blobs.save(ctx, proof)
	if err != nil {
		return err
	}

	var res model.Reservation
	err = runWithBlobs(ctx, s.store, blobs, func(tx repository.Gateway) error {
		var err error
		res, err = tx.Reservations().Get(ctx, id)
		if err != nil {
			return lookup(err, "reservation not found")
		}
		blobs.retire(res.PaymentProofURL)
		res.PaymentProofURL = ref
		return s.transition(ctx, tx, &res, model.ReservationPaid)
	})
	if err != nil {
		return err
	}
	s.publish(ctx, res, caller.ID)
	return nil
}

// UpdateStatus books or declines a reservation.  The previous status is not
// checked.
func (s *ReservationService) UpdateStatus(ctx context.Context, caller *auth.Caller, id string, status model.ReservationStatus) error {
	if err := auth.Authorize(caller, model.RoleSupervisor); err != nil {
		return err
	}
	if status != model.ReservationBooked && status != model.ReservationDeclined {
		return apperr.BadRequestf("status must be booked or declined")
	}

	var res model.Reservation
	err := s.store.RunInTx(ctx, func(tx repository.Gateway) error {
		var err error
		res, err = tx.Reservations().Get(ctx, id)
		if err != nil {
			return lookup(err, "reservation not found")
		}
		return s.transition(ctx, tx, &res, status)
	})
	if err != nil {
		return err
	}
	s.publish(ctx, res, caller.ID)
	return nil
}

// transition writes the new reservation status and the unit status it implies.
func (s *ReservationService) transition(ctx context.Context, tx repository.Gateway, res *model.Reservation, status model.ReservationStatus) error {
	res.Status = status
	if err := tx.Reservations().Update(ctx, res); err != nil {
		return lookup(err, "reservation not found")
	}
	if us, ok := status.UnitStatus(); ok {
		if err := tx.Units().SetStatus(ctx, res.UnitID, us); err != nil {
			return lookup(err, "unit not found")
		}
	}
	return nil
}

func (s *ReservationService) List(ctx context.Context, caller *auth.Caller, q ReservationQuery) (pagination.Result[model.ReservationDetail], error) {
	if err := auth.Authorize(caller, reservationRoles...); err != nil {
		return pagination.Result[model.ReservationDetail]{}, err
	}
	f := repository.ReservationFilter{UnitID: q.UnitID, SalesmanID: q.SalesmanID, Status: q.Status}
	res, err := pagination.Paginate[model.ReservationDetail](ctx, s.store.Reservations(), f, q.Params)
	if err != nil {
		return res, internal(err)
	}
	return res, nil
}

func (s *ReservationService) Get(ctx context.Context, caller *auth.Caller, id string) (model.ReservationDetail, error) {
	if err := auth.Authorize(caller, reservationRoles...); err != nil {
		return model.ReservationDetail{}, err
	}
	d, err := s.store.Reservations().GetDetail(ctx, id)
	if err != nil {
		return model.ReservationDetail{}, lookup(err, "reservation not found")
	}
	return d, nil
}

func (s *ReservationService) publish(ctx context.Context, res model.Reservation, actor uint64) {
	ev := queue.NewReservationEvent(res, actor)
	if err := s.events.Publish(context.WithoutCancel(ctx), ev); err != nil {
		s.log.Warn("publish reservation event failed",
			zap.String("event", ev.Type), zap.String("reservation_uuid", res.UUID), zap.Error(err))
	}
}

func (in CreateReservationInput) check() error {
	if strings.TrimSpace(in.Customer.Name) == "" {
		return apperr.BadRequestf("customer name is required")
	}
	if in.Reservation.UnitID == 0 {
		return apperr.BadRequestf("unitId is required")
	}
	if !in.Reservation.PaymentType.Valid() {
		return apperr.BadRequestf("invalid payment type")
	}
	return nil
}

func (c CustomerInput) model() model.Customer {
	return model.Customer{
		Name:           strings.TrimSpace(c.Name),
		KTPNumber:      c.KTPNumber,
		NPWPNumber:     c.NPWPNumber,
		Email:          strings.TrimSpace(c.Email),
		PhoneNumber:    c.PhoneNumber,
		Address:        c.Address,
		City:           c.City,
		Province:       c.Province,
		CustomerSource: c.CustomerSource,
	}
}
