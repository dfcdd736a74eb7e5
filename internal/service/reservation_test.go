package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/unit-reservation/internal/apperr"
	"github.com/iliyamo/unit-reservation/internal/model"
	"github.com/iliyamo/unit-reservation/internal/pagination"
	"github.com/iliyamo/unit-reservation/internal/queue"
	"github.com/iliyamo/unit-reservation/internal/repository"
)

func reservationInput(unitID uint64) CreateReservationInput {
	return CreateReservationInput{
		Customer: CustomerInput{Name: "Budi", Email: "budi@example.com", KTPNumber: "3174", City: "Jakarta"},
		Reservation: ReservationInput{
			UnitID:      unitID,
			PaymentType: model.PaymentCash,
			Notes:       "walk-in",
		},
	}
}

func TestReservationCreate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.unit("A-01")

	res, err := f.reservations.Create(ctx, f.salesman, reservationInput(u.ID))
	require.NoError(t, err)
	assert.Len(t, res.UUID, 36)
	assert.Equal(t, model.ReservationReserved, res.Status)
	assert.Equal(t, f.salesman.ID, res.SalesmanID)
	assert.Empty(t, res.PaymentProofURL)

	c, err := f.store.Customers().Get(ctx, res.CustomerID)
	require.NoError(t, err)
	assert.Equal(t, "Budi", c.Name)

	unit, err := f.store.Units().Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, model.UnitAvailable, unit.Status)

	n, err := f.store.Reservations().Count(ctx, repository.ReservationFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{queue.EventReservationCreated}, f.events.types())
}

func TestReservationCreate_UnknownUnitLeavesNoCustomer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.reservations.Create(ctx, f.salesman, reservationInput(999))
	requireKind(t, err, apperr.NotFound)
	assert.Equal(t, "unit not found", apperr.Normalize(err).Message)

	_, err = f.store.Customers().Get(ctx, 1)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.Empty(t, f.events.types())
}

func TestReservationCreate_Roles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.unit("A-02")

	_, err := f.reservations.Create(ctx, f.admin, reservationInput(u.ID))
	requireKind(t, err, apperr.Forbidden)
	_, err = f.reservations.Create(ctx, nil, reservationInput(u.ID))
	requireKind(t, err, apperr.Unauthorized)
	_, err = f.reservations.Create(ctx, f.supervisor, reservationInput(u.ID))
	require.NoError(t, err)
}

func TestReservationCreate_InvalidPaymentType(t *testing.T) {
	f := newFixture(t)
	in := reservationInput(f.unit("A-03").ID)
	in.Reservation.PaymentType = "barter"
	_, err := f.reservations.Create(context.Background(), f.salesman, in)
	requireKind(t, err, apperr.BadRequest)
}

func TestUploadPaymentProof(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.unit("B-01")
	res, err := f.reservations.Create(ctx, f.salesman, reservationInput(u.ID))
	require.NoError(t, err)

	require.NoError(t, f.reservations.UploadPaymentProof(ctx, f.salesman, res.UUID, png("proof.png")))
	first, err := f.store.Reservations().Get(ctx, res.UUID)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationPaid, first.Status)
	require.NotEmpty(t, first.PaymentProofURL)
	assert.True(t, f.blobExists(first.PaymentProofURL))

	unit, err := f.store.Units().Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, model.UnitReserved, unit.Status)

	// a second proof replaces the first blob
	require.NoError(t, f.reservations.UploadPaymentProof(ctx, f.supervisor, res.UUID, png("proof2.png")))
	second, err := f.store.Reservations().Get(ctx, res.UUID)
	require.NoError(t, err)
	assert.NotEqual(t, first.PaymentProofURL, second.PaymentProofURL)
	assert.False(t, f.blobExists(first.PaymentProofURL))
	assert.True(t, f.blobExists(second.PaymentProofURL))
	assert.Equal(t, 1, f.blobCount())

	assert.Equal(t, []string{
		queue.EventReservationCreated, queue.EventReservationPaid, queue.EventReservationPaid,
	}, f.events.types())
}

func TestUploadPaymentProof_UnknownReservation(t *testing.T) {
	f := newFixture(t)
	err := f.reservations.UploadPaymentProof(context.Background(), f.salesman, "missing", png("proof.png"))
	requireKind(t, err, apperr.NotFound)
	assert.Equal(t, 0, f.blobCount())
}

func TestUploadPaymentProof_RejectsNonImage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res, err := f.reservations.Create(ctx, f.salesman, reservationInput(f.unit("B-02").ID))
	require.NoError(t, err)

	txt := png("proof.txt")
	txt.Open = textOpener("not an image at all")
	txt.Size = 19
	err = f.reservations.UploadPaymentProof(ctx, f.salesman, res.UUID, txt)
	requireKind(t, err, apperr.BadRequest)

	got, err := f.store.Reservations().Get(ctx, res.UUID)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationReserved, got.Status)
}

func TestUpdateStatus(t *testing.T) {
	cases := []struct {
		status model.ReservationStatus
		unit   model.UnitStatus
		event  string
	}{
		{model.ReservationBooked, model.UnitBooked, queue.EventReservationBooked},
		{model.ReservationDeclined, model.UnitAvailable, queue.EventReservationDeclined},
	}
	for _, tc := range cases {
		t.Run(string(tc.status), func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			u := f.unit("C-01")
			res, err := f.reservations.Create(ctx, f.salesman, reservationInput(u.ID))
			require.NoError(t, err)
			require.NoError(t, f.reservations.UploadPaymentProof(ctx, f.salesman, res.UUID, png("p.png")))

			require.NoError(t, f.reservations.UpdateStatus(ctx, f.supervisor, res.UUID, tc.status))

			got, err := f.store.Reservations().Get(ctx, res.UUID)
			require.NoError(t, err)
			assert.Equal(t, tc.status, got.Status)
			unit, err := f.store.Units().Get(ctx, u.ID)
			require.NoError(t, err)
			assert.Equal(t, tc.unit, unit.Status)
			types := f.events.types()
			assert.Equal(t, tc.event, types[len(types)-1])
		})
	}
}

func TestUpdateStatus_FromReservedIsAllowed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.unit("C-02")
	res, err := f.reservations.Create(ctx, f.salesman, reservationInput(u.ID))
	require.NoError(t, err)

	require.NoError(t, f.reservations.UpdateStatus(ctx, f.supervisor, res.UUID, model.ReservationBooked))
	unit, err := f.store.Units().Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, model.UnitBooked, unit.Status)
}

func TestUpdateStatus_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.unit("C-03")
	res, err := f.reservations.Create(ctx, f.salesman, reservationInput(u.ID))
	require.NoError(t, err)

	requireKind(t, f.reservations.UpdateStatus(ctx, f.salesman, res.UUID, model.ReservationBooked), apperr.Forbidden)
	requireKind(t, f.reservations.UpdateStatus(ctx, f.supervisor, res.UUID, model.ReservationPaid), apperr.BadRequest)
	requireKind(t, f.reservations.UpdateStatus(ctx, f.supervisor, "missing", model.ReservationBooked), apperr.NotFound)

	got, err := f.store.Reservations().Get(ctx, res.UUID)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationReserved, got.Status)
	unit, err := f.store.Units().Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, model.UnitAvailable, unit.Status)
}

func TestReservationPublishFailureIsIgnored(t *testing.T) {
	f := newFixture(t)
	f.events.err = errors.New("broker down")
	_, err := f.reservations.Create(context.Background(), f.salesman, reservationInput(f.unit("D-01").ID))
	require.NoError(t, err)
}

func TestReservationListAndGet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.unit("E-01")
	var last model.Reservation
	for i := 0; i < 3; i++ {
		var err error
		last, err = f.reservations.Create(ctx, f.salesman, reservationInput(u.ID))
		require.NoError(t, err)
	}

	page, limit := 1, 2
	res, err := f.reservations.List(ctx, f.supervisor, ReservationQuery{Params: pagination.Params{Page: &page, Limit: &limit}})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)
	require.Len(t, res.Data, 2)
	assert.Equal(t, last.UUID, res.Data[0].UUID)
	assert.Equal(t, "Sam", res.Data[0].Salesman.Name)
	assert.Equal(t, "E-01", res.Data[0].Unit.UnitCode)
	require.NotNil(t, res.NextPage)
	assert.Equal(t, 2, *res.NextPage)

	d, err := f.reservations.Get(ctx, f.salesman, last.UUID)
	require.NoError(t, err)
	assert.Equal(t, "Budi", d.Customer.Name)

	_, err = f.reservations.Get(ctx, f.salesman, "missing")
	requireKind(t, err, apperr.NotFound)
	_, err = f.reservations.List(ctx, f.admin, ReservationQuery{})
	requireKind(t, err, apperr.Forbidden)
}
