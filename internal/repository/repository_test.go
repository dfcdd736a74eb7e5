package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/unit-reservation/internal/model"
	"github.com/iliyamo/unit-reservation/internal/pagination"
)

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestRunInTx_CommitsOnSuccess(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewMySQLStore(db, sql.LevelDefault)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO customers").WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectExec("INSERT INTO reservations").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.RunInTx(context.Background(), func(tx Gateway) error {
		c := &model.Customer{Name: "Budi"}
		if err := tx.Customers().Create(context.Background(), c); err != nil {
			return err
		}
		assert.Equal(t, uint64(7), c.ID)
		return tx.Reservations().Create(context.Background(), &model.Reservation{
			UUID: "u-1", CustomerID: c.ID, UnitID: 1, SalesmanID: 2,
			PaymentType: model.PaymentCash, Status: model.ReservationReserved,
		})
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunInTx_RollsBackOnError(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewMySQLStore(db, sql.LevelDefault)
	boom := errors.New("unit missing")

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO customers").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectRollback()

	err := store.RunInTx(context.Background(), func(tx Gateway) error {
		if err := tx.Customers().Create(context.Background(), &model.Customer{Name: "x"}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunInTx_RollsBackOnPanic(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewMySQLStore(db, sql.LevelDefault)

	mock.ExpectBegin()
	mock.ExpectRollback()

	assert.Panics(t, func() {
		_ = store.RunInTx(context.Background(), func(Gateway) error { panic("boom") })
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunInTx_CommitFailure(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewMySQLStore(db, sql.LevelDefault)

	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(errors.New("deadlock"))

	err := store.RunInTx(context.Background(), func(Gateway) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "commit tx")
}

func TestUserRepo_CreateDuplicate(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepo(db)

	mock.ExpectExec("INSERT INTO users").
		WithArgs("Ann", "ann@example.com", "hash", model.RoleAdmin, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	err := repo.Create(context.Background(), &model.User{Name: "Ann", Email: " Ann@Example.com ", PasswordHash: "hash", Role: model.RoleAdmin})
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_GetNotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectQuery("SELECT .* FROM users WHERE id=\\?").WithArgs(uint64(9)).WillReturnError(sql.ErrNoRows)

	_, err := NewUserRepo(db).Get(context.Background(), 9)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTowerRepo_ListPaged(t *testing.T) {
	db, mock := setupMockDB(t)
	now := time.Now()
	mock.ExpectQuery("SELECT id, name, created_at, updated_at FROM towers WHERE name LIKE \\? ORDER BY created_at DESC, id DESC LIMIT \\? OFFSET \\?").
		WithArgs("%T%", 10, 10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "created_at", "updated_at"}).
			AddRow(11, "T11", now, now))

	towers, err := NewTowerRepo(db).List(context.Background(), NameFilter{Name: "T"}, pagination.Window{Offset: 10, Limit: 10})
	require.NoError(t, err)
	require.Len(t, towers, 1)
	assert.Equal(t, "T11", towers[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFloorRepo_DeleteMissing(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectExec("DELETE FROM floors WHERE id=\\?").WithArgs(uint64(3)).WillReturnResult(sqlmock.NewResult(0, 0))

	err := NewFloorRepo(db).Delete(context.Background(), 3)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFloorRepo_NullPlan(t *testing.T) {
	db, mock := setupMockDB(t)
	now := time.Now()
	mock.ExpectQuery("SELECT .* FROM floors WHERE id=\\?").WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "tower_id", "label", "number", "floor_plan_image_url", "created_at", "updated_at"}).
			AddRow(1, 2, "L1", 1, nil, now, now))

	fl, err := NewFloorRepo(db).Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "", fl.FloorPlanImageURL)
	assert.Equal(t, uint64(2), fl.TowerID)
}

func TestUnitRepo_ListLoadsRelations(t *testing.T) {
	db, mock := setupMockDB(t)
	now := time.Now()

	mock.ExpectQuery("FROM units u JOIN room_types rt ON rt.id = u.room_type_id WHERE u.unit_code LIKE \\? AND EXISTS").
		WithArgs("%U-100%", uint64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "unit_code", "floor_id", "room_type_id", "price_offer",
			"semi_gross_area", "status", "created_at", "updated_at", "name"}).
			AddRow(1, "U-100", 1, 1, "150000000.00", "36.50", "available", now, now, "Studio"))
	mock.ExpectQuery("FROM unit_images WHERE unit_id IN \\(\\?\\)").WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "unit_id", "image_url", "description"}).
			AddRow(1, 1, "/uploads/a.png", "").
			AddRow(2, 1, "/uploads/b.png", ""))
	mock.ExpectQuery("FROM unit_facilities uf JOIN facilities f").WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"unit_id", "id", "name"}).
			AddRow(1, 4, "Pool").
			AddRow(1, 5, "Gym"))

	units, err := NewUnitRepo(db).List(context.Background(), UnitFilter{UnitCode: "U-100", FacilityID: 4}, pagination.Window{})
	require.NoError(t, err)
	require.Len(t, units, 1)
	u := units[0]
	assert.Equal(t, "Studio", u.RoomTypeName)
	assert.Equal(t, 150000000.0, u.PriceOffer)
	assert.Equal(t, model.UnitAvailable, u.Status)
	assert.Len(t, u.Images, 2)
	assert.Equal(t, []model.FacilityRef{{ID: 4, Name: "Pool"}, {ID: 5, Name: "Gym"}}, u.Facilities)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnitRepo_ListNewestFirst(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectQuery("FROM units u JOIN room_types rt ON rt.id = u.room_type_id ORDER BY u.created_at DESC, u.id DESC LIMIT \\? OFFSET \\?").
		WithArgs(10, 0).
		WillReturnRows(sqlmock.NewRows(nil))

	out, err := NewUnitRepo(db).List(context.Background(), UnitFilter{}, pagination.Window{Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFloorRepo_ListNewestFirst(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectQuery("FROM floors WHERE tower_id=\\? ORDER BY created_at DESC, id DESC").
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows(nil))

	out, err := NewFloorRepo(db).List(context.Background(), FloorFilter{TowerID: 3}, pagination.Window{})
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnitRepo_UpdateMissing(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectExec("UPDATE units SET unit_code=\\?").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := NewUnitRepo(db).Update(context.Background(), &model.Unit{ID: 42, UnitCode: "X", Status: model.UnitAvailable})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnitRepo_AddFacilitiesBulk(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectExec("INSERT INTO unit_facilities \\(unit_id, facility_id\\) VALUES \\(\\?,\\?\\),\\(\\?,\\?\\)").
		WithArgs(uint64(1), uint64(2), uint64(1), uint64(3)).
		WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, NewUnitRepo(db).AddFacilities(context.Background(), 1, []uint64{2, 3}))
	require.NoError(t, NewUnitRepo(db).AddFacilities(context.Background(), 1, nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFacilityRepo_FindByIDs(t *testing.T) {
	db, mock := setupMockDB(t)
	now := time.Now()
	mock.ExpectQuery("FROM facilities WHERE id IN \\(\\?,\\?,\\?\\)").
		WithArgs(uint64(1), uint64(2), uint64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "created_at", "updated_at"}).
			AddRow(1, "Pool", now, now).
			AddRow(2, "Gym", now, now))

	found, err := NewFacilityRepo(db).FindByIDs(context.Background(), []uint64{1, 2, 99})
	require.NoError(t, err)
	assert.Len(t, found, 2)
}

func TestReservationRepo_UpdateMissing(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectExec("UPDATE reservations SET status=\\?, payment_proof_url=\\?").
		WithArgs(model.ReservationPaid, "/uploads/p.png", sqlmock.AnyArg(), "nope").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := NewReservationRepo(db).Update(context.Background(), &model.Reservation{
		UUID: "nope", Status: model.ReservationPaid, PaymentProofURL: "/uploads/p.png",
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReservationRepo_ListNewestFirst(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectQuery("WHERE r.salesman_id = \\? ORDER BY r.created_at DESC, r.uuid LIMIT \\? OFFSET \\?").
		WithArgs(uint64(2), 5, 0).
		WillReturnRows(sqlmock.NewRows(nil))

	out, err := NewReservationRepo(db).List(context.Background(), ReservationFilter{SalesmanID: 2}, pagination.Window{Limit: 5})
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenRepo_ValidateRevoked(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectQuery("SELECT user_id, expires_at, revoked_at FROM refresh_tokens").WithArgs("h").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at", "revoked_at"}).
			AddRow(1, time.Now().Add(time.Hour), time.Now()))

	_, err := NewTokenRepo(db).ValidateRefresh(context.Background(), "h")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTokenRepo_PurgeExpired(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectExec("DELETE FROM refresh_tokens WHERE expires_at < \\?").WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := NewTokenRepo(db).PurgeExpired(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}

func TestLimitClause(t *testing.T) {
	q, args := limitClause(pagination.Window{})
	assert.Empty(t, q)
	assert.Nil(t, args)

	q, args = limitClause(pagination.Window{Offset: 20, Limit: 10})
	assert.Equal(t, " LIMIT ? OFFSET ?", q)
	assert.Equal(t, []any{10, 20}, args)

	assert.Equal(t, "?,?,?", inPlaceholders(3))
}
