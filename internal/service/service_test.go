package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/unit-reservation/internal/apperr"
	"github.com/iliyamo/unit-reservation/internal/auth"
	"github.com/iliyamo/unit-reservation/internal/model"
	"github.com/iliyamo/unit-reservation/internal/queue"
	"github.com/iliyamo/unit-reservation/internal/repository/memory"
	"github.com/iliyamo/unit-reservation/internal/storage"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)

func png(name string) storage.Upload {
	return storage.Upload{
		Filename: name,
		Size:     int64(len(pngBytes)),
		Open:     func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(pngBytes)), nil },
	}
}

type recorder struct {
	mu     sync.Mutex
	events []queue.ReservationEvent
	err    error
}

func (r *recorder) Publish(_ context.Context, ev queue.ReservationEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return r.err
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Type
	}
	return out
}

// flakyBlobs fails the n-th Save (1-based) and counts deletes.
type flakyBlobs struct {
	storage.Store
	failOn  int
	saves   int
	deleted []string
}

func (f *flakyBlobs) Save(ctx context.Context, r io.Reader, name string) (storage.Object, error) {
	f.saves++
	if f.saves == f.failOn {
		return storage.Object{}, errors.New("disk full")
	}
	return f.Store.Save(ctx, r, name)
}

func (f *flakyBlobs) Delete(ctx context.Context, ref string) error {
	f.deleted = append(f.deleted, ref)
	return f.Store.Delete(ctx, ref)
}

type fixture struct {
	t      *testing.T
	store  *memory.Store
	disk   *storage.DiskStore
	events *recorder

	reservations *ReservationService
	units        *UnitService
	floors       *FloorService
	towers       *TowerService
	roomTypes    *RoomTypeService
	facilities   *FacilityService
	users        *UserService
	sessions     *AuthService

	admin, salesman, supervisor *auth.Caller
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := zap.NewNop()
	disk, err := storage.NewDiskStore(t.TempDir(), "/uploads", log)
	require.NoError(t, err)
	return newFixtureWith(t, disk)
}

func newFixtureWith(t *testing.T, blobs storage.Store) *fixture {
	t.Helper()
	log := zap.NewNop()
	store := memory.NewStore()
	policy := storage.DefaultImagePolicy()
	f := &fixture{
		t:            t,
		store:        store,
		events:       &recorder{},
		units:        NewUnitService(store, blobs, policy, log),
		floors:       NewFloorService(store, blobs, policy, log),
		towers:       NewTowerService(store),
		roomTypes:    NewRoomTypeService(store),
		facilities:   NewFacilityService(store),
		users:        NewUserService(store, 4),
		sessions:     NewAuthService(store, TokenConfig{Secret: "test-secret", AccessTTLMin: 15, RefreshTTLDays: 7}),
	}
	if d, ok := blobs.(*storage.DiskStore); ok {
		f.disk = d
	}
	f.reservations = NewReservationService(store, blobs, policy, f.events, log)

	ctx := context.Background()
	root := model.User{Name: "root", Email: "admin@example.com", Role: model.RoleAdmin}
	require.NoError(t, store.Users().Create(ctx, &root))
	f.admin = &auth.Caller{ID: root.ID, Role: model.RoleAdmin}
	sales, err := f.users.Create(ctx, f.admin, UserInput{Name: "Sam", Email: "sam@example.com", Password: "secret1", Role: model.RoleSalesman})
	require.NoError(t, err)
	f.salesman = &auth.Caller{ID: sales.ID, Role: model.RoleSalesman}
	sup, err := f.users.Create(ctx, f.admin, UserInput{Name: "Sue", Email: "sue@example.com", Password: "secret1", Role: model.RoleSupervisor})
	require.NoError(t, err)
	f.supervisor = &auth.Caller{ID: sup.ID, Role: model.RoleSupervisor}
	return f
}

// unit creates a tower, a floor, a room type and one available unit.
func (f *fixture) unit(code string) model.UnitDetail {
	f.t.Helper()
	ctx := context.Background()
	tw, err := f.towers.Create(ctx, f.admin, NameInput{Name: "Tower " + code})
	require.NoError(f.t, err)
	fl, err := f.floors.Create(ctx, f.admin, FloorInput{TowerID: tw.ID, Label: "L1", Number: 1})
	require.NoError(f.t, err)
	rt, err := f.roomTypes.Create(ctx, f.admin, NameInput{Name: "Studio " + code})
	require.NoError(f.t, err)
	u, err := f.units.Create(ctx, f.admin, UnitInput{FloorID: fl.ID, RoomTypeID: rt.ID, UnitCode: code, PriceOffer: 100, SemiGrossArea: 30})
	require.NoError(f.t, err)
	return u
}

// blobExists reports whether ref is on disk.
func (f *fixture) blobExists(ref string) bool {
	f.t.Helper()
	require.NotNil(f.t, f.disk)
	_, err := os.Stat(filepath.Join(f.disk.Dir, strings.TrimPrefix(ref, "/uploads/")))
	return err == nil
}

func (f *fixture) blobCount() int {
	f.t.Helper()
	entries, err := os.ReadDir(f.disk.Dir)
	require.NoError(f.t, err)
	return len(entries)
}

func requireKind(t *testing.T, err error, k apperr.Kind) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, k, apperr.KindOf(err), "error: %v", err)
}

func textOpener(s string) func() (io.ReadCloser, error) {
	return func() (io.ReadCloser, error) { return io.NopCloser(strings.NewReader(s)), nil }
}
