// Package memory is an in-process implementation of repository.Store.  It
// backs STORE_DRIVER=memory and the service tests.
//
// Transactions take the store lock for their whole duration and work on a
// copy of the data that replaces the live copy on commit, so transactions
// are serializable.  Inside RunInTx only the gateway passed to fn may be
// used; calling the Store itself from fn deadlocks.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/unit-reservation/internal/model"
	"github.com/iliyamo/unit-reservation/internal/repository"
)

type data struct {
	seq map[string]uint64

	users          map[uint64]model.User
	tokens         map[string]model.RefreshToken
	towers         map[uint64]model.Tower
	floors         map[uint64]model.Floor
	roomTypes      map[uint64]model.RoomType
	facilities     map[uint64]model.Facility
	units          map[uint64]model.Unit
	images         map[uint64]model.UnitImage
	unitFacilities map[model.UnitFacility]struct{}
	customers      map[uint64]model.Customer
	reservations   map[string]model.Reservation
	// resOrder breaks created_at ties in insertion order
	resOrder map[string]uint64
}

func newData() *data {
	return &data{
		seq:            map[string]uint64{},
		users:          map[uint64]model.User{},
		tokens:         map[string]model.RefreshToken{},
		towers:         map[uint64]model.Tower{},
		floors:         map[uint64]model.Floor{},
		roomTypes:      map[uint64]model.RoomType{},
		facilities:     map[uint64]model.Facility{},
		units:          map[uint64]model.Unit{},
		images:         map[uint64]model.UnitImage{},
		unitFacilities: map[model.UnitFacility]struct{}{},
		customers:      map[uint64]model.Customer{},
		reservations:   map[string]model.Reservation{},
		resOrder:       map[string]uint64{},
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (d *data) clone() *data {
	return &data{
		seq:            cloneMap(d.seq),
		users:          cloneMap(d.users),
		tokens:         cloneMap(d.tokens),
		towers:         cloneMap(d.towers),
		floors:         cloneMap(d.floors),
		roomTypes:      cloneMap(d.roomTypes),
		facilities:     cloneMap(d.facilities),
		units:          cloneMap(d.units),
		images:         cloneMap(d.images),
		unitFacilities: cloneMap(d.unitFacilities),
		customers:      cloneMap(d.customers),
		reservations:   cloneMap(d.reservations),
		resOrder:       cloneMap(d.resOrder),
	}
}

func (d *data) next(table string) uint64 {
	d.seq[table]++
	return d.seq[table]
}

// Store is safe for concurrent use.
type Store struct {
	mu sync.Mutex
	d  *data
}

var _ repository.Store = (*Store)(nil)

func NewStore() *Store { return &Store{d: newData()} }

func (s *Store) live() *gw { return &gw{store: s} }

func (s *Store) Users() repository.UserStore               { return s.live().Users() }
func (s *Store) Tokens() repository.TokenStore             { return s.live().Tokens() }
func (s *Store) Towers() repository.TowerStore             { return s.live().Towers() }
func (s *Store) Floors() repository.FloorStore             { return s.live().Floors() }
func (s *Store) RoomTypes() repository.RoomTypeStore       { return s.live().RoomTypes() }
func (s *Store) Facilities() repository.FacilityStore      { return s.live().Facilities() }
func (s *Store) Units() repository.UnitStore               { return s.live().Units() }
func (s *Store) Customers() repository.CustomerStore       { return s.live().Customers() }
func (s *Store) Reservations() repository.ReservationStore { return s.live().Reservations() }

// RunInTx commits fn's writes only when fn returns nil.
func (s *Store) RunInTx(ctx context.Context, fn func(tx repository.Gateway) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.d.clone()
	if err := fn(&gw{tx: work}); err != nil {
		return err
	}
	s.d = work
	return nil
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// gw is either bound to the live store (locking per call) or to the working
// copy of a transaction (already locked).
type gw struct {
	store *Store
	tx    *data
}

func (g *gw) with(fn func(d *data) error) error {
	if g.tx != nil {
		return fn(g.tx)
	}
	g.store.mu.Lock()
	defer g.store.mu.Unlock()
	return fn(g.store.d)
}

func (g *gw) Users() repository.UserStore               { return users{g} }
func (g *gw) Tokens() repository.TokenStore             { return tokens{g} }
func (g *gw) Towers() repository.TowerStore             { return towers{g} }
func (g *gw) Floors() repository.FloorStore             { return floors{g} }
func (g *gw) RoomTypes() repository.RoomTypeStore       { return roomTypes{g} }
func (g *gw) Facilities() repository.FacilityStore      { return facilities{g} }
func (g *gw) Units() repository.UnitStore               { return units{g} }
func (g *gw) Customers() repository.CustomerStore       { return customers{g} }
func (g *gw) Reservations() repository.ReservationStore { return reservations{g} }

func now() time.Time { return time.Now().UTC() }

// sortedValues returns the map values ordered by id.
func sortedValues[V any](m map[uint64]V, keep func(V) bool) []V {
	ids := make([]uint64, 0, len(m))
	for id, v := range m {
		if keep == nil || keep(v) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]V, len(ids))
	for i, id := range ids {
		out[i] = m[id]
	}
	return out
}

// newestFirst is sortedValues in reverse.  Ids grow with creation time, so
// this is created_at descending.
func newestFirst[V any](m map[uint64]V, keep func(V) bool) []V {
	out := sortedValues(m, keep)
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}
