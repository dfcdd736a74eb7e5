package memory

import (
	"context"
	"strings"
	"time"

	"github.com/iliyamo/unit-reservation/internal/model"
	"github.com/iliyamo/unit-reservation/internal/pagination"
	"github.com/iliyamo/unit-reservation/internal/repository"
)

type users struct{ g *gw }

func normalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func (r users) Get(_ context.Context, id uint64) (out model.User, err error) {
	err = r.g.with(func(d *data) error {
		u, ok := d.users[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = u
		return nil
	})
	return out, err
}

func (r users) GetByEmail(_ context.Context, email string) (out model.User, err error) {
	email = normalizeEmail(email)
	err = r.g.with(func(d *data) error {
		for _, u := range d.users {
			if u.Email == email {
				out = u
				return nil
			}
		}
		return repository.ErrNotFound
	})
	return out, err
}

func userMatch(f repository.UserFilter) func(model.User) bool {
	return func(u model.User) bool { return f.Role == "" || u.Role == f.Role }
}

func (r users) List(_ context.Context, f repository.UserFilter, w pagination.Window) (out []model.User, err error) {
	err = r.g.with(func(d *data) error {
		out = pagination.Slice(newestFirst(d.users, userMatch(f)), w)
		return nil
	})
	return out, err
}

func (r users) Count(_ context.Context, f repository.UserFilter) (n int, err error) {
	err = r.g.with(func(d *data) error {
		n = len(sortedValues(d.users, userMatch(f)))
		return nil
	})
	return n, err
}

func emailTaken(d *data, email string, except uint64) bool {
	for id, u := range d.users {
		if id != except && u.Email == email {
			return true
		}
	}
	return false
}

func (r users) Create(_ context.Context, u *model.User) error {
	return r.g.with(func(d *data) error {
		u.Email = normalizeEmail(u.Email)
		if emailTaken(d, u.Email, 0) {
			return repository.ErrDuplicate
		}
		u.ID = d.next("users")
		u.CreatedAt, u.UpdatedAt = now(), now()
		d.users[u.ID] = *u
		return nil
	})
}

func (r users) Update(_ context.Context, u *model.User) error {
	return r.g.with(func(d *data) error {
		old, ok := d.users[u.ID]
		if !ok {
			return nil
		}
		u.Email = normalizeEmail(u.Email)
		if emailTaken(d, u.Email, u.ID) {
			return repository.ErrDuplicate
		}
		u.CreatedAt, u.UpdatedAt = old.CreatedAt, now()
		d.users[u.ID] = *u
		return nil
	})
}

func (r users) Delete(_ context.Context, id uint64) error {
	return r.g.with(func(d *data) error {
		if _, ok := d.users[id]; !ok {
			return repository.ErrNotFound
		}
		delete(d.users, id)
		for h, t := range d.tokens {
			if t.UserID == id {
				delete(d.tokens, h)
			}
		}
		return nil
	})
}

type tokens struct{ g *gw }

func (r tokens) StoreRefresh(_ context.Context, userID uint64, hash string, exp time.Time) error {
	return r.g.with(func(d *data) error {
		if _, ok := d.tokens[hash]; ok {
			return repository.ErrDuplicate
		}
		d.tokens[hash] = model.RefreshToken{
			ID: d.next("refresh_tokens"), UserID: userID, TokenHash: hash,
			ExpiresAt: exp.UTC(), CreatedAt: now(),
		}
		return nil
	})
}

func (r tokens) ValidateRefresh(_ context.Context, hash string) (userID uint64, err error) {
	err = r.g.with(func(d *data) error {
		t, ok := d.tokens[hash]
		if !ok || t.RevokedAt != nil || now().After(t.ExpiresAt) {
			return repository.ErrNotFound
		}
		userID = t.UserID
		return nil
	})
	return userID, err
}

func (r tokens) RevokeByHash(_ context.Context, hash string) error {
	return r.g.with(func(d *data) error {
		if t, ok := d.tokens[hash]; ok && t.RevokedAt == nil {
			at := now()
			t.RevokedAt = &at
			d.tokens[hash] = t
		}
		return nil
	})
}

func (r tokens) RevokeAllForUser(_ context.Context, userID uint64) error {
	return r.g.with(func(d *data) error {
		at := now()
		for h, t := range d.tokens {
			if t.UserID == userID && t.RevokedAt == nil {
				t.RevokedAt = &at
				d.tokens[h] = t
			}
		}
		return nil
	})
}

func (r tokens) PurgeExpired(_ context.Context, cutoff time.Time) (n int64, err error) {
	err = r.g.with(func(d *data) error {
		for h, t := range d.tokens {
			if t.ExpiresAt.Before(cutoff) || (t.RevokedAt != nil && t.RevokedAt.Before(cutoff)) {
				delete(d.tokens, h)
				n++
			}
		}
		return nil
	})
	return n, err
}
