package repository

import (
	"context"
	"strings"
	"time"

	"github.com/iliyamo/unit-reservation/internal/model"
	"github.com/iliyamo/unit-reservation/internal/pagination"
)

// UserRepo reads and writes the users table.  Emails are stored lower-cased
// and trimmed, so lookups are case-insensitive.
type UserRepo struct{ db DBTX }

func NewUserRepo(db DBTX) *UserRepo { return &UserRepo{db: db} }

const userColumns = "id, name, email, password_hash, role, created_at, updated_at"

func normalizeEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

func scanUser(row interface{ Scan(...any) error }) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	return u, translate(err)
}

// Create inserts u and fills its ID and timestamps.  A taken email yields
// ErrDuplicate.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	now := time.Now().UTC()
	u.Email = normalizeEmail(u.Email)
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO users (name, email, password_hash, role, created_at, updated_at) VALUES (?,?,?,?,?,?)",
		u.Name, u.Email, u.PasswordHash, u.Role, now, now)
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID, u.CreatedAt, u.UpdatedAt = uint64(id), now, now
	return nil
}

// Get fetches a user by id.
func (r *UserRepo) Get(ctx context.Context, id uint64) (model.User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", normalizeEmail(email)))
}

func userWhere(f UserFilter) (string, []any) {
	if f.Role != "" {
		return " WHERE role=?", []any{f.Role}
	}
	return "", nil
}

// List returns users ordered by id.
func (r *UserRepo) List(ctx context.Context, f UserFilter, w pagination.Window) ([]model.User, error) {
	where, args := userWhere(f)
	lim, largs := limitClause(w)
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users"+where+" ORDER BY created_at DESC, id DESC"+lim, append(args, largs...)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *UserRepo) Count(ctx context.Context, f UserFilter) (int, error) {
	where, args := userWhere(f)
	var n int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users"+where, args...).Scan(&n)
	return n, err
}

// Update writes name, email, role and password hash.
func (r *UserRepo) Update(ctx context.Context, u *model.User) error {
	u.Email = normalizeEmail(u.Email)
	u.UpdatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		"UPDATE users SET name=?, email=?, password_hash=?, role=?, updated_at=? WHERE id=?",
		u.Name, u.Email, u.PasswordHash, u.Role, u.UpdatedAt, u.ID)
	return translate(err)
}

func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	return affectedOne(r.db.ExecContext(ctx, "DELETE FROM users WHERE id=?", id))
}
