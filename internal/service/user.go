package service

import (
	"context"
	"errors"
	"strings"

	"github.com/iliyamo/unit-reservation/internal/apperr"
	"github.com/iliyamo/unit-reservation/internal/auth"
	"github.com/iliyamo/unit-reservation/internal/model"
	"github.com/iliyamo/unit-reservation/internal/pagination"
	"github.com/iliyamo/unit-reservation/internal/repository"
	"github.com/iliyamo/unit-reservation/internal/utils"
)

type UserInput struct {
	Name     string     `json:"name" validate:"required"`
	Email    string     `json:"email" validate:"required,email"`
	Password string     `json:"password" validate:"required,min=6"`
	Role     model.Role `json:"role" validate:"required,oneof=admin salesman supervisor"`
}

// UserPatch is a partial user update.  A new password is re-hashed.
type UserPatch struct {
	Name     *string     `json:"name"`
	Email    *string     `json:"email" validate:"omitempty,email"`
	Password *string     `json:"password" validate:"omitempty,min=6"`
	Role     *model.Role `json:"role" validate:"omitempty,oneof=admin salesman supervisor"`
}

type UserQuery struct {
	pagination.Params
	Role model.Role `query:"role"`
}

type UserService struct {
	store      repository.Store
	bcryptCost int
}

func NewUserService(store repository.Store, bcryptCost int) *UserService {
	return &UserService{store: store, bcryptCost: bcryptCost}
}

func (s *UserService) List(ctx context.Context, caller *auth.Caller, q UserQuery) (pagination.Result[model.User], error) {
	if err := auth.Authorize(caller); err != nil {
		return pagination.Result[model.User]{}, err
	}
	res, err := pagination.Paginate[model.User](ctx, s.store.Users(), repository.UserFilter{Role: q.Role}, q.Params)
	if err != nil {
		return res, internal(err)
	}
	return res, nil
}

func (s *UserService) Get(ctx context.Context, caller *auth.Caller, id uint64) (model.User, error) {
	if err := auth.Authorize(caller); err != nil {
		return model.User{}, err
	}
	u, err := s.store.Users().Get(ctx, id)
	if err != nil {
		return model.User{}, lookup(err, "user not found")
	}
	return u, nil
}

func (s *UserService) Create(ctx context.Context, caller *auth.Caller, in UserInput) (model.User, error) {
	if err := auth.Authorize(caller, model.RoleAdmin); err != nil {
		return model.User{}, err
	}
	u := model.User{
		Name:  strings.TrimSpace(in.Name),
		Email: strings.ToLower(strings.TrimSpace(in.Email)),
		Role:  in.Role,
	}
	if err := checkUser(u); err != nil {
		return model.User{}, err
	}
	hash, err := s.hash(in.Password)
	if err != nil {
		return model.User{}, err
	}
	u.PasswordHash = hash
	if err := s.store.Users().Create(ctx, &u); err != nil {
		return model.User{}, userWriteErr(err)
	}
	return u, nil
}

func (s *UserService) Update(ctx context.Context, caller *auth.Caller, id uint64, p UserPatch) (model.User, error) {
	if err := auth.Authorize(caller, model.RoleAdmin); err != nil {
		return model.User{}, err
	}
	u, err := s.store.Users().Get(ctx, id)
	if err != nil {
		return model.User{}, lookup(err, "user not found")
	}
	if p.Name != nil {
		u.Name = strings.TrimSpace(*p.Name)
	}
	if p.Email != nil {
		u.Email = strings.ToLower(strings.TrimSpace(*p.Email))
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if err := checkUser(u); err != nil {
		return model.User{}, err
	}
	if p.Password != nil {
		if u.PasswordHash, err = s.hash(*p.Password); err != nil {
			return model.User{}, err
		}
	}
	if err := s.store.Users().Update(ctx, &u); err != nil {
		return model.User{}, userWriteErr(err)
	}
	return u, nil
}

// Delete removes a user.  Admins cannot delete themselves, and users who
// created reservations are kept.
func (s *UserService) Delete(ctx context.Context, caller *auth.Caller, id uint64) error {
	if err := auth.Authorize(caller, model.RoleAdmin); err != nil {
		return err
	}
	if caller.ID == id {
		return apperr.New(apperr.Forbidden, "you are not allowed to delete yourself")
	}
	return s.store.RunInTx(ctx, func(tx repository.Gateway) error {
		if _, err := tx.Users().Get(ctx, id); err != nil {
			return lookup(err, "user not found")
		}
		n, err := tx.Reservations().Count(ctx, repository.ReservationFilter{SalesmanID: id})
		if err != nil {
			return internal(err)
		}
		if n > 0 {
			return apperr.BadRequestf("user has reservations")
		}
		if err := tx.Tokens().RevokeAllForUser(ctx, id); err != nil {
			return internal(err)
		}
		return lookup(tx.Users().Delete(ctx, id), "user not found")
	})
}

func (s *UserService) hash(password string) (string, error) {
	h, err := utils.HashPassword(password, s.bcryptCost)
	if errors.Is(err, utils.ErrPasswordTooShort) {
		return "", apperr.Wrap(apperr.BadRequest, err.Error(), err)
	}
	if err != nil {
		return "", apperr.Internalf(err, "hash password")
	}
	return h, nil
}

func checkUser(u model.User) error {
	switch {
	case u.Name == "":
		return apperr.BadRequestf("name is required")
	case u.Email == "" || !strings.Contains(u.Email, "@"):
		return apperr.BadRequestf("a valid email is required")
	case !u.Role.Valid():
		return apperr.BadRequestf("invalid role")
	}
	return nil
}

func userWriteErr(err error) error {
	if errors.Is(err, repository.ErrDuplicate) {
		return apperr.Wrap(apperr.Conflict, "email already exists", err)
	}
	return lookup(err, "user not found")
}
