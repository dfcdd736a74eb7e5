package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/unit-reservation/internal/apperr"
	"github.com/iliyamo/unit-reservation/internal/model"
)

func TestAuthorize(t *testing.T) {
	admin := &Caller{ID: 1, Role: model.RoleAdmin}
	sales := &Caller{ID: 2, Role: model.RoleSalesman}
	super := &Caller{ID: 3, Role: model.RoleSupervisor}

	cases := []struct {
		name   string
		caller *Caller
		roles  []model.Role
		kind   *apperr.Kind
	}{
		{"nil caller", nil, []model.Role{model.RoleAdmin}, kind(apperr.Unauthorized)},
		{"nil caller open op", nil, nil, kind(apperr.Unauthorized)},
		{"salesman creates facility", sales, []model.Role{model.RoleAdmin}, kind(apperr.Forbidden)},
		{"admin creates facility", admin, []model.Role{model.RoleAdmin}, nil},
		{"supervisor reserves", super, []model.Role{model.RoleSalesman, model.RoleSupervisor}, nil},
		{"salesman approves", sales, []model.Role{model.RoleSupervisor}, kind(apperr.Forbidden)},
		{"any authenticated", sales, nil, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Authorize(tc.caller, tc.roles...)
			if tc.kind == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, apperr.Is(err, *tc.kind), "got %v", err)
		})
	}
}

func TestCallerContext(t *testing.T) {
	assert.Nil(t, FromContext(context.Background()))
	c := &Caller{ID: 9, Role: model.RoleAdmin}
	assert.Same(t, c, FromContext(WithCaller(context.Background(), c)))
}

func kind(k apperr.Kind) *apperr.Kind { return &k }
