// Package auth holds the caller identity resolved from an access token and
// the role check every service operation runs before touching the store.
package auth

import (
	"context"

	"github.com/iliyamo/unit-reservation/internal/apperr"
	"github.com/iliyamo/unit-reservation/internal/model"
)

// Caller is the authenticated principal of a request.
type Caller struct {
	ID   uint64
	Role model.Role
}

// Authorize fails with Unauthorized when caller is nil and with Forbidden
// when the caller's role is outside roles.  An empty role set admits any
// authenticated caller.
func Authorize(caller *Caller, roles ...model.Role) error {
	if caller == nil {
		return apperr.New(apperr.Unauthorized, "unauthorized")
	}
	if len(roles) == 0 {
		return nil
	}
	for _, r := range roles {
		if caller.Role == r {
			return nil
		}
	}
	return apperr.New(apperr.Forbidden, "insufficient permissions")
}

type ctxKey struct{}

// WithCaller stores c in ctx.
func WithCaller(ctx context.Context, c *Caller) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

// FromContext returns the caller stored by WithCaller, or nil.
func FromContext(ctx context.Context) *Caller {
	c, _ := ctx.Value(ctxKey{}).(*Caller)
	return c
}
