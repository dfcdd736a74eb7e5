// Package service holds the business operations behind the HTTP API.  Every
// operation takes the authenticated caller, checks its role and then runs
// its reads and writes through a repository.Store, inside one transaction
// whenever more than one row changes.
package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/iliyamo/unit-reservation/internal/apperr"
	"github.com/iliyamo/unit-reservation/internal/queue"
	"github.com/iliyamo/unit-reservation/internal/repository"
	"github.com/iliyamo/unit-reservation/internal/storage"
)

// EventPublisher receives reservation events after a successful commit.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.ReservationEvent) error
}

// lookup converts a repository error into NotFound (with msg) or Internal.
func lookup(err error, msg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.New(apperr.NotFound, msg)
	}
	return internal(err)
}

// mustExist is lookup for references in a request body: a missing row
// is the client's fault, so it becomes BadRequest.
func mustExist(err error, msg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.New(apperr.BadRequest, msg)
	}
	return internal(err)
}

// internal passes nil and typed errors through and wraps anything else.
func internal(err error) error {
	if err == nil {
		return nil
	}
	var e *apperr.Error
	if errors.As(err, &e) {
		return err
	}
	return apperr.Internalf(err, "store")
}

// blobTx tracks the blobs touched by one transactional operation.  New
// blobs are removed again when the transaction fails; blobs replaced by the
// operation are removed only once it has committed.
type blobTx struct {
	store    storage.Store
	log      *zap.Logger
	stored   []string
	obsolete []string
}

func newBlobTx(store storage.Store, log *zap.Logger) *blobTx {
	return &blobTx{store: store, log: log}
}

// save stores u and remembers the new reference.
func (b *blobTx) save(ctx context.Context, u storage.Upload) (string, error) {
	obj, err := storage.Save(ctx, b.store, u)
	if err != nil {
		return "", apperr.Internalf(err, "store upload %s", u.Filename)
	}
	b.stored = append(b.stored, obj.Ref)
	return obj.Ref, nil
}

// retire marks ref for deletion after commit.  Empty refs are ignored.
func (b *blobTx) retire(ref string) {
	if ref != "" {
		b.obsolete = append(b.obsolete, ref)
	}
}

// settle deletes the blobs that are no longer referenced once the outcome
// err of the transaction is known.  Deletion failures are only logged.
func (b *blobTx) settle(ctx context.Context, err error) {
	refs := b.obsolete
	if err != nil {
		refs = b.stored
	}
	// the request may already be cancelled; cleanup still has to run
	ctx = context.WithoutCancel(ctx)
	for _, ref := range refs {
		if derr := b.store.Delete(ctx, ref); derr != nil {
			b.log.Warn("blob cleanup failed", zap.String("ref", ref), zap.Error(derr))
		}
	}
	b.stored, b.obsolete = nil, nil
}

// runWithBlobs runs fn in a transaction and settles blobs afterwards.
func runWithBlobs(ctx context.Context, store repository.Store, blobs *blobTx, fn func(tx repository.Gateway) error) error {
	err := store.RunInTx(ctx, fn)
	blobs.settle(ctx, err)
	return err
}
