package service

import (
	"context"

	"github.com/iliyamo/unit-reservation/internal/apperr"
	"github.com/iliyamo/unit-reservation/internal/model"
	"github.com/iliyamo/unit-reservation/internal/repository"
	"github.com/iliyamo/unit-reservation/internal/storage"
)

// replaceFacilities swaps the unit's facility set for ids.  An empty list
// keeps the current set.  Every id must name an existing facility, so a
// duplicate id also fails.
func replaceFacilities(ctx context.Context, tx repository.Gateway, unitID uint64, ids []uint64) error {
	if len(ids) == 0 {
		return nil
	}
	found, err := tx.Facilities().FindByIDs(ctx, ids)
	if err != nil {
		return internal(err)
	}
	if len(found) != len(ids) {
		return apperr.BadRequestf("one or more facilities not found")
	}
	if err := tx.Units().ClearFacilities(ctx, unitID); err != nil {
		return internal(err)
	}
	if err := tx.Units().AddFacilities(ctx, unitID, ids); err != nil {
		return internal(err)
	}
	return nil
}

// replaceImages swaps the unit's images for uploads.  An empty list keeps
// the current images.  Old rows go in the same transaction; old blobs are
// retired and disappear only after commit.
func replaceImages(ctx context.Context, tx repository.Gateway, unitID uint64, uploads []storage.Upload, blobs *blobTx) error {
	if len(uploads) == 0 {
		return nil
	}
	current, err := tx.Units().Images(ctx, unitID)
	if err != nil {
		return internal(err)
	}
	for _, img := range current {
		blobs.retire(img.ImageURL)
	}
	if err := tx.Units().DeleteImages(ctx, unitID); err != nil {
		return internal(err)
	}

	for _, u := range uploads {
		ref, err := blobs.save(ctx, u)
		if err != nil {
			return err
		}
		img := model.UnitImage{UnitID: unitID, ImageURL: ref}
		if err := tx.Units().AddImage(ctx, &img); err != nil {
			return internal(err)
		}
	}
	return nil
}
