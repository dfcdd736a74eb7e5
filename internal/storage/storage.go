// Package storage keeps uploaded binary content (floor plans, unit images,
// payment proofs) outside the database.  Blobs are addressed by a stable
// reference such as "/uploads/20240102150405-<uuid>.png".
package storage

import (
	"context"
	"io"
)

// Object describes a stored blob.
type Object struct {
	Ref      string `json:"ref"`
	MimeType string `json:"mimeType"`
	Size     int64  `json:"size"`
}

// Store saves and deletes blobs.  Delete of an absent reference succeeds.
type Store interface {
	Save(ctx context.Context, r io.Reader, filename string) (Object, error)
	Delete(ctx context.Context, ref string) error
}

// Upload is a file received from a client, not yet stored.
type Upload struct {
	Filename string
	Size     int64
	Open     func() (io.ReadCloser, error)
}

// Save opens u and stores its content.
func Save(ctx context.Context, s Store, u Upload) (Object, error) {
	rc, err := u.Open()
	if err != nil {
		return Object{}, err
	}
	defer rc.Close()
	return s.Save(ctx, rc, u.Filename)
}
