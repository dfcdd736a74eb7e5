package storage

import (
	"errors"
	"fmt"
	"io"

	"github.com/gabriel-vasile/mimetype"

	"github.com/iliyamo/unit-reservation/internal/apperr"
)

// DefaultMaxBytes is the per-file limit applied to image uploads.
const DefaultMaxBytes int64 = 5 * 1024 * 1024

// ImagePolicy restricts uploads by size and sniffed content type.
type ImagePolicy struct {
	MaxBytes int64
	Allowed  []string
}

func DefaultImagePolicy() ImagePolicy {
	return ImagePolicy{
		MaxBytes: DefaultMaxBytes,
		Allowed:  []string{"image/jpeg", "image/png", "image/webp"},
	}
}

// Check rejects u with BadRequest when it is empty, too large or not one
// of the allowed types.  The type comes from the content, not the name.
func (p ImagePolicy) Check(u Upload) error {
	if u.Size <= 0 {
		return apperr.BadRequestf("%s: file is empty", u.Filename)
	}
	if p.MaxBytes > 0 && u.Size > p.MaxBytes {
		return apperr.BadRequestf("%s: max file size is %dMB", u.Filename, p.MaxBytes/(1024*1024))
	}
	rc, err := u.Open()
	if err != nil {
		return apperr.Internalf(err, "open upload")
	}
	defer rc.Close()

	mt, err := sniff(rc)
	if err != nil {
		return apperr.Internalf(err, "read upload")
	}
	if !mimetype.EqualsAny(mt.String(), p.Allowed...) {
		return apperr.BadRequestf("%s: unsupported file type %s", u.Filename, mt.String())
	}
	return nil
}

// CheckAll applies Check to every upload.
func (p ImagePolicy) CheckAll(uploads []Upload) error {
	for _, u := range uploads {
		if err := p.Check(u); err != nil {
			return err
		}
	}
	return nil
}

const sniffLen = 3072

// sniff detects the content type from the first bytes of r.
func sniff(r io.Reader) (*mimetype.MIME, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, fmt.Errorf("sniff: %w", err)
	}
	return mimetype.Detect(head[:n]), nil
}
