package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DiskStore writes blobs into Dir and hands out references under URLPrefix,
// which the router serves statically.
type DiskStore struct {
	Dir       string
	URLPrefix string
	log       *zap.Logger
	now       func() time.Time
}

// NewDiskStore creates dir if needed.
func NewDiskStore(dir, urlPrefix string, log *zap.Logger) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskStore{
		Dir:       dir,
		URLPrefix: "/" + strings.Trim(urlPrefix, "/"),
		log:       log,
		now:       time.Now,
	}, nil
}

// Save writes r under "<yyyymmddhhmmss>-<uuid><ext>".  The extension comes
// from filename, or from the sniffed type when filename has none.
func (s *DiskStore) Save(ctx context.Context, r io.Reader, filename string) (Object, error) {
	if err := ctx.Err(); err != nil {
		return Object{}, err
	}
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return Object{}, fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]
	mt, _ := sniff(bytes.NewReader(head))

	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = mt.Extension()
	}
	name := s.now().UTC().Format("20060102150405") + "-" + uuid.NewString() + ext

	full := filepath.Join(s.Dir, name)
	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return Object{}, fmt.Errorf("create blob: %w", err)
	}
	size, err := io.Copy(f, io.MultiReader(bytes.NewReader(head), r))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(full)
		return Object{}, fmt.Errorf("write blob: %w", err)
	}

	return Object{Ref: path.Join(s.URLPrefix, name), MimeType: mt.String(), Size: size}, nil
}

// Delete removes the blob behind ref.  A missing file is logged and
// ignored; a reference outside URLPrefix is an error.
func (s *DiskStore) Delete(ctx context.Context, ref string) error {
	if ref == "" {
		return nil
	}
	name, err := s.fileName(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.Dir, name)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.log.Warn("blob already absent", zap.String("ref", ref))
			return nil
		}
		return fmt.Errorf("delete blob: %w", err)
	}
	return nil
}

func (s *DiskStore) fileName(ref string) (string, error) {
	prefix := s.URLPrefix + "/"
	if !strings.HasPrefix(ref, prefix) {
		return "", fmt.Errorf("blob ref %q outside %s", ref, s.URLPrefix)
	}
	name := strings.TrimPrefix(ref, prefix)
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("invalid blob ref %q", ref)
	}
	return name, nil
}
