package handler

import (
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/unit-reservation/internal/apperr"
	"github.com/iliyamo/unit-reservation/internal/storage"
)

// form reads typed fields from a multipart body.  The first conversion
// error is kept in err; absent fields yield nil.
type form struct {
	mf  *multipart.Form
	err error
}

func parseForm(c echo.Context) (*form, error) {
	mf, err := c.MultipartForm()
	if err != nil {
		return nil, apperr.Wrap(apperr.BadRequest, "expected multipart/form-data body", err)
	}
	return &form{mf: mf}, nil
}

func (f *form) value(name string) (string, bool) {
	vals := f.mf.Value[name]
	if len(vals) == 0 {
		return "", false
	}
	return strings.TrimSpace(vals[0]), true
}

func (f *form) fail(name, want string) {
	if f.err == nil {
		f.err = apperr.BadRequestf("%s must be %s", name, want)
	}
}

func (f *form) optStr(name string) *string {
	v, ok := f.value(name)
	if !ok {
		return nil
	}
	return &v
}

func (f *form) optUint(name string) *uint64 {
	v, ok := f.value(name)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		f.fail(name, "a positive integer")
		return nil
	}
	return &n
}

func (f *form) optInt(name string) *int {
	v, ok := f.value(name)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		f.fail(name, "an integer")
		return nil
	}
	return &n
}

func (f *form) optFloat(name string) *float64 {
	v, ok := f.value(name)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		f.fail(name, "a number")
		return nil
	}
	return &n
}

// uints collects every value of the given field names ("facilities[]" and
// "facilities" are both common).  Comma separated values are split.
func (f *form) uints(names ...string) []uint64 {
	var out []uint64
	for _, name := range names {
		for _, raw := range f.mf.Value[name] {
			for _, part := range strings.Split(raw, ",") {
				if part = strings.TrimSpace(part); part == "" {
					continue
				}
				n, err := strconv.ParseUint(part, 10, 64)
				if err != nil {
					f.fail(name, "a list of ids")
					return nil
				}
				out = append(out, n)
			}
		}
	}
	return out
}

func (f *form) files(names ...string) []storage.Upload {
	var out []storage.Upload
	for _, name := range names {
		for _, fh := range f.mf.File[name] {
			out = append(out, upload(fh))
		}
	}
	return out
}

func (f *form) file(name string) *storage.Upload {
	fhs := f.mf.File[name]
	if len(fhs) == 0 {
		return nil
	}
	u := upload(fhs[0])
	return &u
}

func uint64Or0(p *uint64) uint64 {
	if p == nil {
		return 0
	}
	return *p
}
