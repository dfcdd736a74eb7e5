// Package handler translates HTTP requests into service calls and service
// results or errors into JSON responses.
package handler

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/unit-reservation/internal/apperr"
	"github.com/iliyamo/unit-reservation/internal/pagination"
	"github.com/iliyamo/unit-reservation/internal/storage"
)

// Validator adapts go-playground/validator to echo.Validator.  Field names
// in errors are the JSON names.
type Validator struct {
	v *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return &Validator{v: v}
}

// Validate returns a BadRequest listing each failing field and rule.
func (cv *Validator) Validate(i any) error {
	err := cv.v.Struct(i)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return apperr.Wrap(apperr.BadRequest, "invalid input", err)
	}
	parts := make([]string, 0, len(ve))
	for _, fe := range ve {
		// drop the root struct name: "customer.email", not "CreateReservationInput.customer.email"
		ns := fe.Namespace()
		if i := strings.IndexByte(ns, '.'); i >= 0 {
			ns = ns[i+1:]
		}
		parts = append(parts, fmt.Sprintf("%s: %s", ns, fe.Tag()))
	}
	return apperr.Wrap(apperr.BadRequest, "validation failed: "+strings.Join(parts, ", "), err)
}

// respondError writes err as {"error": message} with the status of its
// kind.  Internal causes are logged and never returned.
func respondError(c echo.Context, log *zap.Logger, err error) error {
	e := apperr.Normalize(err)
	if e.Kind == apperr.Internal {
		log.Error("request failed",
			zap.String("method", c.Request().Method),
			zap.String("path", c.Request().URL.Path),
			zap.Error(e.Err))
	}
	return c.JSON(statusOf(e.Kind), echo.Map{"error": e.Message})
}

func statusOf(k apperr.Kind) int {
	switch k {
	case apperr.Unauthorized:
		return http.StatusUnauthorized
	case apperr.Forbidden:
		return http.StatusForbidden
	case apperr.NotFound:
		return http.StatusNotFound
	case apperr.BadRequest:
		return http.StatusBadRequest
	case apperr.Conflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// bind decodes the request into dst and validates it.
func bind(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return apperr.Wrap(apperr.BadRequest, "invalid request body", err)
	}
	return c.Validate(dst)
}

// pathID parses the :id path parameter.
func pathID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.BadRequestf("invalid id")
	}
	return id, nil
}

// upload wraps a multipart file header.
func upload(fh *multipart.FileHeader) storage.Upload {
	return storage.Upload{
		Filename: fh.Filename,
		Size:     fh.Size,
		Open:     func() (io.ReadCloser, error) { return fh.Open() },
	}
}

// pageParams reads the optional page and limit query parameters.
func pageParams(c echo.Context) (pagination.Params, error) {
	var p pagination.Params
	for name, dst := range map[string]**int{"page": &p.Page, "limit": &p.Limit} {
		raw := c.QueryParam(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return p, apperr.BadRequestf("%s must be a number", name)
		}
		*dst = &n
	}
	return p, nil
}

func badQuery(err error) error {
	return apperr.Wrap(apperr.BadRequest, "invalid query parameters", err)
}

// queryUint reads an optional numeric filter; absent means zero.
func queryUint(c echo.Context, name string) (uint64, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, badQuery(err)
	}
	return n, nil
}
