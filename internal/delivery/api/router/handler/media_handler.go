package handler

import (
	"context"
	"io"
	"net/http"
	"path"
	"strings"

	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/errors"

	"github.com/labstack/echo/v4"
)

// MediaReader opens stored assets by key.
type MediaReader interface {
	Open(ctx context.Context, id string) (io.ReadCloser, string, error)
}

// MediaHandler streams stored media for buckets without a public endpoint.
type MediaHandler struct {
	reader MediaReader
}

// NewMediaHandler is the constructor for MediaHandler, injected by Fx.
func NewMediaHandler(reader MediaReader) *MediaHandler {
	return &MediaHandler{reader: reader}
}

// Serve streams the object named by the wildcard path.
func (h *MediaHandler) Serve(c echo.Context) error {
	key := strings.TrimPrefix(path.Clean("/"+c.Param("*")), "/")
	if key == "" || key == "." {
		return errors.WithStack(domainerrors.ErrNotFound)
	}

	body, contentType, err := h.reader.Open(c.Request().Context(), key)
	if err != nil {
		return errors.WithStack(err)
	}
	defer body.Close()

	if contentType == "" {
		contentType = echo.MIMEOctetStream
	}
	c.Response().Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	c.Response().Header().Set("X-Content-Type-Options", "nosniff")

	return c.Stream(http.StatusOK, contentType, body)
}
