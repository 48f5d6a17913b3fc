package httpserver

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pscheid92/allin/internal/adapter/csvstore"
	apperrors "github.com/pscheid92/allin/internal/platform/errors"
)

func (s *Server) registerExportRoutes() {
	s.echo.GET("/export.csv", s.handleExport)
}

// handleExport streams every post, newest first, in the store's CSV layout.
func (s *Server) handleExport(c echo.Context) error {
	posts, err := s.app.Load(c.Request().Context())
	if err != nil {
		return apperrors.InternalError("failed to load stories", err)
	}

	var buf bytes.Buffer
	if err := csvstore.WritePosts(&buf, posts); err != nil {
		return apperrors.InternalError("failed to encode stories", err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="stories.csv"`)
	if err := c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes()); err != nil {
		return fmt.Errorf("failed to send export: %w", err)
	}
	return nil
}
