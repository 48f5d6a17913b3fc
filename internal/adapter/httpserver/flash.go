package httpserver

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
)

const (
	flashSuccess = "success"
	flashWarning = "warning"
)

// redirectWithFlash stores a one-shot message in the session and redirects
// to the board (post/redirect/get).
func (s *Server) redirectWithFlash(c echo.Context, kind, message string) error {
	session, err := s.sessionStore.Get(c.Request(), sessionName)
	if err != nil {
		// Undecodable cookie (e.g. rotated secret); Get still returns a fresh session.
		slog.DebugContext(c.Request().Context(), "Discarding invalid session", "error", err)
	}
	session.AddFlash(message, kind)
	if err := session.Save(c.Request(), c.Response()); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	if err := c.Redirect(http.StatusSeeOther, "/"); err != nil {
		return fmt.Errorf("failed to redirect: %w", err)
	}
	return nil
}

// popFlashes returns and clears pending messages of each kind.
func (s *Server) popFlashes(c echo.Context) (success, warning []string) {
	session, err := s.sessionStore.Get(c.Request(), sessionName)
	if err != nil {
		slog.DebugContext(c.Request().Context(), "Discarding invalid session", "error", err)
	}

	success = flashStrings(session.Flashes(flashSuccess))
	warning = flashStrings(session.Flashes(flashWarning))
	if len(success) == 0 && len(warning) == 0 {
		return nil, nil
	}

	if err := session.Save(c.Request(), c.Response()); err != nil {
		slog.WarnContext(c.Request().Context(), "Failed to clear flashes", "error", err)
	}
	return success, warning
}

func flashStrings(values []any) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
