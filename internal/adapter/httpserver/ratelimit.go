package httpserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

const (
	rateLimiterExpiry = 5 * time.Minute
	msgRateLimited    = "You're posting too fast. Take a breath and try again in a moment."
)

// newRateLimiter limits requests per client IP. onDeny answers rejected
// requests; nil answers with a JSON 429.
func newRateLimiter(ratePerSecond float64, burst int, onDeny func(c echo.Context) error) echo.MiddlewareFunc {
	store := middleware.NewRateLimiterMemoryStoreWithConfig(
		middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(ratePerSecond),
			Burst:     burst,
			ExpiresIn: rateLimiterExpiry,
		},
	)
	if onDeny == nil {
		onDeny = denyJSON
	}
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		Store: store,
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return onDeny(c)
		},
	})
}

func denyJSON(c echo.Context) error {
	return c.JSON(http.StatusTooManyRequests, map[string]string{
		"error": "rate limit exceeded",
	})
}

// denySubmit answers API clients with JSON and browsers with a warning
// flash on the board.
func (s *Server) denySubmit(c echo.Context) error {
	if strings.HasPrefix(c.Request().URL.Path, "/api/") {
		return denyJSON(c)
	}
	return s.redirectWithFlash(c, flashWarning, msgRateLimited)
}
