package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pscheid92/allin/internal/adapter/chart"
	"github.com/pscheid92/allin/internal/adapter/metrics"
	"github.com/pscheid92/allin/internal/domain"
	apperrors "github.com/pscheid92/allin/internal/platform/errors"
)

const svgContentType = "image/svg+xml"

func (s *Server) registerChartRoutes() {
	s.echo.GET("/charts/tones/bar.svg", s.handleChart("bar", chart.Bar))
	s.echo.GET("/charts/tones/pie.svg", s.handleChart("pie", chart.Pie))
}

func (s *Server) handleChart(kind string, render func(domain.ToneDistribution) ([]byte, error)) echo.HandlerFunc {
	return func(c echo.Context) error {
		board, err := s.app.Board(c.Request().Context(), s.config.FeedLimit)
		if err != nil {
			return apperrors.InternalError("failed to load stories", err)
		}

		start := time.Now()
		svg, err := render(board.Tones)
		if errors.Is(err, chart.ErrNoData) {
			s.observeChart(kind, metrics.ChartNoData, 0)
			return apperrors.NotFoundError("no stories yet")
		}
		if err != nil {
			s.observeChart(kind, metrics.ChartFailed, 0)
			return apperrors.InternalError("failed to render chart", err)
		}
		s.observeChart(kind, metrics.ChartRendered, time.Since(start))

		c.Response().Header().Set("Cache-Control", "no-store")
		if err := c.Blob(http.StatusOK, svgContentType, svg); err != nil {
			return fmt.Errorf("failed to send chart: %w", err)
		}
		return nil
	}
}

func (s *Server) observeChart(kind, outcome string, took time.Duration) {
	if s.httpMetrics != nil {
		s.httpMetrics.ObserveChart(kind, outcome, took)
	}
}
