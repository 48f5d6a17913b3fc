package httpserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
	"github.com/pscheid92/allin/internal/adapter/metrics"
	"github.com/pscheid92/allin/internal/app"
	"github.com/pscheid92/allin/internal/domain"
	"github.com/pscheid92/allin/internal/platform/config"
	"github.com/stretchr/testify/require"
)

// --- Mock implementations ---

type mockBoardService struct {
	submitFn func(ctx context.Context, req app.SubmitRequest) (*domain.Post, error)
	loadFn   func(ctx context.Context) ([]domain.Post, error)
	boardFn  func(ctx context.Context, limit int) (*app.Board, error)
}

func (m *mockBoardService) Submit(ctx context.Context, req app.SubmitRequest) (*domain.Post, error) {
	if m.submitFn != nil {
		return m.submitFn(ctx, req)
	}
	return &domain.Post{Author: domain.AnonymousAuthor, Text: req.Text, Tone: domain.Tone(req.Tone)}, nil
}

func (m *mockBoardService) Load(ctx context.Context) ([]domain.Post, error) {
	if m.loadFn != nil {
		return m.loadFn(ctx)
	}
	return []domain.Post{}, nil
}

func (m *mockBoardService) Board(ctx context.Context, limit int) (*app.Board, error) {
	if m.boardFn != nil {
		return m.boardFn(ctx, limit)
	}
	return &app.Board{Latest: []domain.Post{}}, nil
}

// boardOf builds a board from posts that are already newest first.
func boardOf(posts ...domain.Post) func(context.Context, int) (*app.Board, error) {
	return func(_ context.Context, limit int) (*app.Board, error) {
		return &app.Board{
			Latest: app.Latest(posts, limit),
			Tones:  app.Aggregate(posts),
			Total:  len(posts),
		}, nil
	}
}

var testTime = time.Date(2026, 10, 19, 14, 3, 27, 0, time.Local)

func testPost(author, text string, tone domain.Tone, sentiment float64) domain.Post {
	return domain.Post{Author: author, Text: text, Timestamp: testTime, Sentiment: sentiment, Tone: tone}
}

// --- Test helpers ---

const testSessionSecret = "test-secret-key-32-bytes-long!!!"

func newTestServer(t *testing.T, app boardService, opts ...func(*Server)) *Server {
	t.Helper()

	tmpl, err := parseTemplates()
	require.NoError(t, err)

	store := sessions.NewCookieStore([]byte(testSessionSecret))
	store.Options = &sessions.Options{
		Path:   "/",
		MaxAge: 3600,
	}

	e := echo.New()

	srv := &Server{
		echo: e,
		config: &config.Config{
			AppEnv:              "test",
			StoreBackend:        config.BackendCSV,
			CSVPath:             "/data/stories.csv",
			FeedLimit:           10,
			SessionSecret:       testSessionSecret,
			SubmitRatePerSecond: 100,
			SubmitBurst:         100,
		},
		app:          app,
		sessionStore: store,
		templates:    tmpl,
		startTime:    time.Now(),
	}

	for _, opt := range opts {
		opt(srv)
	}

	// Register routes so endpoints are available for testing
	srv.registerRoutes()

	return srv
}

func withHealthChecks(checks ...HealthCheck) func(*Server) {
	return func(s *Server) {
		s.healthChecks = checks
	}
}

func withSubmitLimit(ratePerSecond float64, burst int) func(*Server) {
	return func(s *Server) {
		s.config.SubmitRatePerSecond = ratePerSecond
		s.config.SubmitBurst = burst
	}
}

func withMetrics(m *metrics.HTTPMetrics, handler http.Handler) func(*Server) {
	return func(s *Server) {
		s.httpMetrics = m
		s.metricsHandler = handler
	}
}

// callHandler wraps a handler with error middleware, matching production behavior
func callHandler(handler echo.HandlerFunc, c echo.Context) error {
	return ErrorHandlingMiddleware()(handler)(c)
}

// csrfToken performs a GET on the board and returns the CSRF cookie it sets.
func csrfToken(t *testing.T, srv *Server) *http.Cookie {
	t.Helper()

	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	for _, c := range rec.Result().Cookies() {
		if c.Name == "csrf_token" {
			return c
		}
	}
	t.Fatal("CSRF cookie should be set")
	return nil
}

// cookieNamed returns the named cookie from a response, or nil.
func cookieNamed(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
