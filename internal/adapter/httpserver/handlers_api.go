package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pscheid92/allin/internal/app"
	"github.com/pscheid92/allin/internal/domain"
	apperrors "github.com/pscheid92/allin/internal/platform/errors"
)

const maxAPILimit = 100

type postResponse struct {
	Pseudonym string  `json:"pseudonym"`
	Story     string  `json:"story"`
	Timestamp string  `json:"timestamp"`
	Sentiment float64 `json:"sentiment"`
	Tone      string  `json:"tone"`
}

type feedResponse struct {
	Posts []postResponse `json:"posts"`
	Total int            `json:"total"`
}

type toneShare struct {
	Tone  string  `json:"tone"`
	Count int     `json:"count"`
	Share float64 `json:"share"`
}

type tonesResponse struct {
	Tones []toneShare `json:"tones"`
	Total int         `json:"total"`
}

type submitRequest struct {
	Pseudonym string `json:"pseudonym"`
	Story     string `json:"story"`
	Tone      string `json:"tone"`
}

func (s *Server) registerAPIRoutes(csrfMiddleware, rateLimiter echo.MiddlewareFunc) {
	s.echo.GET("/api/posts", s.handleListPosts)
	s.echo.POST("/api/posts", s.handleCreatePost, rateLimiter, csrfMiddleware)
	s.echo.GET("/api/tones", s.handleTones)
}

func (s *Server) handleListPosts(c echo.Context) error {
	limit := s.config.FeedLimit
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxAPILimit {
			return apperrors.ValidationError(fmt.Sprintf("limit must be between 1 and %d", maxAPILimit), err).WithField("limit", raw)
		}
		limit = n
	}

	board, err := s.app.Board(c.Request().Context(), limit)
	if err != nil {
		return apperrors.InternalError("failed to load stories", err)
	}

	resp := feedResponse{
		Posts: make([]postResponse, len(board.Latest)),
		Total: board.Total,
	}
	for i, p := range board.Latest {
		resp.Posts[i] = newPostResponse(p)
	}

	if err := c.JSON(http.StatusOK, resp); err != nil {
		return fmt.Errorf("failed to write feed response: %w", err)
	}
	return nil
}

func (s *Server) handleCreatePost(c echo.Context) error {
	var body submitRequest
	if err := c.Bind(&body); err != nil {
		return apperrors.ValidationError("invalid request body", err)
	}

	post, err := s.app.Submit(c.Request().Context(), app.SubmitRequest{
		Pseudonym: body.Pseudonym,
		Text:      body.Story,
		Tone:      body.Tone,
	})
	switch {
	case errors.Is(err, domain.ErrEmptyStory):
		return apperrors.ValidationError("story must not be empty", err)
	case errors.Is(err, domain.ErrUnknownTone):
		return apperrors.ValidationError("unknown tone", err).WithField("tone", body.Tone)
	case err != nil:
		return apperrors.InternalError("failed to save story", err)
	}

	if err := c.JSON(http.StatusCreated, newPostResponse(*post)); err != nil {
		return fmt.Errorf("failed to write post response: %w", err)
	}
	return nil
}

func (s *Server) handleTones(c echo.Context) error {
	board, err := s.app.Board(c.Request().Context(), s.config.FeedLimit)
	if err != nil {
		return apperrors.InternalError("failed to load stories", err)
	}

	shares := board.Tones.Shares()
	resp := tonesResponse{
		Tones: make([]toneShare, len(board.Tones)),
		Total: board.Tones.Total(),
	}
	for i, tc := range board.Tones {
		resp.Tones[i] = toneShare{Tone: tc.Tone.String(), Count: tc.Count, Share: shares[i]}
	}

	if err := c.JSON(http.StatusOK, resp); err != nil {
		return fmt.Errorf("failed to write tones response: %w", err)
	}
	return nil
}

func newPostResponse(p domain.Post) postResponse {
	return postResponse{
		Pseudonym: p.Author,
		Story:     p.Text,
		Timestamp: domain.FormatTimestamp(p.Timestamp),
		Sentiment: p.Sentiment,
		Tone:      p.Tone.String(),
	}
}
