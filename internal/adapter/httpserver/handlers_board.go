package httpserver

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pscheid92/allin/internal/app"
	"github.com/pscheid92/allin/internal/domain"
	apperrors "github.com/pscheid92/allin/internal/platform/errors"
)

const (
	msgSubmitted   = "Your story has been submitted anonymously!"
	msgEmptyStory  = "Please write something."
	msgUnknownTone = "Please pick one of the listed tones."
	msgNoStories   = "No stories yet. Be the first to post something real."
)

type postCard struct {
	Author    string
	Timestamp string
	Text      string
	Sentiment string
	Tone      string
}

type boardPage struct {
	Tones        []domain.Tone
	Posts        []postCard
	Total        int
	Empty        bool
	EmptyMessage string
	Success      []string
	Warning      []string
	CSRFToken    any
}

func (s *Server) registerBoardRoutes(csrfMiddleware, rateLimiter echo.MiddlewareFunc) {
	s.echo.GET("/", s.handleBoard, csrfMiddleware)
	s.echo.POST("/posts", s.handleSubmit, rateLimiter, csrfMiddleware)
}

func (s *Server) handleBoard(c echo.Context) error {
	board, err := s.app.Board(c.Request().Context(), s.config.FeedLimit)
	if err != nil {
		return apperrors.InternalError("failed to load stories", err)
	}

	success, warning := s.popFlashes(c)

	cards := make([]postCard, len(board.Latest))
	for i, p := range board.Latest {
		cards[i] = newPostCard(p)
	}

	data := boardPage{
		Tones:        domain.Tones(),
		Posts:        cards,
		Total:        board.Total,
		Empty:        board.Empty(),
		EmptyMessage: msgNoStories,
		Success:      success,
		Warning:      warning,
		CSRFToken:    c.Get("csrf"),
	}

	return s.renderTemplate(c, "board.html", data)
}

func (s *Server) handleSubmit(c echo.Context) error {
	req := app.SubmitRequest{
		Pseudonym: c.FormValue("pseudonym"),
		Text:      c.FormValue("story"),
		Tone:      c.FormValue("tone"),
	}

	_, err := s.app.Submit(c.Request().Context(), req)
	switch {
	case errors.Is(err, domain.ErrEmptyStory):
		return s.redirectWithFlash(c, flashWarning, msgEmptyStory)
	case errors.Is(err, domain.ErrUnknownTone):
		return s.redirectWithFlash(c, flashWarning, msgUnknownTone)
	case err != nil:
		return apperrors.InternalError("failed to save story", err)
	}

	return s.redirectWithFlash(c, flashSuccess, msgSubmitted)
}

func newPostCard(p domain.Post) postCard {
	return postCard{
		Author:    p.Author,
		Timestamp: domain.FormatTimestamp(p.Timestamp),
		Text:      p.Text,
		Sentiment: formatSentiment(p.Sentiment),
		Tone:      p.Tone.String(),
	}
}

// formatSentiment rounds to two decimals and always keeps one fractional
// digit, so 0.5 reads "0.5" and 1 reads "1.0".
func formatSentiment(v float64) string {
	r := math.Round(v*100) / 100
	if r == 0 {
		r = 0 // drop negative zero
	}
	s := strconv.FormatFloat(r, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
