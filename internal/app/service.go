package app

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/allin/internal/domain"
)

// DefaultFeedLimit is the number of cards shown on the board.
const DefaultFeedLimit = 10

// Observer is notified about submissions, e.g. for metrics. Optional.
type Observer interface {
	PostSubmitted(tone domain.Tone, polarity float64)
	SubmissionRejected(reason string)
}

type noopObserver struct{}

func (noopObserver) PostSubmitted(domain.Tone, float64) {}
func (noopObserver) SubmissionRejected(string)          {}

// SubmitRequest carries raw form input.
type SubmitRequest struct {
	Pseudonym string
	Text      string
	Tone      string
}

// Board is everything the page shows: the latest posts and the tone tally
// over all posts.
type Board struct {
	Latest []domain.Post
	Tones  domain.ToneDistribution
	Total  int
}

// Empty reports whether nothing has been posted yet.
func (b *Board) Empty() bool {
	return b.Total == 0
}

// Service is the application layer. The store is the only state; every
// operation is a function of its current contents.
type Service struct {
	store    domain.PostStore
	scorer   domain.SentimentScorer
	clock    clockwork.Clock
	observer Observer
}

// NewService creates the application service. observer may be nil.
func NewService(store domain.PostStore, scorer domain.SentimentScorer, clock clockwork.Clock, observer Observer) *Service {
	if observer == nil {
		observer = noopObserver{}
	}
	return &Service{
		store:    store,
		scorer:   scorer,
		clock:    clock,
		observer: observer,
	}
}

// Submit validates and scores a story and appends it to the store.
// Blank text yields domain.ErrEmptyStory and an unknown tone
// domain.ErrUnknownTone; in both cases nothing is written.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*domain.Post, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		s.observer.SubmissionRejected("empty_story")
		return nil, domain.ErrEmptyStory
	}

	tone, err := domain.ParseTone(req.Tone)
	if err != nil {
		s.observer.SubmissionRejected("unknown_tone")
		return nil, err
	}

	author := strings.TrimSpace(req.Pseudonym)
	if author == "" {
		author = domain.AnonymousAuthor
	}

	post := domain.Post{
		Author:    author,
		Text:      text,
		Timestamp: s.clock.Now().Local().Truncate(time.Second),
		Sentiment: s.scorer.Polarity(text),
		Tone:      tone,
	}

	if err := s.store.Append(ctx, post); err != nil {
		return nil, fmt.Errorf("append post: %w", err)
	}

	s.observer.PostSubmitted(post.Tone, post.Sentiment)
	slog.InfoContext(ctx, "Story submitted", "tone", post.Tone, "sentiment", post.Sentiment, "anonymous", author == domain.AnonymousAuthor)

	return &post, nil
}

// Load returns every stored post, newest first. Posts sharing a timestamp
// are ordered by most recent append. A missing store yields no posts.
func (s *Service) Load(ctx context.Context) ([]domain.Post, error) {
	stored, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	posts := make([]domain.Post, len(stored))
	for i, p := range stored {
		posts[len(stored)-1-i] = p
	}
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].Timestamp.After(posts[j].Timestamp)
	})

	return posts, nil
}

// Board loads the store once and derives the page content from it.
func (s *Service) Board(ctx context.Context, limit int) (*Board, error) {
	posts, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}

	return &Board{
		Latest: Latest(posts, limit),
		Tones:  Aggregate(posts),
		Total:  len(posts),
	}, nil
}

// Ping reports whether the store is usable.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// Latest returns the first limit posts of an ordered feed.
// A non-positive limit selects DefaultFeedLimit.
func Latest(posts []domain.Post, limit int) []domain.Post {
	if limit <= 0 {
		limit = DefaultFeedLimit
	}
	if len(posts) <= limit {
		return posts
	}
	return posts[:limit]
}

// Aggregate tallies tones across all posts.
func Aggregate(posts []domain.Post) domain.ToneDistribution {
	counts := make(map[domain.Tone]int)
	for _, p := range posts {
		counts[p.Tone]++
	}
	return domain.NewToneDistribution(counts)
}
