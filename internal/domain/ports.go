package domain

import "context"

// PostStore is the durable, append-only post log.
type PostStore interface {
	// Append persists one post. A missing store is created on first append.
	Append(ctx context.Context, post Post) error

	// List returns every stored post in storage order (oldest append first).
	// A missing store yields an empty slice, not an error.
	List(ctx context.Context) ([]Post, error)

	// Ping verifies the store is reachable for readiness probes.
	Ping(ctx context.Context) error
}

// SentimentScorer computes the polarity of a text in [-1, 1].
type SentimentScorer interface {
	Polarity(text string) float64
}
