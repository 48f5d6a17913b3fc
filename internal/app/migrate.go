package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pscheid92/allin/internal/domain"
)

// ErrTargetNotEmpty is returned by CopyPosts when the destination already
// holds posts.
var ErrTargetNotEmpty = errors.New("target store is not empty")

// CopyPosts appends every post of src to dst in stored order, preserving
// timestamps and scores. dst must be empty so a rerun cannot duplicate rows.
// With dryRun set nothing is written. It returns the number of posts copied
// (or that would be copied).
func CopyPosts(ctx context.Context, src, dst domain.PostStore, dryRun bool) (int, error) {
	existing, err := dst.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list target: %w", err)
	}
	if len(existing) > 0 {
		return 0, fmt.Errorf("%w: holds %d posts", ErrTargetNotEmpty, len(existing))
	}

	posts, err := src.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list source: %w", err)
	}

	if dryRun {
		slog.InfoContext(ctx, "Dry run, nothing written", "posts", len(posts))
		return len(posts), nil
	}

	for i, p := range posts {
		if err := dst.Append(ctx, p); err != nil {
			return i, fmt.Errorf("append post %d: %w", i+1, err)
		}
		slog.DebugContext(ctx, "Copied post", "index", i+1, "timestamp", domain.FormatTimestamp(p.Timestamp))
	}
	return len(posts), nil
}
