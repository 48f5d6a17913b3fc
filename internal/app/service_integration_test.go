package app_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/allin/internal/adapter/csvstore"
	"github.com/pscheid92/allin/internal/app"
	"github.com/pscheid92/allin/internal/domain"
	"github.com/pscheid92/allin/internal/sentiment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmit_RoughDayScoresNegativeAndPersists(t *testing.T) {
	store := csvstore.New(filepath.Join(t.TempDir(), "stories.csv"))
	svc := app.NewService(store, sentiment.NewScorer(), clockwork.NewFakeClock(), nil)
	ctx := context.Background()

	post, err := svc.Submit(ctx, app.SubmitRequest{Pseudonym: "Alex", Text: "Today was rough.", Tone: "Bad"})
	require.NoError(t, err)
	assert.Less(t, post.Sentiment, 0.0)

	posts, err := svc.Load(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "Alex", posts[0].Author)
	assert.Equal(t, domain.ToneBad, posts[0].Tone)
	assert.Less(t, posts[0].Sentiment, 0.0)
	assert.InDelta(t, post.Sentiment, posts[0].Sentiment, 1e-9)
}
