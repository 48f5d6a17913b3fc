package sqlitestore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/allin/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(context.Background(), filepath.Join(t.TempDir(), "data", "stories.db"), clockwork.NewRealClock())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestList_EmptyDatabase(t *testing.T) {
	s := newTestStore(t)

	posts, err := s.List(context.Background())

	require.NoError(t, err)
	assert.Empty(t, posts)
	assert.NotNil(t, posts)
}

func TestAppend_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	ts := time.Date(2026, 10, 19, 8, 30, 15, 0, time.Local)

	post := domain.Post{
		Author:    "Alex",
		Text:      "Today was rough.",
		Timestamp: ts,
		Sentiment: -0.128,
		Tone:      domain.ToneBad,
	}
	require.NoError(t, s.Append(ctx, post))
	require.NoError(t, s.Append(ctx, domain.Post{Author: "B", Text: "next", Timestamp: ts, Sentiment: 0.5, Tone: domain.ToneGood}))

	posts, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 2)

	got := posts[0]
	assert.Equal(t, "Alex", got.Author)
	assert.Equal(t, "Today was rough.", got.Text)
	assert.True(t, ts.Equal(got.Timestamp))
	assert.InDelta(t, -0.128, got.Sentiment, 1e-12)
	assert.Equal(t, domain.ToneBad, got.Tone)
	assert.Equal(t, "B", posts[1].Author)
}

func TestNew_ReopensExistingDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stories.db")
	ctx := context.Background()

	first, err := New(ctx, path, clockwork.NewRealClock())
	require.NoError(t, err)
	require.NoError(t, first.Append(ctx, domain.Post{Author: "A", Text: "kept", Timestamp: time.Now(), Tone: domain.ToneGood}))
	require.NoError(t, first.Close())

	second, err := New(ctx, path, clockwork.NewRealClock())
	require.NoError(t, err)
	defer second.Close()

	posts, err := second.List(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "kept", posts[0].Text)
}

func TestAppend_Concurrent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	const writers = 20
	var wg sync.WaitGroup
	for n := 0; n < writers; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.Append(ctx, domain.Post{Author: "w", Text: "x", Timestamp: time.Now(), Tone: domain.ToneWorse}))
		}()
	}
	wg.Wait()

	posts, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, posts, writers)
}

func TestPing(t *testing.T) {
	s := newTestStore(t)
	assert.NoError(t, s.Ping(context.Background()))

	require.NoError(t, s.Close())
	assert.Error(t, s.Ping(context.Background()))
}

func TestIsBusy_NonSQLiteError(t *testing.T) {
	assert.False(t, isBusy(errors.New("database is locked")))
	assert.False(t, isBusy(nil))
}

func TestOpenExisting_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stories.db")

	_, err := OpenExisting(context.Background(), path, clockwork.NewRealClock())

	require.ErrorIs(t, err, os.ErrNotExist)
	assert.NoFileExists(t, path)
}

func TestOpenExisting_ReadsExistingDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stories.db")
	ctx := context.Background()

	s, err := New(ctx, path, clockwork.NewRealClock())
	require.NoError(t, err)
	require.NoError(t, s.Append(ctx, domain.Post{Author: "Alex", Text: "kept", Timestamp: time.Now(), Tone: domain.ToneGood}))
	require.NoError(t, s.Close())

	reopened, err := OpenExisting(ctx, path, clockwork.NewRealClock())
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	posts, err := reopened.List(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "kept", posts[0].Text)
}
