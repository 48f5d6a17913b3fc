package app

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/allin/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mock implementations ---

type mockStore struct {
	posts    []domain.Post
	appendFn func(ctx context.Context, post domain.Post) error
	listFn   func(ctx context.Context) ([]domain.Post, error)
	pingFn   func(ctx context.Context) error
}

func (m *mockStore) Append(ctx context.Context, post domain.Post) error {
	if m.appendFn != nil {
		return m.appendFn(ctx, post)
	}
	m.posts = append(m.posts, post)
	return nil
}

func (m *mockStore) List(ctx context.Context) ([]domain.Post, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	out := make([]domain.Post, len(m.posts))
	copy(out, m.posts)
	return out, nil
}

func (m *mockStore) Ping(ctx context.Context) error {
	if m.pingFn != nil {
		return m.pingFn(ctx)
	}
	return nil
}

type mockScorer struct {
	polarity float64
	texts    []string
}

func (m *mockScorer) Polarity(text string) float64 {
	m.texts = append(m.texts, text)
	return m.polarity
}

type recordingObserver struct {
	submitted []domain.Tone
	rejected  []string
}

func (r *recordingObserver) PostSubmitted(tone domain.Tone, _ float64) {
	r.submitted = append(r.submitted, tone)
}

func (r *recordingObserver) SubmissionRejected(reason string) {
	r.rejected = append(r.rejected, reason)
}

// --- Test helpers ---

var submitTime = time.Date(2026, 10, 19, 14, 3, 27, 450_000_000, time.Local)

func newTestService(store *mockStore, scorer *mockScorer) (*Service, *clockwork.FakeClock, *recordingObserver) {
	clock := clockwork.NewFakeClockAt(submitTime)
	obs := &recordingObserver{}
	return NewService(store, scorer, clock, obs), clock, obs
}

func postAt(author string, tone domain.Tone, ts time.Time) domain.Post {
	return domain.Post{Author: author, Text: "text by " + author, Timestamp: ts, Tone: tone}
}

// --- Submit ---

func TestSubmit_Scenario(t *testing.T) {
	store := &mockStore{}
	scorer := &mockScorer{polarity: -0.2}
	svc, _, obs := newTestService(store, scorer)

	post, err := svc.Submit(context.Background(), SubmitRequest{Pseudonym: "Alex", Text: "Today was rough.", Tone: "Bad"})
	require.NoError(t, err)

	loaded, err := svc.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, loaded, 1)

	got := loaded[0]
	assert.Equal(t, *post, got)
	assert.Equal(t, "Alex", got.Author)
	assert.Equal(t, domain.ToneBad, got.Tone)
	assert.Equal(t, -0.2, got.Sentiment)
	assert.Equal(t, "2026-10-19 14:03:27", domain.FormatTimestamp(got.Timestamp))
	assert.Equal(t, []string{"Today was rough."}, scorer.texts)
	assert.Equal(t, []domain.Tone{domain.ToneBad}, obs.submitted)
}

func TestSubmit_DefaultsAuthor(t *testing.T) {
	for _, pseudonym := range []string{"", "   ", "\t\n"} {
		store := &mockStore{}
		svc, _, _ := newTestService(store, &mockScorer{})

		post, err := svc.Submit(context.Background(), SubmitRequest{Pseudonym: pseudonym, Text: "hello", Tone: "Good"})
		require.NoError(t, err)
		assert.Equal(t, domain.AnonymousAuthor, post.Author, "pseudonym %q", pseudonym)
	}
}

func TestSubmit_TrimsPseudonymAndText(t *testing.T) {
	store := &mockStore{}
	svc, _, _ := newTestService(store, &mockScorer{})

	post, err := svc.Submit(context.Background(), SubmitRequest{Pseudonym: "  Night Owl ", Text: "\n  can't sleep  \n", Tone: "Worse"})
	require.NoError(t, err)

	assert.Equal(t, "Night Owl", post.Author)
	assert.Equal(t, "can't sleep", post.Text)
	require.Len(t, store.posts, 1)
	assert.Equal(t, "can't sleep", store.posts[0].Text)
}

func TestSubmit_EmptyStoryIsRejected(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t "} {
		store := &mockStore{}
		scorer := &mockScorer{}
		svc, _, obs := newTestService(store, scorer)

		post, err := svc.Submit(context.Background(), SubmitRequest{Pseudonym: "Alex", Text: text, Tone: "Good"})

		assert.Nil(t, post)
		assert.ErrorIs(t, err, domain.ErrEmptyStory)
		assert.Empty(t, store.posts, "nothing persisted for %q", text)
		assert.Empty(t, scorer.texts)
		assert.Equal(t, []string{"empty_story"}, obs.rejected)
	}
}

func TestSubmit_UnknownToneIsRejected(t *testing.T) {
	store := &mockStore{}
	svc, _, obs := newTestService(store, &mockScorer{})

	_, err := svc.Submit(context.Background(), SubmitRequest{Text: "hello", Tone: "Meh"})

	assert.ErrorIs(t, err, domain.ErrUnknownTone)
	assert.Empty(t, store.posts)
	assert.Equal(t, []string{"unknown_tone"}, obs.rejected)
}

func TestSubmit_StoreError(t *testing.T) {
	boom := errors.New("disk full")
	store := &mockStore{appendFn: func(context.Context, domain.Post) error { return boom }}
	svc, _, obs := newTestService(store, &mockScorer{})

	_, err := svc.Submit(context.Background(), SubmitRequest{Text: "hello", Tone: "Good"})

	assert.ErrorIs(t, err, boom)
	assert.Empty(t, obs.submitted)
}

func TestSubmit_EachCallAddsExactlyOneRow(t *testing.T) {
	store := &mockStore{}
	svc, clock, _ := newTestService(store, &mockScorer{polarity: 0.9})

	for i := 0; i < 5; i++ {
		_, err := svc.Submit(context.Background(), SubmitRequest{Text: fmt.Sprintf("story %d", i), Tone: "Wholesome"})
		require.NoError(t, err)
		assert.Len(t, store.posts, i+1)
		clock.Advance(time.Second)
	}
}

// --- Load ---

func TestLoad_NewestFirst(t *testing.T) {
	t1 := time.Date(2026, 1, 1, 9, 0, 0, 0, time.Local)
	t2 := t1.Add(time.Hour)
	t3 := t2.Add(24 * time.Hour)
	store := &mockStore{posts: []domain.Post{
		postAt("two", domain.ToneGood, t2),
		postAt("one", domain.ToneGood, t1),
		postAt("three", domain.ToneGood, t3),
	}}
	svc, _, _ := newTestService(store, &mockScorer{})

	posts, err := svc.Load(context.Background())
	require.NoError(t, err)

	require.Len(t, posts, 3)
	assert.Equal(t, []string{"three", "two", "one"}, []string{posts[0].Author, posts[1].Author, posts[2].Author})
}

func TestLoad_EqualTimestampsNewestAppendFirst(t *testing.T) {
	ts := time.Date(2026, 1, 1, 9, 0, 0, 0, time.Local)
	store := &mockStore{posts: []domain.Post{
		postAt("first", domain.ToneGood, ts),
		postAt("second", domain.ToneBad, ts),
		postAt("older", domain.ToneBad, ts.Add(-time.Second)),
	}}
	svc, _, _ := newTestService(store, &mockScorer{})

	posts, err := svc.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"second", "first", "older"}, []string{posts[0].Author, posts[1].Author, posts[2].Author})
}

func TestLoad_EmptyStore(t *testing.T) {
	svc, _, _ := newTestService(&mockStore{}, &mockScorer{})

	posts, err := svc.Load(context.Background())

	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestLoad_StoreError(t *testing.T) {
	boom := errors.New("line 3: bad timestamp")
	svc, _, _ := newTestService(&mockStore{listFn: func(context.Context) ([]domain.Post, error) { return nil, boom }}, &mockScorer{})

	_, err := svc.Load(context.Background())
	assert.ErrorIs(t, err, boom)
}

// --- Latest / Aggregate / Board ---

func TestLatest(t *testing.T) {
	posts := make([]domain.Post, 15)
	for i := range posts {
		posts[i] = postAt(fmt.Sprint(i), domain.ToneGood, submitTime)
	}

	assert.Len(t, Latest(posts, 10), 10)
	assert.Equal(t, "0", Latest(posts, 10)[0].Author)
	assert.Len(t, Latest(posts, 0), DefaultFeedLimit)
	assert.Len(t, Latest(posts[:3], 10), 3)
	assert.Empty(t, Latest(nil, 10))
}

func TestAggregate(t *testing.T) {
	posts := []domain.Post{
		postAt("a", domain.ToneGood, submitTime),
		postAt("b", domain.ToneBad, submitTime),
		postAt("c", domain.ToneGood, submitTime),
		postAt("d", domain.ToneWholesome, submitTime),
	}

	dist := Aggregate(posts)

	assert.Equal(t, map[domain.Tone]int{domain.ToneGood: 2, domain.ToneBad: 1, domain.ToneWholesome: 1}, dist.Counts())
	assert.Equal(t, domain.ToneGood, dist[0].Tone)
}

func TestBoard_TalliesAllPostsButShowsLimit(t *testing.T) {
	store := &mockStore{}
	for i := 0; i < 12; i++ {
		tone := domain.ToneGood
		if i%3 == 0 {
			tone = domain.ToneDarkGore
		}
		store.posts = append(store.posts, postAt(fmt.Sprint(i), tone, submitTime.Add(time.Duration(i)*time.Minute)))
	}
	svc, _, _ := newTestService(store, &mockScorer{})

	board, err := svc.Board(context.Background(), 10)
	require.NoError(t, err)

	assert.False(t, board.Empty())
	assert.Equal(t, 12, board.Total)
	assert.Len(t, board.Latest, 10)
	assert.Equal(t, "11", board.Latest[0].Author)
	assert.Equal(t, 12, board.Tones.Total())
	assert.Equal(t, map[domain.Tone]int{domain.ToneGood: 8, domain.ToneDarkGore: 4}, board.Tones.Counts())
}

func TestBoard_Empty(t *testing.T) {
	svc, _, _ := newTestService(&mockStore{}, &mockScorer{})

	board, err := svc.Board(context.Background(), 10)
	require.NoError(t, err)

	assert.True(t, board.Empty())
	assert.Empty(t, board.Latest)
	assert.Empty(t, board.Tones)
}

func TestPing_DelegatesToStore(t *testing.T) {
	boom := errors.New("not writable")
	svc, _, _ := newTestService(&mockStore{pingFn: func(context.Context) error { return boom }}, &mockScorer{})

	assert.ErrorIs(t, svc.Ping(context.Background()), boom)
}

func TestNewService_NilObserver(t *testing.T) {
	svc := NewService(&mockStore{}, &mockScorer{}, clockwork.NewFakeClock(), nil)

	_, err := svc.Submit(context.Background(), SubmitRequest{Text: "", Tone: "Good"})
	assert.ErrorIs(t, err, domain.ErrEmptyStory)
}
