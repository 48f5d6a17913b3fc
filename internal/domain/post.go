package domain

import (
	"fmt"
	"time"
)

// AnonymousAuthor is used when a poster leaves the pseudonym blank.
const AnonymousAuthor = "Anonymous"

// TimestampLayout is the persisted timestamp format. It is fixed width, so
// lexicographic order equals chronological order.
const TimestampLayout = "2006-01-02 15:04:05"

// Post is a single submitted story. Posts are immutable once stored.
type Post struct {
	Author    string
	Text      string
	Timestamp time.Time
	// Sentiment is the polarity of Text in [-1, 1], computed at submission.
	Sentiment float64
	Tone      Tone
}

// FormatTimestamp renders t in local time using TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.Local().Format(TimestampLayout)
}

// ParseTimestamp parses a persisted timestamp as local time.
func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.ParseInLocation(TimestampLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}
