package csvstore

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/pscheid92/allin/internal/domain"
)

// Header is the canonical column order of the store file.
var Header = []string{"Pseudonym", "Story", "Timestamp", "Sentiment", "Tone"}

// row is the on-disk shape of a post.
type row struct {
	Pseudonym string  `csv:"Pseudonym"`
	Story     string  `csv:"Story"`
	Timestamp string  `csv:"Timestamp"`
	Sentiment float64 `csv:"Sentiment"`
	Tone      string  `csv:"Tone"`
}

func toRow(p domain.Post) row {
	return row{
		Pseudonym: p.Author,
		Story:     p.Text,
		Timestamp: domain.FormatTimestamp(p.Timestamp),
		Sentiment: p.Sentiment,
		Tone:      string(p.Tone),
	}
}

func (r row) toPost() (domain.Post, error) {
	ts, err := domain.ParseTimestamp(strings.TrimSpace(r.Timestamp))
	if err != nil {
		return domain.Post{}, err
	}

	author := r.Pseudonym
	if strings.TrimSpace(author) == "" {
		author = domain.AnonymousAuthor
	}

	return domain.Post{
		Author:    author,
		Text:      r.Story,
		Timestamp: ts,
		Sentiment: r.Sentiment,
		Tone:      domain.Tone(r.Tone),
	}, nil
}

// WritePosts encodes posts with the canonical header.
func WritePosts(w io.Writer, posts []domain.Post) error {
	if len(posts) == 0 {
		_, err := io.WriteString(w, strings.Join(Header, ",")+"\n")
		return err
	}

	rows := make([]row, len(posts))
	for i, p := range posts {
		rows[i] = toRow(p)
	}
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("encode posts: %w", err)
	}
	return nil
}

// ReadPosts decodes a store file. An empty input yields no posts.
func ReadPosts(r io.Reader) ([]domain.Post, error) {
	var rows []row
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return []domain.Post{}, nil
		}
		return nil, fmt.Errorf("decode posts: %w", err)
	}

	posts := make([]domain.Post, 0, len(rows))
	for i, r := range rows {
		p, err := r.toPost()
		if err != nil {
			// +2: header line and 1-based numbering
			return nil, fmt.Errorf("line %d: %w", i+2, err)
		}
		posts = append(posts, p)
	}
	return posts, nil
}
