package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/pscheid92/allin/internal/domain"
	"github.com/pscheid92/allin/internal/sentiment"
)

// BoardMetrics tracks story submissions. It satisfies app.Observer.
type BoardMetrics struct {
	PostsSubmitted      *prometheus.CounterVec
	SentimentPolarity   prometheus.Histogram
	SubmissionsRejected *prometheus.CounterVec
}

// NewBoardMetrics creates and registers board metrics on the given registry.
func NewBoardMetrics(reg prometheus.Registerer) *BoardMetrics {
	m := &BoardMetrics{
		PostsSubmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "posts_submitted_total",
			Help:      "Total number of stories stored, by tone and sentiment class.",
		}, []string{"tone", "sentiment"}),
		SentimentPolarity: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "post_sentiment_polarity",
			Help:      "Sentiment polarity of stored stories.",
			Buckets:   prometheus.LinearBuckets(-1, 0.25, 9),
		}),
		SubmissionsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_rejected_total",
			Help:      "Total number of rejected submissions, by reason.",
		}, []string{"reason"}),
	}

	reg.MustRegister(m.PostsSubmitted, m.SentimentPolarity, m.SubmissionsRejected)
	return m
}

func (m *BoardMetrics) PostSubmitted(tone domain.Tone, polarity float64) {
	m.PostsSubmitted.WithLabelValues(tone.String(), string(sentiment.Classify(polarity))).Inc()
	m.SentimentPolarity.Observe(polarity)
}

func (m *BoardMetrics) SubmissionRejected(reason string) {
	m.SubmissionsRejected.WithLabelValues(reason).Inc()
}
