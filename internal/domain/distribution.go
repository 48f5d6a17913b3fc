package domain

import "sort"

// ToneCount is the number of posts carrying one tone label.
type ToneCount struct {
	Tone  Tone
	Count int
}

// ToneDistribution is a tally of posts per tone, ordered by descending count.
// Labels outside the closed set (hand-edited stores) are kept verbatim.
type ToneDistribution []ToneCount

// NewToneDistribution builds a distribution from raw counts. Ties are broken
// by display order, then by label for unknown tones.
func NewToneDistribution(counts map[Tone]int) ToneDistribution {
	dist := make(ToneDistribution, 0, len(counts))
	for tone, n := range counts {
		if n > 0 {
			dist = append(dist, ToneCount{Tone: tone, Count: n})
		}
	}

	sort.Slice(dist, func(i, j int) bool {
		a, b := dist[i], dist[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		ra, rb := a.Tone.rank(), b.Tone.rank()
		switch {
		case ra >= 0 && rb >= 0:
			return ra < rb
		case ra >= 0:
			return true
		case rb >= 0:
			return false
		default:
			return a.Tone < b.Tone
		}
	})

	return dist
}

// Total returns the number of posts tallied.
func (d ToneDistribution) Total() int {
	total := 0
	for _, tc := range d {
		total += tc.Count
	}
	return total
}

// Counts returns the distribution as a tone → count mapping.
func (d ToneDistribution) Counts() map[Tone]int {
	counts := make(map[Tone]int, len(d))
	for _, tc := range d {
		counts[tc.Tone] = tc.Count
	}
	return counts
}

// Shares returns each entry's percentage of the total, in distribution order.
func (d ToneDistribution) Shares() []float64 {
	total := d.Total()
	shares := make([]float64, len(d))
	if total == 0 {
		return shares
	}
	for i, tc := range d {
		shares[i] = float64(tc.Count) * 100 / float64(total)
	}
	return shares
}
