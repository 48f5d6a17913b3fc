package domain

// Tone is the self-described mood a poster picks from a closed list.
type Tone string

const (
	ToneWholesome Tone = "Wholesome"
	ToneGood      Tone = "Good"
	ToneBad       Tone = "Bad"
	ToneWorse     Tone = "Worse"
	ToneDarkGore  Tone = "Dark / Gore"
)

var tones = []Tone{ToneWholesome, ToneGood, ToneBad, ToneWorse, ToneDarkGore}

// Tones returns the selectable tones in display order.
func Tones() []Tone {
	out := make([]Tone, len(tones))
	copy(out, tones)
	return out
}

// Valid reports whether t is one of the selectable tones.
func (t Tone) Valid() bool {
	return t.rank() >= 0
}

// rank is the position in display order, or -1 for labels outside the closed set.
func (t Tone) rank() int {
	for i, candidate := range tones {
		if candidate == t {
			return i
		}
	}
	return -1
}

// ParseTone validates a user-supplied tone label. Matching is exact.
func ParseTone(s string) (Tone, error) {
	t := Tone(s)
	if !t.Valid() {
		return "", ErrUnknownTone
	}
	return t, nil
}

func (t Tone) String() string {
	return string(t)
}
