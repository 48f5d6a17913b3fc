// Package sentiment scores story text with the VADER lexicon.
//
// Scorer is a pure function of its input: no state, safe for concurrent use.
package sentiment
