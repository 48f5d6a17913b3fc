// Package domain defines the story board's core types and ports.
//
// Concept-oriented files (post.go, tone.go, distribution.go, errors.go, ports.go) hold
// shared types and the interfaces adapters implement. Behavior lives in
// internal/app; adapters live under internal/adapter.
package domain
