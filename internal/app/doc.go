// Package app provides the story board's application service.
//
// Orchestrates the use cases: submitting a story, loading the feed and tallying tones.
// Sits between HTTP handlers and the domain ports. Depends on domain interfaces, not concrete stores.
package app
