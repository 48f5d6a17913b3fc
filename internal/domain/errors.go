package domain

import "errors"

var (
	ErrEmptyStory  = errors.New("story is empty")
	ErrUnknownTone = errors.New("unknown tone")
)
