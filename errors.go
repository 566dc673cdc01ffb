package oodle1

import "errors"

var (
	ErrTruncatedStream   = errors.New("oodle1: truncated stream")
	ErrInvalidHeader     = errors.New("oodle1: invalid header")
	ErrInvalidOffset     = errors.New("oodle1: copy offset outside window")
	ErrAlphabetExhausted = errors.New("oodle1: symbol alphabet exhausted")
)
