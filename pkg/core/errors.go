package core

import "errors"

var (
	// ErrValidation is returned by Add when name or phone is empty or not valid UTF-8.
	ErrValidation = errors.New("invalid contact")

	// ErrDuplicatePhone is returned by Add when the phone is already taken.
	ErrDuplicatePhone = errors.New("phone already exists")

	// ErrNotFound is returned by Delete when the key matches neither a phone nor a name.
	ErrNotFound = errors.New("contact not found")
)
