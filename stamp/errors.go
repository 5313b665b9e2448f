package stamp

import "errors"

var (
	// ErrInvalidInput is returned for an empty resource or an out-of-range difficulty
	ErrInvalidInput = errors.New("invalid input")
	// ErrParse is returned for a malformed wire string
	ErrParse = errors.New("malformed stamp")
	// ErrExpired is returned when a stamp is older than the verification window
	ErrExpired = errors.New("stamp expired")
	// ErrCancelled is returned when minting is aborted by the caller
	ErrCancelled = errors.New("mint cancelled")
	// ErrInsufficientWork is returned when the declared or actual difficulty is too low
	ErrInsufficientWork = errors.New("insufficient proof of work")
	// ErrResourceMismatch is returned when a stamp is bound to another resource
	ErrResourceMismatch = errors.New("stamp resource mismatch")
)
