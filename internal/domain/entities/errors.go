package entities

import "errors"

// Load and submission failures reported by the quiz flow.
var (
	ErrNotFound          = errors.New("test not found")
	ErrEmptyTest         = errors.New("test has no questions")
	ErrMalformedQuestion = errors.New("malformed question reference")
	ErrNetwork           = errors.New("network error")
	ErrValidation        = errors.New("request rejected by server")
	ErrUnauthorized      = errors.New("authentication required")
)

// Session state machine violations.
var (
	ErrInvalidState       = errors.New("operation not allowed in current session state")
	ErrInvalidOption      = errors.New("option index out of range")
	ErrSubmissionInFlight = errors.New("submission already in progress")
	ErrTimeUp             = errors.New("time limit reached")
)

// ErrChatUnavailable means the user blocked the bot or deleted the chat.
var ErrChatUnavailable = errors.New("chat unavailable")
