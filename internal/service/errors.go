package service

import "errors"

var (
	// ErrInvalidInput marks caller mistakes; handlers map it to 400.
	ErrInvalidInput = errors.New("invalid input")
	// ErrSourceUnavailable is returned when a dataset source is not configured.
	ErrSourceUnavailable = errors.New("dataset source not configured")
	ErrChatBusy          = errors.New("a chat reply is already in progress")
)
