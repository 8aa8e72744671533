package domain

import "errors"

var (
	// ErrNotFound indicates resource not found
	ErrNotFound = errors.New("resource not found")
	// ErrInvalidRequest indicates invalid request
	ErrInvalidRequest = errors.New("invalid request")
	// ErrNoQuery indicates a chat request without a query
	ErrNoQuery = errors.New("no query provided")
	// ErrAgentNotReady indicates the LLM backend failed to initialize
	ErrAgentNotReady = errors.New("agent not initialized")
)
