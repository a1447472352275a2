package chat

import "errors"

// Failure taxonomy for inbound events. Handlers and the engine match
// these with errors.Is; everything is scoped to a single event or
// connection, nothing here is fatal to the process.
var (
	ErrDuplicateSession = errors.New("session already registered")
	ErrUnauthenticated  = errors.New("session has no authenticated user")
	ErrValidation       = errors.New("invalid payload")
	ErrPersistence      = errors.New("message store failure")
	ErrNotFound         = errors.New("not found")
	ErrUnauthorized     = errors.New("not authorized")
)

// Transport-level push failures. Both are swallowed by the broadcast
// path: the message is already durable and shows up on history replay.
var (
	ErrSlowConsumer  = errors.New("send queue full")
	ErrSessionClosed = errors.New("session closed")
)
