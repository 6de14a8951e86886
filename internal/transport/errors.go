package transport

import "errors"

// Sentinel errors for transport operations.
var (
	// ErrNoTransport indicates the outbound message targets a transport
	// that is not registered in the dispatcher.
	ErrNoTransport = errors.New("transport: unknown transport")

	// ErrDuplicateTransport indicates a transport with the same name is
	// already registered in the dispatcher.
	ErrDuplicateTransport = errors.New("transport: duplicate transport name")

	// ErrNoInbox indicates a transport's inbox callback has not been set.
	ErrNoInbox = errors.New("transport: inbox not set")
)
