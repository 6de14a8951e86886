package bridge

import "errors"

// Sentinel errors for bridge operations.
var (
	// ErrNotConnected is returned by requests issued while no connection to
	// the bridge is established.
	ErrNotConnected = errors.New("bridge: not connected")

	// ErrSendRejected indicates the bridge refused to post a message.
	ErrSendRejected = errors.New("bridge: send rejected")

	// ErrRemote wraps an error envelope returned for a request.
	ErrRemote = errors.New("bridge: remote error")

	// ErrUnexpectedResponse indicates a response of the wrong type.
	ErrUnexpectedResponse = errors.New("bridge: unexpected response")
)
