// Package relay implements the trigger-detect / forward / time-windowed
// relay: a single-consumer ingress feeding a decision engine that owns the
// one relay session.
package relay

import "errors"

// Sentinel errors for relay operations.
var (
	// ErrDispatch wraps any failure of the outbound dispatcher. It is
	// logged and absorbed; sends are never retried.
	ErrDispatch = errors.New("relay: dispatch failed")

	// ErrUnexpected marks any other fault raised while handling an event.
	// It is logged at the engine boundary and never stops ingestion.
	ErrUnexpected = errors.New("relay: unexpected failure")

	// ErrIngressStopped indicates the ingress has been shut down and no
	// longer accepts events.
	ErrIngressStopped = errors.New("relay: ingress stopped")

	// ErrNoDirectory indicates no responder directory has been configured.
	ErrNoDirectory = errors.New("relay: no directory configured")

	// ErrNoSender indicates no outbound dispatcher has been configured.
	ErrNoSender = errors.New("relay: no sender configured")
)
