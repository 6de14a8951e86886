// Package transport defines the bridge between chat platforms and the relay.
// It provides the Transport interface, the outbound Dispatcher, and the
// responder Directory built on top of transport address books.
package transport

import (
	"context"

	"github.com/flemzord/relaybot/internal/core"
	"github.com/flemzord/relaybot/pkg/message"
)

// Transport is the bridge between a chat platform and the relay.
// Every concrete transport must implement this interface.
//
// A transport owns the platform session (login, pairing, reconnects). It
// pushes an Event for every created message, including its own sends, to
// the inbox callback, and delivers outbound messages via Send.
type Transport interface {
	core.Module
	// Send delivers an outbound text message to the platform.
	Send(ctx context.Context, msg message.OutboundMessage) error
	// Contacts returns the platform address book.
	Contacts(ctx context.Context) ([]message.Contact, error)
	// SetInbox gives the transport a function to push events to the relay.
	// It is called during wiring, before Start().
	SetInbox(fn func(ev message.Event) error)
}
