package transport

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/flemzord/relaybot/pkg/message"
)

// Dispatcher routes outbound messages to the transport that owns the target
// channel. It never retries: a failed send is reported to the caller once.
type Dispatcher struct {
	mu         sync.RWMutex
	transports map[string]Transport
}

// NewDispatcher creates an empty Dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		transports: make(map[string]Transport),
	}
}

// Register adds a transport under the given name.
// Returns ErrDuplicateTransport if the name is already taken.
func (d *Dispatcher) Register(name string, t Transport) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.transports[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateTransport, name)
	}
	d.transports[name] = t
	return nil
}

// Get returns the transport registered under name, or false if none.
func (d *Dispatcher) Get(name string) (Transport, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	t, ok := d.transports[name]
	return t, ok
}

// Send dispatches an outbound message to the transport identified by
// msg.Chat.Transport. It returns ErrNoTransport if no transport is
// registered under that name.
func (d *Dispatcher) Send(ctx context.Context, msg message.OutboundMessage) error {
	d.mu.RLock()
	t, ok := d.transports[msg.Chat.Transport]
	d.mu.RUnlock()

	if !ok {
		return fmt.Errorf("%w: %q", ErrNoTransport, msg.Chat.Transport)
	}
	return t.Send(ctx, msg)
}

// Contacts returns the address books of all registered transports, in
// transport name order. Each contact is tagged with its transport name.
func (d *Dispatcher) Contacts(ctx context.Context) ([]message.Contact, error) {
	var all []message.Contact
	for _, name := range d.Transports() {
		t, ok := d.Get(name)
		if !ok {
			continue
		}
		contacts, err := t.Contacts(ctx)
		if err != nil {
			return nil, fmt.Errorf("transport %s: listing contacts: %w", name, err)
		}
		for _, c := range contacts {
			c.Transport = name
			all = append(all, c)
		}
	}
	return all, nil
}

// Transports returns the sorted names of all registered transports.
func (d *Dispatcher) Transports() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	names := make([]string, 0, len(d.transports))
	for name := range d.transports {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
