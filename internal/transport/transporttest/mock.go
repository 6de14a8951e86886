// Package transporttest provides test doubles for the transport package.
package transporttest

import (
	"context"
	"sync"

	"github.com/flemzord/relaybot/internal/core"
	"github.com/flemzord/relaybot/internal/transport"
	"github.com/flemzord/relaybot/pkg/message"
)

// MockTransport is a test double that implements transport.Transport. It
// records sent messages, serves a fixed address book, and lets tests inject
// events via SimulateEvent.
type MockTransport struct {
	name     string
	mu       sync.Mutex
	inbox    func(ev message.Event) error
	sent     []message.OutboundMessage
	contacts []message.Contact

	// SendFunc, if set, is called instead of the default recording behavior.
	SendFunc func(ctx context.Context, msg message.OutboundMessage) error

	// ContactsFunc, if set, is called instead of returning the fixed contacts.
	ContactsFunc func(ctx context.Context) ([]message.Contact, error)
}

// Compile-time interface guard.
var _ transport.Transport = (*MockTransport)(nil)

// NewMockTransport creates a MockTransport with the given name and contacts.
func NewMockTransport(name string, contacts ...message.Contact) *MockTransport {
	return &MockTransport{
		name:     name,
		contacts: contacts,
	}
}

// ModuleInfo implements core.Module.
func (m *MockTransport) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID: core.ModuleID("transport." + m.name),
		New: func() core.Module {
			return NewMockTransport(m.name, m.contacts...)
		},
	}
}

// Send records the outbound message. If SendFunc is set, it delegates to it.
func (m *MockTransport) Send(ctx context.Context, msg message.OutboundMessage) error {
	if m.SendFunc != nil {
		return m.SendFunc(ctx, msg)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

// Contacts returns the fixed address book, or delegates to ContactsFunc.
func (m *MockTransport) Contacts(ctx context.Context) ([]message.Contact, error) {
	if m.ContactsFunc != nil {
		return m.ContactsFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := make([]message.Contact, len(m.contacts))
	copy(cp, m.contacts)
	return cp, nil
}

// SetInbox stores the inbox callback.
func (m *MockTransport) SetInbox(fn func(ev message.Event) error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inbox = fn
}

// SimulateEvent pushes an event into the inbox, tagging its channel with
// this transport's module ID. It returns transport.ErrNoInbox if SetInbox
// has not been called.
func (m *MockTransport) SimulateEvent(ev message.Event) error {
	m.mu.Lock()
	inbox := m.inbox
	m.mu.Unlock()

	if inbox == nil {
		return transport.ErrNoInbox
	}
	ev.Chat.Transport = string(m.ModuleInfo().ID)
	return inbox(ev)
}

// SentMessages returns a copy of all outbound messages recorded by Send.
func (m *MockTransport) SentMessages() []message.OutboundMessage {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := make([]message.OutboundMessage, len(m.sent))
	copy(cp, m.sent)
	return cp
}

// Reset clears recorded sent messages.
func (m *MockTransport) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = nil
}
