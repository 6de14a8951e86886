package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/flemzord/relaybot/internal/core"
	"github.com/flemzord/relaybot/internal/security"
	"github.com/flemzord/relaybot/internal/transport"
	"github.com/flemzord/relaybot/pkg/message"
	"gopkg.in/yaml.v3"
)

func init() {
	core.RegisterModule(&Bridge{})
}

// Compile-time interface guards.
var (
	_ transport.Transport = (*Bridge)(nil)
	_ core.Configurable   = (*Bridge)(nil)
	_ core.Provisioner    = (*Bridge)(nil)
	_ core.Validator      = (*Bridge)(nil)
	_ core.Starter        = (*Bridge)(nil)
	_ core.Stopper        = (*Bridge)(nil)
)

// Bridge is the WebSocket bridge transport.
type Bridge struct {
	config Config
	logger *slog.Logger

	inboxMu sync.RWMutex
	inbox   func(message.Event) error

	mu      sync.Mutex
	conn    *websocket.Conn
	pending map[string]chan response

	events   chan message.Event
	cancel   context.CancelFunc
	done     chan struct{}
	pumpDone chan struct{}
	stopOnce sync.Once
}

// ModuleInfo implements core.Module.
func (b *Bridge) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "transport.bridge",
		New: func() core.Module { return &Bridge{} },
	}
}

func (b *Bridge) transportID() string {
	return string(b.ModuleInfo().ID)
}

// Configure implements core.Configurable.
func (b *Bridge) Configure(node *yaml.Node) error {
	if err := node.Decode(&b.config); err != nil {
		return fmt.Errorf("bridge: decode config: %w", err)
	}
	b.config.defaults()
	return nil
}

// Provision implements core.Provisioner.
func (b *Bridge) Provision(ctx *core.AppContext) error {
	b.config.defaults()
	b.logger = ctx.Logger
	if svc, ok := ctx.Service(security.ServiceName); ok {
		if r, ok := svc.(*security.Redactor); ok {
			r.AddSecret(b.config.Token)
		}
	}
	b.pending = make(map[string]chan response)
	b.events = make(chan message.Event, b.config.EventBuffer)
	return nil
}

// Validate implements core.Validator.
func (b *Bridge) Validate() error {
	return b.config.validate()
}

// Start implements core.Starter. It launches the connection loop and the
// event pump; it does not wait for the first connection.
func (b *Bridge) Start() error {
	b.inboxMu.RLock()
	hasInbox := b.inbox != nil
	b.inboxMu.RUnlock()
	if !hasInbox {
		return errors.New("bridge: inbox not set, call SetInbox before Start")
	}

	ctx, cancel := context.WithCancel(context.Background())
	b.cancel = cancel
	b.done = make(chan struct{})
	b.pumpDone = make(chan struct{})

	go b.loop(ctx)
	go b.pump(b.events)
	return nil
}

// loop keeps a session open, reconnecting after ReconnectDelay.
func (b *Bridge) loop(ctx context.Context) {
	defer close(b.done)

	for {
		err := b.session(ctx)
		if ctx.Err() != nil {
			return
		}
		b.logger.Warn("bridge disconnected", "error", err, "retry_in", b.config.ReconnectDelay)

		select {
		case <-ctx.Done():
			return
		case <-time.After(b.config.ReconnectDelay):
		}
	}
}

// pump delivers events to the inbox outside the read loop, so responses
// keep flowing while the inbox blocks.
func (b *Bridge) pump(events <-chan message.Event) {
	defer close(b.pumpDone)
	for ev := range events {
		b.inboxMu.RLock()
		inbox := b.inbox
		b.inboxMu.RUnlock()

		if err := inbox(ev); err != nil {
			b.logger.Error("failed to deliver event to inbox", "event_id", ev.ID, "error", err)
		}
	}
}

// Stop implements core.Stopper.
func (b *Bridge) Stop(ctx context.Context) error {
	if b.cancel == nil {
		return nil
	}
	b.stopOnce.Do(func() {
		b.logger.Info("bridge transport stopping")
		b.cancel()
	})

	select {
	case <-b.done:
	case <-ctx.Done():
		return ctx.Err()
	}

	// The read loop has exited: no more writers on events.
	b.mu.Lock()
	if b.events != nil {
		close(b.events)
		b.events = nil
	}
	b.mu.Unlock()

	select {
	case <-b.pumpDone:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SetInbox implements transport.Transport.
func (b *Bridge) SetInbox(fn func(ev message.Event) error) {
	b.inboxMu.Lock()
	defer b.inboxMu.Unlock()
	b.inbox = fn
}

// Connected reports whether a bridge connection is currently established.
func (b *Bridge) Connected() bool {
	return b.currentConn() != nil
}

// Send implements transport.Transport.
func (b *Bridge) Send(ctx context.Context, msg message.OutboundMessage) error {
	env, err := b.request(ctx, MsgSendMessage, convertOutbound(msg))
	if err != nil {
		return err
	}
	if env.Type != MsgSendResult {
		return fmt.Errorf("%w: %s to send_message", ErrUnexpectedResponse, env.Type)
	}

	var res SendResult
	if err := json.Unmarshal(env.Payload, &res); err != nil {
		return fmt.Errorf("bridge: decode send_result: %w", err)
	}
	if !res.OK {
		return fmt.Errorf("%w: %s", ErrSendRejected, res.Error)
	}
	return nil
}

// Contacts implements transport.Transport.
func (b *Bridge) Contacts(ctx context.Context) ([]message.Contact, error) {
	env, err := b.request(ctx, MsgGetContacts, nil)
	if err != nil {
		return nil, err
	}
	if env.Type != MsgContacts {
		return nil, fmt.Errorf("%w: %s to get_contacts", ErrUnexpectedResponse, env.Type)
	}

	var res ContactsResult
	if err := json.Unmarshal(env.Payload, &res); err != nil {
		return nil, fmt.Errorf("bridge: decode contacts: %w", err)
	}
	return convertContacts(res.Contacts), nil
}
