package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/flemzord/relaybot/internal/core"
	"github.com/flemzord/relaybot/pkg/message"
)

// fakeBridge is an in-process bridge sidecar. It records the hello token and
// the send_message payloads, answers requests, and can push events.
type fakeBridge struct {
	t      *testing.T
	server *httptest.Server

	mu       sync.Mutex
	conns    []*websocket.Conn
	hellos   []string
	sent     []SendMessage
	contacts []WireContact

	// reject, if non-empty, makes send_message fail with this reason.
	reject string
	// silent makes the bridge ignore every request.
	silent bool
	// connected receives a value after each accepted hello.
	connected chan struct{}
}

func newFakeBridge(t *testing.T, contacts ...WireContact) *fakeBridge {
	t.Helper()
	fb := &fakeBridge{t: t, contacts: contacts, connected: make(chan struct{}, 8)}
	fb.server = httptest.NewServer(http.HandlerFunc(fb.handle))
	t.Cleanup(fb.server.Close)
	return fb
}

func (fb *fakeBridge) url() string {
	return "ws" + strings.TrimPrefix(fb.server.URL, "http")
}

func (fb *fakeBridge) handle(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		return
	}
	defer func() { _ = conn.Close(websocket.StatusNormalClosure, "") }()
	ctx := r.Context()

	env, ok := fb.read(ctx, conn)
	if !ok || env.Type != MsgHello {
		return
	}
	var hello Hello
	_ = json.Unmarshal(env.Payload, &hello)

	fb.mu.Lock()
	fb.conns = append(fb.conns, conn)
	fb.hellos = append(fb.hellos, hello.Token)
	fb.mu.Unlock()
	fb.connected <- struct{}{}

	for {
		env, ok := fb.read(ctx, conn)
		if !ok {
			return
		}

		fb.mu.Lock()
		silent, reject, contacts := fb.silent, fb.reject, fb.contacts
		fb.mu.Unlock()
		if silent {
			continue
		}

		switch env.Type {
		case MsgPing:
			fb.write(ctx, conn, MsgPong, env.ID, nil)
		case MsgGetContacts:
			fb.write(ctx, conn, MsgContacts, env.ID, ContactsResult{Contacts: contacts})
		case MsgSendMessage:
			var sm SendMessage
			_ = json.Unmarshal(env.Payload, &sm)
			fb.mu.Lock()
			fb.sent = append(fb.sent, sm)
			fb.mu.Unlock()
			if reject != "" {
				fb.write(ctx, conn, MsgSendResult, env.ID, SendResult{OK: false, Error: reject})
				continue
			}
			fb.write(ctx, conn, MsgSendResult, env.ID, SendResult{OK: true})
		default:
			fb.write(ctx, conn, MsgError, env.ID, ErrorPayload{Message: "unsupported"})
		}
	}
}

func (fb *fakeBridge) read(ctx context.Context, conn *websocket.Conn) (Envelope, bool) {
	_, data, err := conn.Read(ctx)
	if err != nil {
		return Envelope{}, false
	}
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, false
	}
	return env, true
}

func (fb *fakeBridge) write(ctx context.Context, conn *websocket.Conn, typ MessageType, id string, payload any) {
	_ = writeEnvelope(ctx, conn, typ, id, payload)
}

// push sends a message_create on the latest connection.
func (fb *fakeBridge) push(mc MessageCreate) {
	fb.t.Helper()
	fb.mu.Lock()
	conn := fb.conns[len(fb.conns)-1]
	fb.mu.Unlock()
	if err := writeEnvelope(context.Background(), conn, MsgMessageCreate, "", mc); err != nil {
		fb.t.Fatalf("push: %v", err)
	}
}

// dropAll closes every accepted connection.
func (fb *fakeBridge) dropAll() {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	for _, c := range fb.conns {
		_ = c.Close(websocket.StatusGoingAway, "restart")
	}
}

func (fb *fakeBridge) sentMessages() []SendMessage {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	cp := make([]SendMessage, len(fb.sent))
	copy(cp, fb.sent)
	return cp
}

func (fb *fakeBridge) waitConnected(t *testing.T) {
	t.Helper()
	select {
	case <-fb.connected:
	case <-time.After(5 * time.Second):
		t.Fatal("bridge client did not connect")
	}
}

// eventSink collects events delivered to the inbox.
type eventSink struct {
	ch chan message.Event
}

func newEventSink() *eventSink {
	return &eventSink{ch: make(chan message.Event, 16)}
}

func (s *eventSink) inbox(ev message.Event) error {
	s.ch <- ev
	return nil
}

func (s *eventSink) next(t *testing.T) message.Event {
	t.Helper()
	select {
	case ev := <-s.ch:
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("no event delivered")
		return message.Event{}
	}
}

// startBridge provisions and starts a Bridge against fb.
func startBridge(t *testing.T, fb *fakeBridge, cfg Config, sink *eventSink) *Bridge {
	t.Helper()

	cfg.URL = fb.url()
	b := &Bridge{config: cfg}
	ctx := core.NewAppContext(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)), t.TempDir())
	if err := b.Provision(ctx); err != nil {
		t.Fatalf("Provision: %v", err)
	}
	if err := b.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	b.SetInbox(sink.inbox)
	if err := b.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = b.Stop(ctx)
	})
	fb.waitConnected(t)
	waitFor(t, b.Connected)
	return b
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
