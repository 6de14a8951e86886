package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
)

const maxMessageSize = 1 << 20

type response struct {
	env Envelope
	err error
}

// currentConn returns the live connection, or nil while disconnected.
func (b *Bridge) currentConn() *websocket.Conn {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conn
}

func (b *Bridge) setConn(conn *websocket.Conn) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.conn = conn
}

// dropConn forgets conn and fails every pending request with
// ErrNotConnected.
func (b *Bridge) dropConn(conn *websocket.Conn) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.conn == conn {
		b.conn = nil
	}
	for id, ch := range b.pending {
		select {
		case ch <- response{err: ErrNotConnected}:
		default:
		}
		delete(b.pending, id)
	}
}

// request writes an envelope of type typ and waits for the envelope that
// answers it, bounded by the configured request timeout.
func (b *Bridge) request(ctx context.Context, typ MessageType, payload any) (Envelope, error) {
	conn := b.currentConn()
	if conn == nil {
		return Envelope{}, ErrNotConnected
	}

	id := uuid.NewString()
	ch := make(chan response, 1)

	b.mu.Lock()
	b.pending[id] = ch
	b.mu.Unlock()
	defer func() {
		b.mu.Lock()
		delete(b.pending, id)
		b.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(ctx, b.config.RequestTimeout)
	defer cancel()

	if err := writeEnvelope(ctx, conn, typ, id, payload); err != nil {
		return Envelope{}, err
	}

	select {
	case resp := <-ch:
		if resp.err != nil {
			return Envelope{}, resp.err
		}
		if resp.env.Type == MsgError {
			var p ErrorPayload
			_ = json.Unmarshal(resp.env.Payload, &p)
			return Envelope{}, fmt.Errorf("%w: %s", ErrRemote, p.Message)
		}
		return resp.env, nil
	case <-ctx.Done():
		return Envelope{}, fmt.Errorf("bridge: %s: %w", typ, ctx.Err())
	}
}

// resolve hands a response envelope to the request waiting on its ID.
func (b *Bridge) resolve(env Envelope) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch, ok := b.pending[env.ID]
	if !ok {
		return false
	}
	// Non-blocking: late or duplicate responses are dropped.
	select {
	case ch <- response{env: env}:
	default:
	}
	return true
}

func writeEnvelope(ctx context.Context, conn *websocket.Conn, typ MessageType, id string, payload any) error {
	env := Envelope{Type: typ, ID: id, Timestamp: time.Now()}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("bridge: marshal %s: %w", typ, err)
		}
		env.Payload = raw
	}
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("bridge: marshal envelope: %w", err)
	}
	if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
		return fmt.Errorf("bridge: write %s: %w", typ, err)
	}
	return nil
}

// session runs one connection until it fails or ctx is cancelled.
func (b *Bridge) session(ctx context.Context) error {
	dialCtx, cancel := context.WithTimeout(ctx, b.config.RequestTimeout)
	conn, _, err := websocket.Dial(dialCtx, b.config.URL, nil)
	cancel()
	if err != nil {
		return fmt.Errorf("bridge: dial %s: %w", b.config.URL, err)
	}
	conn.SetReadLimit(maxMessageSize)
	defer func() { _ = conn.Close(websocket.StatusNormalClosure, "") }()

	if err := writeEnvelope(ctx, conn, MsgHello, "", Hello{Token: b.config.Token}); err != nil {
		return err
	}

	b.setConn(conn)
	defer b.dropConn(conn)
	b.logger.Info("bridge connected", "url", b.config.URL)

	sessCtx, stopPing := context.WithCancel(ctx)
	defer stopPing()
	go b.pingLoop(sessCtx, conn)

	return b.readLoop(sessCtx, conn)
}

func (b *Bridge) readLoop(ctx context.Context, conn *websocket.Conn) error {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return err
		}

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			b.logger.Warn("invalid message from bridge", "error", err)
			continue
		}

		switch env.Type {
		case MsgMessageCreate:
			var mc MessageCreate
			if err := json.Unmarshal(env.Payload, &mc); err != nil {
				b.logger.Warn("invalid message_create", "error", err)
				continue
			}
			select {
			case b.events <- convertEvent(mc, b.transportID()):
			case <-ctx.Done():
				return ctx.Err()
			}

		case MsgSendResult, MsgContacts, MsgPong:
			if !b.resolve(env) {
				b.logger.Debug("response without pending request", "type", env.Type, "id", env.ID)
			}

		case MsgError:
			if env.ID != "" && b.resolve(env) {
				continue
			}
			var p ErrorPayload
			_ = json.Unmarshal(env.Payload, &p)
			b.logger.Warn("bridge reported an error", "message", p.Message)

		default:
			b.logger.Warn("unexpected message type from bridge", "type", env.Type)
		}
	}
}

// pingLoop keeps the connection alive and closes it when the bridge stops
// answering, which makes the read loop return and triggers a reconnect.
func (b *Bridge) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(b.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := b.request(ctx, MsgPing, nil); err != nil {
				if ctx.Err() != nil {
					return
				}
				b.logger.Warn("bridge ping failed, reconnecting", "error", err)
				_ = conn.Close(websocket.StatusGoingAway, "ping timeout")
				return
			}
		}
	}
}
