package relay

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/flemzord/relaybot/internal/core"
	"github.com/flemzord/relaybot/pkg/message"
	"github.com/google/uuid"
)

const defaultQueueSize = 256

// Handler processes one event to completion.
type Handler interface {
	Handle(ctx context.Context, ev message.Event)
}

// IngressConfig holds the configuration for an Ingress.
type IngressConfig struct {
	QueueSize int
	Logger    *slog.Logger
	Now       func() time.Time
}

func (c IngressConfig) withDefaults() IngressConfig {
	if c.QueueSize <= 0 {
		c.QueueSize = defaultQueueSize
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

// Ingress serializes transport events into a single consumer goroutine.
// Events are handled one at a time in submission order; a handler call
// always returns before the next one begins.
type Ingress struct {
	config  IngressConfig
	handler Handler
	logger  *slog.Logger

	queue   chan message.Event
	queueMu sync.RWMutex
	quit    chan struct{}
	done    chan struct{}

	cancel   context.CancelFunc
	started  atomic.Bool
	stopped  atomic.Bool
	stopOnce sync.Once
}

// Compile-time interface guards.
var (
	_ core.Module  = (*Ingress)(nil)
	_ core.Starter = (*Ingress)(nil)
	_ core.Stopper = (*Ingress)(nil)
)

// NewIngress creates an Ingress feeding h.
func NewIngress(h Handler, cfg IngressConfig) *Ingress {
	cfg = cfg.withDefaults()
	return &Ingress{
		config:  cfg,
		handler: h,
		logger:  cfg.Logger,
		queue:   make(chan message.Event, cfg.QueueSize),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// ModuleInfo implements core.Module.
func (in *Ingress) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "relay.ingress",
		New: func() core.Module { return in },
	}
}

// Submit enqueues ev. It blocks while the queue is full; events are never
// dropped. Missing IDs and timestamps are filled in.
func (in *Ingress) Submit(ev message.Event) error {
	in.queueMu.RLock()
	defer in.queueMu.RUnlock()

	if in.stopped.Load() {
		return ErrIngressStopped
	}
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = in.config.Now()
	}

	select {
	case in.queue <- ev:
		return nil
	case <-in.quit:
		return ErrIngressStopped
	}
}

// Start launches the consumer goroutine.
func (in *Ingress) Start() error {
	if !in.started.CompareAndSwap(false, true) {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	in.cancel = cancel

	go in.consume(ctx)
	in.logger.Info("relay: ingress started", "queue_size", in.config.QueueSize)
	return nil
}

func (in *Ingress) consume(ctx context.Context) {
	defer close(in.done)
	for ev := range in.queue {
		in.handler.Handle(ctx, ev)
	}
}

// Stop closes the queue and waits for queued events to be handled, or for
// ctx to expire.
func (in *Ingress) Stop(ctx context.Context) error {
	in.stopOnce.Do(func() {
		in.logger.Info("relay: ingress stopping")

		// Release submitters blocked on a full queue before taking the lock.
		close(in.quit)

		in.queueMu.Lock()
		in.stopped.Store(true)
		close(in.queue)
		in.queueMu.Unlock()
	})

	if !in.started.Load() {
		return nil
	}

	select {
	case <-in.done:
	case <-ctx.Done():
		in.cancel()
		<-in.done
	}
	in.cancel()
	in.logger.Info("relay: ingress stopped")
	return nil
}
