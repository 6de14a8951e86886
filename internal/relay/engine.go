package relay

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/flemzord/relaybot/internal/journal"
	"github.com/flemzord/relaybot/pkg/message"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/flemzord/relaybot/internal/relay"

// notFoundReply is sent to the group when the responder is not a contact.
const notFoundReply = "Sorry, I couldn't find the user '%s' in my contacts."

// Directory resolves the responder. A miss is (zero, false, nil).
type Directory interface {
	FindByName(ctx context.Context, name string) (message.Contact, bool, error)
	DirectChannelOf(ctx context.Context, contact message.Contact) (message.ChannelRef, error)
}

// Sender delivers outbound messages. *transport.Dispatcher implements it.
type Sender interface {
	Send(ctx context.Context, msg message.OutboundMessage) error
}

// EngineConfig holds the dependencies of an Engine.
type EngineConfig struct {
	Settings  Settings
	Directory Directory
	Sender    Sender
	Logger    *slog.Logger

	// Metrics, if non-nil, receives relay counters.
	Metrics *Metrics

	// Journal, if non-nil, records triggers, forwards and misses.
	Journal journal.Recorder

	// Tracer defaults to the global OpenTelemetry tracer provider.
	Tracer trace.Tracer

	// Now defaults to time.Now.
	Now func() time.Time
}

// Engine is the relay decision engine. It owns the relay session; Handle
// must be called from a single goroutine (see Ingress).
type Engine struct {
	settings  Settings
	directory Directory
	sender    Sender
	logger    *slog.Logger
	metrics   *Metrics
	journal   journal.Recorder
	tracer    trace.Tracer
	now       func() time.Time
	store     *Store
}

// NewEngine creates an Engine with an empty session store.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	if cfg.Directory == nil {
		return nil, ErrNoDirectory
	}
	if cfg.Sender == nil {
		return nil, ErrNoSender
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Tracer == nil {
		cfg.Tracer = otel.Tracer(tracerName)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	e := &Engine{
		settings:  cfg.Settings,
		directory: cfg.Directory,
		sender:    cfg.Sender,
		logger:    cfg.Logger,
		metrics:   cfg.Metrics,
		journal:   cfg.Journal,
		tracer:    cfg.Tracer,
		now:       cfg.Now,
		store:     NewStore(),
	}
	e.store.observe = e.observeSession
	return e, nil
}

// Settings returns the relay settings the engine was built with.
func (e *Engine) Settings() Settings {
	return e.settings
}

// Session returns the stored relay session, if any, without expiring it.
func (e *Engine) Session() (Session, bool) {
	return e.store.Current()
}

// Handle processes one message event. It first relays a responder reply
// into the origin group when a window is open, then checks whether the
// event is a new trigger. Both checks run on every event. Faults are logged
// and never propagate to the caller.
func (e *Engine) Handle(ctx context.Context, ev message.Event) {
	ctx, span := e.tracer.Start(ctx, "relay.handle", trace.WithAttributes(
		attribute.String("relay.event_id", ev.ID),
		attribute.String("relay.chat", ev.Chat.Name),
		attribute.Bool("relay.chat_is_group", ev.Chat.IsGroup()),
		attribute.Bool("relay.from_me", ev.FromMe),
	))
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			e.fail(span, ev, fmt.Errorf("%w: panic: %v", ErrUnexpected, r))
		}
	}()

	e.metrics.event()
	e.forwardReply(ctx, span, ev)
	e.detectTrigger(ctx, span, ev)
}

// forwardReply relays ev into the origin group when it is a reply from the
// responder inside an open window. An expired window is cleared first,
// whatever the event is.
func (e *Engine) forwardReply(ctx context.Context, span trace.Span, ev message.Event) {
	sess, active := e.store.CheckAndMaybeExpire(e.now())
	if !active {
		return
	}
	if ev.Chat.Name != e.settings.Responder || ev.FromMe {
		return
	}

	e.logger.Info("relay: forwarding reply",
		"responder", e.settings.Responder,
		"origin", sess.Origin.Name,
		"event_id", ev.ID,
	)
	span.AddEvent("relay.forward")

	if err := e.dispatch(ctx, message.NewTextMessage(sess.Origin, ev.Body)); err != nil {
		e.metrics.forward(outcomeFailed)
		return
	}
	e.metrics.forward(outcomeSent)
	e.record(ctx, journal.KindForward, sess.Origin, ev.Body)
}

// detectTrigger sends the query of a trigger message to the responder and
// opens a relay window on the triggering group.
func (e *Engine) detectTrigger(ctx context.Context, span trace.Span, ev message.Event) {
	if !e.isTrigger(ev) {
		return
	}

	query := ExtractQuery(ev.Body, e.settings.Trigger)
	e.logger.Info("relay: mention detected", "group", ev.Chat.Name, "query", query)
	span.AddEvent("relay.trigger", trace.WithAttributes(attribute.String("relay.query", query)))

	contact, found, err := e.directory.FindByName(ctx, e.settings.Responder)
	if err != nil {
		e.metrics.trigger(outcomeFailed)
		e.fail(span, ev, fmt.Errorf("%w: looking up %q: %w", ErrUnexpected, e.settings.Responder, err))
		return
	}
	if !found {
		e.logger.Warn("relay: responder not found in contacts", "responder", e.settings.Responder)
		e.metrics.trigger(outcomeMiss)
		_ = e.dispatch(ctx, message.NewReply(ev, fmt.Sprintf(notFoundReply, e.settings.Responder)))
		e.record(ctx, journal.KindMiss, ev.Chat, query)
		return
	}

	direct, err := e.directory.DirectChannelOf(ctx, contact)
	if err != nil {
		e.metrics.trigger(outcomeFailed)
		e.fail(span, ev, fmt.Errorf("%w: direct channel of %q: %w", ErrUnexpected, contact.Name, err))
		return
	}

	if err := e.dispatch(ctx, message.NewTextMessage(direct, query)); err == nil {
		e.logger.Info("relay: query sent", "responder", contact.Name)
	}

	if prev, ok := e.store.Current(); ok {
		e.logger.Info("relay: replacing open forwarding window",
			"discarded_origin", prev.Origin.Name,
			"discarded_expires_at", prev.ExpiresAt,
		)
	}
	sess := e.store.Start(ev.Chat, e.now())
	e.logger.Info("relay: entering forwarding mode",
		"origin", sess.Origin.Name,
		"window", Window,
		"expires_at", sess.ExpiresAt,
	)
	e.metrics.trigger(outcomeRelayed)
	e.record(ctx, journal.KindTrigger, ev.Chat, query)
}

func (e *Engine) isTrigger(ev message.Event) bool {
	return ev.Chat.IsGroup() &&
		ev.Chat.Name == e.settings.Group &&
		strings.Contains(ev.Body, e.settings.Trigger)
}

// dispatch sends msg once. A failure is logged, counted and returned
// wrapped in ErrDispatch; it is never retried.
func (e *Engine) dispatch(ctx context.Context, msg message.OutboundMessage) error {
	if err := e.sender.Send(ctx, msg); err != nil {
		err = fmt.Errorf("%w: %w", ErrDispatch, err)
		e.logger.Warn("relay: send failed",
			"chat", msg.Chat.Name,
			"transport", msg.Chat.Transport,
			"error", err,
		)
		e.metrics.dispatchError()
		return err
	}
	return nil
}

func (e *Engine) record(ctx context.Context, kind journal.Kind, chat message.ChannelRef, text string) {
	if e.journal == nil {
		return
	}
	err := e.journal.Record(ctx, journal.Entry{
		Kind:     kind,
		ChatID:   chat.ID,
		ChatName: chat.Name,
		Text:     text,
		At:       e.now(),
	})
	if err != nil {
		e.logger.Warn("relay: journal write failed", "kind", kind, "error", err)
	}
}

func (e *Engine) fail(span trace.Span, ev message.Event, err error) {
	e.logger.Error("relay: error processing message", "event_id", ev.ID, "error", err)
	e.metrics.failure()
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func (e *Engine) observeSession(s Session, active bool) {
	e.metrics.session(active)
	if !active {
		e.logger.Info("relay: forwarding period has ended", "origin", s.Origin.Name)
	}
}
