package relay_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/flemzord/relaybot/internal/relay"
	"github.com/flemzord/relaybot/pkg/message"
)

// recordingHandler records handled events and detects overlapping calls.
type recordingHandler struct {
	mu       sync.Mutex
	events   []message.Event
	inFlight int
	overlap  bool
	delay    time.Duration
	release  chan struct{}
}

func (h *recordingHandler) Handle(_ context.Context, ev message.Event) {
	h.mu.Lock()
	h.inFlight++
	if h.inFlight > 1 {
		h.overlap = true
	}
	h.mu.Unlock()

	if h.release != nil {
		<-h.release
	}
	time.Sleep(h.delay)

	h.mu.Lock()
	h.events = append(h.events, ev)
	h.inFlight--
	h.mu.Unlock()
}

func (h *recordingHandler) handled() []message.Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	cp := make([]message.Event, len(h.events))
	copy(cp, h.events)
	return cp
}

func newTestIngress(h relay.Handler, queueSize int) *relay.Ingress {
	return relay.NewIngress(h, relay.IngressConfig{
		QueueSize: queueSize,
		Logger:    slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)),
	})
}

func TestIngress_ModuleInfo(t *testing.T) {
	t.Parallel()

	in := newTestIngress(&recordingHandler{}, 1)
	if got := in.ModuleInfo().ID; got != "relay.ingress" {
		t.Errorf("ID = %q, want %q", got, "relay.ingress")
	}
}

func TestIngress_PreservesOrderWithoutOverlap(t *testing.T) {
	t.Parallel()

	h := &recordingHandler{delay: time.Millisecond}
	in := newTestIngress(h, 4)
	if err := in.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	const n = 20
	for i := range n {
		if err := in.Submit(message.Event{ID: fmt.Sprintf("ev-%02d", i)}); err != nil {
			t.Fatalf("Submit(%d): %v", i, err)
		}
	}

	if err := in.Stop(context.Background()); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	got := h.handled()
	if len(got) != n {
		t.Fatalf("handled %d events, want %d", len(got), n)
	}
	for i, ev := range got {
		if want := fmt.Sprintf("ev-%02d", i); ev.ID != want {
			t.Errorf("event[%d] = %q, want %q", i, ev.ID, want)
		}
	}
	if h.overlap {
		t.Error("handler calls overlapped")
	}
}

func TestIngress_FillsIDAndTimestamp(t *testing.T) {
	t.Parallel()

	fixed := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	h := &recordingHandler{}
	in := relay.NewIngress(h, relay.IngressConfig{
		Logger: slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)),
		Now:    func() time.Time { return fixed },
	})
	if err := in.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	stamped := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	_ = in.Submit(message.Event{Body: "bare"})
	_ = in.Submit(message.Event{ID: "keep", Timestamp: stamped, Body: "full"})
	_ = in.Stop(context.Background())

	got := h.handled()
	if len(got) != 2 {
		t.Fatalf("handled %d events, want 2", len(got))
	}
	if got[0].ID == "" {
		t.Error("missing ID should be generated")
	}
	if !got[0].Timestamp.Equal(fixed) {
		t.Errorf("Timestamp = %v, want %v", got[0].Timestamp, fixed)
	}
	if got[1].ID != "keep" || !got[1].Timestamp.Equal(stamped) {
		t.Errorf("event = %+v, want ID and timestamp preserved", got[1])
	}
}

func TestIngress_SubmitAfterStop(t *testing.T) {
	t.Parallel()

	in := newTestIngress(&recordingHandler{}, 1)
	if err := in.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := in.Stop(context.Background()); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	if err := in.Submit(message.Event{ID: "late"}); !errors.Is(err, relay.ErrIngressStopped) {
		t.Errorf("Submit error = %v, want %v", err, relay.ErrIngressStopped)
	}
	// Stop is idempotent.
	if err := in.Stop(context.Background()); err != nil {
		t.Errorf("second Stop: %v", err)
	}
}

func TestIngress_StopReleasesBlockedSubmit(t *testing.T) {
	t.Parallel()

	h := &recordingHandler{release: make(chan struct{})}
	in := newTestIngress(h, 1)
	if err := in.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	// First event occupies the consumer, second fills the queue.
	_ = in.Submit(message.Event{ID: "a"})
	_ = in.Submit(message.Event{ID: "b"})

	blocked := make(chan error, 1)
	go func() { blocked <- in.Submit(message.Event{ID: "c"}) }()

	select {
	case err := <-blocked:
		t.Fatalf("Submit returned early with %v, want it to block on a full queue", err)
	case <-time.After(50 * time.Millisecond):
	}

	stopped := make(chan struct{})
	go func() {
		_ = in.Stop(context.Background())
		close(stopped)
	}()

	select {
	case err := <-blocked:
		if !errors.Is(err, relay.ErrIngressStopped) {
			t.Errorf("blocked Submit error = %v, want %v", err, relay.ErrIngressStopped)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("blocked Submit was not released by Stop")
	}

	close(h.release)
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return after the queue drained")
	}
}

func TestIngress_StopWithoutStart(t *testing.T) {
	t.Parallel()

	in := newTestIngress(&recordingHandler{}, 1)
	if err := in.Stop(context.Background()); err != nil {
		t.Errorf("Stop: %v", err)
	}
}
