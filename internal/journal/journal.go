// Package journal defines the append-only relay journal: a history of the
// triggers, forwarded replies and lookup misses the relay produced. It is a
// traffic log, not relay state; the active session is never read back from it.
package journal

import (
	"context"
	"time"
)

// ServiceName is the service key under which a journal module registers
// its Store.
const ServiceName = "journal.store"

// Kind classifies a journal entry.
type Kind string

// Journal entry kinds.
const (
	KindTrigger Kind = "trigger"
	KindForward Kind = "forward"
	KindMiss    Kind = "miss"
)

// Entry is one journal line.
type Entry struct {
	ID       int64     `json:"id"`
	Kind     Kind      `json:"kind"`
	ChatID   string    `json:"chat_id"`
	ChatName string    `json:"chat_name"`
	Text     string    `json:"text"`
	At       time.Time `json:"at"`
}

// Recorder appends entries to the journal.
type Recorder interface {
	Record(ctx context.Context, e Entry) error
}

// Store is a queryable journal.
type Store interface {
	Recorder
	// Recent returns up to limit entries, newest first.
	Recent(ctx context.Context, limit int) ([]Entry, error)
	// Prune deletes entries recorded before the given instant and returns
	// how many were removed.
	Prune(ctx context.Context, before time.Time) (int64, error)
}
