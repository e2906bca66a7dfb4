// Package audit records who did what to which resource. Recording is
// best-effort: a failed write never fails the request that triggered it.
package audit

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Actions recorded in the audit trail.
const (
	ActionCreate = "create"
	ActionRead   = "read"
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionLogin  = "login"
	ActionLogout = "logout"
	ActionExport = "export"
	ActionShare  = "share"
)

// Entry is one audit event.
type Entry struct {
	ActorID    uuid.UUID
	Action     string
	Resource   string
	ResourceID *uuid.UUID
	IPAddress  string
	UserAgent  string
}

// Recorder accepts audit entries. Handlers depend on this rather than the
// concrete sink so tests can capture entries synchronously.
type Recorder interface {
	Record(c context.Context, e Entry)
}

// Store persists audit entries. Implemented by the auditlog repository.
type Store interface {
	Insert(ctx context.Context, e Entry) error
}

const writeTimeout = 5 * time.Second

// Sink writes entries to the store asynchronously. Failures are logged for
// operators and otherwise swallowed.
type Sink struct {
	store  Store
	logger zerolog.Logger
	wg     sync.WaitGroup
}

func NewSink(store Store, logger zerolog.Logger) *Sink {
	return &Sink{store: store, logger: logger}
}

// Record dispatches the write on a fresh goroutine, detached from the request
// context so in-flight entries survive the response being sent.
func (s *Sink) Record(_ context.Context, e Entry) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()

		if err := s.store.Insert(ctx, e); err != nil {
			s.logger.Error().
				Err(err).
				Str("action", e.Action).
				Str("resource", e.Resource).
				Msg("audit write failed")
		}
	}()
}

// Flush blocks until all dispatched writes have finished. Called on shutdown
// and from tests.
func (s *Sink) Flush() {
	s.wg.Wait()
}
