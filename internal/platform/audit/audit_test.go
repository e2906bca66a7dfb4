package audit

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type captureStore struct {
	mu      sync.Mutex
	entries []Entry
	err     error
}

func (s *captureStore) Insert(_ context.Context, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.entries = append(s.entries, e)
	return nil
}

func (s *captureStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func TestSink_RecordsEntry(t *testing.T) {
	store := &captureStore{}
	sink := NewSink(store, zerolog.Nop())

	actor := uuid.New()
	sink.Record(context.Background(), Entry{
		ActorID:  actor,
		Action:   ActionCreate,
		Resource: "patient",
	})
	sink.Flush()

	if store.count() != 1 {
		t.Fatalf("expected 1 entry, got %d", store.count())
	}
	if store.entries[0].ActorID != actor {
		t.Errorf("expected actor %s, got %s", actor, store.entries[0].ActorID)
	}
}

func TestSink_SwallowsStoreFailure(t *testing.T) {
	store := &captureStore{err: errors.New("connection refused")}
	sink := NewSink(store, zerolog.Nop())

	sink.Record(context.Background(), Entry{Action: ActionLogin, Resource: "user"})
	sink.Flush()

	if store.count() != 0 {
		t.Fatalf("expected 0 entries, got %d", store.count())
	}
}

func TestSink_SurvivesCancelledRequestContext(t *testing.T) {
	store := &captureStore{}
	sink := NewSink(store, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sink.Record(ctx, Entry{Action: ActionRead, Resource: "document"})
	sink.Flush()

	if store.count() != 1 {
		t.Fatalf("expected 1 entry despite cancelled request context, got %d", store.count())
	}
}

func TestSink_ConcurrentRecords(t *testing.T) {
	store := &captureStore{}
	sink := NewSink(store, zerolog.Nop())

	const n = 50
	for i := 0; i < n; i++ {
		sink.Record(context.Background(), Entry{Action: ActionUpdate, Resource: "appointment"})
	}
	sink.Flush()

	if store.count() != n {
		t.Fatalf("expected %d entries, got %d", n, store.count())
	}
}
