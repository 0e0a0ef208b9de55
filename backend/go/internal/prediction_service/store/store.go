package store

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"prediction_relay/backend/go/pkg/models"
)

// PredictionStore persists prediction records. Records are append-only; List returns
// every record ordered by CreatedAt, newest first.
type PredictionStore interface {
	Save(ctx context.Context, record *models.PredictionRecord) error
	List(ctx context.Context) ([]models.PredictionRecord, error)
}

// Status is the connectivity state of a Handle.
type Status int

const (
	NotConnected Status = iota
	Connected
)

func (s Status) String() string {
	if s == Connected {
		return "Connected"
	}
	return "Not Connected"
}

// ErrNotConnected is returned by Handle operations before the store connected.
var ErrNotConnected = errors.New("store not connected")

// Connector opens a backend store.
type Connector func(ctx context.Context) (PredictionStore, error)

type closer interface {
	Close(ctx context.Context) error
}

type slot struct {
	store PredictionStore
}

// Handle owns the process' store connection and exposes its state. It moves from
// NotConnected to Connected once, when a Connect call succeeds, and never back.
type Handle struct {
	current atomic.Pointer[slot]
}

// NewHandle returns a Handle in the NotConnected state.
func NewHandle() *Handle {
	return &Handle{}
}

// ConnectedHandle returns a Handle already bound to s.
func ConnectedHandle(s PredictionStore) *Handle {
	h := NewHandle()
	h.current.Store(&slot{store: s})
	return h
}

// Connect opens the backend with connect and binds it. Calling Connect on a connected
// Handle is a no-op.
func (h *Handle) Connect(ctx context.Context, connect Connector) error {
	if h.Status() == Connected {
		return nil
	}
	s, err := connect(ctx)
	if err != nil {
		return err
	}
	if s == nil {
		return fmt.Errorf("connector returned no store")
	}
	if !h.current.CompareAndSwap(nil, &slot{store: s}) {
		// lost a race with a concurrent Connect; keep the first store
		if c, ok := s.(closer); ok {
			_ = c.Close(ctx)
		}
	}
	return nil
}

// Status reports whether the store connected.
func (h *Handle) Status() Status {
	if h.current.Load() == nil {
		return NotConnected
	}
	return Connected
}

// Store returns the connected backend, or false before Connect succeeded.
func (h *Handle) Store() (PredictionStore, bool) {
	sl := h.current.Load()
	if sl == nil {
		return nil, false
	}
	return sl.store, true
}

// Save writes record, or returns ErrNotConnected.
func (h *Handle) Save(ctx context.Context, record *models.PredictionRecord) error {
	s, ok := h.Store()
	if !ok {
		return ErrNotConnected
	}
	return s.Save(ctx, record)
}

// List reads every record, or returns ErrNotConnected.
func (h *Handle) List(ctx context.Context) ([]models.PredictionRecord, error) {
	s, ok := h.Store()
	if !ok {
		return nil, ErrNotConnected
	}
	return s.List(ctx)
}

// Close releases the backend if it holds resources.
func (h *Handle) Close(ctx context.Context) error {
	s, ok := h.Store()
	if !ok {
		return nil
	}
	if c, ok := s.(closer); ok {
		return c.Close(ctx)
	}
	return nil
}
