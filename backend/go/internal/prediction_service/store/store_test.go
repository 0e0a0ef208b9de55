package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"prediction_relay/backend/go/pkg/models"

	"github.com/google/go-cmp/cmp"
)

var base = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func record(id string, offset time.Duration) *models.PredictionRecord {
	return &models.PredictionRecord{
		ID:         id,
		Features:   models.FeatureVector{30.0, 22.5, true},
		Prediction: "Low",
		Result:     "Low Risk",
		CreatedAt:  base.Add(offset),
	}
}

func ids(records []models.PredictionRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func TestMemoryPredictionStore_ListNewestFirst(t *testing.T) {
	s := NewMemoryPredictionStore()
	ctx := context.Background()

	// written out of order on purpose
	for _, r := range []*models.PredictionRecord{record("t2", time.Second), record("t1", 0), record("t3", 2*time.Second)} {
		if err := s.Save(ctx, r); err != nil {
			t.Fatalf("Save(%s) error = %v", r.ID, err)
		}
	}

	got, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if diff := cmp.Diff([]string{"t3", "t2", "t1"}, ids(got)); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestMemoryPredictionStore_EqualTimestampsNewestInsertFirst(t *testing.T) {
	s := NewMemoryPredictionStore()
	ctx := context.Background()
	_ = s.Save(ctx, record("a", 0))
	_ = s.Save(ctx, record("b", 0))

	got, _ := s.List(ctx)
	if diff := cmp.Diff([]string{"b", "a"}, ids(got)); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestMemoryPredictionStore_SaveCopiesFeatures(t *testing.T) {
	s := NewMemoryPredictionStore()
	r := record("a", 0)
	_ = s.Save(context.Background(), r)
	r.Features[0] = 99.0

	got, _ := s.List(context.Background())
	if got[0].Features[0] != 30.0 {
		t.Errorf("stored features changed after Save: %v", got[0].Features)
	}
}

func TestMemoryPredictionStore_CanceledContext(t *testing.T) {
	s := NewMemoryPredictionStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := s.Save(ctx, record("a", 0)); !errors.Is(err, context.Canceled) {
		t.Errorf("Save() error = %v, want context.Canceled", err)
	}
	if _, err := s.List(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("List() error = %v, want context.Canceled", err)
	}
}

func TestHandle_StartsDisconnected(t *testing.T) {
	h := NewHandle()
	if h.Status() != NotConnected {
		t.Fatalf("Status() = %v, want Not Connected", h.Status())
	}
	if err := h.Save(context.Background(), record("a", 0)); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Save() error = %v, want ErrNotConnected", err)
	}
	if _, err := h.List(context.Background()); !errors.Is(err, ErrNotConnected) {
		t.Errorf("List() error = %v, want ErrNotConnected", err)
	}
	if h.Status().String() != "Not Connected" {
		t.Errorf("String() = %q", h.Status().String())
	}
}

func TestHandle_ConnectFailureStaysDisconnected(t *testing.T) {
	h := NewHandle()
	boom := errors.New("no route to host")

	err := h.Connect(context.Background(), func(context.Context) (PredictionStore, error) { return nil, boom })
	if !errors.Is(err, boom) {
		t.Fatalf("Connect() error = %v, want %v", err, boom)
	}
	if h.Status() != NotConnected {
		t.Errorf("Status() = %v, want Not Connected", h.Status())
	}
}

func TestHandle_ConnectIsOneWay(t *testing.T) {
	h := NewHandle()
	first := NewMemoryPredictionStore()
	calls := 0
	connect := func(context.Context) (PredictionStore, error) {
		calls++
		return first, nil
	}

	if err := h.Connect(context.Background(), connect); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if h.Status() != Connected || h.Status().String() != "Connected" {
		t.Fatalf("Status() = %v, want Connected", h.Status())
	}

	// a second Connect does not replace the store or call the connector again
	if err := h.Connect(context.Background(), func(context.Context) (PredictionStore, error) {
		return nil, errors.New("should not be called")
	}); err != nil {
		t.Errorf("second Connect() error = %v", err)
	}
	s, ok := h.Store()
	if !ok || s != PredictionStore(first) {
		t.Errorf("Store() = %v, %v; want the first store", s, ok)
	}
	if calls != 1 {
		t.Errorf("connector called %d times, want 1", calls)
	}
}

type closingStore struct {
	*MemoryPredictionStore
	mu     sync.Mutex
	closed bool
}

func (c *closingStore) Close(context.Context) error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	return nil
}

func TestHandle_ConcurrentConnectKeepsOneStore(t *testing.T) {
	h := NewHandle()
	var wg sync.WaitGroup
	stores := make([]*closingStore, 8)
	for i := range stores {
		stores[i] = &closingStore{MemoryPredictionStore: NewMemoryPredictionStore()}
	}
	for i := range stores {
		wg.Add(1)
		go func(s *closingStore) {
			defer wg.Done()
			_ = h.Connect(context.Background(), func(context.Context) (PredictionStore, error) { return s, nil })
		}(stores[i])
	}
	wg.Wait()

	bound, ok := h.Store()
	if !ok {
		t.Fatal("handle not connected")
	}
	for _, s := range stores {
		s.mu.Lock()
		closed := s.closed
		s.mu.Unlock()
		if PredictionStore(s) == bound && closed {
			t.Error("the bound store was closed")
		}
	}
}

func TestHandle_DelegatesToStore(t *testing.T) {
	mem := NewMemoryPredictionStore()
	h := ConnectedHandle(mem)
	ctx := context.Background()

	if err := h.Save(ctx, record("a", 0)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := h.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if diff := cmp.Diff([]models.PredictionRecord{*record("a", 0)}, got); diff != "" {
		t.Errorf("List() mismatch (-want +got):\n%s", diff)
	}
}

func TestHandle_Close(t *testing.T) {
	if err := NewHandle().Close(context.Background()); err != nil {
		t.Errorf("Close() on disconnected handle = %v", err)
	}
	cs := &closingStore{MemoryPredictionStore: NewMemoryPredictionStore()}
	if err := ConnectedHandle(cs).Close(context.Background()); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !cs.closed {
		t.Error("backend Close was not called")
	}
}

func TestRedisMemberRoundTripAndScore(t *testing.T) {
	r := record("a", 1500*time.Microsecond)
	member, score, err := encodeRedisMember(r)
	if err != nil {
		t.Fatalf("encodeRedisMember() error = %v", err)
	}
	if want := float64(base.UnixMicro() + 1500); score != want {
		t.Errorf("score = %v, want %v", score, want)
	}

	got, err := decodeRedisMembers([]string{member})
	if err != nil {
		t.Fatalf("decodeRedisMembers() error = %v", err)
	}
	if diff := cmp.Diff([]models.PredictionRecord{*r}, got); diff != "" {
		t.Errorf("decoded mismatch (-want +got):\n%s", diff)
	}

	if _, err := decodeRedisMembers([]string{"{"}); err == nil {
		t.Error("expected an error for a corrupt member")
	}
}

func TestMySQLRowConversion(t *testing.T) {
	r := record("a", 0)
	row, err := toRow(r)
	if err != nil {
		t.Fatalf("toRow() error = %v", err)
	}
	if string(row.Features) != `[30,22.5,true]` {
		t.Errorf("Features = %s", row.Features)
	}

	back, err := fromRow(row)
	if err != nil {
		t.Fatalf("fromRow() error = %v", err)
	}
	if diff := cmp.Diff(*r, back); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}
