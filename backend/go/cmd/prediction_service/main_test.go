package main

import (
	"context"
	"testing"

	"prediction_relay/backend/go/internal/config"
	"prediction_relay/backend/go/internal/prediction_service/store"
)

func TestConnector(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Driver = config.DriverMemory

	s, err := connector(cfg)(context.Background())
	if err != nil {
		t.Fatalf("memory connector error = %v", err)
	}
	if _, ok := s.(*store.MemoryPredictionStore); !ok {
		t.Errorf("memory connector returned %T", s)
	}

	cfg.Store.Driver = config.DriverMongo
	cfg.Databases.MongoDB.Address = ""
	h := store.NewHandle()
	if err := h.Connect(context.Background(), connector(cfg)); err == nil {
		t.Error("mongo connector without an address should fail")
	}
	if h.Status() != store.NotConnected {
		t.Errorf("Status() = %v after a failed connect", h.Status())
	}
}
