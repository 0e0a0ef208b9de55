package mysql

import (
	"testing"

	"prediction_relay/backend/go/internal/config"
)

func TestDSN(t *testing.T) {
	got := DSN(&config.MySQLConfig{
		Address:  "db:3306",
		Username: "relay",
		Password: "secret",
		Database: "prediction_relay",
	})
	want := "relay:secret@tcp(db:3306)/prediction_relay?charset=utf8mb4&parseTime=True&loc=UTC"
	if got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}
