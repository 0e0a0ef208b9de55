package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"prediction_relay/backend/go/pkg/models"

	"github.com/sirupsen/logrus"
)

func TestLogger_JSONFields(t *testing.T) {
	var buf bytes.Buffer
	InitWithOutput(logrus.DebugLevel, &buf)
	defer Init(logrus.InfoLevel)

	base := New("PredictionService", "", "")
	base.WithTrace("trace-1").
		WithError(models.ErrorInfo{Message: "boom", Type: models.ErrorTypePersistence}).
		Error("save failed")

	var line map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, buf.String())
	}
	if line["message"] != "save failed" || line["level"] != "error" {
		t.Errorf("unexpected message/level: %v", line)
	}
	if line["service_name"] != "PredictionService" || line["trace_id"] != "trace-1" {
		t.Errorf("unexpected fields: %v", line)
	}
	if _, ok := line["timestamp"]; !ok {
		t.Error("missing timestamp field")
	}
	errField, ok := line["error"].(map[string]interface{})
	if !ok || errField["type"] != models.ErrorTypePersistence {
		t.Errorf("error field = %v", line["error"])
	}
}

func TestLogger_WithDoesNotMutateBase(t *testing.T) {
	var buf bytes.Buffer
	InitWithOutput(logrus.InfoLevel, &buf)
	defer Init(logrus.InfoLevel)

	base := New("svc", "", "")
	_ = base.WithTrace("other")
	base.Info("plain")

	var line map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := line["trace_id"]; ok {
		t.Errorf("base logger picked up a derived field: %v", line)
	}
}

func TestFromContext(t *testing.T) {
	fallback := New("fallback", "", "")
	if FromContext(context.Background(), fallback) != fallback {
		t.Error("expected fallback for an empty context")
	}
	l := New("req", "t", "")
	if FromContext(NewContext(context.Background(), l), fallback) != l {
		t.Error("expected the stored logger")
	}
}
