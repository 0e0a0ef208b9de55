package service

import "prediction_relay/backend/go/internal/prediction_service/store"

// HealthMessage is reported while the process is serving.
const HealthMessage = "Backend running successfully"

// StatusReporter exposes store connectivity.
type StatusReporter interface {
	Status() store.Status
}

// HealthReport is the liveness answer.
type HealthReport struct {
	Message  string
	Database store.Status
}

// HealthReporter reports liveness and store connectivity. It never fails.
type HealthReporter struct {
	records StatusReporter
}

func NewHealthReporter(records StatusReporter) *HealthReporter {
	return &HealthReporter{records: records}
}

func (h *HealthReporter) Health() HealthReport {
	return HealthReport{Message: HealthMessage, Database: h.records.Status()}
}
