package models

// LogEntry is the shape of one structured log line emitted by the relay.
type LogEntry struct {
	// ServiceName names the process that produced the line, e.g. "PredictionService".
	ServiceName string `json:"service_name"`

	// TraceID ties together every line written while serving one HTTP request.
	TraceID string `json:"trace_id,omitempty"`

	UserID string `json:"user_id,omitempty"`

	RequestInfo *RequestInfo `json:"request_info,omitempty"`

	// Error is set on warn and error lines.
	Error *ErrorInfo `json:"error,omitempty"`

	Payload map[string]interface{} `json:"payload,omitempty"`
}

// RequestInfo describes the HTTP request being served.
type RequestInfo struct {
	Method     string `json:"method"`
	Path       string `json:"path"`
	RemoteAddr string `json:"remote_addr"`
	UserAgent  string `json:"user_agent"`
	Status     int    `json:"status,omitempty"`
	LatencyMS  int64  `json:"latency_ms,omitempty"`
}

// Error types recorded in ErrorInfo.Type.
const (
	ErrorTypeValidation       = "validation_error"
	ErrorTypeOracle           = "oracle_unavailable"
	ErrorTypePersistence      = "persistence_failure"
	ErrorTypePublish          = "publish_failure"
	ErrorTypeStoreUnavailable = "store_unavailable"
	ErrorTypeStoreConnect     = "store_connect_failure"
	ErrorTypeHistory          = "history_failure"
)

// ErrorInfo is the structured error attached to a log line.
type ErrorInfo struct {
	Message    string `json:"message"`
	Stack      string `json:"stack,omitempty"`
	Type       string `json:"type,omitempty"`
	StatusCode int    `json:"status_code,omitempty"`
}
