package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"prediction_relay/backend/go/internal/prediction_service/service"
	"prediction_relay/backend/go/pkg/logger"
	"prediction_relay/backend/go/pkg/models"

	"github.com/gin-gonic/gin"
)

// Predictor is the orchestration the HTTP layer exposes.
type Predictor interface {
	SubmitPrediction(ctx context.Context, features models.FeatureVector) (*models.PredictionOutcome, error)
	GetHistory(ctx context.Context) ([]models.PredictionRecord, error)
}

// HealthChecker reports liveness.
type HealthChecker interface {
	Health() service.HealthReport
}

// API provides handlers for the prediction service.
type API struct {
	predictor Predictor
	health    HealthChecker
	logger    *logger.Logger
}

// NewAPI creates a new API handler.
func NewAPI(predictor Predictor, health HealthChecker, logger *logger.Logger) *API {
	return &API{
		predictor: predictor,
		health:    health,
		logger:    logger,
	}
}

type predictPayload struct {
	Features json.RawMessage `json:"features"`
}

// features decodes the payload's vector. A missing field or a falsy scalar (null, false,
// 0, "") yields nil, which the service rejects as missing.
func (p predictPayload) features() (models.FeatureVector, error) {
	raw := bytes.TrimSpace(p.Features)
	if isFalsy(raw) {
		return nil, nil
	}
	var features models.FeatureVector
	if err := json.Unmarshal(raw, &features); err != nil {
		return nil, err
	}
	return features, nil
}

func isFalsy(raw []byte) bool {
	switch string(raw) {
	case "", "null", "false", `""`:
		return true
	}
	f, err := strconv.ParseFloat(string(raw), 64)
	return err == nil && f == 0
}

// HealthHandler reports liveness and database connectivity.
func (a *API) HealthHandler(c *gin.Context) {
	report := a.health.Health()
	c.JSON(http.StatusOK, gin.H{
		"message":  report.Message,
		"database": report.Database.String(),
	})
}

// PredictHandler relays a feature vector to the oracle.
func (a *API) PredictHandler(c *gin.Context) {
	var payload predictPayload
	// an empty body is treated like a body without features
	err := c.ShouldBindJSON(&payload)
	if errors.Is(err, io.EOF) {
		err = nil
	}
	var features models.FeatureVector
	if err == nil {
		features, err = payload.features()
	}
	if err != nil {
		logger.FromContext(c.Request.Context(), a.logger).
			WithError(models.ErrorInfo{Message: err.Error(), Type: models.ErrorTypeValidation, StatusCode: http.StatusBadRequest}).
			Warn("Invalid request payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	outcome, err := a.predictor.SubmitPrediction(c.Request.Context(), features)
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message})
			return
		}
		// the service layer already logged the detailed error
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Prediction failed"})
		return
	}

	c.JSON(http.StatusOK, outcome)
}

// HistoryHandler lists stored predictions, newest first.
func (a *API) HistoryHandler(c *gin.Context) {
	records, err := a.predictor.GetHistory(c.Request.Context())
	if err != nil {
		if errors.Is(err, service.ErrStoreUnavailable) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database not connected"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch history"})
		return
	}

	c.JSON(http.StatusOK, records)
}
