package service

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"prediction_relay/backend/go/internal/prediction_service/oracle"
	"prediction_relay/backend/go/internal/prediction_service/store"
	"prediction_relay/backend/go/pkg/logger"
	"prediction_relay/backend/go/pkg/models"

	"github.com/google/uuid"
)

const (
	defaultWriteTimeout  = 5 * time.Second
	defaultOracleTimeout = 10 * time.Second
)

// Oracle produces predictions for feature vectors.
type Oracle interface {
	Predict(ctx context.Context, features models.FeatureVector) (*models.PredictionOutcome, error)
}

// RecordStore persists prediction records and reports whether it is connected.
// *store.Handle satisfies it.
type RecordStore interface {
	StatusReporter
	Save(ctx context.Context, record *models.PredictionRecord) error
	List(ctx context.Context) ([]models.PredictionRecord, error)
}

// EventPublisher announces stored records.
type EventPublisher interface {
	Publish(ctx context.Context, record *models.PredictionRecord) error
}

// Options tunes a PredictionService. Zero values select the defaults. A positive
// ExpectedFeatures rejects vectors of any other length; StrictTypes rejects vectors
// holding anything but numbers and booleans.
type Options struct {
	ExpectedFeatures int
	StrictTypes      bool
	OracleTimeout    time.Duration
	WriteTimeout     time.Duration
	Now              func() time.Time
	NewID            func() string
}

// PredictionService relays feature vectors to the oracle and records the outcomes.
type PredictionService struct {
	oracle    Oracle
	records   RecordStore
	publisher EventPublisher
	logger    *logger.Logger
	opts      Options
}

// NewPredictionService creates a PredictionService. publisher may be nil.
func NewPredictionService(oracle Oracle, records RecordStore, publisher EventPublisher, logger *logger.Logger, opts Options) *PredictionService {
	if opts.OracleTimeout <= 0 {
		opts.OracleTimeout = defaultOracleTimeout
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = defaultWriteTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = func() string { return uuid.New().String() }
	}
	return &PredictionService{
		oracle:    oracle,
		records:   records,
		publisher: publisher,
		logger:    logger,
		opts:      opts,
	}
}

// SubmitPrediction validates features, asks the oracle for a verdict, records the pair
// on a best-effort basis and returns the oracle's outcome unchanged. Only validation and
// oracle failures are returned; storage and publishing failures are logged.
func (s *PredictionService) SubmitPrediction(ctx context.Context, features models.FeatureVector) (*models.PredictionOutcome, error) {
	log := logger.FromContext(ctx, s.logger)

	if err := s.validate(features); err != nil {
		log.WithError(models.ErrorInfo{Message: err.Error(), Type: models.ErrorTypeValidation}).Warn("Rejected prediction request")
		return nil, err
	}

	log.Debug("Calling prediction oracle")
	oracleCtx, cancel := context.WithTimeout(ctx, s.opts.OracleTimeout)
	outcome, err := s.oracle.Predict(oracleCtx, features)
	cancel()
	if err != nil {
		info := models.ErrorInfo{Message: err.Error(), Type: models.ErrorTypeOracle}
		var statusErr *oracle.StatusError
		if errors.As(err, &statusErr) {
			info.StatusCode = statusErr.StatusCode
			log = log.WithPayload(map[string]interface{}{"oracle_response": statusErr.Body})
		}
		log.WithError(info).Error("Prediction oracle call failed")
		return nil, fmt.Errorf("%w: %v", ErrOracleUnavailable, err)
	}
	log.WithPayload(map[string]interface{}{"prediction": outcome.Prediction, "result": outcome.Result}).Info("Prediction oracle responded")

	s.record(ctx, log, features, outcome)
	return outcome, nil
}

// GetHistory returns every stored record, newest first.
func (s *PredictionService) GetHistory(ctx context.Context) ([]models.PredictionRecord, error) {
	log := logger.FromContext(ctx, s.logger)

	if s.records.Status() != store.Connected {
		log.WithError(models.ErrorInfo{Message: "store not connected", Type: models.ErrorTypeStoreUnavailable}).Warn("History requested without a store")
		return nil, ErrStoreUnavailable
	}
	records, err := s.records.List(ctx)
	if err != nil {
		if errors.Is(err, store.ErrNotConnected) {
			return nil, ErrStoreUnavailable
		}
		log.WithError(models.ErrorInfo{Message: err.Error(), Type: models.ErrorTypeHistory}).Error("Failed to list prediction history")
		return nil, fmt.Errorf("%w: %v", ErrHistoryFailure, err)
	}
	if records == nil {
		records = []models.PredictionRecord{}
	}
	return records, nil
}

func (s *PredictionService) validate(features models.FeatureVector) error {
	if len(features) == 0 {
		return &ValidationError{Message: "Features are required"}
	}
	if n := s.opts.ExpectedFeatures; n > 0 && len(features) != n {
		return &ValidationError{Message: fmt.Sprintf("Features must contain %d values", n)}
	}
	if s.opts.StrictTypes {
		if i := features.NumericOrBool(); i >= 0 {
			return &ValidationError{Message: fmt.Sprintf("Feature %d must be a number or boolean", i)}
		}
	}
	return nil
}

// record writes the outcome and announces it. Nothing here can fail the request.
func (s *PredictionService) record(ctx context.Context, log *logger.Logger, features models.FeatureVector, outcome *models.PredictionOutcome) {
	if s.records.Status() != store.Connected {
		log.Debug("Store not connected, prediction not saved")
		return
	}

	rec := &models.PredictionRecord{
		ID:         s.opts.NewID(),
		Features:   features,
		Prediction: outcome.Label(),
		Result:     outcome.Result,
		CreatedAt:  s.opts.Now().UTC(),
	}
	log = log.WithPayload(map[string]interface{}{"record_id": rec.ID})

	saved := s.bestEffort(ctx, log, models.ErrorTypePersistence, "Saving prediction", func(ctx context.Context) error {
		return s.records.Save(ctx, rec)
	})
	if !saved {
		return
	}
	log.Info("Prediction saved")

	if s.publisher == nil {
		return
	}
	s.bestEffort(ctx, log, models.ErrorTypePublish, "Publishing prediction event", func(ctx context.Context) error {
		return s.publisher.Publish(ctx, rec)
	})
}

// bestEffort runs fn on a context that outlives the caller's cancellation but is bounded
// by the write timeout. An error or panic from fn is logged and reported as false.
func (s *PredictionService) bestEffort(ctx context.Context, log *logger.Logger, errType, what string, fn func(context.Context) error) (ok bool) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.WriteTimeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			ok = false
			log.WithError(models.ErrorInfo{
				Message: fmt.Sprint(r),
				Type:    errType,
				Stack:   string(debug.Stack()),
			}).Error(what + " panicked")
		}
	}()

	if err := fn(ctx); err != nil {
		log.WithError(models.ErrorInfo{Message: err.Error(), Type: errType}).Error(what + " failed")
		return false
	}
	return true
}
