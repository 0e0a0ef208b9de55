package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"prediction_relay/backend/go/pkg/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// predictionRow is the SQL shape of a PredictionRecord.
type predictionRow struct {
	ID         string         `gorm:"primaryKey;size:36"`
	Features   datatypes.JSON `gorm:"not null"`
	Prediction string         `gorm:"size:255;not null"`
	Result     string         `gorm:"size:255;not null"`
	CreatedAt  time.Time      `gorm:"index;not null"`
}

// MySQLPredictionStore is a PredictionStore backed by a GORM table.
type MySQLPredictionStore struct {
	db    *gorm.DB
	table string
}

// NewMySQLPredictionStore creates a MySQLPredictionStore over table.
func NewMySQLPredictionStore(db *gorm.DB, table string) *MySQLPredictionStore {
	return &MySQLPredictionStore{db: db, table: table}
}

// Migrate creates or updates the predictions table.
func (s *MySQLPredictionStore) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).Table(s.table).AutoMigrate(&predictionRow{})
}

func (s *MySQLPredictionStore) Save(ctx context.Context, record *models.PredictionRecord) error {
	row, err := toRow(record)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Table(s.table).Create(&row).Error
}

func (s *MySQLPredictionStore) List(ctx context.Context) ([]models.PredictionRecord, error) {
	var rows []predictionRow
	if err := s.listQuery(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}
	records := make([]models.PredictionRecord, 0, len(rows))
	for _, row := range rows {
		r, err := fromRow(row)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, nil
}

// listQuery selects every row, newest first.
func (s *MySQLPredictionStore) listQuery(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Table(s.table).Order("created_at DESC")
}

func toRow(record *models.PredictionRecord) (predictionRow, error) {
	features, err := json.Marshal(record.Features)
	if err != nil {
		return predictionRow{}, fmt.Errorf("encode features: %w", err)
	}
	return predictionRow{
		ID:         record.ID,
		Features:   datatypes.JSON(features),
		Prediction: record.Prediction,
		Result:     record.Result,
		CreatedAt:  record.CreatedAt.UTC(),
	}, nil
}

func fromRow(row predictionRow) (models.PredictionRecord, error) {
	var features models.FeatureVector
	if err := json.Unmarshal(row.Features, &features); err != nil {
		return models.PredictionRecord{}, fmt.Errorf("decode features of %s: %w", row.ID, err)
	}
	return models.PredictionRecord{
		ID:         row.ID,
		Features:   features,
		Prediction: row.Prediction,
		Result:     row.Result,
		CreatedAt:  row.CreatedAt,
	}, nil
}
