package store

import (
	"context"
	"fmt"

	"prediction_relay/backend/go/pkg/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoPredictionStore is a PredictionStore backed by a MongoDB collection.
type MongoPredictionStore struct {
	collection *mongo.Collection
}

// NewMongoPredictionStore creates a MongoPredictionStore.
func NewMongoPredictionStore(db *mongo.Database, collectionName string) *MongoPredictionStore {
	return &MongoPredictionStore{
		collection: db.Collection(collectionName),
	}
}

// EnsureIndexes creates the createdAt index used by List.
func (s *MongoPredictionStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "createdAt", Value: -1}},
		Options: options.Index().SetName("createdAt_desc"),
	})
	if err != nil {
		return fmt.Errorf("create createdAt index: %w", err)
	}
	return nil
}

// Save inserts a new prediction record.
func (s *MongoPredictionStore) Save(ctx context.Context, record *models.PredictionRecord) error {
	_, err := s.collection.InsertOne(ctx, record)
	return err
}

// List retrieves every prediction record, newest first.
func (s *MongoPredictionStore) List(ctx context.Context) ([]models.PredictionRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := s.collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	records := []models.PredictionRecord{}
	if err = cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}
