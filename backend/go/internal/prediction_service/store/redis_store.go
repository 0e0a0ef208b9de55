package store

import (
	"context"
	"encoding/json"
	"fmt"

	"prediction_relay/backend/go/pkg/models"

	"github.com/go-redis/redis/v8"
)

// RedisPredictionStore keeps records as JSON members of a sorted set scored by
// creation time in microseconds.
type RedisPredictionStore struct {
	rdb redis.Cmdable
	key string
}

// NewRedisPredictionStore creates a RedisPredictionStore over the sorted set at key.
func NewRedisPredictionStore(rdb redis.Cmdable, key string) *RedisPredictionStore {
	return &RedisPredictionStore{rdb: rdb, key: key}
}

func (s *RedisPredictionStore) Save(ctx context.Context, record *models.PredictionRecord) error {
	member, score, err := encodeRedisMember(record)
	if err != nil {
		return err
	}
	return s.rdb.ZAdd(ctx, s.key, &redis.Z{Score: score, Member: member}).Err()
}

func (s *RedisPredictionStore) List(ctx context.Context) ([]models.PredictionRecord, error) {
	members, err := s.rdb.ZRevRange(ctx, s.key, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	return decodeRedisMembers(members)
}

func encodeRedisMember(record *models.PredictionRecord) (string, float64, error) {
	b, err := json.Marshal(record)
	if err != nil {
		return "", 0, fmt.Errorf("encode prediction record: %w", err)
	}
	return string(b), float64(record.CreatedAt.UnixMicro()), nil
}

func decodeRedisMembers(members []string) ([]models.PredictionRecord, error) {
	records := make([]models.PredictionRecord, 0, len(members))
	for _, m := range members {
		var r models.PredictionRecord
		if err := json.Unmarshal([]byte(m), &r); err != nil {
			return nil, fmt.Errorf("decode prediction record: %w", err)
		}
		records = append(records, r)
	}
	return records, nil
}
