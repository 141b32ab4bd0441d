package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"samurai/internal/models"
)

const pendingKeyPrefix = "pending_verification:"

// RedisPendingStore keeps each record under a key that outlives the
// verification window by one more window: verify can still tell "expired"
// from "never started", and abandoned registrations are reclaimed by Redis.
type RedisPendingStore struct {
	client *redis.Client
	keyTTL time.Duration
}

func NewRedisPendingStore(client *redis.Client, verificationTTL time.Duration) *RedisPendingStore {
	return &RedisPendingStore{client: client, keyTTL: 2 * verificationTTL}
}

func pendingKey(email string) string {
	return pendingKeyPrefix + email
}

func (s *RedisPendingStore) Get(ctx context.Context, email string) (*models.PendingVerification, error) {
	raw, err := s.client.Get(ctx, pendingKey(email)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("pending get: %w", err)
	}
	return decodePending(raw)
}

func (s *RedisPendingStore) Set(ctx context.Context, v *models.PendingVerification) error {
	raw, err := encodePending(v)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, pendingKey(v.Email), raw, s.keyTTL).Err(); err != nil {
		return fmt.Errorf("pending set: %w", err)
	}
	return nil
}

func (s *RedisPendingStore) Delete(ctx context.Context, email string) error {
	if err := s.client.Del(ctx, pendingKey(email)).Err(); err != nil {
		return fmt.Errorf("pending delete: %w", err)
	}
	return nil
}

func encodePending(v *models.PendingVerification) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("pending encode: %w", err)
	}
	return raw, nil
}

func decodePending(raw []byte) (*models.PendingVerification, error) {
	var v models.PendingVerification
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("pending decode: %w", err)
	}
	return &v, nil
}
