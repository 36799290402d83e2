package redisstore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LiveStore keeps the last broadcast live-update projection per booking so a
// reconnecting client can be brought up to date immediately. Entries are
// TTL-bound; the table service remains the source of truth.
type LiveStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewLiveStore returns a redis-backed store.
func NewLiveStore(client *redis.Client, ttl time.Duration) *LiveStore {
	return &LiveStore{client: client, ttl: ttl}
}

func (s *LiveStore) key(bookingID string) string {
	return fmt.Sprintf("sessions:live:%s", bookingID)
}

// Save caches the serialized projection for the booking.
func (s *LiveStore) Save(ctx context.Context, bookingID string, payload []byte) error {
	return s.client.Set(ctx, s.key(bookingID), payload, s.ttl).Err()
}

// LastUpdate returns the cached projection, or nil when none is cached.
func (s *LiveStore) LastUpdate(ctx context.Context, bookingID string) ([]byte, error) {
	payload, err := s.client.Get(ctx, s.key(bookingID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return payload, nil
}

// Delete removes the cached projection.
func (s *LiveStore) Delete(ctx context.Context, bookingID string) error {
	return s.client.Del(ctx, s.key(bookingID)).Err()
}
