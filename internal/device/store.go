package device

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	console "emberfront/internal/utils/logger"
)

var log = console.New("device-store")

// Store is the only component allowed to touch persisted per-device state:
// the admin bearer token, the optional customer bearer token and the
// last-seen update version. Everything else goes through its get/set/clear
// surface; no ad hoc reads of the backing storage exist anywhere.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

const (
	keyAdminToken = "admin_token"
	keyAuthToken  = "auth_token"
	keyUpdateSeen = "update_seen"
)

func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

func (s *Store) key(deviceID, field string) string {
	return "device:" + deviceID + ":" + field
}

func (s *Store) get(ctx context.Context, deviceID, field string) (string, error) {
	val, err := s.client.Get(ctx, s.key(deviceID, field)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", err
	}
	return val, nil
}

// AdminToken returns the persisted admin bearer token, "" when absent.
func (s *Store) AdminToken(ctx context.Context, deviceID string) (string, error) {
	return s.get(ctx, deviceID, keyAdminToken)
}

// SetAdminToken persists the admin token together with its issue timestamp
// in one transaction, so the pair can never be observed half-written.
func (s *Store) SetAdminToken(ctx context.Context, deviceID, token string) error {
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.key(deviceID, keyAdminToken), token, s.ttl)
	pipe.Set(ctx, s.key(deviceID, keyAdminToken+"_at"), time.Now().UTC().Format(time.RFC3339), s.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Store) ClearAdminToken(ctx context.Context, deviceID string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.key(deviceID, keyAdminToken))
	pipe.Del(ctx, s.key(deviceID, keyAdminToken+"_at"))
	_, err := pipe.Exec(ctx)
	return err
}

// AuthToken is the optional bearer for the customer channel. Distinct key
// from the admin token; the two trust domains never share storage.
func (s *Store) AuthToken(ctx context.Context, deviceID string) (string, error) {
	return s.get(ctx, deviceID, keyAuthToken)
}

func (s *Store) SetAuthToken(ctx context.Context, deviceID, token string) error {
	return s.client.Set(ctx, s.key(deviceID, keyAuthToken), token, s.ttl).Err()
}

func (s *Store) ClearAuthToken(ctx context.Context, deviceID string) error {
	return s.client.Del(ctx, s.key(deviceID, keyAuthToken)).Err()
}

// LastSeenVersion is the "already shown" marker for the update notice.
func (s *Store) LastSeenVersion(ctx context.Context, deviceID string) (string, error) {
	return s.get(ctx, deviceID, keyUpdateSeen)
}

func (s *Store) SetLastSeenVersion(ctx context.Context, deviceID, version string) error {
	return s.client.Set(ctx, s.key(deviceID, keyUpdateSeen), version, 0).Err()
}

// Clear removes every persisted value for the device in one transaction.
func (s *Store) Clear(ctx context.Context, deviceID string) error {
	pipe := s.client.TxPipeline()
	for _, field := range []string{keyAdminToken, keyAdminToken + "_at", keyAuthToken, keyUpdateSeen} {
		pipe.Del(ctx, s.key(deviceID, field))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return log.Error("failed to clear device state", err)
	}
	return nil
}
