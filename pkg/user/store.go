package user

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// Profile is the user document's display fields. Identity itself lives with
// the session provider; this store only mirrors what the product shows.
type Profile struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	PhotoURL string `json:"photoURL,omitempty"`
}

// RedisUserStore persists user profiles, one hash per user.
type RedisUserStore struct {
	client redis.UniversalClient
	cfg    RedisUserStoreConfig
}

type RedisUserStoreConfig struct{}

// NewRedisUserStore creates a new Redis-backed user profile store.
func NewRedisUserStore(client redis.UniversalClient, cfg RedisUserStoreConfig) *RedisUserStore {
	return &RedisUserStore{client: client, cfg: cfg}
}

func profileKey(userID string) string {
	return fmt.Sprintf("deckquiz:user:%s:profile", userID)
}

// GetProfile retrieves a user's profile. A user with no stored profile gets
// the empty profile, not an error.
func (s *RedisUserStore) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	fields, err := s.client.HGetAll(ctx, profileKey(userID)).Result()
	if err != nil {
		logrus.Errorf("failed to get profile for user %s: %v", userID, err)
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return &Profile{
		Name:     fields["name"],
		Email:    fields["email"],
		PhotoURL: fields["photoURL"],
	}, nil
}

// SaveProfile merge-writes a user's profile fields.
func (s *RedisUserStore) SaveProfile(ctx context.Context, userID string, p *Profile) error {
	err := s.client.HSet(ctx, profileKey(userID),
		"name", p.Name,
		"email", p.Email,
		"photoURL", p.PhotoURL,
	).Err()
	if err != nil {
		logrus.Errorf("failed to save profile for user %s: %v", userID, err)
		return fmt.Errorf("failed to save profile: %w", err)
	}

	logrus.Infof("saved profile for user %s", userID)
	return nil
}
