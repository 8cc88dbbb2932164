package bootstrap

import (
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/deckquiz/progress-service/pkg/deck"
	"github.com/deckquiz/progress-service/pkg/progress"
	"github.com/deckquiz/progress-service/pkg/user"
)

// Stores bundles the Redis-backed stores the API handler depends on.
type Stores struct {
	Progress *progress.RedisProgressStore
	Decks    *deck.RedisDeckStore
	Users    *user.RedisUserStore
}

// InitStores wires the stores against a shared Redis client. The progress
// store is bound to the catalog's deck IDs so writes against unknown decks
// are rejected at the store boundary.
func InitStores(client redis.UniversalClient, catalog *deck.Catalog) *Stores {
	progressStore := progress.NewRedisProgressStore(client, progress.RedisProgressStoreConfig{
		Decks: catalog.IDs(),
	})
	deckStore := deck.NewRedisDeckStore(client, deck.RedisDeckStoreConfig{
		Catalog: catalog,
	})
	userStore := user.NewRedisUserStore(client, user.RedisUserStoreConfig{})

	logrus.Infof("initialized stores against %d decks", len(catalog.IDs()))

	return &Stores{
		Progress: progressStore,
		Decks:    deckStore,
		Users:    userStore,
	}
}
