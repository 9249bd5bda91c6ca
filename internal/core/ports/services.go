package ports

import (
	"context"
	"errors"

	"github.com/samirrijal/findmypet/internal/core/domain"
)

// EventPublisher publishes report events to a message broker.
type EventPublisher interface {
	PublishPetEvent(ctx context.Context, event *domain.PetEvent) error
}

// EventSubscriber subscribes to report events from a message broker.
type EventSubscriber interface {
	SubscribePetEvents(ctx context.Context, durable, subject string, handler func(ctx context.Context, event *domain.PetEvent) error) error
}

// ErrCacheMiss is returned by CacheService.Get when the key does not exist.
var ErrCacheMiss = errors.New("cache miss")

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
	Incr(ctx context.Context, key string) (int64, error)
}

// NotificationService sends notifications (push, email, etc.).
type NotificationService interface {
	SendPush(ctx context.Context, token, title, body string, data map[string]string) error
}
