package http

import (
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/findmypet/internal/adapters/postgres"
	"github.com/samirrijal/findmypet/internal/adapters/valkey"
	"github.com/samirrijal/findmypet/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers. DB and Cache
// are nil when the memory store runs without Valkey.
type Dependencies struct {
	Listing *usecases.ListingService
	Pets    *usecases.PetService
	NATS    *nats.Conn
	DB      *postgres.DB
	Cache   *valkey.Cache
	Version string
}
