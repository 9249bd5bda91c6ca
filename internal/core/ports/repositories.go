package ports

import (
	"context"

	"github.com/samirrijal/findmypet/internal/core/domain"
)

// PetRecordStore is the query surface over lost-pet reports. Implementations
// apply FilterSpec and the bounding box only; exact radius filtering is the
// caller's job.
type PetRecordStore interface {
	// QueryPage returns one page of matches sorted newest first, plus the
	// number of matches in the box.
	QueryPage(ctx context.Context, filter domain.FilterSpec, box domain.BoundingBox, page domain.PageRequest) (*domain.RecordPage, error)
	// QueryAll returns every match in the box. A store may cap the result and
	// report it through CandidateSet.Truncated.
	QueryAll(ctx context.Context, filter domain.FilterSpec, box domain.BoundingBox) (*domain.CandidateSet, error)
	// GetByID returns domain.ErrNotFound for missing or deleted reports.
	GetByID(ctx context.Context, id int64) (*domain.PetRecord, error)
}

// PetRecordWriter inserts reports. Used by seeding and tests only; the
// reporting subsystem owns writes in production.
type PetRecordWriter interface {
	Insert(ctx context.Context, rec *domain.PetRecord) error
}

// WatcherRepository finds users who want alerts about nearby reports.
type WatcherRepository interface {
	// FindInBox returns watchers whose notification centre lies in box.
	FindInBox(ctx context.Context, box domain.BoundingBox) ([]domain.Watcher, error)
}

// WatcherWriter saves users together with their notification area.
type WatcherWriter interface {
	// SaveWatcher inserts w and sets w.UserID.
	SaveWatcher(ctx context.Context, w *domain.Watcher) error
}
