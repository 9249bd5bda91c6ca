package usecases

import (
	"context"
	"fmt"

	"github.com/samirrijal/findmypet/internal/core/domain"
	"github.com/samirrijal/findmypet/internal/core/ports"
	"github.com/samirrijal/findmypet/internal/pkg/geospatial"
)

// PetService serves single reports.
type PetService struct {
	store     ports.PetRecordStore
	presenter *Presenter
}

// NewPetService creates a new PetService.
func NewPetService(store ports.PetRecordStore, presenter *Presenter) *PetService {
	if presenter == nil {
		presenter = NewPresenter()
	}
	return &PetService{store: store, presenter: presenter}
}

// Detail returns the report with the given id as seen from viewer.
func (s *PetService) Detail(ctx context.Context, id int64, viewer domain.Coordinate) (*domain.PetDetail, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: id must be positive", domain.ErrInvalidRequest)
	}
	if !viewer.Valid() {
		return nil, fmt.Errorf("%w: coordinate out of range", domain.ErrInvalidRequest)
	}

	rec, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get pet %d: %w", id, err)
	}
	if rec.Deleted {
		return nil, fmt.Errorf("get pet %d: %w", id, domain.ErrNotFound)
	}

	return s.presenter.Detail(*rec, geospatial.DistanceMeters(viewer, rec.Location)), nil
}
