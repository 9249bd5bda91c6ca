// Package memory holds in-process stores for local runs and tests.
package memory

import (
	"cmp"
	"context"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/samirrijal/findmypet/internal/core/domain"
)

// PetStore is a slice-backed ports.PetRecordStore with the same ordering
// and cap semantics as the postgres adapter.
type PetStore struct {
	mu            sync.RWMutex
	pets          []domain.PetRecord
	watchers      []domain.Watcher
	nextPetID     int64
	nextUserID    int64
	maxCandidates int
	now           func() time.Time
}

// NewPetStore creates an empty store. maxCandidates caps QueryAll; zero
// means no cap.
func NewPetStore(maxCandidates int) *PetStore {
	return &PetStore{maxCandidates: maxCandidates, now: time.Now}
}

// Insert stores a copy of rec and sets its ID (and CreatedAt when zero).
func (s *PetStore) Insert(_ context.Context, rec *domain.PetRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextPetID++
	rec.ID = s.nextPetID
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now()
	}
	if name := s.userName(rec.OwnerID); name != "" && rec.OwnerName == "" {
		rec.OwnerName = name
	}
	s.pets = append(s.pets, clonePet(*rec))
	return nil
}

// Delete soft-deletes a report.
func (s *PetStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.pets {
		if s.pets[i].ID == id && !s.pets[i].Deleted {
			s.pets[i].Deleted = true
			return nil
		}
	}
	return domain.ErrNotFound
}

// QueryPage returns one newest-first page of box matches.
func (s *PetStore) QueryPage(ctx context.Context, f domain.FilterSpec, box domain.BoundingBox, page domain.PageRequest) (*domain.RecordPage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	matches := s.match(f, box)
	slices.SortFunc(matches, func(a, b domain.PetRecord) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})

	from := min(page.Offset(), len(matches))
	to := min(from+page.Size, len(matches))
	return &domain.RecordPage{
		Records:    matches[from:to],
		TotalInBox: int64(len(matches)),
	}, nil
}

// QueryAll returns box matches ordered by planar distance to the box centre.
func (s *PetStore) QueryAll(ctx context.Context, f domain.FilterSpec, box domain.BoundingBox) (*domain.CandidateSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	matches := s.match(f, box)
	c := box.Center()
	scale := math.Cos(c.Lat * math.Pi / 180)
	planar := func(p domain.Coordinate) float64 {
		dy := p.Lat - c.Lat
		dx := (p.Lng - c.Lng) * scale
		return dx*dx + dy*dy
	}
	slices.SortFunc(matches, func(a, b domain.PetRecord) int {
		if d := cmp.Compare(planar(a.Location), planar(b.Location)); d != 0 {
			return d
		}
		return cmp.Compare(a.ID, b.ID)
	})

	set := &domain.CandidateSet{Records: matches}
	if s.maxCandidates > 0 && len(matches) > s.maxCandidates {
		set.Records = matches[:s.maxCandidates]
		set.Truncated = true
	}
	return set, nil
}

// GetByID returns a live report.
func (s *PetStore) GetByID(_ context.Context, id int64) (*domain.PetRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.pets {
		if p.ID == id && !p.Deleted {
			rec := clonePet(p)
			return &rec, nil
		}
	}
	return nil, domain.ErrNotFound
}

// SaveWatcher stores a user with a notification area.
func (s *PetStore) SaveWatcher(_ context.Context, w *domain.Watcher) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextUserID++
	w.UserID = s.nextUserID
	s.watchers = append(s.watchers, *w)
	return nil
}

// FindInBox returns watchers with a push token whose centre lies in box.
func (s *PetStore) FindInBox(_ context.Context, box domain.BoundingBox) ([]domain.Watcher, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Watcher
	for _, w := range s.watchers {
		if w.PushToken != "" && box.Contains(w.Center) {
			out = append(out, w)
		}
	}
	return out, nil
}

func (s *PetStore) match(f domain.FilterSpec, box domain.BoundingBox) []domain.PetRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.PetRecord
	for _, p := range s.pets {
		if !p.Deleted && box.Contains(p.Location) && f.MatchesAttributes(p) {
			out = append(out, clonePet(p))
		}
	}
	return out
}

// userName must be called with s.mu held.
func (s *PetStore) userName(id int64) string {
	for _, w := range s.watchers {
		if w.UserID == id {
			return w.FullName
		}
	}
	return ""
}

func clonePet(p domain.PetRecord) domain.PetRecord {
	p.Photos = slices.Clone(p.Photos)
	return p
}
