package usecases_test

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/samirrijal/findmypet/internal/core/domain"
	"github.com/samirrijal/findmypet/internal/core/ports"
)

// --- Mock PetRecordStore ---

type mockPetStore struct {
	queryPageFn func(ctx context.Context, f domain.FilterSpec, box domain.BoundingBox, p domain.PageRequest) (*domain.RecordPage, error)
	queryAllFn  func(ctx context.Context, f domain.FilterSpec, box domain.BoundingBox) (*domain.CandidateSet, error)
	getByIDFn   func(ctx context.Context, id int64) (*domain.PetRecord, error)

	mu             sync.Mutex
	queryPageCalls int
	queryAllCalls  int
}

func (m *mockPetStore) QueryPage(ctx context.Context, f domain.FilterSpec, box domain.BoundingBox, p domain.PageRequest) (*domain.RecordPage, error) {
	m.mu.Lock()
	m.queryPageCalls++
	m.mu.Unlock()
	if m.queryPageFn != nil {
		return m.queryPageFn(ctx, f, box, p)
	}
	return &domain.RecordPage{}, nil
}

func (m *mockPetStore) QueryAll(ctx context.Context, f domain.FilterSpec, box domain.BoundingBox) (*domain.CandidateSet, error) {
	m.mu.Lock()
	m.queryAllCalls++
	m.mu.Unlock()
	if m.queryAllFn != nil {
		return m.queryAllFn(ctx, f, box)
	}
	return &domain.CandidateSet{}, nil
}

func (m *mockPetStore) GetByID(ctx context.Context, id int64) (*domain.PetRecord, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockPetStore) calls() (page, all int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queryPageCalls, m.queryAllCalls
}

// sliceStore honours the store contract over a fixed slice: box and
// attribute filtering, newest-first pages with a box-only total.
func sliceStore(records []domain.PetRecord) *mockPetStore {
	match := func(f domain.FilterSpec, box domain.BoundingBox) []domain.PetRecord {
		var out []domain.PetRecord
		for _, r := range records {
			if !r.Deleted && box.Contains(r.Location) && f.MatchesAttributes(r) {
				out = append(out, r)
			}
		}
		return out
	}
	return &mockPetStore{
		queryAllFn: func(_ context.Context, f domain.FilterSpec, box domain.BoundingBox) (*domain.CandidateSet, error) {
			return &domain.CandidateSet{Records: match(f, box)}, nil
		},
		queryPageFn: func(_ context.Context, f domain.FilterSpec, box domain.BoundingBox, p domain.PageRequest) (*domain.RecordPage, error) {
			all := match(f, box)
			slices.SortFunc(all, func(a, b domain.PetRecord) int {
				if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
					return c
				}
				return cmp.Compare(b.ID, a.ID)
			})
			from := min(p.Offset(), len(all))
			to := min(from+p.Size, len(all))
			return &domain.RecordPage{Records: all[from:to], TotalInBox: int64(len(all))}, nil
		},
		getByIDFn: func(_ context.Context, id int64) (*domain.PetRecord, error) {
			for _, r := range records {
				if r.ID == id {
					rec := r
					return &rec, nil
				}
			}
			return nil, domain.ErrNotFound
		},
	}
}

// --- Mock CacheService ---

type mockCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	failGet bool
	sets    int
}

func newMockCache() *mockCache { return &mockCache{data: map[string][]byte{}} }

func (m *mockCache) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGet {
		return nil, errors.New("connection refused")
	}
	v, ok := m.data[key]
	if !ok {
		return nil, ports.ErrCacheMiss
	}
	return v, nil
}

func (m *mockCache) Set(_ context.Context, key string, value []byte, _ int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	m.sets++
	return nil
}

func (m *mockCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *mockCache) Incr(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, _ := strconv.ParseInt(string(m.data[key]), 10, 64)
	n++
	m.data[key] = []byte(strconv.FormatInt(n, 10))
	return n, nil
}

// --- Mock WatcherRepository ---

type mockWatcherRepo struct {
	findInBoxFn func(ctx context.Context, box domain.BoundingBox) ([]domain.Watcher, error)
}

func (m *mockWatcherRepo) FindInBox(ctx context.Context, box domain.BoundingBox) ([]domain.Watcher, error) {
	if m.findInBoxFn != nil {
		return m.findInBoxFn(ctx, box)
	}
	return nil, nil
}

// --- Mock NotificationService ---

type sentPush struct {
	token, title, body string
	data               map[string]string
}

type mockNotifier struct {
	mu   sync.Mutex
	sent []sentPush
	err  error
}

func (m *mockNotifier) SendPush(_ context.Context, token, title, body string, data map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentPush{token: token, title: title, body: body, data: data})
	return nil
}

// --- Fixtures ---

var (
	knezMihailova = domain.Coordinate{Lat: 44.8176, Lng: 20.4587}
	fixedNow      = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
)

// metersPerDegreeLat matches the 6,371 km Earth radius used by geospatial.
const metersPerDegreeLat = 6371000 * 3.141592653589793 / 180

// north returns the point d meters due north of c.
func north(c domain.Coordinate, d float64) domain.Coordinate {
	return domain.Coordinate{Lat: c.Lat + d/metersPerDegreeLat, Lng: c.Lng}
}

func dog(id int64, loc domain.Coordinate, age time.Duration) domain.PetRecord {
	return domain.PetRecord{
		ID:        id,
		Category:  domain.CategoryDog,
		Title:     "Dog " + strconv.FormatInt(id, 10),
		Color:     "brown",
		Gender:    domain.GenderMale,
		Location:  loc,
		OwnerID:   1,
		OwnerName: "Marko Marković",
		Photos:    []string{"dog" + strconv.FormatInt(id, 10) + ".jpg"},
		CreatedAt: fixedNow.Add(-age),
	}
}
