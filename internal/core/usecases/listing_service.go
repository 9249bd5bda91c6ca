package usecases

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.opentelemetry.io/otel/codes"

	"github.com/samirrijal/findmypet/internal/core/domain"
	"github.com/samirrijal/findmypet/internal/core/ports"
	"github.com/samirrijal/findmypet/internal/pkg/geospatial"
	"github.com/samirrijal/findmypet/internal/pkg/logging"
	"github.com/samirrijal/findmypet/internal/pkg/metrics"
	"github.com/samirrijal/findmypet/internal/pkg/telemetry"
)

const (
	listingGenerationKey = "lostpets:gen"
	listingKeyPrefix     = "lostpets:list:"
)

// ListingService answers "lost pets near me" queries. It holds no
// per-request state and is safe for concurrent use.
type ListingService struct {
	store     ports.PetRecordStore
	cache     ports.CacheService
	presenter *Presenter
	cacheTTL  int
}

// NewListingService creates a new ListingService. cache may be nil; a
// cacheTTLSeconds of zero disables page caching.
func NewListingService(store ports.PetRecordStore, cache ports.CacheService, presenter *Presenter, cacheTTLSeconds int) *ListingService {
	if presenter == nil {
		presenter = NewPresenter()
	}
	return &ListingService{store: store, cache: cache, presenter: presenter, cacheTTL: cacheTTLSeconds}
}

// Search runs List and presents the page.
func (s *ListingService) Search(ctx context.Context, req domain.ListingRequest) (*domain.ListingResponse, error) {
	page, err := s.List(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.presenter.Response(page), nil
}

// List returns one page of records within req.RadiusKm of req.Center that
// match req.Filter, ordered by req.Sort.
func (s *ListingService) List(ctx context.Context, req domain.ListingRequest) (*domain.ListingPage, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartSpan(ctx, "listing.List")
	defer span.End()
	span.SetAttributes(
		telemetry.AttrListingSort.String(string(req.Sort)),
		telemetry.AttrListingRadiusKm.Float64(req.RadiusKm),
		telemetry.AttrListingPage.Int(req.Page),
		telemetry.AttrListingSize.Int(req.Size),
	)

	start := time.Now()
	log := logging.FromContext(ctx)

	cacheKey := s.pageKey(ctx, req)
	if cacheKey != "" {
		if page, ok := s.cachedPage(ctx, cacheKey); ok {
			metrics.CacheHits.WithLabelValues("listing").Inc()
			span.SetAttributes(telemetry.AttrListingCacheHit.Bool(true))
			return page, nil
		}
		metrics.CacheMisses.WithLabelValues("listing").Inc()
	}

	var (
		page *domain.ListingPage
		err  error
	)
	if req.Sort == domain.SortNewest {
		page, err = s.listNewest(ctx, req)
	} else {
		page, err = s.listNearest(ctx, req)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		telemetry.AttrListingTotal.Int64(page.TotalElements),
		telemetry.AttrListingTrunc.Bool(page.Truncated),
	)
	metrics.ListingDuration.WithLabelValues(string(req.Sort)).Observe(time.Since(start).Seconds())
	if page.Truncated {
		metrics.ListingTruncated.Inc()
		log.Warn("listing served from a capped candidate set",
			"lat", req.Center.Lat, "lng", req.Center.Lng, "radius_km", req.RadiusKm)
	}
	log.Info("listing page",
		"sort", req.Sort,
		"page", page.Page,
		"hits", len(page.Hits),
		"total", page.TotalElements,
	)

	if cacheKey != "" {
		s.storePage(ctx, cacheKey, page)
	}
	return page, nil
}

// listNearest sorts the whole in-radius set by distance and slices it.
func (s *ListingService) listNearest(ctx context.Context, req domain.ListingRequest) (*domain.ListingPage, error) {
	box := geospatial.BoundingBox(req.Center, req.RadiusKm)
	set, err := s.store.QueryAll(ctx, req.Filter, box)
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}

	hits := refine(req, set.Records)
	slices.SortFunc(hits, func(a, b domain.Hit) int {
		if c := cmp.Compare(a.DistanceMeters, b.DistanceMeters); c != 0 {
			return c
		}
		return cmp.Compare(a.Record.ID, b.Record.ID)
	})

	total := int64(len(hits))
	from := min(domain.PageRequest{Index: req.Page, Size: req.Size}.Offset(), len(hits))
	to := min(from+req.Size, len(hits))

	return newPage(req, slices.Clone(hits[from:to]), total, set.Truncated), nil
}

// listNewest lets the store page newest-first and recounts the exact
// in-radius total separately.
func (s *ListingService) listNewest(ctx context.Context, req domain.ListingRequest) (*domain.ListingPage, error) {
	box := geospatial.BoundingBox(req.Center, req.RadiusKm)
	rp, err := s.store.QueryPage(ctx, req.Filter, box, domain.PageRequest{Index: req.Page, Size: req.Size})
	if err != nil {
		return nil, fmt.Errorf("query page: %w", err)
	}
	hits := refine(req, rp.Records)

	set, err := s.store.QueryAll(ctx, req.Filter, box)
	if err != nil {
		return nil, fmt.Errorf("count candidates: %w", err)
	}
	var total int64
	for _, r := range set.Records {
		if _, ok := geospatial.WithinRadius(req.Center, r.Location, req.RadiusKm); ok {
			total++
		}
	}

	return newPage(req, hits, total, set.Truncated), nil
}

// refine computes exact distances and drops the bounding-box slack,
// keeping input order.
func refine(req domain.ListingRequest, records []domain.PetRecord) []domain.Hit {
	hits := make([]domain.Hit, 0, len(records))
	for _, r := range records {
		d, ok := geospatial.WithinRadius(req.Center, r.Location, req.RadiusKm)
		if !ok {
			continue
		}
		hits = append(hits, domain.Hit{Record: r, DistanceMeters: d})
	}

	mode := string(req.Sort)
	metrics.ListingCandidates.WithLabelValues(mode).Observe(float64(len(records)))
	metrics.ListingRadiusTrimmed.WithLabelValues(mode).Add(float64(len(records) - len(hits)))
	return hits
}

func newPage(req domain.ListingRequest, hits []domain.Hit, total int64, truncated bool) *domain.ListingPage {
	totalPages := int(math.Ceil(float64(total) / float64(req.Size)))
	return &domain.ListingPage{
		Hits:          hits,
		Page:          req.Page,
		Size:          req.Size,
		TotalElements: total,
		TotalPages:    totalPages,
		Last:          totalPages == 0 || req.Page >= totalPages-1,
		Truncated:     truncated,
	}
}

func validateRequest(req domain.ListingRequest) error {
	switch {
	case !req.Center.Valid():
		return fmt.Errorf("%w: coordinate out of range", domain.ErrInvalidRequest)
	case req.RadiusKm < domain.MinRadiusKm || req.RadiusKm > domain.MaxRadiusKm:
		return fmt.Errorf("%w: radius must be %d-%d km", domain.ErrInvalidRequest, domain.MinRadiusKm, domain.MaxRadiusKm)
	case req.Page < 0:
		return fmt.Errorf("%w: page must not be negative", domain.ErrInvalidRequest)
	case req.Size < 1 || req.Size > domain.MaxPageSize:
		return fmt.Errorf("%w: size must be 1-%d", domain.ErrInvalidRequest, domain.MaxPageSize)
	case req.Sort != domain.SortNearest && req.Sort != domain.SortNewest:
		return fmt.Errorf("%w: unknown sort %q", domain.ErrInvalidRequest, req.Sort)
	}
	return nil
}

// Invalidate drops every cached page by moving to a new generation.
func (s *ListingService) Invalidate(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	if _, err := s.cache.Incr(ctx, listingGenerationKey); err != nil {
		return fmt.Errorf("bump listing generation: %w", err)
	}
	return nil
}

// pageKey returns "" when caching is off or the generation is unreadable.
func (s *ListingService) pageKey(ctx context.Context, req domain.ListingRequest) string {
	if s.cache == nil || s.cacheTTL <= 0 {
		return ""
	}

	gen := int64(0)
	raw, err := s.cache.Get(ctx, listingGenerationKey)
	switch {
	case errors.Is(err, ports.ErrCacheMiss):
	case err != nil:
		logging.FromContext(ctx).Warn("listing cache generation unavailable", "error", err)
		return ""
	default:
		if gen, err = strconv.ParseInt(string(raw), 10, 64); err != nil {
			return ""
		}
	}

	fp, err := json.Marshal(req)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%s%d:%016x", listingKeyPrefix, gen, xxhash.Sum64(fp))
}

func (s *ListingService) cachedPage(ctx context.Context, key string) (*domain.ListingPage, bool) {
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ports.ErrCacheMiss) {
			logging.FromContext(ctx).Warn("listing cache read failed", "error", err)
		}
		return nil, false
	}
	var page domain.ListingPage
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, false
	}
	return &page, true
}

func (s *ListingService) storePage(ctx context.Context, key string, page *domain.ListingPage) {
	data, err := json.Marshal(page)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, s.cacheTTL); err != nil {
		logging.FromContext(ctx).Warn("listing cache write failed", "error", err)
	}
}
