package usecases

import (
	"fmt"
	"time"

	"github.com/samirrijal/findmypet/internal/core/domain"
	"github.com/samirrijal/findmypet/internal/pkg/geospatial"
)

const (
	DefaultUploadsPrefix = "/uploads/"
	DefaultNoImageURL    = "/img/no-image.jpg"
)

// Locale holds the user-facing wording of list and detail items.
type Locale struct {
	Gender  map[domain.Gender]string
	JustNow string
	Minutes func(n int) string
	Hours   func(n int) string
	Days    func(n int) string
}

// SerbianLocale is the wording shown by the mobile client.
var SerbianLocale = Locale{
	Gender: map[domain.Gender]string{
		domain.GenderMale:   "Muški",
		domain.GenderFemale: "Ženski",
	},
	JustNow: "pre nekoliko sekundi",
	Minutes: func(n int) string {
		if n == 1 {
			return "pre 1 minut"
		}
		return fmt.Sprintf("pre %d minuta", n)
	},
	Hours: func(n int) string {
		switch {
		case n == 1:
			return "pre 1 sat"
		case n < 5:
			return fmt.Sprintf("pre %d sata", n)
		default:
			return fmt.Sprintf("pre %d sati", n)
		}
	},
	Days: func(n int) string {
		if n == 1 {
			return "pre 1 dan"
		}
		return fmt.Sprintf("pre %d dana", n)
	},
}

// EnglishLocale is used by clients that ask for English.
var EnglishLocale = Locale{
	Gender: map[domain.Gender]string{
		domain.GenderMale:   "Male",
		domain.GenderFemale: "Female",
	},
	JustNow: "just now",
	Minutes: func(n int) string { return englishAgo(n, "minute") },
	Hours:   func(n int) string { return englishAgo(n, "hour") },
	Days:    func(n int) string { return englishAgo(n, "day") },
}

// LocaleByName resolves a configured locale name ("sr" or "en").
func LocaleByName(name string) (Locale, bool) {
	switch name {
	case "sr":
		return SerbianLocale, true
	case "en":
		return EnglishLocale, true
	}
	return Locale{}, false
}

// Presenter turns records into outward list and detail items.
type Presenter struct {
	uploadsPrefix string
	noImageURL    string
	locale        Locale
	now           func() time.Time
}

// PresenterOption customises a Presenter.
type PresenterOption func(*Presenter)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) PresenterOption {
	return func(p *Presenter) { p.now = now }
}

// WithPhotoURLs sets the photo prefix and the placeholder for reports without photos.
func WithPhotoURLs(uploadsPrefix, noImageURL string) PresenterOption {
	return func(p *Presenter) {
		if uploadsPrefix != "" {
			p.uploadsPrefix = uploadsPrefix
		}
		if noImageURL != "" {
			p.noImageURL = noImageURL
		}
	}
}

// WithLocale replaces the wording of gender labels and ages.
func WithLocale(l Locale) PresenterOption {
	return func(p *Presenter) { p.locale = l }
}

// WithGenderLabels replaces only the gender label table.
func WithGenderLabels(labels map[domain.Gender]string) PresenterOption {
	return func(p *Presenter) { p.locale.Gender = labels }
}

// NewPresenter creates a Presenter with the product defaults.
func NewPresenter(opts ...PresenterOption) *Presenter {
	p := &Presenter{
		uploadsPrefix: DefaultUploadsPrefix,
		noImageURL:    DefaultNoImageURL,
		locale:        SerbianLocale,
		now:           time.Now,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Response presents a whole engine page.
func (p *Presenter) Response(page *domain.ListingPage) *domain.ListingResponse {
	content := make([]domain.ListItem, 0, len(page.Hits))
	for _, h := range page.Hits {
		content = append(content, p.ListItem(h.Record, h.DistanceMeters))
	}
	return &domain.ListingResponse{
		Content:       content,
		Page:          page.Page,
		Size:          page.Size,
		TotalElements: page.TotalElements,
		TotalPages:    page.TotalPages,
		Last:          page.Last,
		Truncated:     page.Truncated,
	}
}

// ListItem presents one record at the given distance from the viewer.
func (p *Presenter) ListItem(rec domain.PetRecord, distanceMeters float64) domain.ListItem {
	item := domain.ListItem{
		ID:             rec.ID,
		MainPhotoURL:   p.MainPhotoURL(rec.Photos),
		TimeAgo:        p.TimeAgo(rec.CreatedAt),
		Title:          rec.Title,
		Breed:          rec.Breed,
		Color:          rec.Color,
		Gender:         p.GenderLabel(rec.Gender),
		HasChip:        rec.HasChip,
		OwnerName:      rec.OwnerName,
		Distance:       geospatial.FormatDistance(distanceMeters),
		DistanceMeters: distanceMeters,
		Category:       rec.Category,
		AllPhotos:      p.PhotoURLs(rec.Photos),
		Found:          rec.Found,
	}
	if rec.Found && rec.FoundAt != nil {
		ago := p.TimeAgo(*rec.FoundAt)
		item.FoundAgo = &ago
	}
	return item
}

// Detail presents the single-report view.
func (p *Presenter) Detail(rec domain.PetRecord, distanceMeters float64) *domain.PetDetail {
	return &domain.PetDetail{
		ID:             rec.ID,
		Category:       rec.Category,
		Title:          rec.Title,
		Breed:          rec.Breed,
		Color:          rec.Color,
		Gender:         p.GenderLabel(rec.Gender),
		HasChip:        rec.HasChip,
		Address:        rec.Address,
		Location:       rec.Location,
		CreatedAt:      rec.CreatedAt,
		TimeAgo:        p.TimeAgo(rec.CreatedAt),
		Photos:         p.PhotoURLs(rec.Photos),
		Distance:       geospatial.FormatDistance(distanceMeters),
		DistanceMeters: distanceMeters,
		OwnerID:        rec.OwnerID,
		OwnerName:      rec.OwnerName,
		Found:          rec.Found,
		FoundAt:        rec.FoundAt,
	}
}

// MainPhotoURL is the first photo or the placeholder image.
func (p *Presenter) MainPhotoURL(photos []string) string {
	if len(photos) == 0 {
		return p.noImageURL
	}
	return p.uploadsPrefix + photos[0]
}

// PhotoURLs prefixes every photo; never nil.
func (p *Presenter) PhotoURLs(photos []string) []string {
	urls := make([]string, 0, len(photos))
	for _, ph := range photos {
		urls = append(urls, p.uploadsPrefix+ph)
	}
	return urls
}

// GenderLabel localises g, falling back to the raw value.
func (p *Presenter) GenderLabel(g domain.Gender) string {
	if l, ok := p.locale.Gender[g]; ok {
		return l
	}
	return string(g)
}

// TimeAgo renders the age of t relative to the presenter clock.
func (p *Presenter) TimeAgo(t time.Time) string {
	d := p.now().Sub(t)
	switch {
	case d < time.Minute:
		return p.locale.JustNow
	case d < time.Hour:
		return p.locale.Minutes(int(d / time.Minute))
	case d < 24*time.Hour:
		return p.locale.Hours(int(d / time.Hour))
	default:
		return p.locale.Days(int(d / (24 * time.Hour)))
	}
}

func englishAgo(n int, unit string) string {
	if n == 1 {
		return "1 " + unit + " ago"
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
