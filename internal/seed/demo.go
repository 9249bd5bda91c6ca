// Package seed loads the Knez Mihailova demo data set.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/samirrijal/findmypet/internal/core/domain"
	"github.com/samirrijal/findmypet/internal/core/ports"
	"github.com/samirrijal/findmypet/internal/pkg/logging"
)

// KnezMihailova is the centre of the demo data set.
var KnezMihailova = domain.Coordinate{Lat: 44.8176, Lng: 20.4587}

// Demo returns the demo users and reports. Reports are spread north of
// KnezMihailova, 12 of them within 5 km and 3 further out, with created_at
// going back one hour per report. OwnerID indexes into the user slice.
func Demo(now time.Time) ([]domain.Watcher, []domain.PetRecord) {
	users := []domain.Watcher{
		{FullName: "Marko Petrović", PushToken: "demo-token-marko", Center: KnezMihailova, RadiusKm: 5},
		{FullName: "Ana Jovanović", PushToken: "demo-token-ana", Center: domain.Coordinate{Lat: 44.8125, Lng: 20.4612}, RadiusKm: 3},
		{FullName: "Ivan Nikolić", Center: domain.Coordinate{Lat: 44.7866, Lng: 20.4489}, RadiusKm: 10},
	}

	type proto struct {
		title    string
		category domain.PetCategory
		breed    string
		color    string
		gender   domain.Gender
		chip     bool
	}
	protos := []proto{
		{"Rex", domain.CategoryDog, "Labrador", "yellow", domain.GenderMale, true},
		{"Maca", domain.CategoryCat, "", "black", domain.GenderFemale, false},
		{"Žuća", domain.CategoryDog, "Mixed", "brown", domain.GenderFemale, false},
		{"Bobi", domain.CategoryDog, "Beagle", "tricolor", domain.GenderMale, true},
		{"Kiki", domain.CategoryOther, "Budgerigar", "green", domain.GenderMale, false},
	}

	// distances in km north of the centre
	distances := []float64{0.2, 0.4, 0.7, 1.0, 1.3, 1.8, 2.2, 2.6, 3.1, 3.5, 4.2, 4.8, 6.5, 9.0, 14.0}

	pets := make([]domain.PetRecord, len(distances))
	for i, km := range distances {
		p := protos[i%len(protos)]
		rec := domain.PetRecord{
			Category: p.category,
			Title:    p.title,
			Color:    p.color,
			Gender:   p.gender,
			HasChip:  p.chip,
			Location: domain.Coordinate{
				Lat: KnezMihailova.Lat + km/111.195,
				Lng: KnezMihailova.Lng,
			},
			Address:   fmt.Sprintf("Beograd, %.1f km od Knez Mihailove", km),
			Photos:    []string{fmt.Sprintf("demo/%d-1.jpg", i+1), fmt.Sprintf("demo/%d-2.jpg", i+1)},
			OwnerID:   int64(i % len(users)),
			CreatedAt: now.Add(-time.Duration(i+1) * time.Hour),
		}
		if p.breed != "" {
			b := p.breed
			rec.Breed = &b
		}
		pets[i] = rec
	}
	return users, pets
}

// Result counts what Load wrote.
type Result struct {
	Users     int
	Pets      int
	Published int
}

// Load writes the demo set and, when pub is non-nil, publishes one
// reported event per pet.
func Load(ctx context.Context, users ports.WatcherWriter, pets ports.PetRecordWriter, pub ports.EventPublisher, now time.Time) (Result, error) {
	log := logging.FromContext(ctx)
	watchers, records := Demo(now)

	var res Result
	for i := range watchers {
		if err := users.SaveWatcher(ctx, &watchers[i]); err != nil {
			return res, fmt.Errorf("save user %s: %w", watchers[i].FullName, err)
		}
		res.Users++
	}

	for i := range records {
		rec := &records[i]
		owner := watchers[rec.OwnerID]
		rec.OwnerID = owner.UserID
		rec.OwnerName = owner.FullName
		if err := pets.Insert(ctx, rec); err != nil {
			return res, fmt.Errorf("insert pet %s: %w", rec.Title, err)
		}
		res.Pets++

		if pub == nil {
			continue
		}
		event := &domain.PetEvent{
			Type:       domain.PetReported,
			PetID:      rec.ID,
			Location:   rec.Location,
			Category:   rec.Category,
			Title:      rec.Title,
			ReporterID: rec.OwnerID,
			OccurredAt: rec.CreatedAt,
		}
		if err := pub.PublishPetEvent(ctx, event); err != nil {
			log.Warn("publish seed event failed", "pet_id", rec.ID, "error", err)
			continue
		}
		res.Published++
	}
	return res, nil
}
