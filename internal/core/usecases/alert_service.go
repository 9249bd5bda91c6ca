package usecases

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/samirrijal/findmypet/internal/core/domain"
	"github.com/samirrijal/findmypet/internal/core/ports"
	"github.com/samirrijal/findmypet/internal/pkg/geospatial"
	"github.com/samirrijal/findmypet/internal/pkg/logging"
)

// MaxWatchRadiusKm bounds the notification radius a user may save.
const MaxWatchRadiusKm = 100

// AlertService decides who hears about a new report.
type AlertService struct {
	watchers ports.WatcherRepository
	notifier ports.NotificationService
}

// NewAlertService creates a new AlertService.
func NewAlertService(watchers ports.WatcherRepository, notifier ports.NotificationService) *AlertService {
	return &AlertService{watchers: watchers, notifier: notifier}
}

// Recipients returns the watchers whose own radius covers the event
// location, nearest first. The reporter is never alerted about their own report.
func (s *AlertService) Recipients(ctx context.Context, event *domain.PetEvent) ([]domain.AlertRecipient, error) {
	if event == nil || !event.Location.Valid() {
		return nil, fmt.Errorf("%w: event location out of range", domain.ErrInvalidRequest)
	}

	box := geospatial.BoundingBox(event.Location, MaxWatchRadiusKm)
	watchers, err := s.watchers.FindInBox(ctx, box)
	if err != nil {
		return nil, fmt.Errorf("find watchers: %w", err)
	}

	out := make([]domain.AlertRecipient, 0, len(watchers))
	for _, w := range watchers {
		if w.UserID == event.ReporterID || w.PushToken == "" || w.RadiusKm <= 0 {
			continue
		}
		radius := min(w.RadiusKm, MaxWatchRadiusKm)
		d, ok := geospatial.WithinRadius(w.Center, event.Location, radius)
		if !ok {
			continue
		}
		out = append(out, domain.AlertRecipient{Watcher: w, DistanceMeters: d})
	}

	slices.SortFunc(out, func(a, b domain.AlertRecipient) int {
		if c := cmp.Compare(a.DistanceMeters, b.DistanceMeters); c != 0 {
			return c
		}
		return cmp.Compare(a.UserID, b.UserID)
	})
	return out, nil
}

// Send delivers one alert about event to r.
func (s *AlertService) Send(ctx context.Context, event *domain.PetEvent, r domain.AlertRecipient) error {
	title := "Lost pet nearby"
	body := fmt.Sprintf("%s was reported %s from you", event.Title, geospatial.FormatDistance(r.DistanceMeters))
	data := map[string]string{
		"petId":    fmt.Sprint(event.PetID),
		"category": string(event.Category),
		"type":     string(event.Type),
	}
	if s.notifier == nil {
		logging.FromContext(ctx).Info("push (no notifier)",
			"user_id", r.UserID, "pet_id", event.PetID, "title", title, "body", body)
		return nil
	}
	if err := s.notifier.SendPush(ctx, r.PushToken, title, body, data); err != nil {
		return fmt.Errorf("send push to user %d: %w", r.UserID, err)
	}
	return nil
}
