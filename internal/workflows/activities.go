package workflows

import (
	"context"
	"fmt"

	"github.com/samirrijal/findmypet/internal/core/domain"
	"github.com/samirrijal/findmypet/internal/core/usecases"
	"github.com/samirrijal/findmypet/internal/pkg/metrics"
)

// AlertActivities holds the activity implementations for NearbyAlertWorkflow.
type AlertActivities struct {
	Alerts *usecases.AlertService
}

// FindRecipients returns the watchers to alert about event, nearest first.
func (a *AlertActivities) FindRecipients(ctx context.Context, event domain.PetEvent) ([]domain.AlertRecipient, error) {
	recipients, err := a.Alerts.Recipients(ctx, &event)
	if err != nil {
		return nil, fmt.Errorf("find recipients for pet %d: %w", event.PetID, err)
	}
	return recipients, nil
}

// SendAlert pushes one alert about event to r.
func (a *AlertActivities) SendAlert(ctx context.Context, event domain.PetEvent, r domain.AlertRecipient) error {
	if err := a.Alerts.Send(ctx, &event, r); err != nil {
		metrics.AlertsSent.WithLabelValues("failed").Inc()
		return err
	}
	metrics.AlertsSent.WithLabelValues("sent").Inc()
	return nil
}
