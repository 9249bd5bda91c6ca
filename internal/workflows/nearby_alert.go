package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/samirrijal/findmypet/internal/core/domain"
)

// PetReportedInput is the input for the nearby alert workflow.
type PetReportedInput struct {
	Event domain.PetEvent
}

// AlertSummary is the result of one NearbyAlertWorkflow run.
type AlertSummary struct {
	PetID   int64
	Matched int
	Sent    int
	Failed  int
}

// NearbyAlertWorkflow finds the watchers whose area covers a new report and
// pushes one alert to each. A failed alert is logged and does not stop the
// others.
func NearbyAlertWorkflow(ctx workflow.Context, input PetReportedInput) (AlertSummary, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting nearby alert workflow", "petID", input.Event.PetID)

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval: time.Second,
			MaximumAttempts: 3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, actOpts)

	summary := AlertSummary{PetID: input.Event.PetID}

	var recipients []domain.AlertRecipient
	err := workflow.ExecuteActivity(ctx, "FindRecipients", input.Event).Get(ctx, &recipients)
	if err != nil {
		return summary, err
	}
	summary.Matched = len(recipients)

	futures := make([]workflow.Future, len(recipients))
	for i, r := range recipients {
		futures[i] = workflow.ExecuteActivity(ctx, "SendAlert", input.Event, r)
	}
	for i, f := range futures {
		if err := f.Get(ctx, nil); err != nil {
			logger.Warn("alert failed", "userID", recipients[i].UserID, "error", err)
			summary.Failed++
			continue
		}
		summary.Sent++
	}

	logger.Info("Nearby alerts sent", "matched", summary.Matched, "sent", summary.Sent, "failed", summary.Failed)
	return summary, nil
}
