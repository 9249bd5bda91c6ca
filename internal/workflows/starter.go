package workflows

import (
	"context"
	"errors"
	"fmt"

	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	"github.com/samirrijal/findmypet/internal/core/domain"
)

// WorkflowStarter is the part of client.Client used to start workflows.
type WorkflowStarter interface {
	ExecuteWorkflow(ctx context.Context, options client.StartWorkflowOptions, workflow interface{}, args ...interface{}) (client.WorkflowRun, error)
}

// NearbyAlertWorkflowID is the workflow id for alerts about one report.
// Redelivered events map to the same id and start nothing new.
func NearbyAlertWorkflowID(petID int64) string {
	return fmt.Sprintf("nearby-alert-%d", petID)
}

// StartNearbyAlert starts NearbyAlertWorkflow for a reported event. It
// returns a nil run when alerts for the pet were already sent.
func StartNearbyAlert(ctx context.Context, c WorkflowStarter, taskQueue string, event domain.PetEvent) (client.WorkflowRun, error) {
	opts := client.StartWorkflowOptions{
		ID:                    NearbyAlertWorkflowID(event.PetID),
		TaskQueue:             taskQueue,
		WorkflowIDReusePolicy: enumspb.WORKFLOW_ID_REUSE_POLICY_REJECT_DUPLICATE,
	}
	run, err := c.ExecuteWorkflow(ctx, opts, NearbyAlertWorkflow, PetReportedInput{Event: event})
	var started *serviceerror.WorkflowExecutionAlreadyStarted
	if errors.As(err, &started) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("start nearby alert for pet %d: %w", event.PetID, err)
	}
	return run, nil
}
