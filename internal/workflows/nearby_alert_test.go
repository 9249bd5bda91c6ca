package workflows_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/testsuite"

	"github.com/samirrijal/findmypet/internal/adapters/memory"
	"github.com/samirrijal/findmypet/internal/core/domain"
	"github.com/samirrijal/findmypet/internal/core/usecases"
	"github.com/samirrijal/findmypet/internal/workflows"
)

var knezMihailova = domain.Coordinate{Lat: 44.8176, Lng: 20.4587}

type recordingNotifier struct {
	mu     sync.Mutex
	tokens []string
	fail   string
}

func (n *recordingNotifier) SendPush(_ context.Context, token, _, _ string, _ map[string]string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if token == n.fail {
		return errors.New("push gateway unavailable")
	}
	n.tokens = append(n.tokens, token)
	return nil
}

func seedWatchers(t *testing.T, store *memory.PetStore) {
	t.Helper()
	watchers := []domain.Watcher{
		{FullName: "Reporter", PushToken: "tok-reporter", Center: knezMihailova, RadiusKm: 10},
		{FullName: "Ana", PushToken: "tok-ana", Center: domain.Coordinate{Lat: 44.82, Lng: 20.46}, RadiusKm: 5},
		{FullName: "Ivan", PushToken: "tok-ivan", Center: domain.Coordinate{Lat: 44.83, Lng: 20.46}, RadiusKm: 5},
		{FullName: "Far", PushToken: "tok-far", Center: domain.Coordinate{Lat: 45.25, Lng: 19.84}, RadiusKm: 5},
	}
	for i := range watchers {
		require.NoError(t, store.SaveWatcher(context.Background(), &watchers[i]))
	}
}

func newEnv(t *testing.T, notifier *recordingNotifier) *testsuite.TestWorkflowEnvironment {
	t.Helper()
	store := memory.NewPetStore(0)
	seedWatchers(t, store)

	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(workflows.NearbyAlertWorkflow)
	env.RegisterActivity(&workflows.AlertActivities{
		Alerts: usecases.NewAlertService(store, notifier),
	})
	return env
}

func reportedEvent() domain.PetEvent {
	return domain.PetEvent{
		ID:         "evt-1",
		Type:       domain.PetReported,
		PetID:      42,
		Location:   knezMihailova,
		Category:   domain.CategoryDog,
		Title:      "Rex",
		ReporterID: 1,
		OccurredAt: time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC),
	}
}

func TestNearbyAlertWorkflow_AlertsWatchersInRange(t *testing.T) {
	notifier := &recordingNotifier{}
	env := newEnv(t, notifier)

	env.ExecuteWorkflow(workflows.NearbyAlertWorkflow, workflows.PetReportedInput{Event: reportedEvent()})

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var summary workflows.AlertSummary
	require.NoError(t, env.GetWorkflowResult(&summary))
	assert.Equal(t, int64(42), summary.PetID)
	assert.Equal(t, 2, summary.Matched)
	assert.Equal(t, 2, summary.Sent)
	assert.Zero(t, summary.Failed)
	assert.ElementsMatch(t, []string{"tok-ana", "tok-ivan"}, notifier.tokens)
}

func TestNearbyAlertWorkflow_FailedSendDoesNotAbort(t *testing.T) {
	notifier := &recordingNotifier{fail: "tok-ana"}
	env := newEnv(t, notifier)

	env.ExecuteWorkflow(workflows.NearbyAlertWorkflow, workflows.PetReportedInput{Event: reportedEvent()})

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var summary workflows.AlertSummary
	require.NoError(t, env.GetWorkflowResult(&summary))
	assert.Equal(t, 1, summary.Sent)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, []string{"tok-ivan"}, notifier.tokens)
}

func TestNearbyAlertWorkflow_NoWatchers(t *testing.T) {
	notifier := &recordingNotifier{}
	env := newEnv(t, notifier)

	event := reportedEvent()
	event.Location = domain.Coordinate{Lat: -33.87, Lng: 151.21}
	env.ExecuteWorkflow(workflows.NearbyAlertWorkflow, workflows.PetReportedInput{Event: event})

	require.NoError(t, env.GetWorkflowError())
	var summary workflows.AlertSummary
	require.NoError(t, env.GetWorkflowResult(&summary))
	assert.Zero(t, summary.Matched)
	assert.Empty(t, notifier.tokens)
}

type fakeStarter struct {
	opts client.StartWorkflowOptions
	args []interface{}
}

func (f *fakeStarter) ExecuteWorkflow(_ context.Context, opts client.StartWorkflowOptions, _ interface{}, args ...interface{}) (client.WorkflowRun, error) {
	f.opts = opts
	f.args = args
	return nil, nil
}

func TestStartNearbyAlert(t *testing.T) {
	starter := &fakeStarter{}
	_, err := workflows.StartNearbyAlert(context.Background(), starter, "alerts", reportedEvent())
	require.NoError(t, err)
	assert.Equal(t, "nearby-alert-42", starter.opts.ID)
	assert.Equal(t, "alerts", starter.opts.TaskQueue)
	require.Len(t, starter.args, 1)
	assert.Equal(t, int64(42), starter.args[0].(workflows.PetReportedInput).Event.PetID)
}

type duplicateStarter struct{}

func (duplicateStarter) ExecuteWorkflow(context.Context, client.StartWorkflowOptions, interface{}, ...interface{}) (client.WorkflowRun, error) {
	return nil, serviceerror.NewWorkflowExecutionAlreadyStarted("already started", "", "")
}

func TestStartNearbyAlert_AlreadySent(t *testing.T) {
	run, err := workflows.StartNearbyAlert(context.Background(), duplicateStarter{}, "alerts", reportedEvent())
	require.NoError(t, err)
	assert.Nil(t, run)
}
