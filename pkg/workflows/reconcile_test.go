package workflows

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/testsuite"
)

type flakyReconciler struct {
	mu       sync.Mutex
	failures int
	calls    int
	result   ReconcileResult
}

func (r *flakyReconciler) ReconcileOccupancy(context.Context) (ReconcileResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.calls <= r.failures {
		return ReconcileResult{}, errors.New("storage failure: connection reset")
	}
	return r.result, nil
}

func TestReconcileOccupancyWorkflow_ReturnsChanges(t *testing.T) {
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()

	rec := &flakyReconciler{result: ReconcileResult{Raised: []string{"takeaway:3"}, Released: []string{"dine-in:6"}}}
	env.RegisterActivity(&ReconcileActivities{Reconciler: rec})

	env.ExecuteWorkflow(ReconcileOccupancyWorkflow)

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())
	var res ReconcileResult
	require.NoError(t, env.GetWorkflowResult(&res))
	assert.Equal(t, rec.result, res)
}

func TestReconcileOccupancyWorkflow_RetriesActivity(t *testing.T) {
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()

	rec := &flakyReconciler{failures: 2}
	env.RegisterActivity(&ReconcileActivities{Reconciler: rec})

	env.ExecuteWorkflow(ReconcileOccupancyWorkflow)

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())
	assert.Equal(t, 3, rec.calls)
}

func TestReconcileOccupancyWorkflow_GivesUp(t *testing.T) {
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()

	rec := &flakyReconciler{failures: 100}
	env.RegisterActivity(&ReconcileActivities{Reconciler: rec})

	env.ExecuteWorkflow(ReconcileOccupancyWorkflow)

	require.True(t, env.IsWorkflowCompleted())
	assert.Error(t, env.GetWorkflowError())
	assert.Equal(t, 5, rec.calls)
}
