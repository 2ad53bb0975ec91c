package workflows

import (
	"context"
	"fmt"
	"time"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"
)

const (
	// ReconcileTaskQueue is the task queue hosting the occupancy reconcile workflow.
	ReconcileTaskQueue = "occupancy-reconcile"

	// ReconcileWorkflowID is fixed so overlapping triggers join the running execution.
	ReconcileWorkflowID = "occupancy-reconcile"
)

// ReconcileResult lists the slot keys ("kind:number") a reconcile pass changed.
type ReconcileResult struct {
	Raised   []string `json:"raised"`
	Released []string `json:"released"`
}

// Reconciler runs one occupancy reconcile pass.
type Reconciler interface {
	ReconcileOccupancy(ctx context.Context) (ReconcileResult, error)
}

// ReconcileActivities hosts the activity side of ReconcileOccupancyWorkflow.
type ReconcileActivities struct {
	Reconciler Reconciler
}

// ReconcileOccupancyActivity runs a single pass against the stores.
func (a *ReconcileActivities) ReconcileOccupancyActivity(ctx context.Context) (ReconcileResult, error) {
	return a.Reconciler.ReconcileOccupancy(ctx)
}

// ReconcileOccupancyWorkflow makes every occupancy flag agree with the unpaid
// orders. Storage hiccups are retried with backoff by Temporal.
func ReconcileOccupancyWorkflow(ctx workflow.Context) (ReconcileResult, error) {
	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2,
			MaximumInterval:    30 * time.Second,
			MaximumAttempts:    5,
		},
	})

	var a *ReconcileActivities
	var res ReconcileResult
	if err := workflow.ExecuteActivity(ctx, a.ReconcileOccupancyActivity).Get(ctx, &res); err != nil {
		return ReconcileResult{}, err
	}
	workflow.GetLogger(ctx).Info("occupancy reconciled",
		"raised", len(res.Raised), "released", len(res.Released))
	return res, nil
}

// NewReconcileWorker registers the reconcile workflow and activities on
// ReconcileTaskQueue. The caller starts and stops the worker.
func NewReconcileWorker(tc *TemporalClient, acts *ReconcileActivities) worker.Worker {
	w := worker.New(tc.Client, ReconcileTaskQueue, worker.Options{})
	w.RegisterWorkflow(ReconcileOccupancyWorkflow)
	w.RegisterActivity(acts)
	return w
}

// TriggerReconcile starts ReconcileOccupancyWorkflow, or attaches to the run
// already in flight.
func (tc *TemporalClient) TriggerReconcile(ctx context.Context) (client.WorkflowRun, error) {
	run, err := tc.Client.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:        ReconcileWorkflowID,
		TaskQueue: ReconcileTaskQueue,
	}, ReconcileOccupancyWorkflow)
	if err != nil {
		return nil, fmt.Errorf("start reconcile workflow: %w", err)
	}
	return run, nil
}
