// Package temporalworker hosts the pipeline workflow and activities on the
// configured task queue.
package temporalworker

import (
	"context"
	"fmt"
	"time"

	"go.temporal.io/sdk/activity"
	temporalsdkclient "go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/veritaschain/pociv-backend/internal/platform/envutil"
	"github.com/veritaschain/pociv-backend/internal/platform/logger"
	"github.com/veritaschain/pociv-backend/internal/temporalx"
	"github.com/veritaschain/pociv-backend/internal/temporalx/rating"
)

type Runner struct {
	log  *logger.Logger
	tc   temporalsdkclient.Client
	acts *rating.Activities
}

func NewRunner(log *logger.Logger, tc temporalsdkclient.Client, acts *rating.Activities) (*Runner, error) {
	if tc == nil {
		return nil, fmt.Errorf("temporal worker: nil client")
	}
	if acts == nil {
		return nil, fmt.Errorf("temporal worker: nil activities")
	}
	return &Runner{log: log, tc: tc, acts: acts}, nil
}

// Start brings the worker up with bounded retry so the process survives a
// Temporal frontend that is still booting.
func (r *Runner) Start(ctx context.Context) error {
	if r == nil || r.tc == nil {
		return fmt.Errorf("temporal worker not initialized")
	}

	cfg := temporalx.LoadConfig()
	if r.log != nil {
		r.log.Info("Starting Temporal worker", "address", cfg.Address, "namespace", cfg.Namespace, "task_queue", cfg.TaskQueue)
	}

	maxWait := envutil.Seconds("TEMPORAL_WORKER_START_MAX_WAIT_SECONDS", 60)
	backoff := envutil.Millis("TEMPORAL_WORKER_START_BACKOFF_MS", 250)
	backoffMax := envutil.Millis("TEMPORAL_WORKER_START_BACKOFF_MAX_MS", 5000)

	deadline := time.Now().Add(maxWait)

	for attempt := 1; ; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		w := r.newWorker(cfg)
		startErr := w.Start()
		if startErr == nil {
			go func() {
				<-ctx.Done()
				w.Stop()
			}()
			if r.log != nil {
				r.log.Info("Temporal worker started", "namespace", cfg.Namespace, "task_queue", cfg.TaskQueue, "attempts", attempt)
			}
			return nil
		}

		w.Stop()

		if maxWait <= 0 || time.Now().After(deadline) || !temporalx.IsRetryableRPC(startErr) {
			return fmt.Errorf("temporal worker start (namespace=%s task_queue=%s): %w", cfg.Namespace, cfg.TaskQueue, startErr)
		}

		if r.log != nil {
			r.log.Warn("Temporal worker failed to start; retrying", "attempt", attempt, "error", startErr)
		}

		if sleep := temporalx.ClampBackoff(backoff, backoffMax, attempt); sleep > 0 {
			time.Sleep(sleep)
		}
	}
}

func (r *Runner) newWorker(cfg temporalx.Config) worker.Worker {
	concurrency := envutil.Int("WORKER_CONCURRENCY", 4)
	if concurrency < 1 {
		concurrency = 1
	}

	w := worker.New(r.tc, cfg.TaskQueue, worker.Options{
		MaxConcurrentActivityExecutionSize:     concurrency,
		MaxConcurrentWorkflowTaskExecutionSize: concurrency,
	})

	w.RegisterWorkflowWithOptions(rating.Workflow, workflow.RegisterOptions{Name: rating.WorkflowName})
	w.RegisterActivityWithOptions(r.acts.CalculateAndStore, activity.RegisterOptions{Name: rating.ActivityCalculateAndStore})
	w.RegisterActivityWithOptions(r.acts.CheckEligibility, activity.RegisterOptions{Name: rating.ActivityCheckEligibility})
	w.RegisterActivityWithOptions(r.acts.MintAttestation, activity.RegisterOptions{Name: rating.ActivityMintAttestation})
	w.RegisterActivityWithOptions(r.acts.Notify, activity.RegisterOptions{Name: rating.ActivityNotify})
	return w
}
