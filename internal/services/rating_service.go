package services

import (
	"context"
	"fmt"
	"strings"

	"go.temporal.io/api/enums/v1"
	temporalsdkclient "go.temporal.io/sdk/client"

	"github.com/veritaschain/pociv-backend/internal/platform/logger"
	"github.com/veritaschain/pociv-backend/internal/scoring"
	"github.com/veritaschain/pociv-backend/internal/temporalx"
	"github.com/veritaschain/pociv-backend/internal/temporalx/rating"
)

type RatingService interface {
	// Submit validates the rating vector and starts one pipeline run.
	// The workflow id is derived from the target message id, so resubmitting
	// the same message while a run is open is rejected rather than doubled.
	// Once that run closes, a fresh submission may start a new one.
	Submit(ctx context.Context, input rating.Input) (string, error)
}

type ratingService struct {
	temporal  temporalsdkclient.Client
	taskQueue string
	log       *logger.Logger
}

func NewRatingService(temporal temporalsdkclient.Client, log *logger.Logger) RatingService {
	cfg := temporalx.LoadConfig()
	return &ratingService{
		temporal:  temporal,
		taskQueue: cfg.TaskQueue,
		log:       log.With("service", "RatingService"),
	}
}

func (s *ratingService) Submit(ctx context.Context, input rating.Input) (string, error) {
	if s.temporal == nil {
		return "", fmt.Errorf("temporal not configured")
	}
	if _, err := scoring.CalculateScore(input.Metrics); err != nil {
		return "", err
	}

	tq := strings.TrimSpace(s.taskQueue)
	if tq == "" {
		tq = "civility-rating-queue"
	}
	opts := temporalsdkclient.StartWorkflowOptions{
		ID:                    fmt.Sprintf("civility-rating-%d", input.TargetMessageID),
		TaskQueue:             tq,
		WorkflowIDReusePolicy: enums.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE,
	}

	run, err := s.temporal.ExecuteWorkflow(ctx, opts, rating.WorkflowName, input)
	if err != nil {
		return "", fmt.Errorf("start rating workflow: %w", err)
	}

	s.log.Info("Rating workflow started",
		"workflow_id", run.GetID(),
		"target_message_id", input.TargetMessageID,
		"validator_id", input.ValidatorID,
	)
	return run.GetID(), nil
}
