package rating

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/veritaschain/pociv-backend/internal/scoring"
)

// Workflow runs the four-step civility rating pipeline:
// Calculate -> CheckEligibility -> MintAttestation -> Notify.
//
// Steps 1-2 fail the run on any error. Step 3 degrades gracefully: after its
// in-activity retry loop is exhausted the run continues with no credential
// reference. Step 4 is best-effort and never flips the run outcome.
func Workflow(ctx workflow.Context, input Input) (Result, error) {
	log := workflow.GetLogger(ctx)
	log.Info("Starting civility rating workflow",
		"validator_id", input.ValidatorID, "target_message_id", input.TargetMessageID)

	// Single activity attempts: step 1 is the first write and has no
	// orchestrator-level idempotency key, step 2 is read-only and the caller
	// simply resubmits on failure.
	shortOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 1},
	}

	var calc CalculationResult
	if err := workflow.ExecuteActivity(
		workflow.WithActivityOptions(ctx, shortOpts),
		ActivityCalculateAndStore, input,
	).Get(ctx, &calc); err != nil {
		log.Error("Calculate step failed", "error", err)
		return Result{Success: false, Error: err.Error()}, nil
	}
	log.Info("Validation stored", "validation_id", calc.ValidationID, "score", calc.Score)

	var eligibility EligibilityResult
	if err := workflow.ExecuteActivity(
		workflow.WithActivityOptions(ctx, shortOpts),
		ActivityCheckEligibility, EligibilityInput{TargetUserID: input.TargetUserID, Score: calc.Score},
	).Get(ctx, &eligibility); err != nil {
		log.Error("Eligibility step failed", "error", err)
		return Result{
			Success:      false,
			ValidationID: calc.ValidationID,
			Score:        calc.Score,
			Error:        err.Error(),
		}, nil
	}

	if !eligibility.Eligible {
		log.Info("Not eligible for attestation", "reason", eligibility.Reason)
		return Result{
			Success:      false,
			ValidationID: calc.ValidationID,
			Score:        calc.Score,
			Reason:       eligibility.Reason,
		}, nil
	}

	// Score >= 3.0 guarantees a tier here; the guard covers float drift.
	tier := scoring.GetTier(calc.Score)
	if tier == scoring.TierNone {
		log.Warn("Eligible score produced no tier", "score", calc.Score)
		return Result{
			Success:      false,
			ValidationID: calc.ValidationID,
			Score:        calc.Score,
			Reason:       "Not Eligible",
		}, nil
	}

	// The retry loop lives inside the activity; the generous timeout covers
	// all attempts plus backoff.
	mintOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Minute,
		RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 1},
	}

	var mint MintResult
	if err := workflow.ExecuteActivity(
		workflow.WithActivityOptions(ctx, mintOpts),
		ActivityMintAttestation, MintInput{
			ValidationID:    calc.ValidationID,
			RecipientWallet: eligibility.WalletAddress,
			Score:           calc.Score,
			Metrics:         input.Metrics,
			ChannelID:       input.ChannelID,
			MessageID:       input.TargetMessageID,
		},
	).Get(ctx, &mint); err != nil {
		// Graceful degradation: the run completes and notifies with no
		// credential reference.
		log.Error("Mint attestation failed; continuing without credential", "error", err)
		mint = MintResult{}
	} else {
		log.Info("Attestation minted", "uid", mint.UID)
	}

	var notify NotifyResult
	if err := workflow.ExecuteActivity(
		workflow.WithActivityOptions(ctx, shortOpts),
		ActivityNotify, NotifyInput{
			ChannelID:      input.ChannelID,
			MessageID:      input.TargetMessageID,
			TargetUserID:   input.TargetUserID,
			Tier:           string(tier),
			AttestationUID: mint.UID,
		},
	).Get(ctx, &notify); err != nil {
		log.Error("Notification failed", "error", err)
	}

	return Result{
		Success:        true,
		ValidationID:   calc.ValidationID,
		Score:          calc.Score,
		Tier:           string(tier),
		AttestationUID: mint.UID,
		TxHash:         mint.TxHash,
	}, nil
}
