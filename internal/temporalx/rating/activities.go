package rating

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/veritaschain/pociv-backend/internal/clients/discord"
	"github.com/veritaschain/pociv-backend/internal/data/repos"
	"github.com/veritaschain/pociv-backend/internal/domain"
	"github.com/veritaschain/pociv-backend/internal/eas"
	"github.com/veritaschain/pociv-backend/internal/platform/logger"
	"github.com/veritaschain/pociv-backend/internal/scoring"
)

// Minter is the slice of the attestation client the mint activity needs.
// *eas.Client satisfies it.
type Minter interface {
	Attest(ctx context.Context, input eas.AttestInput) (*eas.AttestResult, error)
}

type Activities struct {
	Log          *logger.Logger
	Users        repos.UserRepo
	Validations  repos.ValidationRepo
	Attestations repos.AttestationRepo
	Minter       Minter
	Notifier     discord.Notifier
	MintRetry    MintRetryConfig
}

// CalculateAndStore scores the rating vector and persists the validation.
func (a *Activities) CalculateAndStore(ctx context.Context, input Input) (CalculationResult, error) {
	score, err := scoring.CalculateScore(input.Metrics)
	if err != nil {
		return CalculationResult{}, err
	}

	id, err := a.Validations.Create(ctx, repos.CreateValidationInput{
		ValidatorID:     input.ValidatorID,
		TargetMessageID: input.TargetMessageID,
		TargetUserID:    input.TargetUserID,
		ChannelID:       input.ChannelID,
		Metrics:         input.Metrics,
		Score:           score,
	})
	if err != nil {
		return CalculationResult{}, err
	}

	a.Log.Info("Validation stored", "validation_id", id.String(), "score", score)
	return CalculationResult{ValidationID: id.String(), Score: score}, nil
}

// CheckEligibility decides whether the target user earns an attestation.
// A sub-threshold score never touches the user row.
func (a *Activities) CheckEligibility(ctx context.Context, input EligibilityInput) (EligibilityResult, error) {
	if input.Score < 3.0 {
		a.Log.Info("Score below threshold", "score", input.Score)
		return EligibilityResult{Eligible: false, Reason: "Not Eligible"}, nil
	}

	user, err := a.Users.GetByID(ctx, nil, input.TargetUserID)
	if errors.Is(err, repos.ErrNotFound) {
		a.Log.Warn("Target user not found", "target_user_id", input.TargetUserID)
		return EligibilityResult{Eligible: false, Reason: "No Wallet"}, nil
	}
	if err != nil {
		return EligibilityResult{}, err
	}
	if user.WalletAddress == nil || *user.WalletAddress == "" {
		a.Log.Info("Target user has no wallet linked", "target_user_id", input.TargetUserID)
		return EligibilityResult{Eligible: false, Reason: "No Wallet"}, nil
	}

	return EligibilityResult{Eligible: true, WalletAddress: *user.WalletAddress}, nil
}

// MintAttestation runs the bounded retry loop around the attestation client.
// Each attempt builds a fresh transaction. On exhaustion it persists a FAILED
// row with the failed_<validation-id> placeholder and an empty tx hash, then
// returns the last error so the workflow can degrade gracefully.
func (a *Activities) MintAttestation(ctx context.Context, input MintInput) (MintResult, error) {
	validationID, err := uuid.Parse(input.ValidationID)
	if err != nil {
		return MintResult{}, fmt.Errorf("invalid validation id %q: %w", input.ValidationID, err)
	}

	scaledScore := uint16(math.Round(input.Score * 100))
	sourceRef := fmt.Sprintf("discord:%d:%d", input.ChannelID, input.MessageID)

	cfg := a.MintRetry
	if cfg.MaxAttempts < 1 {
		cfg = DefaultMintRetryConfig()
	}

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		result, err := a.attemptMint(ctx, cfg, eas.AttestInput{
			Recipient:     input.RecipientWallet,
			ScaledScore:   scaledScore,
			MetricRatings: input.Metrics,
			SourceRef:     sourceRef,
		}, validationID)
		if err == nil {
			a.Log.Info("Attestation minted", "uid", result.UID, "attempt", attempt)
			return result, nil
		}
		if errors.Is(err, eas.ErrInvalidInput) {
			return MintResult{}, err
		}

		lastErr = err
		a.Log.Warn("Mint attempt failed", "attempt", attempt, "max_attempts", cfg.MaxAttempts, "error", err)

		if attempt < cfg.MaxAttempts {
			delay := cfg.BaseDelay << (attempt - 1)
			select {
			case <-ctx.Done():
				return MintResult{}, ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	failed := &domain.Attestation{
		UID:             "failed_" + input.ValidationID,
		ValidationID:    validationID,
		RecipientWallet: input.RecipientWallet,
		TxHash:          "",
		Status:          domain.AttestationFailed,
	}
	if recordErr := a.Attestations.Record(ctx, failed); recordErr != nil {
		a.Log.Error("Failed to persist FAILED attestation row", "validation_id", input.ValidationID, "error", recordErr)
	}

	a.Log.Error("Mint attestation exhausted retries", "validation_id", input.ValidationID, "attempts", cfg.MaxAttempts, "error", lastErr)
	return MintResult{}, fmt.Errorf("mint attestation failed after %d attempts: %w", cfg.MaxAttempts, lastErr)
}

// attemptMint is one bounded attempt: submit-and-wait, then persist the
// MINTED row.
func (a *Activities) attemptMint(ctx context.Context, cfg MintRetryConfig, input eas.AttestInput, validationID uuid.UUID) (MintResult, error) {
	attemptCtx := ctx
	if cfg.AttemptTimeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, cfg.AttemptTimeout)
		defer cancel()
	}

	result, err := a.Minter.Attest(attemptCtx, input)
	if err != nil {
		return MintResult{}, err
	}

	minted := &domain.Attestation{
		UID:             result.UID,
		ValidationID:    validationID,
		RecipientWallet: input.Recipient,
		TxHash:          result.TxHash,
		Status:          domain.AttestationMinted,
	}
	if err := a.Attestations.Record(ctx, minted); err != nil {
		return MintResult{}, err
	}

	return MintResult{UID: result.UID, TxHash: result.TxHash}, nil
}

// Notify builds and delivers the user-facing outcome. Callers treat any error
// as best-effort; the run outcome is already recorded by the time this runs.
func (a *Activities) Notify(ctx context.Context, input NotifyInput) (NotifyResult, error) {
	notification := discord.BuildNotification(
		input.ChannelID, input.MessageID, input.TargetUserID, input.Tier, input.AttestationUID,
	)
	if err := a.Notifier.Send(ctx, notification); err != nil {
		return NotifyResult{}, err
	}
	return NotifyResult{Success: true, Message: notification.Message}, nil
}
