package rating

import "time"

const (
	WorkflowName = "civility_rating"

	ActivityCalculateAndStore = "calculate_and_store"
	ActivityCheckEligibility  = "check_eligibility"
	ActivityMintAttestation   = "mint_attestation"
	ActivityNotify            = "notify_discord"
)

// Input is one rating submission driving one pipeline run.
type Input struct {
	ValidatorID     int64 `json:"validator_id"`
	TargetMessageID int64 `json:"target_message_id"`
	TargetUserID    int64 `json:"target_user_id"`
	ChannelID       int64 `json:"channel_id"`
	Metrics         []int `json:"metrics"`
}

type CalculationResult struct {
	ValidationID string  `json:"validation_id"`
	Score        float64 `json:"score"`
}

type EligibilityInput struct {
	TargetUserID int64   `json:"target_user_id"`
	Score        float64 `json:"score"`
}

type EligibilityResult struct {
	Eligible      bool   `json:"eligible"`
	Reason        string `json:"reason,omitempty"`
	WalletAddress string `json:"wallet_address,omitempty"`
}

type MintInput struct {
	ValidationID    string  `json:"validation_id"`
	RecipientWallet string  `json:"recipient_wallet"`
	Score           float64 `json:"score"`
	Metrics         []int   `json:"metrics"`
	ChannelID       int64   `json:"channel_id"`
	MessageID       int64   `json:"message_id"`
}

type MintResult struct {
	UID    string `json:"uid"`
	TxHash string `json:"tx_hash"`
}

type NotifyInput struct {
	ChannelID      int64  `json:"channel_id"`
	MessageID      int64  `json:"message_id"`
	TargetUserID   int64  `json:"target_user_id"`
	Tier           string `json:"tier"`
	AttestationUID string `json:"attestation_uid,omitempty"`
}

type NotifyResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// Result is the terminal structured outcome of a run. Every run resolves to
// one of these; the pipeline never surfaces an unresolved state.
type Result struct {
	Success        bool    `json:"success"`
	ValidationID   string  `json:"validation_id,omitempty"`
	Score          float64 `json:"score,omitempty"`
	Tier           string  `json:"tier,omitempty"`
	AttestationUID string  `json:"attestation_uid,omitempty"`
	TxHash         string  `json:"tx_hash,omitempty"`
	Reason         string  `json:"reason,omitempty"`
	Error          string  `json:"error,omitempty"`
}

// MintRetryConfig bounds the in-activity retry loop. Values are configuration,
// not literals, so tests can shrink them.
type MintRetryConfig struct {
	MaxAttempts    int
	BaseDelay      time.Duration
	AttemptTimeout time.Duration
}

func DefaultMintRetryConfig() MintRetryConfig {
	return MintRetryConfig{
		MaxAttempts:    5,
		BaseDelay:      2 * time.Second,
		AttemptTimeout: 300 * time.Second,
	}
}
