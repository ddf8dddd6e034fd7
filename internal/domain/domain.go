// Package domain defines the persistence models shared by the repository and
// activity layers.
package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AttestationStatus string

const (
	AttestationPending AttestationStatus = "PENDING"
	AttestationMinted  AttestationStatus = "MINTED"
	AttestationFailed  AttestationStatus = "FAILED"
)

// User is a Discord participant. Rows are created lazily the first time an id
// appears as validator or target, and are never deleted. A user without a
// linked wallet can never receive an attestation.
type User struct {
	DiscordID     int64     `gorm:"column:discord_id;primaryKey" json:"discord_id"`
	WalletAddress *string   `gorm:"column:wallet_address;type:varchar(42)" json:"wallet_address,omitempty"`
	CreatedAt     time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (User) TableName() string { return "users" }

// Validation is one civility rating of one message. Immutable once written.
type Validation struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ValidatorID     int64          `gorm:"column:validator_id;not null;index" json:"validator_id"`
	TargetMessageID int64          `gorm:"column:target_message_id;not null" json:"target_message_id"`
	TargetUserID    int64          `gorm:"column:target_user_id;not null;index" json:"target_user_id"`
	ChannelID       int64          `gorm:"column:channel_id;not null" json:"channel_id"`
	Metrics         datatypes.JSON `gorm:"column:metrics_json;not null" json:"metrics"`
	CalculatedScore float64        `gorm:"column:calculated_score;not null" json:"calculated_score"`
	CreatedAt       time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (Validation) TableName() string { return "validations" }

func (v *Validation) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

// MetricValues decodes the stored rating vector.
func (v *Validation) MetricValues() ([]int, error) {
	var payload struct {
		Metrics []int `json:"metrics"`
	}
	if err := json.Unmarshal(v.Metrics, &payload); err != nil {
		return nil, fmt.Errorf("decode metrics for validation %s: %w", v.ID, err)
	}
	return payload.Metrics, nil
}

// EncodeMetrics wraps a rating vector into the stored JSON shape.
func EncodeMetrics(metrics []int) (datatypes.JSON, error) {
	raw, err := json.Marshal(struct {
		Metrics []int `json:"metrics"`
	}{Metrics: metrics})
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

// Attestation is the terminal record of one mint attempt sequence. The uid is
// the on-chain record identifier for a MINTED row, or failed_<validation-id>
// for a FAILED one. The unique index on validation_id keeps the row count at
// one per validation.
type Attestation struct {
	UID             string            `gorm:"column:uid;type:varchar(66);primaryKey" json:"uid"`
	ValidationID    uuid.UUID         `gorm:"column:validation_id;type:uuid;not null;uniqueIndex" json:"validation_id"`
	RecipientWallet string            `gorm:"column:recipient_wallet;type:varchar(42);not null" json:"recipient_wallet"`
	TxHash          string            `gorm:"column:tx_hash;type:varchar(66);not null" json:"tx_hash"`
	Status          AttestationStatus `gorm:"column:status;type:varchar(16);not null" json:"status"`
	CreatedAt       time.Time         `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (Attestation) TableName() string { return "attestations" }
