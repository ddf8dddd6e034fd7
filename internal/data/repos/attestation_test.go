package repos_test

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/veritaschain/pociv-backend/internal/data/repos"
	"github.com/veritaschain/pociv-backend/internal/data/repos/testutil"
	"github.com/veritaschain/pociv-backend/internal/domain"
)

func seedValidation(t *testing.T, validations repos.ValidationRepo) uuid.UUID {
	t.Helper()
	id, err := validations.Create(context.Background(), repos.CreateValidationInput{
		ValidatorID:     11,
		TargetMessageID: 555,
		TargetUserID:    22,
		ChannelID:       77,
		Metrics:         []int{5, 4, 3, 4, 4},
		Score:           4.0,
	})
	if err != nil {
		t.Fatalf("seed validation: %v", err)
	}
	return id
}

func TestRecordMintedAttestation(t *testing.T) {
	gdb := testutil.DB(t)
	log := testutil.Logger(t)
	users := repos.NewUserRepo(gdb, log)
	validations := repos.NewValidationRepo(gdb, log, users)
	attestations := repos.NewAttestationRepo(gdb, log)
	ctx := context.Background()

	valID := seedValidation(t, validations)

	att := &domain.Attestation{
		UID:             "0xabcdabcdabcdabcdabcdabcdabcdabcdabcdabcdabcdabcdabcdabcdabcdabcd",
		ValidationID:    valID,
		RecipientWallet: "0x1111111111111111111111111111111111111111",
		TxHash:          "0xdeadbeef",
		Status:          domain.AttestationMinted,
	}
	if err := attestations.Record(ctx, att); err != nil {
		t.Fatalf("Record: %v", err)
	}

	stored, err := attestations.GetByValidationID(ctx, nil, valID)
	if err != nil {
		t.Fatalf("GetByValidationID: %v", err)
	}
	if stored.Status != domain.AttestationMinted {
		t.Fatalf("stored status %q, want MINTED", stored.Status)
	}
	if stored.TxHash != att.TxHash {
		t.Fatalf("stored tx hash %q, want %q", stored.TxHash, att.TxHash)
	}
}

func TestRecordFailedAttestationPlaceholder(t *testing.T) {
	gdb := testutil.DB(t)
	log := testutil.Logger(t)
	users := repos.NewUserRepo(gdb, log)
	validations := repos.NewValidationRepo(gdb, log, users)
	attestations := repos.NewAttestationRepo(gdb, log)
	ctx := context.Background()

	valID := seedValidation(t, validations)

	att := &domain.Attestation{
		UID:             "failed_" + valID.String(),
		ValidationID:    valID,
		RecipientWallet: "0x1111111111111111111111111111111111111111",
		TxHash:          "",
		Status:          domain.AttestationFailed,
	}
	if err := attestations.Record(ctx, att); err != nil {
		t.Fatalf("Record: %v", err)
	}

	stored, err := attestations.GetByValidationID(ctx, nil, valID)
	if err != nil {
		t.Fatalf("GetByValidationID: %v", err)
	}
	if stored.UID != "failed_"+valID.String() {
		t.Fatalf("stored uid %q, want placeholder", stored.UID)
	}
	if stored.TxHash != "" {
		t.Fatalf("failed attestation should have empty tx hash, got %q", stored.TxHash)
	}
}

func TestRecordAttestationIdempotent(t *testing.T) {
	gdb := testutil.DB(t)
	log := testutil.Logger(t)
	users := repos.NewUserRepo(gdb, log)
	validations := repos.NewValidationRepo(gdb, log, users)
	attestations := repos.NewAttestationRepo(gdb, log)
	ctx := context.Background()

	valID := seedValidation(t, validations)
	att := &domain.Attestation{
		UID:             "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
		ValidationID:    valID,
		RecipientWallet: "0x1111111111111111111111111111111111111111",
		TxHash:          "0x01",
		Status:          domain.AttestationMinted,
	}

	if err := attestations.Record(ctx, att); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := attestations.Record(ctx, att); err != nil {
		t.Fatalf("Record (repeat): %v", err)
	}

	var count int64
	if err := gdb.Model(&domain.Attestation{}).Where("validation_id = ?", valID).Count(&count).Error; err != nil {
		t.Fatalf("count attestations: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 attestation row, got %d", count)
	}
}
