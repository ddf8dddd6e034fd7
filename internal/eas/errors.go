package eas

import "errors"

// Failure classes surfaced by the client. Callers decide retry behavior from
// these: ErrInvalidInput is a caller bug and never retried, the other three
// are ledger-layer conditions the mint loop may retry.
var (
	ErrInvalidInput = errors.New("invalid attestation input")
	ErrConnectivity = errors.New("ledger connectivity failure")
	ErrTxRejected   = errors.New("transaction rejected")

	// ErrUIDMissing means the transaction succeeded on-chain but no receipt
	// log decoded as the Attested event. Distinct from ErrTxRejected.
	ErrUIDMissing = errors.New("attestation uid not found in receipt logs")
)
