package eas

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/veritaschain/pociv-backend/internal/platform/envutil"
)

const (
	// Optimism Sepolia.
	DefaultChainID         = 11155420
	DefaultContractAddress = "0x4200000000000000000000000000000000000021"
	DefaultRPCURL          = "https://sepolia.optimism.io"

	DefaultCommunityContext = "mvp_pilot_v1"
	DefaultExplorerBaseURL  = "https://optimism-sepolia.easscan.org/attestation/view/"
)

type Config struct {
	RPCURL           string
	PrivateKey       string
	ContractAddress  string
	SchemaUID        string
	ChainID          int64
	CommunityContext string
}

func LoadConfig() Config {
	return Config{
		RPCURL:           envutil.String("LEDGER_RPC_URL", DefaultRPCURL),
		PrivateKey:       envutil.String("ATTESTER_PRIVATE_KEY", ""),
		ContractAddress:  envutil.String("EAS_CONTRACT_ADDRESS", DefaultContractAddress),
		SchemaUID:        envutil.String("EAS_SCHEMA_UID", ""),
		ChainID:          int64(envutil.Int("LEDGER_CHAIN_ID", DefaultChainID)),
		CommunityContext: envutil.String("COMMUNITY_CONTEXT", DefaultCommunityContext),
	}
}

// ParseSchemaUID decodes a 32-byte schema identifier from its textual form.
// The value must be exactly 64 hex characters after stripping any 0x prefix;
// anything else is a configuration error and callers fail fast on it.
func ParseSchemaUID(raw string) ([32]byte, error) {
	var uid [32]byte
	cleaned := strings.TrimPrefix(strings.TrimSpace(raw), "0x")
	if len(cleaned) != 64 {
		return uid, fmt.Errorf("schema uid must be 64 hex characters (32 bytes), got %d", len(cleaned))
	}
	decoded, err := hex.DecodeString(cleaned)
	if err != nil {
		return uid, fmt.Errorf("schema uid is not valid hex: %w", err)
	}
	copy(uid[:], decoded)
	return uid, nil
}

// ExplorerURL builds the externally browsable link for an attestation uid.
func ExplorerURL(uid string) string {
	return DefaultExplorerBaseURL + uid
}
