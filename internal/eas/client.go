// Package eas turns a validated credential payload into an on-chain EAS
// attestation and extracts the resulting record uid from the receipt.
package eas

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/veritaschain/pociv-backend/internal/platform/logger"
	"github.com/veritaschain/pociv-backend/internal/scoring"
)

// The subset of the registry contract surface this client touches: the attest
// entry point and the Attested event whose first indexed field is the uid.
const registryABIJSON = `[
  {
    "name": "attest",
    "type": "function",
    "stateMutability": "payable",
    "inputs": [
      {"name": "schema", "type": "bytes32"},
      {"name": "data", "type": "tuple", "components": [
        {"name": "recipient", "type": "address"},
        {"name": "expirationTime", "type": "uint64"},
        {"name": "revocable", "type": "bool"},
        {"name": "refUID", "type": "bytes32"},
        {"name": "data", "type": "bytes"},
        {"name": "value", "type": "uint256"}
      ]}
    ],
    "outputs": [{"name": "", "type": "bytes32"}]
  },
  {
    "name": "Attested",
    "type": "event",
    "anonymous": false,
    "inputs": [
      {"name": "uid", "type": "bytes32", "indexed": true},
      {"name": "schema", "type": "bytes32", "indexed": true},
      {"name": "recipient", "type": "address", "indexed": false},
      {"name": "attester", "type": "address", "indexed": false},
      {"name": "expirationTime", "type": "uint64", "indexed": false},
      {"name": "revocable", "type": "bool", "indexed": false},
      {"name": "refUID", "type": "bytes32", "indexed": false},
      {"name": "data", "type": "bytes", "indexed": false}
    ]
  }
]`

// Backend is the ledger RPC surface the client needs. *ethclient.Client
// satisfies it; tests substitute a fake.
type Backend interface {
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

type attestationRequestData struct {
	Recipient      common.Address
	ExpirationTime uint64
	Revocable      bool
	RefUID         [32]byte
	Data           []byte
	Value          *big.Int
}

type AttestInput struct {
	Recipient     string
	ScaledScore   uint16
	MetricRatings []int
	SourceRef     string
}

type AttestResult struct {
	UID    string
	TxHash string
}

type Client struct {
	backend          Backend
	registryABI      abi.ABI
	key              *ecdsa.PrivateKey
	from             common.Address
	contract         common.Address
	schemaUID        [32]byte
	chainID          *big.Int
	communityContext string
	pollInterval     time.Duration
	log              *logger.Logger

	// Serializes nonce acquisition with broadcast so concurrent pipeline runs
	// cannot race for the same account nonce.
	nonceMu sync.Mutex
}

// NewClient dials the configured RPC endpoint and prepares the signer.
func NewClient(logg *logger.Logger) (*Client, error) {
	cfg := LoadConfig()
	backend, err := ethclient.Dial(cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %v", ErrConnectivity, cfg.RPCURL, err)
	}
	return NewClientWithBackend(cfg, backend, logg)
}

func NewClientWithBackend(cfg Config, backend Backend, logg *logger.Logger) (*Client, error) {
	if backend == nil {
		return nil, fmt.Errorf("eas: nil backend")
	}
	if strings.TrimSpace(cfg.PrivateKey) == "" {
		return nil, fmt.Errorf("eas: ATTESTER_PRIVATE_KEY is required")
	}
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(cfg.PrivateKey), "0x"))
	if err != nil {
		return nil, fmt.Errorf("eas: parse private key: %w", err)
	}
	if !common.IsHexAddress(cfg.ContractAddress) {
		return nil, fmt.Errorf("eas: invalid contract address %q", cfg.ContractAddress)
	}
	schemaUID, err := ParseSchemaUID(cfg.SchemaUID)
	if err != nil {
		return nil, fmt.Errorf("eas: %w", err)
	}
	registryABI, err := abi.JSON(strings.NewReader(registryABIJSON))
	if err != nil {
		return nil, fmt.Errorf("eas: parse registry abi: %w", err)
	}

	c := &Client{
		backend:          backend,
		registryABI:      registryABI,
		key:              key,
		from:             crypto.PubkeyToAddress(key.PublicKey),
		contract:         common.HexToAddress(cfg.ContractAddress),
		schemaUID:        schemaUID,
		chainID:          big.NewInt(cfg.ChainID),
		communityContext: cfg.CommunityContext,
		pollInterval:     2 * time.Second,
		log:              logg.With("client", "EASClient"),
	}
	c.log.Info("EAS client initialized", "contract", c.contract.Hex(), "chain_id", cfg.ChainID, "attester", c.from.Hex())
	return c, nil
}

// Attest encodes the credential payload, submits a signed attest transaction
// and blocks until it is mined, then extracts the record uid from the receipt
// logs. Every call builds a fresh transaction from the current nonce and gas
// price, so retries are never literal re-sends.
func (c *Client) Attest(ctx context.Context, input AttestInput) (*AttestResult, error) {
	if len(input.MetricRatings) != scoring.MetricCount {
		return nil, fmt.Errorf("%w: expected %d metric ratings, got %d", ErrInvalidInput, scoring.MetricCount, len(input.MetricRatings))
	}
	ratings := make([]uint8, len(input.MetricRatings))
	for i, r := range input.MetricRatings {
		if r < 0 || r > 5 {
			return nil, fmt.Errorf("%w: metric rating must be 0-5, got %d", ErrInvalidInput, r)
		}
		ratings[i] = uint8(r)
	}
	if !common.IsHexAddress(input.Recipient) {
		return nil, fmt.Errorf("%w: invalid recipient address %q", ErrInvalidInput, input.Recipient)
	}

	payload, err := EncodePayload(input.ScaledScore, ratings, input.SourceRef, c.communityContext)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	calldata, err := c.registryABI.Pack("attest", c.schemaUID, attestationRequestData{
		Recipient:      common.HexToAddress(input.Recipient),
		ExpirationTime: 0,
		Revocable:      false,
		RefUID:         [32]byte{},
		Data:           payload,
		Value:          big.NewInt(0),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: pack attest call: %v", ErrInvalidInput, err)
	}

	tx, err := c.submit(ctx, calldata)
	if err != nil {
		return nil, err
	}
	txHash := tx.Hash()
	c.log.Info("Attestation transaction sent", "tx_hash", txHash.Hex())

	receipt, err := c.waitMined(ctx, txHash)
	if err != nil {
		return nil, err
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("%w: tx %s reverted", ErrTxRejected, txHash.Hex())
	}

	uid, ok := c.extractUID(receipt)
	if !ok {
		return nil, fmt.Errorf("%w: tx %s", ErrUIDMissing, txHash.Hex())
	}

	c.log.Info("Attestation minted", "uid", uid, "tx_hash", txHash.Hex())
	return &AttestResult{UID: uid, TxHash: txHash.Hex()}, nil
}

// submit builds, signs and broadcasts one transaction. Nonce read and
// broadcast happen under a single lock.
func (c *Client) submit(ctx context.Context, calldata []byte) (*types.Transaction, error) {
	c.nonceMu.Lock()
	defer c.nonceMu.Unlock()

	nonce, err := c.backend.PendingNonceAt(ctx, c.from)
	if err != nil {
		return nil, fmt.Errorf("%w: read nonce: %v", ErrConnectivity, err)
	}
	gasPrice, err := c.backend.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: suggest gas price: %v", ErrConnectivity, err)
	}
	gasLimit, err := c.backend.EstimateGas(ctx, ethereum.CallMsg{
		From: c.from,
		To:   &c.contract,
		Data: calldata,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: estimate gas: %v", ErrConnectivity, err)
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      gasLimit,
		To:       &c.contract,
		Value:    big.NewInt(0),
		Data:     calldata,
	})
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(c.chainID), c.key)
	if err != nil {
		return nil, fmt.Errorf("sign attest tx: %w", err)
	}
	if err := c.backend.SendTransaction(ctx, signed); err != nil {
		return nil, fmt.Errorf("%w: broadcast: %v", ErrConnectivity, err)
	}
	return signed, nil
}

func (c *Client) waitMined(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		receipt, err := c.backend.TransactionReceipt(ctx, txHash)
		if err == nil && receipt != nil {
			return receipt, nil
		}
		if err != nil && !errors.Is(err, ethereum.NotFound) {
			c.log.Debug("Receipt not available yet", "tx_hash", txHash.Hex(), "error", err)
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: waiting for tx %s: %v", ErrConnectivity, txHash.Hex(), ctx.Err())
		case <-ticker.C:
		}
	}
}

// extractUID scans every receipt log and takes the first one that decodes as
// the Attested event emitted by the registry contract.
func (c *Client) extractUID(receipt *types.Receipt) (string, bool) {
	attestedID := c.registryABI.Events["Attested"].ID
	for _, entry := range receipt.Logs {
		if entry == nil || entry.Address != c.contract {
			continue
		}
		if len(entry.Topics) < 2 || entry.Topics[0] != attestedID {
			continue
		}
		return entry.Topics[1].Hex(), true
	}
	return "", false
}
