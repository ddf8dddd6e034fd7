package eas

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/veritaschain/pociv-backend/internal/platform/logger"
)

// fakeBackend scripts the RPC surface. Receipts are keyed off the last sent
// transaction.
type fakeBackend struct {
	mu        sync.Mutex
	nonce     uint64
	sent      []*types.Transaction
	receiptFn func(tx *types.Transaction) *types.Receipt
	sendErr   error
}

func (f *fakeBackend) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.nonce, nil
}

func (f *fakeBackend) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	return big.NewInt(1_000_000_000), nil
}

func (f *fakeBackend) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	return 300_000, nil
}

func (f *fakeBackend) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, tx)
	f.nonce++
	return nil
}

func (f *fakeBackend) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, tx := range f.sent {
		if tx.Hash() == txHash {
			return f.receiptFn(tx), nil
		}
	}
	return nil, ethereum.NotFound
}

const testPrivateKey = "59c6995e998f97a5a0044966f0945389dc9e86dae88c7a8412f4603b6b78690d"

func newTestClient(t *testing.T, backend Backend) *Client {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	cfg := Config{
		PrivateKey:       testPrivateKey,
		ContractAddress:  DefaultContractAddress,
		SchemaUID:        "0x" + validHex64(),
		ChainID:          DefaultChainID,
		CommunityContext: DefaultCommunityContext,
	}
	c, err := NewClientWithBackend(cfg, backend, log)
	if err != nil {
		t.Fatalf("NewClientWithBackend: %v", err)
	}
	c.pollInterval = 1 // effectively immediate re-poll in tests
	return c
}

func validInput() AttestInput {
	return AttestInput{
		Recipient:     "0x1111111111111111111111111111111111111111",
		ScaledScore:   400,
		MetricRatings: []int{5, 4, 3, 4, 4},
		SourceRef:     "discord:77:555",
	}
}

func attestedLog(c *Client, uid common.Hash) *types.Log {
	return &types.Log{
		Address: c.contract,
		Topics:  []common.Hash{c.registryABI.Events["Attested"].ID, uid, common.Hash(c.schemaUID)},
	}
}

func TestAttestInputValidation(t *testing.T) {
	c := newTestClient(t, &fakeBackend{})

	cases := []struct {
		name   string
		mutate func(*AttestInput)
	}{
		{name: "bad_address", mutate: func(in *AttestInput) { in.Recipient = "not-an-address" }},
		{name: "short_vector", mutate: func(in *AttestInput) { in.MetricRatings = []int{5, 4, 3, 4} }},
		{name: "long_vector", mutate: func(in *AttestInput) { in.MetricRatings = []int{5, 4, 3, 4, 4, 4} }},
		{name: "rating_too_high", mutate: func(in *AttestInput) { in.MetricRatings = []int{5, 4, 6, 4, 4} }},
		{name: "rating_negative", mutate: func(in *AttestInput) { in.MetricRatings = []int{5, 4, -1, 4, 4} }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mutate(&in)
			_, err := c.Attest(context.Background(), in)
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("Attest error=%v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestAttestSuccess(t *testing.T) {
	uid := common.HexToHash("0xabcdabcdabcdabcdabcdabcdabcdabcdabcdabcdabcdabcdabcdabcdabcdabcd")
	backend := &fakeBackend{}
	c := newTestClient(t, backend)
	backend.receiptFn = func(tx *types.Transaction) *types.Receipt {
		return &types.Receipt{
			Status: types.ReceiptStatusSuccessful,
			Logs:   []*types.Log{attestedLog(c, uid)},
		}
	}

	res, err := c.Attest(context.Background(), validInput())
	if err != nil {
		t.Fatalf("Attest: %v", err)
	}
	if res.UID != uid.Hex() {
		t.Fatalf("uid=%s, want %s", res.UID, uid.Hex())
	}
	if len(backend.sent) != 1 {
		t.Fatalf("sent %d transactions, want 1", len(backend.sent))
	}
	if res.TxHash != backend.sent[0].Hash().Hex() {
		t.Fatalf("tx hash mismatch: %s vs %s", res.TxHash, backend.sent[0].Hash().Hex())
	}
}

func TestAttestRejectedReceipt(t *testing.T) {
	backend := &fakeBackend{}
	c := newTestClient(t, backend)
	backend.receiptFn = func(tx *types.Transaction) *types.Receipt {
		return &types.Receipt{Status: types.ReceiptStatusFailed}
	}

	_, err := c.Attest(context.Background(), validInput())
	if !errors.Is(err, ErrTxRejected) {
		t.Fatalf("Attest error=%v, want ErrTxRejected", err)
	}
}

func TestAttestUIDMissing(t *testing.T) {
	backend := &fakeBackend{}
	c := newTestClient(t, backend)
	backend.receiptFn = func(tx *types.Transaction) *types.Receipt {
		// Receipt succeeded but no log decodes as the Attested event.
		return &types.Receipt{
			Status: types.ReceiptStatusSuccessful,
			Logs: []*types.Log{
				{Address: c.contract, Topics: []common.Hash{common.HexToHash("0x01")}},
				{Address: common.HexToAddress("0x9999999999999999999999999999999999999999"),
					Topics: []common.Hash{c.registryABI.Events["Attested"].ID, common.HexToHash("0x02")}},
			},
		}
	}

	_, err := c.Attest(context.Background(), validInput())
	if !errors.Is(err, ErrUIDMissing) {
		t.Fatalf("Attest error=%v, want ErrUIDMissing", err)
	}
	if errors.Is(err, ErrTxRejected) {
		t.Fatal("uid-missing must not be classified as tx rejection")
	}
}

func TestAttestBroadcastFailureIsConnectivity(t *testing.T) {
	backend := &fakeBackend{sendErr: errors.New("connection refused")}
	c := newTestClient(t, backend)

	_, err := c.Attest(context.Background(), validInput())
	if !errors.Is(err, ErrConnectivity) {
		t.Fatalf("Attest error=%v, want ErrConnectivity", err)
	}
}

func TestAttestFreshNoncePerCall(t *testing.T) {
	uid := common.HexToHash("0x02")
	backend := &fakeBackend{nonce: 7}
	c := newTestClient(t, backend)
	backend.receiptFn = func(tx *types.Transaction) *types.Receipt {
		return &types.Receipt{
			Status: types.ReceiptStatusSuccessful,
			Logs:   []*types.Log{attestedLog(c, uid)},
		}
	}

	if _, err := c.Attest(context.Background(), validInput()); err != nil {
		t.Fatalf("Attest 1: %v", err)
	}
	if _, err := c.Attest(context.Background(), validInput()); err != nil {
		t.Fatalf("Attest 2: %v", err)
	}

	if backend.sent[0].Nonce() != 7 || backend.sent[1].Nonce() != 8 {
		t.Fatalf("nonces %d,%d; want 7,8", backend.sent[0].Nonce(), backend.sent[1].Nonce())
	}
}
