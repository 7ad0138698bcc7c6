package swap

import (
	"context"
	"encoding/base64"
	"sync"
	"testing"
	"time"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solanatracker-go/sender"
	"github.com/rovshanmuradov/solanatracker-go/wallet"
)

// confirmingRPC отвечает "confirmed" на первый же опрос и запоминает
// отправленные байты.
type confirmingRPC struct {
	mu      sync.Mutex
	lastRaw []byte
	sig     solana.Signature
}

func (f *confirmingRPC) SendRawTransactionWithOpts(_ context.Context, rawTx []byte, _ rpc.TransactionOpts) (solana.Signature, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastRaw = append([]byte(nil), rawTx...)
	f.sig[0] = 0x07
	return f.sig, nil
}

func (f *confirmingRPC) GetSignatureStatuses(_ context.Context, _ ...solana.Signature) (*rpc.GetSignatureStatusesResult, error) {
	return &rpc.GetSignatureStatusesResult{
		Value: []*rpc.SignatureStatusesResult{{ConfirmationStatus: rpc.ConfirmationStatusConfirmed}},
	}, nil
}

func (f *confirmingRPC) GetBlockHeight(_ context.Context, _ rpc.CommitmentType) (uint64, error) {
	return 100, nil
}

func (f *confirmingRPC) GetLatestBlockhash(_ context.Context, _ rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error) {
	return &rpc.GetLatestBlockhashResult{
		Value: &rpc.LatestBlockhashResult{LastValidBlockHeight: 10000},
	}, nil
}

func testQuote(t *testing.T, w *wallet.Wallet) *Quote {
	t.Helper()

	tx, err := solana.NewTransaction(
		[]solana.Instruction{
			system.NewTransferInstruction(1, w.PublicKey, w.PublicKey).Build(),
		},
		solana.Hash{},
		solana.TransactionPayer(w.PublicKey),
	)
	require.NoError(t, err)

	raw, err := tx.MarshalBinary()
	require.NoError(t, err)

	return &Quote{
		Txn:  base64.StdEncoding.EncodeToString(raw),
		Type: "legacy",
		Rate: Rate{AmountOut: 42},
	}
}

func testWallet(t *testing.T) *wallet.Wallet {
	t.Helper()
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	w, err := wallet.New(key.String())
	require.NoError(t, err)
	return w
}

func fastOptions() sender.Options {
	opts := sender.DefaultOptions()
	opts.ConfirmationCheckInterval = time.Millisecond
	opts.ConfirmationRetryTimeout = time.Millisecond
	return opts
}

func TestPerformSwapConfirms(t *testing.T) {
	w := testWallet(t)
	rpcFake := &confirmingRPC{}
	tracker := newTracker(NewAPIClient("", zap.NewNop()), rpcFake, w, zap.NewNop(), nil)

	outcome := tracker.PerformSwap(context.Background(), testQuote(t, w), fastOptions())

	require.Equal(t, sender.KindConfirmed, outcome.Kind)
	require.NoError(t, outcome.Err())

	// Отправленные байты — та же транзакция, но уже подписанная кошельком.
	sent, err := solana.TransactionFromDecoder(bin.NewBinDecoder(rpcFake.lastRaw))
	require.NoError(t, err)
	require.Len(t, sent.Signatures, 1)
	assert.False(t, sent.Signatures[0].IsZero())
	assert.NoError(t, sent.VerifySignatures())
}

func TestPerformSwapBadPayload(t *testing.T) {
	w := testWallet(t)
	tracker := newTracker(NewAPIClient("", zap.NewNop()), &confirmingRPC{}, w, zap.NewNop(), nil)

	outcome := tracker.PerformSwap(context.Background(), &Quote{Txn: "%%% not base64 %%%"}, fastOptions())
	assert.Equal(t, sender.KindSetupError, outcome.Kind)

	outcome = tracker.PerformSwap(context.Background(), &Quote{}, fastOptions())
	assert.Equal(t, sender.KindSetupError, outcome.Kind)

	outcome = tracker.PerformSwap(context.Background(), nil, fastOptions())
	assert.Equal(t, sender.KindSetupError, outcome.Kind)
}
