package sender

import (
	"context"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// statusStep — один заранее заданный ответ getSignatureStatuses.
type statusStep struct {
	resp *rpc.GetSignatureStatusesResult
	err  error
}

// fakeRPC — скриптованный RPC-узел: отдает заготовленные ответы по очереди
// и записывает моменты опросов для проверки пауз между ними.
type fakeRPC struct {
	mu sync.Mutex

	sendSig   solana.Signature
	sendErr   error
	sendCalls int

	lastValidBlockHeight uint64
	blockhashErr         error

	statuses    []statusStep
	statusCalls int
	pollTimes   []time.Time

	heights     []uint64
	heightErr   error
	heightCalls int
}

func newFakeRPC() *fakeRPC {
	return &fakeRPC{
		sendSig:              testSignature(),
		lastValidBlockHeight: 10000,
		heights:              []uint64{100},
	}
}

func testSignature() solana.Signature {
	var sig solana.Signature
	sig[0] = 0x42
	return sig
}

func (f *fakeRPC) SendRawTransactionWithOpts(_ context.Context, _ []byte, _ rpc.TransactionOpts) (solana.Signature, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sendCalls++
	if f.sendErr != nil {
		return solana.Signature{}, f.sendErr
	}
	return f.sendSig, nil
}

func (f *fakeRPC) GetSignatureStatuses(_ context.Context, _ ...solana.Signature) (*rpc.GetSignatureStatusesResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pollTimes = append(f.pollTimes, time.Now())
	step := statusStep{resp: notVisibleResp()}
	if f.statusCalls < len(f.statuses) {
		step = f.statuses[f.statusCalls]
	} else if len(f.statuses) > 0 {
		step = f.statuses[len(f.statuses)-1]
	}
	f.statusCalls++
	return step.resp, step.err
}

func (f *fakeRPC) GetBlockHeight(_ context.Context, _ rpc.CommitmentType) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.heightErr != nil {
		return 0, f.heightErr
	}
	height := f.heights[len(f.heights)-1]
	if f.heightCalls < len(f.heights) {
		height = f.heights[f.heightCalls]
	}
	f.heightCalls++
	return height, nil
}

func (f *fakeRPC) GetLatestBlockhash(_ context.Context, _ rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.blockhashErr != nil {
		return nil, f.blockhashErr
	}
	return &rpc.GetLatestBlockhashResult{
		Value: &rpc.LatestBlockhashResult{
			Blockhash:            solana.Hash{},
			LastValidBlockHeight: f.lastValidBlockHeight,
		},
	}, nil
}

func (f *fakeRPC) polls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.statusCalls
}

// Хелперы для сборки ответов статуса.

func observedResp(status rpc.ConfirmationStatusType) *rpc.GetSignatureStatusesResult {
	return &rpc.GetSignatureStatusesResult{
		Value: []*rpc.SignatureStatusesResult{{ConfirmationStatus: status}},
	}
}

func failedResp(txErr interface{}) *rpc.GetSignatureStatusesResult {
	return &rpc.GetSignatureStatusesResult{
		Value: []*rpc.SignatureStatusesResult{{
			ConfirmationStatus: rpc.ConfirmationStatusProcessed,
			Err:                txErr,
		}},
	}
}

func notVisibleResp() *rpc.GetSignatureStatusesResult {
	return &rpc.GetSignatureStatusesResult{
		Value: []*rpc.SignatureStatusesResult{nil},
	}
}
