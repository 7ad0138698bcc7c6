// sender/types.go
package sender

import (
	"context"
	"errors"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

var (
	ErrConfirmationTimeout = errors.New("transaction confirmation timeout")
	ErrTransactionExpired  = errors.New("transaction expired")
	ErrEmptyTransaction    = errors.New("empty transaction payload")
)

// RPC определяет узкий интерфейс RPC-узла, нужный движку отправки.
// Его реализует client.Pool; в тестах — скриптованный фейк.
type RPC interface {
	// Отправить сырые байты подписанной транзакции.
	SendRawTransactionWithOpts(ctx context.Context, rawTx []byte, opts rpc.TransactionOpts) (solana.Signature, error)
	// Получить статусы подписей транзакций.
	GetSignatureStatuses(ctx context.Context, signatures ...solana.Signature) (*rpc.GetSignatureStatusesResult, error)
	// Получить текущую высоту блока.
	GetBlockHeight(ctx context.Context, commitment rpc.CommitmentType) (uint64, error)
	// Получить последний blockhash вместе с lastValidBlockHeight.
	GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error)
}
