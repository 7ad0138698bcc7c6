// sender/poller.go
package sender

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solanatracker-go/commitment"
)

// PollKind — вид результата одного опроса статуса подписи.
type PollKind int

const (
	// PollNotYetVisible — узел еще не видит подпись.
	PollNotYetVisible PollKind = iota
	// PollObserved — подпись видна, уровень коммитмента в Level.
	PollObserved
	// PollFailed — транзакция исполнилась и упала; деталь в TxErr.
	PollFailed
	// PollTransportError — сам опрос не удался. Это "неизвестно",
	// а не "транзакция упала": вызывающий применяет retry-timeout.
	PollTransportError
)

type PollResult struct {
	Kind  PollKind
	Level commitment.Level
	// TxErr — он-чейн ошибка в исходном виде (PollFailed).
	TxErr interface{}
	// Err — транспортная причина (PollTransportError).
	Err error
}

// StatusPoller опрашивает статус отправленной подписи и переводит
// транспортные и протокольные ошибки в типизированные результаты.
type StatusPoller struct {
	rpc    RPC
	logger *zap.Logger
}

func NewStatusPoller(rpcClient RPC, logger *zap.Logger) *StatusPoller {
	return &StatusPoller{
		rpc:    rpcClient,
		logger: logger.Named("status-poller"),
	}
}

// Poll выполняет один опрос getSignatureStatuses для подписи.
func (p *StatusPoller) Poll(ctx context.Context, signature solana.Signature) PollResult {
	response, err := p.rpc.GetSignatureStatuses(ctx, signature)
	if err != nil {
		return PollResult{Kind: PollTransportError, Err: err}
	}

	if response == nil || len(response.Value) == 0 || response.Value[0] == nil {
		return PollResult{Kind: PollNotYetVisible}
	}

	status := response.Value[0]
	if status.Err != nil {
		return PollResult{Kind: PollFailed, TxErr: status.Err}
	}

	level := commitment.FromConfirmationStatus(status.ConfirmationStatus)
	if level == commitment.LevelUnknown {
		p.logger.Warn("Unrecognized confirmation status in RPC response",
			zap.String("signature", signature.String()),
			zap.String("status", string(status.ConfirmationStatus)))
	}

	return PollResult{Kind: PollObserved, Level: level}
}
