// swap/tracker.go
package swap

import (
	"context"
	"encoding/base64"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solanatracker-go/client"
	"github.com/rovshanmuradov/solanatracker-go/config"
	"github.com/rovshanmuradov/solanatracker-go/sender"
	"github.com/rovshanmuradov/solanatracker-go/wallet"
)

// Tracker связывает quote-сервис, кошелек и движок отправки:
// получить транзакцию свапа, подписать, отправить и дождаться исхода.
type Tracker struct {
	api    *APIClient
	rpc    sender.RPC
	sender *sender.Sender
	wallet *wallet.Wallet
	logger *zap.Logger
}

// NewTracker собирает Tracker из конфигурации. reg != nil регистрирует
// метрики движка в переданном prometheus-реестре.
func NewTracker(cfg *config.Config, w *wallet.Wallet, logger *zap.Logger, reg prometheus.Registerer) (*Tracker, error) {
	pool, err := client.NewPool(cfg.RPCList, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create RPC pool: %w", err)
	}

	return newTracker(NewAPIClient(cfg.SwapAPIURL, logger), pool, w, logger, reg), nil
}

func newTracker(api *APIClient, rpcClient sender.RPC, w *wallet.Wallet, logger *zap.Logger, reg prometheus.Registerer) *Tracker {
	return &Tracker{
		api:    api,
		rpc:    rpcClient,
		sender: sender.New(rpcClient, logger, sender.NewMetrics(reg)),
		wallet: w,
		logger: logger.Named("tracker"),
	}
}

// GetSwapInstructions запрашивает готовую транзакцию свапа у quote-сервиса.
func (t *Tracker) GetSwapInstructions(ctx context.Context, req QuoteRequest) (*Quote, error) {
	return t.api.GetSwapInstructions(ctx, req)
}

// PerformSwap декодирует payload котировки, подписывает транзакцию кошельком
// и проводит ее через движок отправки. Все терминальные условия возвращаются
// значением Outcome.
func (t *Tracker) PerformSwap(ctx context.Context, quote *Quote, opts sender.Options) sender.Outcome {
	if quote == nil || quote.Txn == "" {
		return sender.SetupFailure(fmt.Errorf("quote has no transaction payload"))
	}

	serialized, err := base64.StdEncoding.DecodeString(quote.Txn)
	if err != nil {
		return sender.SetupFailure(fmt.Errorf("failed to decode transaction payload: %w", err))
	}

	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(serialized))
	if err != nil {
		return sender.SetupFailure(fmt.Errorf("failed to deserialize transaction: %w", err))
	}

	if err := t.wallet.SignTransaction(tx); err != nil {
		return sender.SetupFailure(fmt.Errorf("failed to sign transaction: %w", err))
	}

	rawTx, err := tx.MarshalBinary()
	if err != nil {
		return sender.SetupFailure(fmt.Errorf("failed to serialize transaction: %w", err))
	}

	outcome := t.sender.Send(ctx, rawTx, opts)

	t.logger.Info("Swap submission finished",
		zap.String("outcome", outcome.Kind.String()),
		zap.String("signature", outcome.Signature.String()),
		zap.Float64("amount_out", quote.Rate.AmountOut))

	return outcome
}

// Swap — получение котировки и отправка одной операцией.
func (t *Tracker) Swap(ctx context.Context, req QuoteRequest, opts sender.Options) (sender.Outcome, error) {
	quote, err := t.GetSwapInstructions(ctx, req)
	if err != nil {
		return sender.Outcome{}, err
	}
	return t.PerformSwap(ctx, quote, opts), nil
}
