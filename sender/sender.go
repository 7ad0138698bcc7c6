// sender/sender.go
package sender

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rovshanmuradov/solanatracker-go/commitment"
)

// Попытки доставить сам RPC-вызов отправки до того, как сдаться.
const maxSendAttempts = 3

// Sender отправляет подписанную транзакцию и ждет ее терминального исхода:
// подтверждение, он-чейн ошибка, истечение blockhash-окна или таймаут.
// Один вызов Send — одна попытка; экземпляр не несет состояния между вызовами
// и безопасен для параллельных независимых отправок.
type Sender struct {
	rpc     RPC
	logger  *zap.Logger
	poller  *StatusPoller
	metrics *Metrics
}

// New создает Sender. metrics == nil включает незарегистрированные счетчики.
func New(rpcClient RPC, logger *zap.Logger, metrics *Metrics) *Sender {
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &Sender{
		rpc:     rpcClient,
		logger:  logger.Named("tx-sender"),
		poller:  NewStatusPoller(rpcClient, logger),
		metrics: metrics,
	}
}

// Send отправляет сырые байты транзакции один раз и поллит статус подписи,
// пока не будет достигнут желаемый уровень коммитмента, пока сеть не сообщит
// об ошибке, пока не закроется blockhash-окно или не кончится бюджет попыток.
func (s *Sender) Send(ctx context.Context, rawTx []byte, opts Options) Outcome {
	defer s.metrics.TrackSubmission(time.Now())
	opts = opts.normalized()

	if len(rawTx) == 0 {
		return setupOutcome(solana.Signature{}, ErrEmptyTransaction)
	}
	if err := ctx.Err(); err != nil {
		return canceledOutcome(solana.Signature{}, err)
	}

	signature, err := s.submit(ctx, rawTx, opts)
	if err != nil {
		s.metrics.failureCounter.Inc()
		if ctx.Err() != nil {
			return canceledOutcome(solana.Signature{}, ctx.Err())
		}
		return setupOutcome(solana.Signature{}, fmt.Errorf("failed to send transaction: %w", err))
	}

	log := s.logger.With(zap.String("signature", signature.String()))
	log.Debug("Transaction sent",
		zap.Bool("skip_preflight", opts.SkipPreflight),
		zap.String("commitment", opts.DesiredCommitment.String()))

	// Потолок высоты считается свежим для каждой попытки: транзакция собрана
	// под конкретный недавний blockhash.
	blockhash, err := s.rpc.GetLatestBlockhash(ctx, rpc.CommitmentProcessed)
	if err != nil {
		s.metrics.failureCounter.Inc()
		if ctx.Err() != nil {
			return canceledOutcome(signature, ctx.Err())
		}
		return setupOutcome(signature, fmt.Errorf("failed to get latest blockhash: %w", err))
	}
	expiry := NewBlockhashExpiry(blockhash.Value.LastValidBlockHeight, opts.LastValidBlockHeightBuffer)

	if opts.SkipConfirmationCheck {
		s.metrics.successCounter.Inc()
		return confirmedOutcome(signature)
	}

	return s.awaitConfirmation(ctx, signature, expiry, opts, log)
}

// SendAll отправляет несколько независимых транзакций параллельно.
// Попытки не делят изменяемого состояния, порядок результатов соответствует входу.
func (s *Sender) SendAll(ctx context.Context, rawTxs [][]byte, opts Options) []Outcome {
	outcomes := make([]Outcome, len(rawTxs))

	var g errgroup.Group
	for i, rawTx := range rawTxs {
		g.Go(func() error {
			outcomes[i] = s.Send(ctx, rawTx, opts)
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

// submit доставляет RPC-вызов отправки с экспоненциальным бэкоффом.
// Ретраи самой транзакции на узле задаются opts.MaxSendRetries.
func (s *Sender) submit(ctx context.Context, rawTx []byte, opts Options) (solana.Signature, error) {
	op := func() (solana.Signature, error) {
		sig, err := s.rpc.SendRawTransactionWithOpts(ctx, rawTx, rpc.TransactionOpts{
			SkipPreflight:       opts.SkipPreflight,
			PreflightCommitment: opts.PreflightCommitment.CommitmentType(),
			MaxRetries:          opts.MaxSendRetries,
		})
		if err != nil {
			s.logger.Warn("Retrying transaction send", zap.Error(err))
			return solana.Signature{}, err
		}
		return sig, nil
	}

	return backoff.Retry(ctx, op,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(maxSendAttempts))
}

// awaitConfirmation — цикл ожидания: до ConfirmationRetries+1 опросов статуса
// с отдельными паузами для обычного опроса и для транзиентных ошибок.
func (s *Sender) awaitConfirmation(ctx context.Context, signature solana.Signature, expiry BlockhashExpiry, opts Options, log *zap.Logger) Outcome {
	// После транзиентной ошибки пауза retry-timeout уже выдержана, обычный
	// интервал перед следующим опросом не добавляется.
	skipInterval := false

	for attempt := 0; attempt <= opts.ConfirmationRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return canceledOutcome(signature, err)
		}
		if !skipInterval {
			if err := sleepCtx(ctx, opts.ConfirmationCheckInterval); err != nil {
				return canceledOutcome(signature, err)
			}
		}
		skipInterval = false

		result := s.poller.Poll(ctx, signature)
		switch result.Kind {
		case PollObserved:
			if commitment.Sufficient(result.Level, opts.DesiredCommitment) {
				s.metrics.successCounter.Inc()
				log.Info("Transaction confirmed",
					zap.String("level", result.Level.String()),
					zap.Int("attempt", attempt))
				return confirmedOutcome(signature)
			}
			log.Debug("Commitment level not yet sufficient",
				zap.String("level", result.Level.String()),
				zap.String("desired", opts.DesiredCommitment.String()))

		case PollFailed:
			s.metrics.failureCounter.Inc()
			log.Error("Transaction failed on-chain", zap.Any("tx_err", result.TxErr))
			return failedOutcome(signature, result.TxErr)

		case PollNotYetVisible:
			log.Debug("Signature not yet visible", zap.Int("attempt", attempt))

		case PollTransportError:
			log.Warn("Error checking transaction status", zap.Error(result.Err))
			if err := sleepCtx(ctx, opts.ConfirmationRetryTimeout); err != nil {
				return canceledOutcome(signature, err)
			}
			height, err := s.rpc.GetBlockHeight(ctx, rpc.CommitmentProcessed)
			if err != nil {
				if ctx.Err() != nil {
					return canceledOutcome(signature, ctx.Err())
				}
				log.Warn("Block height check failed", zap.Error(err))
			} else if expiry.Expired(height) {
				s.metrics.failureCounter.Inc()
				return expiredOutcome(signature, height)
			}
			skipInterval = true
		}
	}

	// Бюджет исчерпан. Истечение окна и исчерпание попыток — независимые
	// сигналы: по таймауту транзакция еще может пройти, по истечению
	// переотправка с тем же blockhash бессмысленна.
	height, err := s.rpc.GetBlockHeight(ctx, rpc.CommitmentProcessed)
	if err != nil {
		log.Warn("Final block height check failed", zap.Error(err))
	} else if expiry.Expired(height) {
		s.metrics.failureCounter.Inc()
		return expiredOutcome(signature, height)
	}

	s.metrics.failureCounter.Inc()
	log.Warn("Transaction not confirmed after maximum retries",
		zap.Int("retries", opts.ConfirmationRetries))
	return timedOutOutcome(signature)
}

// sleepCtx спит d с уважением к отмене контекста. d <= 0 — без сна.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
