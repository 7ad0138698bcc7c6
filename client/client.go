// client/client.go
package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solanatracker-go/sender"
)

const (
	defaultTimeout = 10 * time.Second
	maxAttempts    = 3
	retryDelay     = 500 * time.Millisecond
)

// NewPool создает пул RPC-узлов из списка URL. Подключения не проверяются;
// для проверки здоровья узлов перед работой есть ValidateConnections.
func NewPool(rpcURLs []string, logger *zap.Logger) (*Pool, error) {
	if len(rpcURLs) == 0 {
		return nil, errors.New("empty RPC URL list")
	}

	var endpoints []*Endpoint
	for _, urlStr := range rpcURLs {
		if _, err := url.Parse(urlStr); err != nil {
			logger.Warn("Invalid RPC URL", zap.String("url", urlStr), zap.Error(err))
			continue
		}

		endpoints = append(endpoints, &Endpoint{
			Client:  rpc.New(urlStr),
			URL:     urlStr,
			active:  true,
			metrics: &EndpointMetrics{},
		})
	}

	if len(endpoints) == 0 {
		return nil, errors.New("no valid RPC URLs provided")
	}

	return &Pool{
		endpoints: endpoints,
		logger:    logger.Named("rpc-pool"),
	}, nil
}

// testConnection проверяет подключение к RPC узлу.
func (p *Pool) testConnection(ctx context.Context, endpoint *Endpoint) error {
	// Версия узла — самый легкий запрос
	version, err := endpoint.Client.GetVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to get version: %w", err)
	}

	_, err = endpoint.Client.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return fmt.Errorf("failed to get latest blockhash: %w", err)
	}

	p.logger.Debug("Successfully connected to RPC",
		zap.String("url", endpoint.URL),
		zap.String("solana_core", version.SolanaCore))

	return nil
}

// ValidateConnections параллельно проверяет все узлы пула и помечает сбойные.
// Возвращает ошибку, если живых узлов не осталось.
func (p *Pool) ValidateConnections(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var wg sync.WaitGroup
	for _, endpoint := range p.endpoints {
		wg.Add(1)
		go func(endpoint *Endpoint) {
			defer wg.Done()

			var lastErr error
			for attempt := 0; attempt < maxAttempts; attempt++ {
				start := time.Now()
				if err := p.testConnection(ctx, endpoint); err != nil {
					lastErr = err
					endpoint.updateMetrics(false, time.Since(start))
					time.Sleep(retryDelay)
					continue
				}
				endpoint.updateMetrics(true, time.Since(start))
				return
			}
			p.logger.Warn("RPC endpoint failed validation",
				zap.String("url", endpoint.URL),
				zap.Error(lastErr))
			endpoint.setActive(false)
		}(endpoint)
	}
	wg.Wait()

	if !p.hasActiveEndpoints() {
		return errors.New("no active RPC connections available")
	}

	return nil
}

// SendRawTransactionWithOpts отправляет сырые байты транзакции через первый
// отвечающий узел пула.
func (p *Pool) SendRawTransactionWithOpts(ctx context.Context, rawTx []byte, opts rpc.TransactionOpts) (solana.Signature, error) {
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		endpoint := p.next()

		start := time.Now()
		sig, err := endpoint.Client.SendRawTransactionWithOpts(ctx, rawTx, opts)
		endpoint.updateMetrics(err == nil, time.Since(start))

		if err != nil {
			if ctx.Err() != nil {
				return solana.Signature{}, ctx.Err()
			}
			lastErr = err
			endpoint.setActive(false)
			continue
		}

		return sig, nil
	}

	return solana.Signature{}, fmt.Errorf("failed to send transaction after %d attempts: %w", maxAttempts, lastErr)
}

// GetSignatureStatuses получает статусы подписей транзакций.
func (p *Pool) GetSignatureStatuses(ctx context.Context, signatures ...solana.Signature) (*rpc.GetSignatureStatusesResult, error) {
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		endpoint := p.next()

		start := time.Now()
		result, err := endpoint.Client.GetSignatureStatuses(ctx, false, signatures...)
		endpoint.updateMetrics(err == nil, time.Since(start))

		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			endpoint.setActive(false)
			continue
		}

		return result, nil
	}

	return nil, fmt.Errorf("failed to get signature statuses after %d attempts: %w", maxAttempts, lastErr)
}

// GetBlockHeight получает текущую высоту блока на заданном коммитменте.
func (p *Pool) GetBlockHeight(ctx context.Context, commitment rpc.CommitmentType) (uint64, error) {
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		endpoint := p.next()

		start := time.Now()
		height, err := endpoint.Client.GetBlockHeight(ctx, commitment)
		endpoint.updateMetrics(err == nil, time.Since(start))

		if err != nil {
			if ctx.Err() != nil {
				return 0, ctx.Err()
			}
			lastErr = err
			endpoint.setActive(false)
			continue
		}

		return height, nil
	}

	return 0, fmt.Errorf("failed to get block height after %d attempts: %w", maxAttempts, lastErr)
}

// GetLatestBlockhash получает последний blockhash вместе с lastValidBlockHeight.
func (p *Pool) GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error) {
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		endpoint := p.next()

		start := time.Now()
		result, err := endpoint.Client.GetLatestBlockhash(ctx, commitment)
		endpoint.updateMetrics(err == nil, time.Since(start))

		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			endpoint.setActive(false)
			continue
		}

		return result, nil
	}

	return nil, fmt.Errorf("failed to get latest blockhash after %d attempts: %w", maxAttempts, lastErr)
}

// Гарантируем, что Pool реализует интерфейс движка отправки.
var _ sender.RPC = (*Pool)(nil)
