// swap/api.go
package swap

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
)

const (
	defaultBaseURL        = "https://swap-v2.solanatracker.io"
	defaultRequestTimeout = 10 * time.Second
	maxQuoteAttempts      = 3
)

// APIClient — клиент quote-сервиса SolanaTracker. Сервис собирает и кодирует
// транзакцию свапа; движок отправки получает от него непрозрачный payload.
type APIClient struct {
	client  *http.Client
	logger  *zap.Logger
	baseURL string
}

// QuoteRequest — параметры запроса свапа.
type QuoteRequest struct {
	From        string
	To          string
	FromAmount  float64
	Slippage    float64
	Payer       string
	PriorityFee *float64
	ForceLegacy bool
}

// Quote — ответ quote-сервиса. Txn — base64-encoded сериализованная
// транзакция; ее содержимое движок не разбирает.
type Quote struct {
	Txn  string `json:"txn"`
	Type string `json:"type"`
	Rate Rate   `json:"rate"`
}

type Rate struct {
	AmountIn  float64 `json:"amountIn"`
	AmountOut float64 `json:"amountOut"`
	MinAmount float64 `json:"minAmountOut"`
	Impact    float64 `json:"priceImpact"`
}

// NewAPIClient создает клиента quote-сервиса. Пустой baseURL — продакшн-адрес.
func NewAPIClient(baseURL string, logger *zap.Logger) *APIClient {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &APIClient{
		client: &http.Client{
			Timeout: defaultRequestTimeout,
		},
		logger:  logger.Named("swap-api"),
		baseURL: baseURL,
	}
}

// GetSwapInstructions запрашивает у сервиса готовую транзакцию свапа.
// Транзиентные ошибки ретраятся с экспоненциальным бэкоффом; ошибки запроса
// (4xx) — постоянные.
func (c *APIClient) GetSwapInstructions(ctx context.Context, req QuoteRequest) (*Quote, error) {
	op := func() (*Quote, error) {
		quote, err := c.fetchQuote(ctx, req)
		if err != nil {
			c.logger.Warn("Retrying swap quote request", zap.Error(err))
			return nil, err
		}
		return quote, nil
	}

	return backoff.Retry(ctx, op,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(maxQuoteAttempts))
}

func (c *APIClient) fetchQuote(ctx context.Context, req QuoteRequest) (*Quote, error) {
	params := url.Values{}
	params.Set("from", req.From)
	params.Set("to", req.To)
	params.Set("fromAmount", strconv.FormatFloat(req.FromAmount, 'f', -1, 64))
	params.Set("slippage", strconv.FormatFloat(req.Slippage, 'f', -1, 64))
	params.Set("payer", req.Payer)
	params.Set("forceLegacy", strconv.FormatBool(req.ForceLegacy))
	if req.PriorityFee != nil {
		params.Set("priorityFee", strconv.FormatFloat(*req.PriorityFee, 'f', -1, 64))
	}

	requestURL := fmt.Sprintf("%s/swap?%s", c.baseURL, params.Encode())

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("create request: %w", err))
	}

	start := time.Now()
	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("Swap quote request completed",
		zap.Duration("duration", time.Since(start)),
		zap.Int("status", resp.StatusCode))

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		err := fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, string(body))
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}

	var quote Quote
	if err := json.NewDecoder(resp.Body).Decode(&quote); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("decode response: %w", err))
	}
	if quote.Txn == "" {
		return nil, backoff.Permanent(fmt.Errorf("quote response has no transaction payload"))
	}

	return &quote, nil
}
