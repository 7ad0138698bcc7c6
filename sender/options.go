// sender/options.go
package sender

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solanatracker-go/commitment"
)

const (
	DefaultConfirmationRetries        = 30
	DefaultConfirmationRetryTimeout   = 1000 * time.Millisecond
	DefaultConfirmationCheckInterval  = 1000 * time.Millisecond
	DefaultLastValidBlockHeightBuffer = 150
)

// Options — опции одной попытки отправки. Разбор легаси-ключей происходит
// один раз в OptionsFromMap; дальше движок работает только с этой структурой.
type Options struct {
	// SkipPreflight отключает симуляцию на узле перед приемом транзакции.
	SkipPreflight bool
	// MaxSendRetries — ретраи, делегированные самому RPC-узлу при отправке.
	MaxSendRetries *uint
	// DesiredCommitment — целевой уровень для успеха (по умолчанию confirmed).
	DesiredCommitment commitment.Level
	// PreflightCommitment — уровень для preflight-симуляции. Нулевое значение
	// наследует DesiredCommitment.
	PreflightCommitment commitment.Level
	// ConfirmationRetries — максимум итераций поллинга (цикл делает retries+1 опросов).
	ConfirmationRetries int
	// ConfirmationRetryTimeout — пауза после транзиентной ошибки опроса.
	ConfirmationRetryTimeout time.Duration
	// ConfirmationCheckInterval — пауза между обычными опросами.
	ConfirmationCheckInterval time.Duration
	// LastValidBlockHeightBuffer — запас, вычитаемый из референсной высоты.
	LastValidBlockHeightBuffer uint64
	// SkipConfirmationCheck возвращает результат сразу после отправки, без поллинга.
	SkipConfirmationCheck bool
}

// DefaultOptions возвращает опции со значениями по умолчанию.
func DefaultOptions() Options {
	return Options{
		SkipPreflight:              true,
		DesiredCommitment:          commitment.LevelConfirmed,
		ConfirmationRetries:        DefaultConfirmationRetries,
		ConfirmationRetryTimeout:   DefaultConfirmationRetryTimeout,
		ConfirmationCheckInterval:  DefaultConfirmationCheckInterval,
		LastValidBlockHeightBuffer: DefaultLastValidBlockHeightBuffer,
	}
}

// normalized заполняет производные поля перед запуском драйвера.
func (o Options) normalized() Options {
	if o.DesiredCommitment == commitment.LevelUnknown {
		o.DesiredCommitment = commitment.LevelConfirmed
	}
	if o.PreflightCommitment == commitment.LevelUnknown {
		o.PreflightCommitment = o.DesiredCommitment
	}
	if o.ConfirmationRetries < 0 {
		o.ConfirmationRetries = 0
	}
	return o
}

// Легаси-ключи старых версий options-словаря и их канонические имена.
// Канонический ключ, заданный явно, всегда выигрывает у алиаса.
var optionAliases = map[string]string{
	"commitment":                  "desired_commitment",
	"confirmation_retry_timeout":  "confirmation_retry_timeout_ms",
	"confirmation_check_interval": "confirmation_check_interval_ms",
	"max_retries":                 "max_send_retries",
}

// OptionsFromMap разбирает динамический словарь опций (например, секцию
// конфига или десериализованный JSON) в Options. Понимает вложенный
// send_options и устаревшие имена ключей без "_ms".
func OptionsFromMap(m map[string]interface{}, logger *zap.Logger) (Options, error) {
	v := viper.New()
	v.SetDefault("skip_preflight", true)
	v.SetDefault("desired_commitment", "confirmed")
	v.SetDefault("confirmation_retries", DefaultConfirmationRetries)
	v.SetDefault("confirmation_retry_timeout_ms", int(DefaultConfirmationRetryTimeout/time.Millisecond))
	v.SetDefault("confirmation_check_interval_ms", int(DefaultConfirmationCheckInterval/time.Millisecond))
	v.SetDefault("last_valid_block_height_buffer", DefaultLastValidBlockHeightBuffer)
	v.SetDefault("skip_confirmation_check", false)

	if err := v.MergeConfigMap(normalizeOptionKeys(m)); err != nil {
		return Options{}, fmt.Errorf("failed to merge options: %w", err)
	}

	opts := Options{
		SkipPreflight:              v.GetBool("skip_preflight"),
		ConfirmationRetries:        v.GetInt("confirmation_retries"),
		ConfirmationRetryTimeout:   time.Duration(v.GetInt("confirmation_retry_timeout_ms")) * time.Millisecond,
		ConfirmationCheckInterval:  time.Duration(v.GetInt("confirmation_check_interval_ms")) * time.Millisecond,
		LastValidBlockHeightBuffer: v.GetUint64("last_valid_block_height_buffer"),
		SkipConfirmationCheck:      v.GetBool("skip_confirmation_check"),
	}

	desired, err := commitment.Parse(v.GetString("desired_commitment"))
	if err != nil {
		// Незнакомый уровень не роняет отправку: как и раньше, откатываемся
		// на confirmed, но оставляем след в логах.
		logger.Warn("Unrecognized commitment in options, falling back to confirmed",
			zap.String("commitment", v.GetString("desired_commitment")))
		desired = commitment.LevelConfirmed
	}
	opts.DesiredCommitment = desired

	if v.IsSet("preflight_commitment") {
		preflight, err := commitment.Parse(v.GetString("preflight_commitment"))
		if err != nil {
			return Options{}, fmt.Errorf("invalid preflight_commitment: %w", err)
		}
		opts.PreflightCommitment = preflight
	} else {
		opts.PreflightCommitment = desired
	}

	if v.IsSet("max_send_retries") {
		n := v.GetUint("max_send_retries")
		opts.MaxSendRetries = &n
	}

	return opts, nil
}

// normalizeOptionKeys поднимает вложенный send_options на верхний уровень и
// переводит легаси-ключи в канонические.
func normalizeOptionKeys(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))

	for key, value := range m {
		switch key {
		case "send_options":
			nested, ok := value.(map[string]interface{})
			if !ok {
				continue
			}
			for nk, nv := range nested {
				switch nk {
				case "skip_preflight":
					out["skip_preflight"] = nv
				case "max_retries":
					out["max_send_retries"] = nv
				}
			}
		case "resend_interval":
			// Принимается для совместимости со старыми словарями, но движок
			// не переотправляет транзакцию внутри цикла ожидания.
		default:
			if canonical, ok := optionAliases[key]; ok {
				key = canonical
			}
			if _, exists := out[key]; !exists {
				out[key] = value
			}
		}
	}

	// Канонические ключи из исходного словаря перекрывают алиасы.
	for key, value := range m {
		if _, isAlias := optionAliases[key]; isAlias {
			continue
		}
		if key == "send_options" || key == "resend_interval" {
			continue
		}
		out[key] = value
	}

	return out
}
