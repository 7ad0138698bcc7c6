// sender/outcome.go
package sender

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Kind — вид терминального результата одной попытки отправки.
type Kind int

const (
	// KindSetupError — ошибка до начала поллинга: битый вход, неудачная
	// отправка или недоступный начальный запрос высоты.
	KindSetupError Kind = iota
	// KindConfirmed — желаемый уровень коммитмента достигнут.
	KindConfirmed
	// KindFailed — сеть сообщила, что транзакция исполнилась с ошибкой.
	KindFailed
	// KindExpired — окно blockhash закрыто, транзакция уже не попадет в блок.
	KindExpired
	// KindTimedOut — бюджет попыток исчерпан, транзакция все еще может пройти.
	KindTimedOut
	// KindCanceled — внешний контекст отменил ожидание.
	KindCanceled
)

func (k Kind) String() string {
	switch k {
	case KindConfirmed:
		return "confirmed"
	case KindFailed:
		return "failed"
	case KindExpired:
		return "expired"
	case KindTimedOut:
		return "timed_out"
	case KindCanceled:
		return "canceled"
	default:
		return "setup_error"
	}
}

// Outcome — единственный результат одной попытки отправки. Все терминальные
// условия возвращаются значением, а не паникой, чтобы вызывающий код мог
// исчерпывающе разобрать их по Kind.
type Outcome struct {
	Kind      Kind
	Signature solana.Signature
	// TxErr — он-чейн ошибка в том виде, в каком ее вернул RPC (только KindFailed).
	TxErr interface{}
	// ExpiryHeight — наблюдаемая высота в момент истечения (только KindExpired).
	ExpiryHeight uint64
	// Cause — причина для KindSetupError и KindCanceled.
	Cause error
}

// Confirmed сообщает, завершилась ли попытка успехом.
func (o Outcome) Confirmed() bool {
	return o.Kind == KindConfirmed
}

// Err сворачивает результат в ошибку; nil для подтвержденной транзакции.
func (o Outcome) Err() error {
	switch o.Kind {
	case KindConfirmed:
		return nil
	case KindFailed:
		return fmt.Errorf("transaction %s failed on-chain: %v", o.Signature, o.TxErr)
	case KindExpired:
		return fmt.Errorf("%w: block height %d past last valid height", ErrTransactionExpired, o.ExpiryHeight)
	case KindTimedOut:
		return ErrConfirmationTimeout
	default:
		return o.Cause
	}
}

// SetupFailure — Outcome вида KindSetupError для ошибок подготовки,
// случившихся до передачи транзакции движку (битый payload, неудачная подпись).
func SetupFailure(cause error) Outcome {
	return setupOutcome(solana.Signature{}, cause)
}

// Конструкторы ниже — классификатор исходов: чистое отображение терминального
// состояния драйвера в Outcome, без побочных эффектов.

func confirmedOutcome(sig solana.Signature) Outcome {
	return Outcome{Kind: KindConfirmed, Signature: sig}
}

func failedOutcome(sig solana.Signature, txErr interface{}) Outcome {
	return Outcome{Kind: KindFailed, Signature: sig, TxErr: txErr}
}

func expiredOutcome(sig solana.Signature, height uint64) Outcome {
	return Outcome{Kind: KindExpired, Signature: sig, ExpiryHeight: height}
}

func timedOutOutcome(sig solana.Signature) Outcome {
	return Outcome{Kind: KindTimedOut, Signature: sig}
}

func setupOutcome(sig solana.Signature, cause error) Outcome {
	return Outcome{Kind: KindSetupError, Signature: sig, Cause: cause}
}

func canceledOutcome(sig solana.Signature, cause error) Outcome {
	return Outcome{Kind: KindCanceled, Signature: sig, Cause: cause}
}
