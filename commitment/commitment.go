// commitment/commitment.go
package commitment

import (
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go/rpc"
)

// Level — уровень финализации наблюдения за транзакцией.
// Уровни полностью упорядочены: Processed < Confirmed < Finalized.
type Level int

const (
	// LevelUnknown — нераспознанный уровень. Никогда не удовлетворяет цели.
	LevelUnknown Level = iota
	LevelProcessed
	LevelConfirmed
	LevelFinalized
)

// String возвращает каноническое текстовое представление уровня.
func (l Level) String() string {
	switch l {
	case LevelProcessed:
		return "processed"
	case LevelConfirmed:
		return "confirmed"
	case LevelFinalized:
		return "finalized"
	default:
		return "unknown"
	}
}

// CommitmentType переводит уровень в тип коммитмента RPC.
func (l Level) CommitmentType() rpc.CommitmentType {
	switch l {
	case LevelProcessed:
		return rpc.CommitmentProcessed
	case LevelFinalized:
		return rpc.CommitmentFinalized
	default:
		return rpc.CommitmentConfirmed
	}
}

// Parse разбирает текстовое представление уровня ("processed"/"confirmed"/"finalized").
// Нераспознанное значение возвращает LevelUnknown и ошибку, не падая.
func Parse(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "processed":
		return LevelProcessed, nil
	case "confirmed":
		return LevelConfirmed, nil
	case "finalized":
		return LevelFinalized, nil
	default:
		return LevelUnknown, fmt.Errorf("invalid commitment: %q", s)
	}
}

// FromConfirmationStatus переводит статус подтверждения из ответа
// getSignatureStatuses в уровень. Пустой или незнакомый статус — LevelUnknown.
func FromConfirmationStatus(status rpc.ConfirmationStatusType) Level {
	switch status {
	case rpc.ConfirmationStatusProcessed:
		return LevelProcessed
	case rpc.ConfirmationStatusConfirmed:
		return LevelConfirmed
	case rpc.ConfirmationStatusFinalized:
		return LevelFinalized
	default:
		return LevelUnknown
	}
}

// Sufficient сообщает, достигает ли текущий уровень желаемого (current >= desired).
// LevelUnknown не достигает ничего: один битый статус не должен сойти за успех.
func Sufficient(current, desired Level) bool {
	if current == LevelUnknown || desired == LevelUnknown {
		return false
	}
	return current >= desired
}
