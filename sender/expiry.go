// sender/expiry.go
package sender

// BlockhashExpiry фиксирует потолок высоты, после которого транзакция уже не
// может попасть в блок. Считается один раз перед циклом поллинга и неизменен
// в пределах одной попытки; каждая новая попытка обязана получить свежую
// референсную высоту, потому что ее транзакция собрана под свежий blockhash.
type BlockhashExpiry struct {
	ReferenceHeight uint64
	ExpiryHeight    uint64
}

// NewBlockhashExpiry вычисляет эффективный потолок: reference - buffer.
// Буфер больше референсной высоты схлопывает потолок в ноль.
func NewBlockhashExpiry(reference, buffer uint64) BlockhashExpiry {
	expiry := uint64(0)
	if reference > buffer {
		expiry = reference - buffer
	}
	return BlockhashExpiry{
		ReferenceHeight: reference,
		ExpiryHeight:    expiry,
	}
}

// Expired сообщает, закрыто ли окно: current >= ExpiryHeight.
func (e BlockhashExpiry) Expired(current uint64) bool {
	return current >= e.ExpiryHeight
}
