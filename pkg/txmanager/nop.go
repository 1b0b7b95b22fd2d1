package txmanager

import "context"

// Nop менеджер для хранилищ без транзакций (in-memory).
// Атомарность операций бронирования в этом режиме обеспечивает keylock.
type Nop struct{}

// NewNop создает менеджер без транзакций
func NewNop() *Nop {
	return &Nop{}
}

// Do вызывает fn напрямую
func (Nop) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// DoReadOnly вызывает fn напрямую
func (Nop) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// DoSerializable вызывает fn напрямую
func (Nop) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
