package txmanager

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/m04kA/SMC-SalonScheduling/pkg/dbmetrics"
)

// DefaultMaxRetries количество повторов сериализуемой транзакции при конфликте
const DefaultMaxRetries = 3

const (
	pqSerializationFailure = "40001"
	pqDeadlockDetected     = "40P01"
)

var (
	// ErrSerializationFailure возвращается, когда транзакцию не удалось
	// зафиксировать после всех повторов
	ErrSerializationFailure = errors.New("txmanager: serialization failure")

	// ErrTransaction возвращается при ошибках begin/commit
	ErrTransaction = errors.New("txmanager: transaction error")
)

// TxBeginner источник транзакций (*dbmetrics.DB)
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (dbmetrics.TxExecutor, error)
}

// TransactionManager выполняет функцию в транзакции, передавая её через контекст.
// Репозитории получают транзакцию через dbmetrics.GetExecutor.
type TransactionManager struct {
	db         TxBeginner
	maxRetries int
}

// NewTransactionManager создает менеджер транзакций
func NewTransactionManager(db TxBeginner, maxRetries int) *TransactionManager {
	if maxRetries < 1 {
		maxRetries = DefaultMaxRetries
	}
	return &TransactionManager{db: db, maxRetries: maxRetries}
}

// Do выполняет fn в транзакции с уровнем изоляции по умолчанию
func (m *TransactionManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, &sql.TxOptions{}, fn)
}

// DoReadOnly выполняет fn в read-only транзакции
func (m *TransactionManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, &sql.TxOptions{ReadOnly: true}, fn)
}

// DoSerializable выполняет fn в SERIALIZABLE транзакции.
// При конфликте сериализации транзакция повторяется не более maxRetries раз,
// после чего возвращается ErrSerializationFailure.
func (m *TransactionManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	opts := &sql.TxOptions{Isolation: sql.LevelSerializable}

	var lastErr error
	for attempt := 0; attempt < m.maxRetries; attempt++ {
		err := m.run(ctx, opts, fn)
		if err == nil {
			return nil
		}
		if !IsSerializationFailure(err) {
			return err
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}

	return fmt.Errorf("%w: %v", ErrSerializationFailure, lastErr)
}

func (m *TransactionManager) run(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context) error) (err error) {
	// Вложенный вызов переиспользует внешнюю транзакцию
	if dbmetrics.IsInTransaction(ctx) {
		return fn(ctx)
	}

	tx, err := m.db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("%w: begin: %w", ErrTransaction, err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(dbmetrics.WithTx(ctx, tx)); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %w", ErrTransaction, err)
	}

	return nil
}

// IsSerializationFailure проверяет, что ошибка вызвана конфликтом
// сериализации или дедлоком в PostgreSQL
func IsSerializationFailure(err error) bool {
	if errors.Is(err, ErrSerializationFailure) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqSerializationFailure || pqErr.Code == pqDeadlockDetected
	}
	return false
}
