package txmanager

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/m04kA/SMC-VenueBookingService/pkg/dbmetrics"
)

// DefaultMaxAttempts сколько раз выполняется SERIALIZABLE транзакция,
// если PostgreSQL отменяет ее из-за конфликта сериализации
const DefaultMaxAttempts = 3

// retryBackoff пауза перед повтором, растет линейно с номером попытки
const retryBackoff = 10 * time.Millisecond

const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

var (
	// ErrBeginTx возвращается при ошибке открытия транзакции
	ErrBeginTx = errors.New("txmanager: failed to begin transaction")

	// ErrCommitTx возвращается при ошибке фиксации транзакции
	ErrCommitTx = errors.New("txmanager: failed to commit transaction")

	// ErrSerializationFailure возвращается, когда все попытки SERIALIZABLE транзакции
	// отменены из-за конкурентных изменений
	ErrSerializationFailure = errors.New("txmanager: could not serialize transaction")
)

// TransactionManager выполняет функции внутри транзакции.
// Транзакция передается репозиториям через контекст (см. dbmetrics.WithTx).
type TransactionManager struct {
	db          dbmetrics.DBExecutor
	maxAttempts int
}

// NewTransactionManager создает менеджер транзакций поверх *sql.DB или *dbmetrics.DB
func NewTransactionManager(db dbmetrics.DBExecutor) *TransactionManager {
	return &TransactionManager{db: db, maxAttempts: DefaultMaxAttempts}
}

// Do выполняет fn в транзакции с уровнем изоляции по умолчанию
func (m *TransactionManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, &sql.TxOptions{}, fn)
}

// DoSerializable выполняет fn в транзакции с уровнем изоляции SERIALIZABLE.
// При конфликте сериализации (40001) или дедлоке (40P01) fn выполняется заново
// в новой транзакции, не более DefaultMaxAttempts раз: fn должна быть повторяемой.
func (m *TransactionManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable}, fn)
}

// DoReadOnly выполняет fn в транзакции только для чтения
func (m *TransactionManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, &sql.TxOptions{ReadOnly: true}, fn)
}

func (m *TransactionManager) run(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context) error) error {
	// Вложенный вызов переиспользует внешнюю транзакцию, повторяет ее внешний вызов
	if dbmetrics.IsInTransaction(ctx) {
		return fn(ctx)
	}

	attempts := 1
	if opts.Isolation == sql.LevelSerializable && m.maxAttempts > 1 {
		attempts = m.maxAttempts
	}

	for attempt := 1; ; attempt++ {
		retryable, err := m.runOnce(ctx, opts, fn)
		if err == nil || !retryable {
			return err
		}
		if attempt >= attempts {
			return fmt.Errorf("%w after %d attempts: %v", ErrSerializationFailure, attempt, err)
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %v", ErrSerializationFailure, ctx.Err())
		case <-time.After(time.Duration(attempt) * retryBackoff):
		}
	}
}

// runOnce выполняет одну попытку. retryable = true, если PostgreSQL отменил
// транзакцию из-за конфликта сериализации, даже когда fn не сохранила причину в цепочке ошибок.
func (m *TransactionManager) runOnce(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context) error) (retryable bool, err error) {
	raw, err := dbmetrics.BeginTx(ctx, m.db, opts)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrBeginTx, err)
	}
	tx := &conflictTrackingTx{TxExecutor: raw}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(dbmetrics.WithTx(ctx, tx)); err != nil {
		retryable = tx.conflicted || IsSerializationFailure(err)
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return retryable, fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return retryable, err
	}

	if err := tx.Commit(); err != nil {
		return tx.conflicted, fmt.Errorf("%w: %v", ErrCommitTx, err)
	}

	return false, nil
}

// IsSerializationFailure сообщает, что err содержит ошибку PostgreSQL,
// после которой транзакцию имеет смысл повторить
func IsSerializationFailure(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == codeSerializationFailure || pqErr.Code == codeDeadlockDetected
}

// conflictTrackingTx запоминает, что PostgreSQL вернул конфликт сериализации.
// Репозитории оборачивают ошибки через %v, поэтому причина видна только здесь.
type conflictTrackingTx struct {
	dbmetrics.TxExecutor
	conflicted bool
}

func (t *conflictTrackingTx) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	res, err := t.TxExecutor.ExecContext(ctx, query, args...)
	t.track(err)
	return res, err
}

func (t *conflictTrackingTx) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	rows, err := t.TxExecutor.QueryContext(ctx, query, args...)
	t.track(err)
	return rows, err
}

func (t *conflictTrackingTx) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	row := t.TxExecutor.QueryRowContext(ctx, query, args...)
	if row != nil {
		t.track(row.Err())
	}
	return row
}

func (t *conflictTrackingTx) Commit() error {
	err := t.TxExecutor.Commit()
	t.track(err)
	return err
}

func (t *conflictTrackingTx) track(err error) {
	if err != nil && IsSerializationFailure(err) {
		t.conflicted = true
	}
}
