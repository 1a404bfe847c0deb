package txmanager

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-VenueBookingService/pkg/dbmetrics"
)

var errSlotUnavailable = errors.New("slot unavailable")

// fakeDB открывает fakeTx; execErrs по очереди возвращаются из ExecContext
type fakeDB struct {
	execErrs   []error
	commitErrs []error
	began      int
	commits    int
	rollbacks  int
	isolations []sql.IsolationLevel
}

func (d *fakeDB) BeginTx(_ context.Context, opts *sql.TxOptions) (dbmetrics.TxExecutor, error) {
	d.began++
	d.isolations = append(d.isolations, opts.Isolation)
	return &fakeTx{db: d}, nil
}

func (d *fakeDB) ExecContext(context.Context, string, ...interface{}) (sql.Result, error) {
	return nil, errors.New("outside transaction")
}

func (d *fakeDB) QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error) {
	return nil, errors.New("outside transaction")
}

func (d *fakeDB) QueryRowContext(context.Context, string, ...interface{}) *sql.Row {
	return nil
}

type fakeTx struct {
	db *fakeDB
}

func (t *fakeTx) ExecContext(context.Context, string, ...interface{}) (sql.Result, error) {
	if len(t.db.execErrs) > 0 {
		err := t.db.execErrs[0]
		t.db.execErrs = t.db.execErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	return driver.RowsAffected(1), nil
}

func (t *fakeTx) QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error) {
	return nil, errors.New("not supported")
}

func (t *fakeTx) QueryRowContext(context.Context, string, ...interface{}) *sql.Row {
	return nil
}

func (t *fakeTx) Commit() error {
	t.db.commits++
	if len(t.db.commitErrs) > 0 {
		err := t.db.commitErrs[0]
		t.db.commitErrs = t.db.commitErrs[1:]
		return err
	}
	return nil
}

func (t *fakeTx) Rollback() error {
	t.db.rollbacks++
	return nil
}

func serializationFailure() error {
	return &pq.Error{Code: codeSerializationFailure, Message: "could not serialize access due to concurrent update"}
}

// exec выполняет запрос в транзакции из ctx и оборачивает ошибку так же, как репозитории
func exec(ctx context.Context) error {
	if _, err := dbmetrics.GetExecutor(ctx, nil).ExecContext(ctx, "SELECT 1"); err != nil {
		return fmt.Errorf("repository: execute query: %v", err)
	}
	return nil
}

func TestDoSerializable_RetriesAfterSerializationFailure(t *testing.T) {
	db := &fakeDB{execErrs: []error{serializationFailure()}}
	tm := NewTransactionManager(db)

	calls := 0
	err := tm.DoSerializable(context.Background(), func(ctx context.Context) error {
		calls++
		if err := exec(ctx); err != nil {
			return err
		}
		// Повторная попытка видит зафиксированное состояние конкурента
		return fmt.Errorf("%w: slot 0900-0930", errSlotUnavailable)
	})

	require.ErrorIs(t, err, errSlotUnavailable)
	assert.NotErrorIs(t, err, ErrSerializationFailure)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 2, db.began)
	assert.Equal(t, 2, db.rollbacks)
	assert.Equal(t, 0, db.commits)
	assert.Equal(t, []sql.IsolationLevel{sql.LevelSerializable, sql.LevelSerializable}, db.isolations)
}

func TestDoSerializable_RetriesCommitConflict(t *testing.T) {
	db := &fakeDB{commitErrs: []error{&pq.Error{Code: codeDeadlockDetected}}}
	tm := NewTransactionManager(db)

	calls := 0
	err := tm.DoSerializable(context.Background(), func(ctx context.Context) error {
		calls++
		return exec(ctx)
	})

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 2, db.commits)
}

func TestDoSerializable_GivesUpAfterMaxAttempts(t *testing.T) {
	db := &fakeDB{execErrs: []error{serializationFailure(), serializationFailure(), serializationFailure()}}
	tm := NewTransactionManager(db)

	calls := 0
	err := tm.DoSerializable(context.Background(), func(ctx context.Context) error {
		calls++
		return exec(ctx)
	})

	require.ErrorIs(t, err, ErrSerializationFailure)
	assert.Equal(t, DefaultMaxAttempts, calls)
	assert.Equal(t, DefaultMaxAttempts, db.rollbacks)
}

func TestDo_DoesNotRetry(t *testing.T) {
	db := &fakeDB{execErrs: []error{serializationFailure()}}
	tm := NewTransactionManager(db)

	calls := 0
	err := tm.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return exec(ctx)
	})

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSerializationFailure)
	assert.Equal(t, 1, calls)
}

func TestDoSerializable_DomainErrorIsNotRetried(t *testing.T) {
	db := &fakeDB{}
	tm := NewTransactionManager(db)

	calls := 0
	err := tm.DoSerializable(context.Background(), func(ctx context.Context) error {
		calls++
		return errSlotUnavailable
	})

	require.ErrorIs(t, err, errSlotUnavailable)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, db.rollbacks)
}

func TestDoSerializable_NestedCallReusesOuterTransaction(t *testing.T) {
	db := &fakeDB{execErrs: []error{serializationFailure()}}
	tm := NewTransactionManager(db)

	outer, inner := 0, 0
	err := tm.DoSerializable(context.Background(), func(ctx context.Context) error {
		outer++
		return tm.DoSerializable(ctx, func(ctx context.Context) error {
			inner++
			return exec(ctx)
		})
	})

	require.NoError(t, err)
	assert.Equal(t, 2, outer)
	assert.Equal(t, 2, inner)
	assert.Equal(t, 2, db.began)
	assert.Equal(t, 1, db.commits)
}

func TestIsSerializationFailure(t *testing.T) {
	assert.True(t, IsSerializationFailure(fmt.Errorf("wrapped: %w", serializationFailure())))
	assert.True(t, IsSerializationFailure(&pq.Error{Code: codeDeadlockDetected}))
	assert.False(t, IsSerializationFailure(&pq.Error{Code: "23505"}))
	assert.False(t, IsSerializationFailure(errors.New("could not serialize access")))
}
