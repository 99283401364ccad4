package jobs

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/quillbooks/quillbooks/testing"
)

type mockIntegrityStore struct {
	entries   []UnbalancedEntry
	err       error
	lastLimit int
}

func (m *mockIntegrityStore) FindUnbalancedEntries(ctx context.Context, limit int) ([]UnbalancedEntry, error) {
	m.lastLimit = limit
	if m.err != nil {
		return nil, m.err
	}
	return m.entries, nil
}

type mockOverdueStore struct {
	flipped  int64
	err      error
	lastAsOf time.Time
}

func (m *mockOverdueStore) MarkOverdue(ctx context.Context, asOf time.Time) (int64, error) {
	m.lastAsOf = asOf
	if m.err != nil {
		return 0, m.err
	}
	return m.flipped, nil
}

func TestIntegrityJobReportsViolations(t *testing.T) {
	store := &mockIntegrityStore{entries: []UnbalancedEntry{
		{EntryID: 3, TotalDebit: decimal.NewFromInt(500), TotalCredit: decimal.NewFromInt(400)},
	}}
	job := NewIntegrityJob(store, slog.Default())

	task, err := NewLedgerIntegrityTask(10)
	require.NoError(t, err)

	require.NoError(t, job.Handle(context.Background(), task))
	assert.Equal(t, 10, store.lastLimit)
}

func TestIntegrityJobBadPayloadSkipsRetry(t *testing.T) {
	job := NewIntegrityJob(&mockIntegrityStore{}, slog.Default())

	task := asynq.NewTask(TaskLedgerIntegrity, []byte("{not json"))
	err := job.Handle(context.Background(), task)
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestIntegrityJobPropagatesStoreError(t *testing.T) {
	store := &mockIntegrityStore{err: errors.New("connection reset")}
	job := NewIntegrityJob(store, slog.Default())

	task, err := NewLedgerIntegrityTask(0)
	require.NoError(t, err)
	assert.Error(t, job.Handle(context.Background(), task))
}

func TestOverdueJobUsesPayloadTime(t *testing.T) {
	store := &mockOverdueStore{flipped: 2}
	job := NewOverdueJob(store, slog.Default())

	asOf := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	task, err := NewInvoiceOverdueTask(asOf)
	require.NoError(t, err)

	require.NoError(t, job.Handle(context.Background(), task))
	assert.True(t, store.lastAsOf.Equal(asOf))
}

func TestOverdueJobZeroTimeFallsBackToNow(t *testing.T) {
	store := &mockOverdueStore{}
	job := NewOverdueJob(store, slog.Default())
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	job.WithNow(func() time.Time { return now })

	task, err := NewInvoiceOverdueTask(time.Time{})
	require.NoError(t, err)

	require.NoError(t, job.Handle(context.Background(), task))
	assert.True(t, store.lastAsOf.Equal(now))
}

func TestOverdueJobBadPayloadSkipsRetry(t *testing.T) {
	job := NewOverdueJob(&mockOverdueStore{}, slog.Default())

	task := asynq.NewTask(TaskInvoiceOverdue, []byte("oops"))
	assert.ErrorIs(t, job.Handle(context.Background(), task), asynq.SkipRetry)
}
