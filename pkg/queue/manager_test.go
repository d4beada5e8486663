package queue_test

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/queuectl/queuectl/pkg/backoff"
	"github.com/queuectl/queuectl/pkg/core"
	"github.com/queuectl/queuectl/pkg/queue"
	"github.com/queuectl/queuectl/pkg/storage"
)

var dbCounter atomic.Int64

func openTestManager(t *testing.T, base float64, defaultRetries int) (*queue.Manager, core.Storage) {
	t.Helper()

	n := dbCounter.Add(1)
	dbPath := fmt.Sprintf("%s/queuectl_test_%d_%d.db", t.TempDir(), os.Getpid(), n)
	db, err := gorm.Open(sqlite.Open(dbPath+"?_busy_timeout=5000"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	store := storage.NewGormStorage(db)
	require.NoError(t, store.Migrate(context.Background()))

	strategy, err := backoff.NewExponential(base)
	require.NoError(t, err)

	m, err := queue.New(store, strategy, defaultRetries)
	require.NoError(t, err)
	return m, store
}

func TestEnqueue(t *testing.T) {
	m, _ := openTestManager(t, 2.0, 3)
	ctx := context.Background()

	job, err := m.Enqueue(ctx, "job1", "echo hello")
	require.NoError(t, err)
	assert.Equal(t, "job1", job.ID)
	assert.Equal(t, core.StatePending, job.State)
	assert.Equal(t, 0, job.Attempts)
	assert.Equal(t, 3, job.MaxRetries, "default budget from manager")

	job, err = m.Enqueue(ctx, "job2", "echo hi", queue.WithMaxRetries(7))
	require.NoError(t, err)
	assert.Equal(t, 7, job.MaxRetries)
}

func TestEnqueue_Validation(t *testing.T) {
	m, _ := openTestManager(t, 2.0, 3)
	ctx := context.Background()

	_, err := m.Enqueue(ctx, "", "echo hello")
	var verr *core.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.ErrorIs(t, err, core.ErrEmptyID)

	_, err = m.Enqueue(ctx, "job1", "")
	assert.ErrorIs(t, err, core.ErrEmptyCommand)

	_, err = m.Enqueue(ctx, "job1", "echo hello", queue.WithMaxRetries(-1))
	assert.ErrorIs(t, err, core.ErrNegRetries)

	// Nothing was persisted by any of the failed calls.
	jobs, err := m.List(ctx, "", 100)
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestEnqueue_DuplicateLeavesFirstIntact(t *testing.T) {
	m, _ := openTestManager(t, 2.0, 3)
	ctx := context.Background()

	_, err := m.Enqueue(ctx, "job1", "echo first")
	require.NoError(t, err)

	_, err = m.Enqueue(ctx, "job1", "echo second")
	assert.ErrorIs(t, err, core.ErrDuplicateID)

	job, err := m.Get(ctx, "job1")
	require.NoError(t, err)
	assert.Equal(t, "echo first", job.Command)
	assert.Equal(t, core.StatePending, job.State)
}

func TestNew_RejectsNegativeDefaultRetries(t *testing.T) {
	strategy, err := backoff.NewExponential(2.0)
	require.NoError(t, err)

	_, err = queue.New(nil, strategy, -1)
	assert.ErrorIs(t, err, core.ErrNegRetries)
}

func TestList_RejectsUnknownState(t *testing.T) {
	m, _ := openTestManager(t, 2.0, 3)

	_, err := m.List(context.Background(), core.JobState("failed"), 10)
	var verr *core.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestRecordOutcome_Success(t *testing.T) {
	m, store := openTestManager(t, 2.0, 3)
	ctx := context.Background()

	_, err := m.Enqueue(ctx, "job1", "echo hi")
	require.NoError(t, err)
	_, err = store.ClaimNext(ctx, "w1", time.Now())
	require.NoError(t, err)

	require.NoError(t, m.RecordOutcome(ctx, "job1", true, ""))

	job, err := m.Get(ctx, "job1")
	require.NoError(t, err)
	assert.Equal(t, core.StateCompleted, job.State)
}

func TestRecordOutcome_FailureUsesExponentialBackoff(t *testing.T) {
	m, store := openTestManager(t, 2.0, 3)
	ctx := context.Background()

	_, err := m.Enqueue(ctx, "job1", "exit 1")
	require.NoError(t, err)

	// First failure: delay = 2^1 = 2s.
	before := time.Now()
	_, err = store.ClaimNext(ctx, "w1", before)
	require.NoError(t, err)
	require.NoError(t, m.RecordOutcome(ctx, "job1", false, "boom"))

	job, err := m.Get(ctx, "job1")
	require.NoError(t, err)
	assert.Equal(t, 1, job.Attempts)
	require.NotNil(t, job.NextAttemptAt)
	delay := job.NextAttemptAt.Sub(before)
	assert.InDelta(t, (2 * time.Second).Seconds(), delay.Seconds(), 1.0)

	// Second failure: delay = 2^2 = 4s.
	before = time.Now()
	_, err = store.ClaimNext(ctx, "w1", before.Add(time.Hour))
	require.NoError(t, err)
	require.NoError(t, m.RecordOutcome(ctx, "job1", false, "boom again"))

	job, err = m.Get(ctx, "job1")
	require.NoError(t, err)
	assert.Equal(t, 2, job.Attempts)
	require.NotNil(t, job.NextAttemptAt)
	delay = job.NextAttemptAt.Sub(before)
	assert.InDelta(t, (4 * time.Second).Seconds(), delay.Seconds(), 1.0)
}

func TestDLQRetry(t *testing.T) {
	m, store := openTestManager(t, 2.0, 0)
	ctx := context.Background()

	_, err := m.Enqueue(ctx, "job1", "exit 1")
	require.NoError(t, err)
	_, err = store.ClaimNext(ctx, "w1", time.Now())
	require.NoError(t, err)
	require.NoError(t, m.RecordOutcome(ctx, "job1", false, "boom"))

	job, err := m.Get(ctx, "job1")
	require.NoError(t, err)
	require.Equal(t, core.StateDead, job.State)

	require.NoError(t, m.DLQRetry(ctx, "job1"))

	job, err = m.Get(ctx, "job1")
	require.NoError(t, err)
	assert.Equal(t, core.StatePending, job.State)
	assert.Equal(t, 0, job.Attempts)
	assert.Empty(t, job.LastError)
}

func TestDLQRetry_Errors(t *testing.T) {
	m, _ := openTestManager(t, 2.0, 3)
	ctx := context.Background()

	assert.ErrorIs(t, m.DLQRetry(ctx, "ghost"), core.ErrNotFound)

	_, err := m.Enqueue(ctx, "job1", "echo hi")
	require.NoError(t, err)
	assert.ErrorIs(t, m.DLQRetry(ctx, "job1"), core.ErrInvalidState)
}

func TestStats(t *testing.T) {
	m, _ := openTestManager(t, 2.0, 3)
	ctx := context.Background()

	_, err := m.Enqueue(ctx, "a", "echo")
	require.NoError(t, err)
	_, err = m.Enqueue(ctx, "b", "echo")
	require.NoError(t, err)

	stats, err := m.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Pending)
	assert.Equal(t, int64(2), stats.Total)
}
