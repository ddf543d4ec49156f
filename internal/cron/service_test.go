package cron

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/internal/fulfillment"
	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/db/models"
	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{Level: zerolog.Disabled, Output: io.Discard})
}

type countingJob struct {
	name string
	runs int
	err  error
}

func (j *countingJob) Name() string { return j.name }

func (j *countingJob) Run(context.Context) error {
	j.runs++
	return j.err
}

type stubLock struct {
	acquired bool
	releases int
}

func (l *stubLock) Acquire(context.Context) (bool, error) { return l.acquired, nil }

func (l *stubLock) Release(context.Context) error {
	l.releases++
	return nil
}

func TestRunCycleRunsEveryJob(t *testing.T) {
	a := &countingJob{name: "a"}
	b := &countingJob{name: "b", err: errors.New("boom")}
	c := &countingJob{name: "c"}
	lock := &stubLock{acquired: true}
	svc, err := NewService(ServiceParams{
		Logger:   testLogger(),
		Registry: NewRegistry(a, b, c),
		Lock:     lock,
	})
	require.NoError(t, err)

	require.NoError(t, svc.runCycle(context.Background()))
	assert.Equal(t, 1, a.runs)
	assert.Equal(t, 1, b.runs)
	assert.Equal(t, 1, c.runs, "a failing job does not stop the cycle")
	assert.Equal(t, 1, lock.releases)
}

func TestRunCycleSkipsWhenLockHeldElsewhere(t *testing.T) {
	job := &countingJob{name: "a"}
	lock := &stubLock{acquired: false}
	svc, err := NewService(ServiceParams{
		Logger:   testLogger(),
		Registry: NewRegistry(job),
		Lock:     lock,
	})
	require.NoError(t, err)

	require.NoError(t, svc.runCycle(context.Background()))
	assert.Zero(t, job.runs)
	assert.Zero(t, lock.releases, "never releases a lock it does not hold")
}

type fakeLockStore struct {
	values map[string]string
}

func newFakeLockStore() *fakeLockStore {
	return &fakeLockStore{values: map[string]string{}}
}

func (s *fakeLockStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, ok := s.values[key]; ok {
		return false, nil
	}
	s.values[key] = value.(string)
	return true, nil
}

func (s *fakeLockStore) Get(_ context.Context, key string) (string, error) {
	return s.values[key], nil
}

func (s *fakeLockStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.values, key)
	}
	return nil
}

func TestRedisLockMutualExclusion(t *testing.T) {
	store := newFakeLockStore()
	ctx := context.Background()

	first, err := NewRedisLock(store, "sh:lock:cron", time.Minute)
	require.NoError(t, err)
	second, err := NewRedisLock(store, "sh:lock:cron", time.Minute)
	require.NoError(t, err)

	ok, err := first.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = second.Acquire(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "lock already held")

	require.NoError(t, second.Release(ctx), "releasing an unheld lock is a no-op")
	ok, err = second.Acquire(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "first instance still owns the lock")

	require.NoError(t, first.Release(ctx))
	ok, err = second.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

type stubPendingReader struct {
	orders []models.Order
	err    error
}

func (r *stubPendingReader) FindPendingOnlineOrdersBefore(_ context.Context, _ time.Time) ([]models.Order, error) {
	return r.orders, r.err
}

type stubCanceler struct {
	inputs []fulfillment.CancelInput
	failOn uuid.UUID
}

func (c *stubCanceler) CancelOrder(_ context.Context, input fulfillment.CancelInput) (*models.Order, error) {
	c.inputs = append(c.inputs, input)
	if input.OrderID == c.failOn {
		return nil, errors.New("already confirmed")
	}
	return &models.Order{ID: input.OrderID}, nil
}

func TestPendingOrderExpiryJob(t *testing.T) {
	stale := []models.Order{{ID: uuid.New()}, {ID: uuid.New()}, {ID: uuid.New()}}
	reader := &stubPendingReader{orders: stale}
	canceler := &stubCanceler{failOn: stale[1].ID}

	job, err := NewPendingOrderExpiryJob(PendingOrderExpiryJobParams{
		Logger:   testLogger(),
		Orders:   reader,
		Canceler: canceler,
		TTL:      48 * time.Hour,
	})
	require.NoError(t, err)
	assert.Equal(t, "pending-order-expiry", job.Name())

	err = job.Run(context.Background())
	require.Error(t, err, "one failed cancellation surfaces")
	assert.Len(t, canceler.inputs, 3, "failure does not stop the sweep")
	for _, input := range canceler.inputs {
		assert.Equal(t, systemActorID, input.ActorID)
		assert.NotEmpty(t, input.Reason)
	}
}

func TestPendingOrderExpiryJobNoCandidates(t *testing.T) {
	job, err := NewPendingOrderExpiryJob(PendingOrderExpiryJobParams{
		Logger:   testLogger(),
		Orders:   &stubPendingReader{},
		Canceler: &stubCanceler{},
		TTL:      48 * time.Hour,
	})
	require.NoError(t, err)
	require.NoError(t, job.Run(context.Background()))
}
