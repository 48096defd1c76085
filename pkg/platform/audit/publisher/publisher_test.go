package publisher

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	audit "pharmaguard/pkg/platform/audit"
	"pharmaguard/pkg/platform/audit/store/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublisher_SyncMode(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	event := audit.NewEvent(audit.EventVerificationCompleted)
	event.Decision = "SAFE"

	require.NoError(t, pub.Emit(context.Background(), event))

	events, err := store.ListByAction(context.Background(), audit.EventVerificationCompleted)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "SAFE", events[0].Decision)
	assert.Equal(t, audit.CategoryOperations, events[0].Category)
}

func TestPublisher_AsyncDrainsOnClose(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(100))

	for range 10 {
		require.NoError(t, pub.Emit(context.Background(), audit.NewEvent(audit.EventVerificationCompleted)))
	}

	require.NoError(t, pub.Close())

	events, err := store.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, events, 10, "all events should be drained on close")
}

func TestPublisher_CloseIsIdempotent(t *testing.T) {
	pub := NewPublisher(memory.NewInMemoryStore(), WithAsyncBuffer(1))
	require.NoError(t, pub.Close())
	require.NoError(t, pub.Close())
}

func TestPublisher_EmitAfterClose(t *testing.T) {
	for _, tc := range []struct {
		name string
		opts []Option
	}{
		{name: "sync", opts: nil},
		{name: "async", opts: []Option{WithAsyncBuffer(4)}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			store := memory.NewInMemoryStore()
			pub := NewPublisher(store, tc.opts...)
			require.NoError(t, pub.Close())

			assert.NotPanics(t, func() {
				err := pub.Emit(context.Background(), audit.NewEvent(audit.EventRateLimitExceeded))
				assert.ErrorIs(t, err, ErrClosed)
			})

			events, err := store.ListAll(context.Background())
			require.NoError(t, err)
			assert.Empty(t, events)
		})
	}
}

func TestPublisher_ConcurrentEmitAndClose(t *testing.T) {
	pub := NewPublisher(memory.NewInMemoryStore(), WithAsyncBuffer(8))

	var wg sync.WaitGroup
	for range 20 {
		wg.Go(func() {
			err := pub.Emit(context.Background(), audit.NewEvent(audit.EventVerificationCompleted))
			if err != nil && !errors.Is(err, ErrClosed) && !errors.Is(err, ErrBufferFull) {
				t.Errorf("unexpected emit error: %v", err)
			}
		})
	}
	require.NoError(t, pub.Close())
	wg.Wait()
}

func TestPublisher_BufferFull_DropsEvent(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(1))
	defer pub.Close()

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := pub.Emit(context.Background(), audit.NewEvent(audit.EventVerificationCompleted))
			if err != nil {
				assert.ErrorIs(t, err, ErrBufferFull)
			}
		}()
	}
	wg.Wait()
}

func TestPublisher_ComplianceEventsBypassBuffer(t *testing.T) {
	store := &failingStore{err: errors.New("broker down")}
	pub := NewPublisher(store, WithAsyncBuffer(10))
	defer pub.Close()

	err := pub.Emit(context.Background(), audit.NewEvent(audit.EventBatchRegistered))
	require.Error(t, err)
	assert.ErrorContains(t, err, "broker down")
}

func TestPublisher_SetsTimestampAndCategory(t *testing.T) {
	store := memory.NewInMemoryStore()
	fixed := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	pub := NewPublisher(store, WithClock(func() time.Time { return fixed }))
	defer pub.Close()

	require.NoError(t, pub.Emit(context.Background(), audit.Event{Action: string(audit.EventRateLimitExceeded)}))

	events, err := store.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, fixed, events[0].Timestamp)
	assert.Equal(t, audit.CategorySecurity, events[0].Category)
}

func TestPublisher_PreservesExistingTimestamp(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	customTime := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	event := audit.NewEvent(audit.EventBatchRegistered)
	event.Timestamp = customTime

	require.NoError(t, pub.Emit(context.Background(), event))

	events, err := store.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, customTime, events[0].Timestamp)
}

func TestPublisher_RequiresAction(t *testing.T) {
	pub := NewPublisher(memory.NewInMemoryStore())
	defer pub.Close()

	assert.Error(t, pub.Emit(context.Background(), audit.Event{}))
}

func TestPublisher_SamplerOnlyAppliesToOperations(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithSampler(NewSampler(0)))
	defer pub.Close()

	require.NoError(t, pub.Emit(context.Background(), audit.NewEvent(audit.EventVerificationCompleted)))
	require.NoError(t, pub.Emit(context.Background(), audit.NewEvent(audit.EventBatchRegistrationFailed)))

	events, err := store.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, string(audit.EventBatchRegistrationFailed), events[0].Action)
}

func TestSampler_Rates(t *testing.T) {
	s := NewSampler(2)
	assert.True(t, s.ShouldSample("anything"))

	s.SetRate("noisy", -1)
	assert.False(t, s.ShouldSample("noisy"))

	s.SetRate("half", 0.5)
	s.draw = func() float64 { return 0.4 }
	assert.True(t, s.ShouldSample("half"))
	s.draw = func() float64 { return 0.6 }
	assert.False(t, s.ShouldSample("half"))
}

type failingStore struct {
	err error
}

func (s *failingStore) Append(context.Context, audit.Event) error {
	return s.err
}
