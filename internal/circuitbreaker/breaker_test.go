package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bintang/pkg/core"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1700000000, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestBreaker(clock *fakeClock, fail, success int) *Breaker {
	return New(Config{
		FailThreshold:    fail,
		SuccessThreshold: success,
		Timeout:          time.Second,
		Now:              clock.Now,
	})
}

func TestState_String(t *testing.T) {
	tests := []struct {
		name  string
		state State
		want  string
	}{
		{"closed", StateClosed, "CLOSED"},
		{"open", StateOpen, "OPEN"},
		{"half_open", StateHalfOpen, "HALF_OPEN"},
		{"unknown", State(7), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.state.String())
		})
	}
}

func TestBreaker_New(t *testing.T) {
	breaker := New(Config{FailThreshold: 5, SuccessThreshold: 2, Timeout: 30 * time.Second})

	assert.NotNil(t, breaker)
	assert.Equal(t, StateClosed, breaker.State())
	assert.True(t, breaker.Allow())
}

func TestBreaker_TransitionToOpen(t *testing.T) {
	breaker := newTestBreaker(newFakeClock(), 3, 2)

	breaker.Record(false)
	breaker.Record(false)
	assert.Equal(t, StateClosed, breaker.State())

	breaker.Record(false)
	assert.Equal(t, StateOpen, breaker.State())
	assert.False(t, breaker.Allow())
}

func TestBreaker_TransitionToHalfOpen(t *testing.T) {
	clock := newFakeClock()
	breaker := newTestBreaker(clock, 2, 2)

	breaker.Record(false)
	breaker.Record(false)
	require.Equal(t, StateOpen, breaker.State())

	clock.Advance(999 * time.Millisecond)
	assert.False(t, breaker.Allow())

	clock.Advance(time.Millisecond)
	assert.True(t, breaker.Allow())
	assert.Equal(t, StateHalfOpen, breaker.State())
}

func TestBreaker_TransitionToClosed(t *testing.T) {
	clock := newFakeClock()
	breaker := newTestBreaker(clock, 2, 2)

	breaker.Record(false)
	breaker.Record(false)
	clock.Advance(2 * time.Second)

	breaker.Record(true)
	assert.Equal(t, StateHalfOpen, breaker.State())

	breaker.Record(true)
	assert.Equal(t, StateClosed, breaker.State())
}

func TestBreaker_HalfOpenToFails(t *testing.T) {
	clock := newFakeClock()
	breaker := newTestBreaker(clock, 2, 2)

	breaker.Record(false)
	breaker.Record(false)
	clock.Advance(2 * time.Second)

	require.True(t, breaker.Allow())
	breaker.Record(false)

	assert.Equal(t, StateOpen, breaker.State())
	assert.False(t, breaker.Allow())
}

func TestBreaker_Reset(t *testing.T) {
	breaker := newTestBreaker(newFakeClock(), 2, 2)

	breaker.Record(false)
	breaker.Record(false)
	assert.Equal(t, StateOpen, breaker.State())

	breaker.Reset()

	assert.Equal(t, StateClosed, breaker.State())
	assert.Equal(t, 0, breaker.Failures())
	assert.Equal(t, 0, breaker.Successes())
}

func TestBreaker_SuccessResetsFailures(t *testing.T) {
	breaker := newTestBreaker(newFakeClock(), 5, 2)

	breaker.Record(false)
	breaker.Record(false)
	breaker.Record(false)
	assert.Equal(t, 3, breaker.Failures())

	breaker.Record(true)
	assert.Equal(t, 0, breaker.Failures())
}

func TestBreaker_Execute(t *testing.T) {
	clock := newFakeClock()
	breaker := newTestBreaker(clock, 2, 1)
	boom := errors.New("boom")

	for i := 0; i < 2; i++ {
		err := breaker.Execute(context.Background(), func(context.Context) error { return boom })
		assert.ErrorIs(t, err, boom)
	}

	called := false
	err := breaker.Execute(context.Background(), func(context.Context) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, core.ErrCircuitBreakerOpen)
	assert.True(t, core.IsErrorCode(err, core.ErrCodeCircuitBreaker))
	assert.False(t, called)

	clock.Advance(time.Second)
	err = breaker.Execute(context.Background(), func(context.Context) error { return nil })
	assert.NoError(t, err)
	assert.Equal(t, StateClosed, breaker.State())
}

func TestBreaker_Execute_IgnoredErrors(t *testing.T) {
	rejected := errors.New("order rejected")
	breaker := New(Config{
		FailThreshold:    1,
		SuccessThreshold: 1,
		Timeout:          time.Second,
		IsFailure:        func(err error) bool { return err != nil && !errors.Is(err, rejected) },
	})

	for i := 0; i < 5; i++ {
		_ = breaker.Execute(context.Background(), func(context.Context) error { return rejected })
	}

	assert.Equal(t, StateClosed, breaker.State())
	assert.Equal(t, int64(5), breaker.Metrics().SuccessRequests)
}

func TestBreaker_Nil(t *testing.T) {
	var breaker *Breaker

	assert.True(t, breaker.Allow())
	breaker.Record(false)
	assert.Equal(t, StateClosed, breaker.State())
	assert.NoError(t, breaker.Execute(context.Background(), func(context.Context) error { return nil }))
}

func TestNewFromConfig(t *testing.T) {
	cfg := core.DefaultConfig()
	breaker := NewFromConfig(cfg, nil)
	require.NotNil(t, breaker)
	assert.Equal(t, cfg.CircuitBreakerFailThreshold, breaker.failThreshold)

	assert.Nil(t, NewFromConfig(cfg.WithCircuitBreaker(false), nil))
}

func TestBreaker_Metrics(t *testing.T) {
	clock := newFakeClock()
	breaker := newTestBreaker(clock, 1, 1)

	breaker.Allow()
	breaker.Record(false)
	breaker.Allow()

	m := breaker.Metrics()
	assert.Equal(t, int64(2), m.TotalRequests)
	assert.Equal(t, int64(1), m.FailedRequests)
	assert.Equal(t, int64(1), m.RejectedRequests)
	assert.Equal(t, int32(1), m.StateChanges)
	assert.Equal(t, "OPEN", m.CurrentState)
}

func TestBreaker_Concurrent(t *testing.T) {
	breaker := newTestBreaker(newFakeClock(), 1000, 1)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(ok bool) {
			defer wg.Done()
			if breaker.Allow() {
				breaker.Record(ok)
			}
		}(i%2 == 0)
	}
	wg.Wait()

	m := breaker.Metrics()
	assert.Equal(t, int64(100), m.SuccessRequests+m.FailedRequests)
}
