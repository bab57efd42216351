package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// Bucket names used by the spot client.
const (
	// BucketWeight limits the request weight spent per minute.
	BucketWeight = "weight"
	// BucketOrders limits the number of orders placed per second.
	BucketOrders = "orders"
)

// RateLimiter enforces independent token buckets addressed by name. Each
// request may take several tokens from a bucket at once.
type RateLimiter struct {
	mu      sync.RWMutex
	buckets map[string]*rate.Limiter
	metrics *Metrics
}

// Metrics tracks statistics about rate limiter usage.
type Metrics struct {
	totalRequests   atomic.Int64
	allowedRequests atomic.Int64
	deniedRequests  atomic.Int64
	tokensTaken     atomic.Int64
}

// New creates a RateLimiter with no buckets.
func New() *RateLimiter {
	return &RateLimiter{
		buckets: make(map[string]*rate.Limiter),
		metrics: &Metrics{},
	}
}

// NewSpot creates a RateLimiter with the weight and orders buckets.
func NewSpot(weightPerMinute, ordersPerSecond int) *RateLimiter {
	r := New()
	r.SetBucketLimit(BucketWeight, weightPerMinute, time.Minute)
	r.SetBucketLimit(BucketOrders, ordersPerSecond, time.Second)
	return r
}

// SetBucketLimit allows requests tokens per period on bucket, with a burst of
// the full period budget. The bucket is created if it does not exist.
func (r *RateLimiter) SetBucketLimit(bucket string, requests int, period time.Duration) {
	limit := rate.Limit(float64(requests) / period.Seconds())

	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.buckets[bucket]; ok {
		l.SetLimit(limit)
		l.SetBurst(requests)
		return
	}
	r.buckets[bucket] = rate.NewLimiter(limit, requests)
}

func (r *RateLimiter) bucket(name string) (*rate.Limiter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.buckets[name]
	if !ok {
		return nil, fmt.Errorf("rate limit bucket %q not configured", name)
	}
	return l, nil
}

// WaitN blocks until n tokens are available on bucket or ctx is done.
// A non-positive n returns immediately.
func (r *RateLimiter) WaitN(ctx context.Context, bucket string, n int) error {
	if n <= 0 {
		return nil
	}
	l, err := r.bucket(bucket)
	if err != nil {
		return err
	}

	r.metrics.totalRequests.Add(1)
	if err := l.WaitN(ctx, n); err != nil {
		r.metrics.deniedRequests.Add(1)
		return fmt.Errorf("wait %s: %w", bucket, err)
	}
	r.metrics.allowedRequests.Add(1)
	r.metrics.tokensTaken.Add(int64(n))
	return nil
}

// AllowN reports whether n tokens can be taken from bucket now, taking them if so.
func (r *RateLimiter) AllowN(bucket string, n int) bool {
	l, err := r.bucket(bucket)
	if err != nil {
		return false
	}

	r.metrics.totalRequests.Add(1)
	if !l.AllowN(time.Now(), n) {
		r.metrics.deniedRequests.Add(1)
		return false
	}
	r.metrics.allowedRequests.Add(1)
	r.metrics.tokensTaken.Add(int64(n))
	return true
}

// Metrics returns a snapshot of the current rate limiter statistics.
func (r *RateLimiter) Metrics() MetricsSnapshot {
	r.mu.RLock()
	buckets := len(r.buckets)
	r.mu.RUnlock()

	return MetricsSnapshot{
		TotalRequests:   r.metrics.totalRequests.Load(),
		AllowedRequests: r.metrics.allowedRequests.Load(),
		DeniedRequests:  r.metrics.deniedRequests.Load(),
		TokensTaken:     r.metrics.tokensTaken.Load(),
		BucketCount:     buckets,
	}
}

// MetricsSnapshot is a point-in-time capture of rate limiter statistics.
type MetricsSnapshot struct {
	// TotalRequests is the total number of rate limit checks performed.
	TotalRequests int64
	// AllowedRequests is the number of requests that were allowed.
	AllowedRequests int64
	// DeniedRequests is the number of requests that were denied.
	DeniedRequests int64
	// TokensTaken is the sum of tokens taken by allowed requests.
	TokensTaken int64
	// BucketCount is the number of rate limit buckets in use.
	BucketCount int
}
