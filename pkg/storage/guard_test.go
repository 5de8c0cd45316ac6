package storage

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingClient struct {
	mu      sync.Mutex
	objects []Object
	err     error
	calls   int
}

func (c *countingClient) List(_ context.Context, _ string) ([]Object, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return c.objects, nil
}

func (c *countingClient) Move(_ context.Context, _, _, _ string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return c.err
}

func TestGuard_PassesThrough(t *testing.T) {
	t.Parallel()

	id := "etag"
	next := &countingClient{objects: []Object{{Name: "a.pdf", ID: &id}}}
	g := NewGuard(next, GuardOptions{Name: "test-pass", MaxConsecutiveFailures: 3})

	objects, err := g.List(context.Background(), "bucket")
	require.NoError(t, err)
	assert.Equal(t, next.objects, objects)

	require.NoError(t, g.Move(context.Background(), "bucket", "a.pdf", "b.pdf"))
	assert.Equal(t, 2, next.calls)
}

func TestGuard_OpensAfterConsecutiveFailures(t *testing.T) {
	t.Parallel()

	next := &countingClient{err: errors.New("connection refused")}
	g := NewGuard(next, GuardOptions{Name: "test-open", MaxConsecutiveFailures: 2, OpenTimeout: time.Hour})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		err := g.Move(ctx, "bucket", "a.pdf", "b.pdf")
		require.Error(t, err)
		assert.False(t, errors.Is(err, ErrUnavailable))
	}

	// The breaker is open now, so the store isn't called anymore.
	err := g.Move(ctx, "bucket", "a.pdf", "b.pdf")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnavailable))
	assert.Equal(t, 2, next.calls)
}

func TestGuard_NoBreaker(t *testing.T) {
	t.Parallel()

	next := &countingClient{err: errors.New("connection refused")}
	g := NewGuard(next, GuardOptions{Name: "test-no-breaker"})

	for i := 0; i < 10; i++ {
		assert.Error(t, g.Move(context.Background(), "bucket", "a.pdf", "b.pdf"))
	}
	assert.Equal(t, 10, next.calls)
}

func TestGuard_RateLimitHonoursContext(t *testing.T) {
	t.Parallel()

	next := &countingClient{}
	g := NewGuard(next, GuardOptions{Name: "test-rate", RequestsPerSecond: 0.001})

	// The first call uses the burst.
	require.NoError(t, g.Move(context.Background(), "bucket", "a.pdf", "b.pdf"))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := g.Move(ctx, "bucket", "c.pdf", "d.pdf")
	require.Error(t, err)
	assert.Equal(t, 1, next.calls)
}
