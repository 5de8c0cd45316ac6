package storage

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/readsphere/readsphere/pkg/config"
	"github.com/readsphere/readsphere/pkg/metrics"
	"github.com/robinjoseph08/golib/logger"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

// ErrUnavailable is returned without calling the store while the breaker is
// open.
var ErrUnavailable = errors.New("object store unavailable")

type GuardOptions struct {
	Name string
	// RequestsPerSecond limits calls to the store. Zero means unlimited.
	RequestsPerSecond float64
	// MaxConsecutiveFailures opens the breaker. Zero disables the breaker.
	MaxConsecutiveFailures uint32
	// OpenTimeout is how long the breaker stays open before letting a probe
	// request through.
	OpenTimeout time.Duration
}

// Guard wraps a Client with a rate limiter and a circuit breaker. Calls are
// never retried; once the breaker opens the remaining calls fail fast.
type Guard struct {
	next    Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[[]Object]
}

func NewGuard(next Client, opts GuardOptions) *Guard {
	if opts.Name == "" {
		opts.Name = "storage"
	}
	if opts.OpenTimeout == 0 {
		opts.OpenTimeout = 30 * time.Second
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}

	log := logger.New()
	metrics.SetStorageBreakerState(opts.Name, stateValue(gobreaker.StateClosed))

	breaker := gobreaker.NewCircuitBreaker[[]Object](gobreaker.Settings{
		Name:        opts.Name,
		MaxRequests: 1,
		Timeout:     opts.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return opts.MaxConsecutiveFailures > 0 && counts.ConsecutiveFailures >= opts.MaxConsecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("object store breaker changed state", logger.Data{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			})
			metrics.SetStorageBreakerState(name, stateValue(to))
		},
	})

	return &Guard{next, limiter, breaker}
}

func (g *Guard) List(ctx context.Context, bucket string) ([]Object, error) {
	return g.execute(ctx, func() ([]Object, error) {
		return g.next.List(ctx, bucket)
	})
}

func (g *Guard) Move(ctx context.Context, bucket, from, to string) error {
	_, err := g.execute(ctx, func() ([]Object, error) {
		return nil, g.next.Move(ctx, bucket, from, to)
	})
	return err
}

func (g *Guard) execute(ctx context.Context, fn func() ([]Object, error)) ([]Object, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, errors.WithStack(err)
	}

	objects, err := g.breaker.Execute(fn)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, errors.Wrap(ErrUnavailable, err.Error())
		}
		return nil, err
	}
	return objects, nil
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

// NewFromConfig builds the guarded S3 client the maintenance scripts use.
func NewFromConfig(ctx context.Context, cfg *config.Config) (*Guard, error) {
	if err := cfg.ValidateStorage(); err != nil {
		return nil, errors.WithStack(err)
	}

	s3Client, err := NewS3Client(ctx, cfg)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return NewGuard(s3Client, GuardOptions{
		RequestsPerSecond:      cfg.StorageRequestsPerSecond,
		MaxConsecutiveFailures: cfg.StorageBreakerFailures,
	}), nil
}
