package rabbitmq

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// BreakerSettings tunes the circuit breaker around a publisher.
type BreakerSettings struct {
	MaxFailures uint32
	Interval    time.Duration
	Timeout     time.Duration
}

// DefaultBreakerSettings trips after five consecutive failures and probes
// again after thirty seconds.
var DefaultBreakerSettings = BreakerSettings{
	MaxFailures: 5,
	Interval:    time.Minute,
	Timeout:     30 * time.Second,
}

type breakerPublisher struct {
	next Publisher
	cb   *gobreaker.CircuitBreaker
}

// WithBreaker stops calling next while the broker keeps failing, so request
// paths do not wait on a dead connection.
func WithBreaker(next Publisher, settings BreakerSettings, log *zap.Logger) Publisher {
	st := gobreaker.Settings{
		Name:        "amqp-publisher",
		MaxRequests: 1,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= settings.MaxFailures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Info("circuit breaker state", zap.String("name", name), zap.String("from", from.String()), zap.String("to", to.String()))
		},
	}
	return &breakerPublisher{next: next, cb: gobreaker.NewCircuitBreaker(st)}
}

func (p *breakerPublisher) Publish(ctx context.Context, routingKey string, event any) error {
	return p.PublishJSON(ctx, routingKey, event, nil)
}

func (p *breakerPublisher) PublishJSON(ctx context.Context, routingKey string, event any, headers map[string]string) error {
	_, err := p.cb.Execute(func() (interface{}, error) {
		return nil, p.next.PublishJSON(ctx, routingKey, event, headers)
	})
	return err
}

func (p *breakerPublisher) Close() error {
	return p.next.Close()
}
