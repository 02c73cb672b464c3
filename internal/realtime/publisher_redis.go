package realtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	dErrors "idreclaim/pkg/domainerrors"
)

var (
	publishesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "idreclaim_realtime_publishes_total",
		Help: "Realtime publish attempts by outcome",
	}, []string{"outcome"})

	publishDurationMs = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "idreclaim_realtime_publish_duration_ms",
		Help:    "Latency of realtime publishes in milliseconds",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25},
	})
)

// envelope is the wire format subscribers decode: the event name plus its
// JSON payload.
type envelope struct {
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}

// RedisPublisher delivers events over Redis pub/sub. Each logical channel
// maps 1:1 to a Redis channel; the bridge that feeds browsers subscribes on
// the other side.
type RedisPublisher struct {
	client *redis.Client
}

func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client}
}

// Publish implements Publisher.
func (p *RedisPublisher) Publish(ctx context.Context, channel, event string, payload any) error {
	start := time.Now()
	defer func() {
		publishDurationMs.Observe(float64(time.Since(start).Microseconds()) / 1000.0)
	}()

	body, err := json.Marshal(envelope{Event: event, Payload: payload})
	if err != nil {
		publishesTotal.WithLabelValues("marshal_error").Inc()
		return dErrors.Wrap(err, dErrors.CodeDelivery, "encode realtime event")
	}

	if err := p.client.Publish(ctx, channel, body).Err(); err != nil {
		publishesTotal.WithLabelValues("error").Inc()
		return dErrors.Wrap(err, dErrors.CodeDelivery, "publish realtime event")
	}

	publishesTotal.WithLabelValues("ok").Inc()
	return nil
}
