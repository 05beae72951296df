package service

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/Akashgupta-1920/DivyaAnjani/internal/config"
	"github.com/Akashgupta-1920/DivyaAnjani/internal/model"
	"github.com/Akashgupta-1920/DivyaAnjani/internal/queue"
)

// AuditPublisher sends admin audit events to RabbitMQ.  Each publish dials
// its own connection; admin traffic is low and this keeps no shared state.
type AuditPublisher struct {
	url   string
	queue string
}

func NewAuditPublisher(cfg config.AMQPConfig) *AuditPublisher {
	return &AuditPublisher{url: cfg.URL, queue: cfg.AuditQueue}
}

// Publish writes one persistent message to the durable audit queue.
func (p *AuditPublisher) Publish(ctx context.Context, ev queue.AuditEvent) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer func() { _ = ch.Close() }()

	// Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
}

// EventPublisher is anything that can ship an audit event.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.AuditEvent) error
}

// AuditRecorder logs every admin action and forwards it to the publisher
// when one is configured.  Recording never blocks or fails the request.
type AuditRecorder struct {
	pub     EventPublisher
	timeout time.Duration
	log     *zerolog.Logger
}

// NewAuditRecorder accepts a nil publisher; entries are then only logged.
func NewAuditRecorder(pub EventPublisher, log *zerolog.Logger) *AuditRecorder {
	return &AuditRecorder{pub: pub, timeout: 3 * time.Second, log: log}
}

func (r *AuditRecorder) Record(e model.AuditEntry) {
	r.log.Info().
		Str("actor_id", e.ActorID).
		Str("actor_email", e.ActorEmail).
		Str("method", e.Method).
		Str("path", e.Path).
		Str("ip", e.RemoteIP).
		Time("at", e.OccurredAt).
		Msg("admin action")
	if r.pub == nil {
		return
	}
	ev := queue.NewAuditEvent(e)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()
		if err := r.pub.Publish(ctx, ev); err != nil {
			r.log.Warn().Err(err).Str("path", ev.Path).Msg("audit publish failed")
		}
	}()
}
