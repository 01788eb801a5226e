// infrastructure/rabbitmq_broker.go
package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/vitovidale/video-recognition-service/domain"
)

const (
	DefaultEventsQueue = "video_recognition_events"
	DefaultJobsQueue   = "video_recognition_jobs"
)

// amqpChannel is the part of *amqp.Channel the broker uses.
type amqpChannel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
	Close() error
}

// RabbitMQBroker publishes pipeline events and carries queued recognition jobs.
type RabbitMQBroker struct {
	openChannel func() (amqpChannel, error)
	EventsQueue string
	JobsQueue   string
	Logger      *zap.Logger
}

func NewRabbitMQBroker(conn *amqp.Connection, eventsQueue, jobsQueue string, logger *zap.Logger) *RabbitMQBroker {
	return newRabbitMQBroker(func() (amqpChannel, error) { return conn.Channel() }, eventsQueue, jobsQueue, logger)
}

func newRabbitMQBroker(open func() (amqpChannel, error), eventsQueue, jobsQueue string, logger *zap.Logger) *RabbitMQBroker {
	if eventsQueue == "" {
		eventsQueue = DefaultEventsQueue
	}
	if jobsQueue == "" {
		jobsQueue = DefaultJobsQueue
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RabbitMQBroker{
		openChannel: open,
		EventsQueue: eventsQueue,
		JobsQueue:   jobsQueue,
		Logger:      logger.With(zap.String("component", "rabbitmq")),
	}
}

func declareQueue(ch amqpChannel, name string) (amqp.Queue, error) {
	return ch.QueueDeclare(
		name,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
}

func (b *RabbitMQBroker) publish(ctx context.Context, queue, messageID string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	ch, err := b.openChannel()
	if err != nil {
		return fmt.Errorf("failed to open a channel: %w", err)
	}
	defer ch.Close()

	q, err := declareQueue(ch, queue)
	if err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", queue, err)
	}
	err = ch.PublishWithContext(ctx, "", q.Name, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    messageID,
		Timestamp:    time.Now(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish to %s: %w", queue, err)
	}
	return nil
}

func (b *RabbitMQBroker) PublishVideoProcessed(ctx context.Context, event domain.VideoProcessedEvent) error {
	if err := b.publish(ctx, b.EventsQueue, event.ID, event); err != nil {
		return err
	}
	b.Logger.Debug("sent video processed event", zap.String("id", event.ID), zap.String("file", event.OriginalFilename))
	return nil
}

func (b *RabbitMQBroker) PublishRecognitionJob(ctx context.Context, job domain.RecognitionJob) error {
	if err := b.publish(ctx, b.JobsQueue, job.ID, job); err != nil {
		return err
	}
	b.Logger.Info("queued recognition job", zap.String("id", job.ID), zap.String("reference", job.Reference))
	return nil
}

// ConsumeRecognitionJobs handles jobs until ctx ends or the delivery channel
// closes. Malformed and failed jobs are dropped rather than requeued.
func (b *RabbitMQBroker) ConsumeRecognitionJobs(ctx context.Context, handler func(context.Context, domain.RecognitionJob) error) error {
	ch, err := b.openChannel()
	if err != nil {
		return fmt.Errorf("failed to open a channel for consumer: %w", err)
	}
	defer ch.Close()

	q, err := declareQueue(ch, b.JobsQueue)
	if err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", b.JobsQueue, err)
	}
	msgs, err := ch.Consume(
		q.Name, // queue
		"",     // consumer
		false,  // auto-ack
		false,  // exclusive
		false,  // no-local
		false,  // no-wait
		nil,    // args
	)
	if err != nil {
		return fmt.Errorf("failed to register a consumer: %w", err)
	}

	b.Logger.Info("waiting for recognition jobs", zap.String("queue", q.Name))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return nil
			}
			b.handleDelivery(ctx, d, handler)
		}
	}
}

func (b *RabbitMQBroker) handleDelivery(ctx context.Context, d amqp.Delivery, handler func(context.Context, domain.RecognitionJob) error) {
	var job domain.RecognitionJob
	if err := json.Unmarshal(d.Body, &job); err != nil {
		b.Logger.Error("failed to unmarshal recognition job", zap.Error(err))
		_ = d.Nack(false, false)
		return
	}
	if err := handler(ctx, job); err != nil {
		b.Logger.Error("recognition job failed", zap.String("id", job.ID), zap.Error(err))
		_ = d.Nack(false, false)
		return
	}
	_ = d.Ack(false)
}
