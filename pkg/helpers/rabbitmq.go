package helpers

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// RabbitPublisher publishes JSON messages to one durable queue through the
// default exchange. amqp channels are not safe for concurrent publishing, so
// publishes are serialised.
type RabbitPublisher struct {
	mu    sync.Mutex
	conn  *amqp.Connection
	ch    *amqp.Channel
	Queue string
}

// DialRabbit opens a connection and channel and declares queue as durable.
func DialRabbit(url, queue string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	if _, err := ch.QueueDeclare(
		queue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, nil, err
	}
	return conn, ch, nil
}

func NewRabbitPublisher(url, queue string) (*RabbitPublisher, error) {
	conn, ch, err := DialRabbit(url, queue)
	if err != nil {
		return nil, err
	}
	return &RabbitPublisher{conn: conn, ch: ch, Queue: queue}, nil
}

func (p *RabbitPublisher) Close() {
	if p == nil {
		return
	}
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}

// PublishJSON publishes a persistent JSON message; msgType is copied into the
// AMQP type property so consumers can route without decoding.
func (p *RabbitPublisher) PublishJSON(ctx context.Context, msgType string, body any) error {
	if p == nil || p.ch == nil {
		return errors.New("rabbitmq publisher not connected")
	}
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ch.PublishWithContext(ctx,
		"",      // default exchange
		p.Queue, // routing key = queue
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Type:         msgType,
			Timestamp:    time.Now().UTC(),
			Body:         b,
		},
	)
}

// AttemptHeader carries how many times a message has already failed.
const AttemptHeader = "x-attempt"

// RetryQueueName is the holding queue for queue's delayed retries.
func RetryQueueName(queue string) string { return queue + ".retry" }

// DeclareRetryQueue declares the holding queue for queue. Messages wait there
// until their per-message TTL runs out and are then dead-lettered back to
// queue through the default exchange.
func DeclareRetryQueue(ch *amqp.Channel, queue string) error {
	_, err := ch.QueueDeclare(
		RetryQueueName(queue),
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		amqp.Table{
			"x-dead-letter-exchange":    "",
			"x-dead-letter-routing-key": queue,
		},
	)
	return err
}

// RabbitRetrier republishes failed messages into the retry queue with a
// delay and the next attempt number.
type RabbitRetrier struct {
	mu    sync.Mutex
	ch    *amqp.Channel
	Queue string
}

func NewRabbitRetrier(ch *amqp.Channel, queue string) (*RabbitRetrier, error) {
	if err := DeclareRetryQueue(ch, queue); err != nil {
		return nil, err
	}
	return &RabbitRetrier{ch: ch, Queue: queue}, nil
}

func (r *RabbitRetrier) Retry(ctx context.Context, msgType string, body []byte, attempt int, delay time.Duration) error {
	if r == nil || r.ch == nil {
		return errors.New("rabbitmq retrier not connected")
	}
	ttl := delay.Milliseconds()
	if ttl < 1 {
		ttl = 1
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ch.PublishWithContext(ctx,
		"",
		RetryQueueName(r.Queue),
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Type:         msgType,
			Timestamp:    time.Now().UTC(),
			Expiration:   strconv.FormatInt(ttl, 10),
			Headers:      amqp.Table{AttemptHeader: int32(attempt)},
			Body:         body,
		},
	)
}

// AttemptOf reads AttemptHeader from delivery headers; missing or
// unreadable values count as zero.
func AttemptOf(h amqp.Table) int {
	switch v := h[AttemptHeader].(type) {
	case int32:
		return int(v)
	case int64:
		return int(v)
	case int:
		return v
	case int16:
		return int(v)
	case int8:
		return int(v)
	case uint8:
		return int(v)
	default:
		return 0
	}
}
