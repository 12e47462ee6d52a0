package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-marketplace/internal/domain/entity"
	"github.com/oksasatya/go-ddd-marketplace/internal/domain/event"
	"github.com/oksasatya/go-ddd-marketplace/pkg/helpers"
	"github.com/oksasatya/go-ddd-marketplace/pkg/mailer"
	"github.com/oksasatya/go-ddd-marketplace/pkg/mailer/templates"
)

// ErrMalformed marks a message that can never be processed; it is dropped
// instead of requeued.
var ErrMalformed = errors.New("malformed event")

// Indexer is satisfied by search.UserIndex.
type Indexer interface {
	Put(ctx context.Context, doc entity.UserDocument) error
}

// Retrier puts a failed message back on the queue after delay, tagged with
// the attempt number. Satisfied by helpers.RabbitRetrier.
type Retrier interface {
	Retry(ctx context.Context, msgType string, body []byte, attempt int, delay time.Duration) error
}

const DefaultMaxAttempts = 5

// EventHandler reacts to auth events: mails the user and keeps the
// directory index current. Mail or Index may be nil to disable that side.
// Without a Retry route a failed message is dropped on its first failure.
type EventHandler struct {
	Mail        mailer.Sender
	Index       Indexer
	Retry       Retrier
	Brand       templates.Brand
	Logger      *logrus.Logger
	Timeout     time.Duration
	MaxAttempts int
}

func NewEventHandler(mail mailer.Sender, index Indexer, brand templates.Brand, logger *logrus.Logger) *EventHandler {
	if logger == nil {
		logger = logrus.New()
	}
	return &EventHandler{
		Mail:        mail,
		Index:       index,
		Brand:       brand,
		Logger:      logger,
		Timeout:     15 * time.Second,
		MaxAttempts: DefaultMaxAttempts,
	}
}

// Handle processes one message body. Unknown event names are no-ops.
func (h *EventHandler) Handle(ctx context.Context, body []byte) error {
	var e event.Event
	if err := json.Unmarshal(body, &e); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if e.Name == "" || e.UserID == "" {
		return fmt.Errorf("%w: missing name or user id", ErrMalformed)
	}
	if h.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.Timeout)
		defer cancel()
	}

	log := h.Logger.WithFields(logrus.Fields{"event": e.Name, "user_id": e.UserID})
	switch e.Name {
	case event.UserRegistered:
		if err := h.index(ctx, e); err != nil {
			return err
		}
		return h.mail(ctx, e, templates.Welcome)
	case event.UserPasswordChanged:
		return h.mail(ctx, e, templates.PasswordChanged)
	default:
		log.Debug("event ignored")
		return nil
	}
}

func (h *EventHandler) index(ctx context.Context, e event.Event) error {
	if h.Index == nil {
		return nil
	}
	doc := entity.UserDocument{
		ID:        e.UserID,
		Email:     e.Email,
		Name:      e.UserName,
		AvatarURL: e.AvatarURL,
		Role:      e.Role,
		CreatedAt: e.OccurredAt,
	}
	if e.CreatedAt != nil {
		doc.CreatedAt = *e.CreatedAt
	}
	if err := h.Index.Put(ctx, doc); err != nil {
		return fmt.Errorf("index user %s: %w", e.UserID, err)
	}
	return nil
}

func (h *EventHandler) mail(ctx context.Context, e event.Event, tpl string) error {
	if h.Mail == nil || e.Email == "" {
		return nil
	}
	job := mailer.EmailJob{
		To:       e.Email,
		Template: tpl,
		Data:     templates.NewEmailData(h.Brand, e.UserName, e.Email, templates.WithRole(string(e.Role)), templates.WithTime(e.OccurredAt)),
	}
	if err := mailer.Deliver(ctx, h.Mail, job); err != nil {
		return fmt.Errorf("send %s mail: %w", tpl, err)
	}
	return nil
}

// Acknowledger is the part of amqp.Delivery the consumer loop needs.
type Acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

// Message is one delivery as the handler sees it. Attempt counts the
// failures it has already been through.
type Message struct {
	Type    string
	Body    []byte
	Attempt int
}

func messageOf(d amqp.Delivery) Message {
	return Message{Type: d.Type, Body: d.Body, Attempt: helpers.AttemptOf(d.Headers)}
}

// Settle acks a processed message and drops a malformed one. A failed
// message is rescheduled with exponential backoff until MaxAttempts
// tries have been spent, then dropped.
func (h *EventHandler) Settle(ctx context.Context, ack Acknowledger, m Message) {
	err := h.Handle(ctx, m.Body)
	if err == nil {
		_ = ack.Ack(false)
		return
	}
	if errors.Is(err, ErrMalformed) {
		h.Logger.WithError(err).Warn("dropping message")
		_ = ack.Nack(false, false)
		return
	}

	limit := h.MaxAttempts
	if limit <= 0 {
		limit = DefaultMaxAttempts
	}
	next := m.Attempt + 1
	log := h.Logger.WithError(err).WithFields(logrus.Fields{"attempt": next, "max_attempts": limit})
	if next >= limit || h.Retry == nil {
		log.Error("event handling failed, giving up")
		_ = ack.Nack(false, false)
		return
	}
	delay := Backoff(m.Attempt)
	if rerr := h.Retry.Retry(ctx, m.Type, m.Body, next, delay); rerr != nil {
		// the broker keeps the original; it comes back with the same attempt
		log.WithField("retry_error", rerr.Error()).Error("scheduling retry failed, requeueing")
		_ = ack.Nack(false, true)
		return
	}
	log.WithField("delay", delay.String()).Warn("event handling failed, retry scheduled")
	_ = ack.Ack(false)
}

// Consume settles deliveries until the channel closes or ctx is done.
func (h *EventHandler) Consume(ctx context.Context, deliveries <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				return
			}
			h.Settle(ctx, d, messageOf(d))
		}
	}
}
