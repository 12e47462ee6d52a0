package messaging

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-marketplace/internal/domain/event"
)

// JSONPublisher is satisfied by helpers.RabbitPublisher.
type JSONPublisher interface {
	PublishJSON(ctx context.Context, msgType string, body any) error
}

// BrokerPublisher puts domain events on the message broker.
type BrokerPublisher struct {
	Out JSONPublisher
}

func NewBrokerPublisher(out JSONPublisher) *BrokerPublisher {
	return &BrokerPublisher{Out: out}
}

func (p *BrokerPublisher) Publish(ctx context.Context, e event.Event) error {
	return p.Out.PublishJSON(ctx, string(e.Name), e)
}

// LogPublisher writes events to the application log. Used when no broker is
// configured, and alongside the broker for an audit trail.
type LogPublisher struct {
	Logger *logrus.Logger
}

func NewLogPublisher(logger *logrus.Logger) *LogPublisher {
	return &LogPublisher{Logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, e event.Event) error {
	p.Logger.WithFields(logrus.Fields{
		"event":   e.Name,
		"user_id": e.UserID,
		"email":   e.Email,
		"role":    e.Role,
	}).Info("domain event")
	return nil
}

// Fanout delivers every event to all publishers, even when some fail.
type Fanout []event.Publisher

func (f Fanout) Publish(ctx context.Context, e event.Event) error {
	var errs []error
	for _, p := range f {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var (
	_ event.Publisher = (*BrokerPublisher)(nil)
	_ event.Publisher = (*LogPublisher)(nil)
	_ event.Publisher = Fanout(nil)
)
