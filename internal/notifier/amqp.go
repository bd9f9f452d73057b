package notifier

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/julianstephens/finlit/internal/constants"
	"github.com/julianstephens/finlit/internal/models"
)

// AMQPPublisher is the slice of *amqp.Channel the sink uses.
type AMQPPublisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// AMQPSink hands reminders to a topic exchange, typically consumed by an
// email worker for the email channel.
type AMQPSink struct {
	pub        AMQPPublisher
	exchange   string
	routingKey string
	closers    []func() error
}

func NewAMQPSink(pub AMQPPublisher, exchange, routingKey string) *AMQPSink {
	if exchange == "" {
		exchange = constants.DefaultAMQPExchange
	}
	if routingKey == "" {
		routingKey = constants.DefaultAMQPRoutingKey
	}
	return &AMQPSink{pub: pub, exchange: exchange, routingKey: routingKey}
}

func sanitizeAMQPURL(raw string) (string, error) {
	clean := strings.Trim(strings.TrimSpace(raw), "\"'")
	u, err := url.Parse(clean)
	if err != nil {
		return "", err
	}
	if u.Scheme != "amqp" && u.Scheme != "amqps" {
		return "", errors.New("AMQP scheme must be either 'amqp://' or 'amqps://'")
	}
	return clean, nil
}

// DialAMQP connects, opens a channel and declares the durable topic
// exchange. Close releases both.
func DialAMQP(rawURL, exchange, routingKey string) (*AMQPSink, error) {
	clean, err := sanitizeAMQPURL(rawURL)
	if err != nil {
		return nil, err
	}
	conn, err := amqp.Dial(clean)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to AMQP broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open AMQP channel: %w", err)
	}

	sink := NewAMQPSink(ch, exchange, routingKey)
	if err := ch.ExchangeDeclare(sink.exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", sink.exchange, err)
	}
	sink.closers = []func() error{ch.Close, conn.Close}
	return sink, nil
}

func (s *AMQPSink) Notify(ctx context.Context, r models.Reminder) error {
	body, err := NewEvent(r).Marshal()
	if err != nil {
		return err
	}
	err = s.pub.PublishWithContext(ctx, s.exchange, s.routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    r.ID,
		Type:         constants.NotificationEvent,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("amqp publish to %s: %w", s.exchange, err)
	}
	return nil
}

func (s *AMQPSink) Close() error {
	var errs []error
	for _, c := range s.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
