package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	coreport "github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/core"
	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/notifier"
	"github.com/amirhossein-jamali/payment-reconciler/internal/infrastructure/config"
	kgo "github.com/segmentio/kafka-go"
)

// EventPaymentConfirmed is the type of every event published on the topic
const EventPaymentConfirmed = "payment.confirmed"

const defaultPublishTimeout = 3 * time.Second

// messageWriter is the part of *kafka.Writer the publisher uses
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kgo.Message) error
	Close() error
}

// ConfirmationEvent is the JSON value of a payment.confirmed message
type ConfirmationEvent struct {
	Event         string    `json:"event"`
	OrderID       uint64    `json:"order_id"`
	UserID        uint64    `json:"user_id"`
	CorrelationID string    `json:"correlation_id"`
	Method        string    `json:"method"`
	ReceiptRef    string    `json:"receipt_ref,omitempty"`
	Amount        string    `json:"amount"`
	Simulated     bool      `json:"simulated"`
	ConfirmedAt   time.Time `json:"confirmed_at"`
}

// KafkaPublisher publishes one event per completed order, keyed by order id
type KafkaPublisher struct {
	writer  messageWriter
	timeout time.Duration
	clock   coreport.TimeProvider
	logger  coreport.Logger
}

var _ notifier.Notifier = (*KafkaPublisher)(nil)

// NewKafkaPublisher creates a publisher writing to cfg.Topic
func NewKafkaPublisher(cfg config.KafkaConfig, clock coreport.TimeProvider, logger coreport.Logger) (*KafkaPublisher, error) {
	brokers := splitBrokers(cfg.Brokers)
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka notifier: no brokers configured")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("kafka notifier: topic is required")
	}

	writer := &kgo.Writer{
		Addr:         kgo.TCP(brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kgo.Hash{},
		RequiredAcks: kgo.RequireOne,
	}
	return newKafkaPublisher(writer, clock, logger), nil
}

func newKafkaPublisher(writer messageWriter, clock coreport.TimeProvider, logger coreport.Logger) *KafkaPublisher {
	return &KafkaPublisher{writer: writer, timeout: defaultPublishTimeout, clock: clock, logger: logger}
}

// PaymentConfirmed publishes the confirmation event
func (p *KafkaPublisher) PaymentConfirmed(ctx context.Context, confirmation notifier.PaymentConfirmation) error {
	event := newConfirmationEvent(confirmation)
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode confirmation event: %w", err)
	}

	ctx, cancel := p.clock.WithTimeout(ctx, coreport.Duration(p.timeout))
	defer cancel()

	err = p.writer.WriteMessages(ctx, kgo.Message{
		Key:   []byte(strconv.FormatUint(event.OrderID, 10)),
		Value: value,
		Time:  p.clock.Now(),
	})
	if err != nil {
		return fmt.Errorf("publish confirmation event: %w", err)
	}

	p.logger.Debug("Payment confirmation published", map[string]any{
		"order_id":       event.OrderID,
		"correlation_id": event.CorrelationID,
	})
	return nil
}

// Close flushes pending writes
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func newConfirmationEvent(c notifier.PaymentConfirmation) ConfirmationEvent {
	event := ConfirmationEvent{
		Event:         EventPaymentConfirmed,
		CorrelationID: c.CorrelationID,
		Method:        string(c.Method),
		ReceiptRef:    c.ReceiptRef,
		Amount:        c.Amount.String(),
		Simulated:     c.Simulated,
		ConfirmedAt:   c.ConfirmedAt.UTC(),
	}
	if c.Order != nil {
		event.OrderID = c.Order.ID
		event.UserID = c.Order.UserID
	}
	return event
}

// splitBrokers accepts a list whose entries may themselves be comma separated
func splitBrokers(entries []string) []string {
	var brokers []string
	for _, entry := range entries {
		for _, broker := range strings.Split(entry, ",") {
			if broker = strings.TrimSpace(broker); broker != "" {
				brokers = append(brokers, broker)
			}
		}
	}
	return brokers
}
