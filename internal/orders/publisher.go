package orders

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
)

// DefaultSubject is where placed orders are announced.
const DefaultSubject = "rigbuilder.orders.placed"

// Publisher announces placed orders to downstream systems.
type Publisher interface {
	Publish(ctx context.Context, order Order) error
}

// headerCarrier adapts nats.Msg headers for the OTel TextMapCarrier.
type headerCarrier nats.Msg

func (c *headerCarrier) Get(key string) string {
	if c.Header == nil {
		return ""
	}
	return c.Header.Get(key)
}

func (c *headerCarrier) Set(key, val string) {
	if c.Header == nil {
		c.Header = make(nats.Header)
	}
	c.Header.Set(key, val)
}

func (c *headerCarrier) Keys() []string {
	if c.Header == nil {
		return nil
	}
	keys := make([]string, 0, len(c.Header))
	for k := range c.Header {
		keys = append(keys, k)
	}
	return keys
}

// NATSPublisher publishes orders as JSON on Subject.
type NATSPublisher struct {
	Conn    *nats.Conn
	Subject string
}

// ConnectNATS dials url and returns a publisher for subject.
func ConnectNATS(url, subject string) (*NATSPublisher, error) {
	nc, err := nats.Connect(url, nats.Name("rigbuilder"))
	if err != nil {
		return nil, fmt.Errorf("connect nats %s: %w", url, err)
	}
	if subject == "" {
		subject = DefaultSubject
	}
	return &NATSPublisher{Conn: nc, Subject: subject}, nil
}

// Message builds the NATS message for order, injecting the trace context
// from ctx into its headers.
func (p *NATSPublisher) Message(ctx context.Context, order Order) (*nats.Msg, error) {
	data, err := json.Marshal(order)
	if err != nil {
		return nil, fmt.Errorf("encode order %s: %w", order.ID, err)
	}
	subject := p.Subject
	if subject == "" {
		subject = DefaultSubject
	}
	msg := &nats.Msg{
		Subject: subject,
		Data:    data,
		Header:  nats.Header{},
	}
	msg.Header.Set("Rigbuilder-Order-Id", order.ID)
	otel.GetTextMapPropagator().Inject(ctx, (*headerCarrier)(msg))
	return msg, nil
}

func (p *NATSPublisher) Publish(ctx context.Context, order Order) error {
	if p.Conn == nil {
		return fmt.Errorf("nats connection is not configured")
	}
	msg, err := p.Message(ctx, order)
	if err != nil {
		return err
	}
	if err := p.Conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("publish order %s: %w", order.ID, err)
	}
	if err := p.Conn.Flush(); err != nil {
		return fmt.Errorf("flush order %s: %w", order.ID, err)
	}
	return nil
}

// Close drains the connection.
func (p *NATSPublisher) Close() error {
	if p.Conn == nil {
		return nil
	}
	return p.Conn.Drain()
}
