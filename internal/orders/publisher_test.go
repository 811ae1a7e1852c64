package orders

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

func TestHeaderCarrier(t *testing.T) {
	msg := &nats.Msg{}
	carrier := (*headerCarrier)(msg)

	assert.Empty(t, carrier.Get("traceparent"))
	assert.Nil(t, carrier.Keys())

	carrier.Set("traceparent", "00-abc-def-01")
	assert.Equal(t, "00-abc-def-01", carrier.Get("traceparent"))
	assert.Len(t, carrier.Keys(), 1)
}

func TestMessageCarriesOrderAndTraceContext(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})

	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	p := &NATSPublisher{}
	order := Order{ID: "order-1", Customer: Customer{Name: "Dana"}}
	msg, err := p.Message(ctx, order)
	require.NoError(t, err)

	assert.Equal(t, DefaultSubject, msg.Subject)
	assert.Equal(t, "order-1", msg.Header.Get("Rigbuilder-Order-Id"))
	assert.Equal(t, "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01", msg.Header.Get("traceparent"))

	var decoded Order
	require.NoError(t, json.Unmarshal(msg.Data, &decoded))
	assert.Equal(t, order.ID, decoded.ID)
	assert.Equal(t, "Dana", decoded.Customer.Name)
}

func TestPublishWithoutConnection(t *testing.T) {
	t.Parallel()

	p := &NATSPublisher{Subject: "custom.subject"}
	require.Error(t, p.Publish(context.Background(), Order{ID: "x"}))
	assert.NoError(t, p.Close())
}
