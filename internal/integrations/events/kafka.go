package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// KafkaPublisher публикует события записей в топик Kafka.
// Ключ сообщения - ID записи, поэтому события одной записи попадают в одну партицию по порядку.
type KafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafkaPublisher создает publisher. brokers - список через запятую.
func NewKafkaPublisher(brokers, topic string, writeTimeout time.Duration) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(SplitBrokers(brokers)...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			WriteTimeout:           writeTimeout,
			AllowAutoTopicCreation: true,
		},
	}
}

// Publish отправляет событие
func (p *KafkaPublisher) Publish(ctx context.Context, event AppointmentEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMarshal, err)
	}

	msg := kafka.Message{
		Key:   []byte(event.Appointment.ID),
		Value: payload,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(event.ID)},
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "tenant_id", Value: []byte(event.Appointment.TenantID)},
		},
	}
	msg.Headers = injectTraceHeaders(ctx, msg.Headers)

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("%w: type=%s appointment=%s: %v", ErrPublish, event.Type, event.Appointment.ID, err)
	}
	return nil
}

// Close закрывает writer, дожидаясь отправки буфера
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// SplitBrokers разбирает список брокеров через запятую
func SplitBrokers(raw string) []string {
	var brokers []string
	for _, b := range strings.Split(raw, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// injectTraceHeaders добавляет W3C trace context в заголовки сообщения
func injectTraceHeaders(ctx context.Context, headers []kafka.Header) []kafka.Header {
	carrier := &headerCarrier{headers: headers}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	return carrier.headers
}

type headerCarrier struct {
	headers []kafka.Header
}

var _ propagation.TextMapCarrier = (*headerCarrier)(nil)

func (c *headerCarrier) Get(key string) string {
	for _, h := range c.headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func (c *headerCarrier) Set(key, value string) {
	for i, h := range c.headers {
		if h.Key == key {
			c.headers[i].Value = []byte(value)
			return
		}
	}
	c.headers = append(c.headers, kafka.Header{Key: key, Value: []byte(value)})
}

func (c *headerCarrier) Keys() []string {
	keys := make([]string, 0, len(c.headers))
	for _, h := range c.headers {
		keys = append(keys, h.Key)
	}
	return keys
}
