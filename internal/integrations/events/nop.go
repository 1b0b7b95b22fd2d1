package events

import "context"

// NopPublisher используется, когда Kafka отключена в конфигурации
type NopPublisher struct{}

// NewNopPublisher создает publisher, который ничего не отправляет
func NewNopPublisher() *NopPublisher {
	return &NopPublisher{}
}

// Publish ничего не делает
func (NopPublisher) Publish(context.Context, AppointmentEvent) error {
	return nil
}

// Close ничего не делает
func (NopPublisher) Close() error {
	return nil
}
