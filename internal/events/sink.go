package events

import (
	log "github.com/sirupsen/logrus"
)

// Publisher is the queue-publishing side the sink needs; satisfied by
// config.Publisher.
type Publisher interface {
	Publish(queueName string, message interface{}) error
}

// QueueSink publishes every event envelope to one RabbitMQ queue. Errors are
// logged and swallowed: events are observability, not correctness.
type QueueSink struct {
	publisher Publisher
	queue     string
}

func NewQueueSink(publisher Publisher, queue string) *QueueSink {
	return &QueueSink{publisher: publisher, queue: queue}
}

func (s *QueueSink) Emit(event string, timestamp int64, payload interface{}) {
	envelope := Envelope{Event: event, Timestamp: timestamp, Payload: payload}
	if err := s.publisher.Publish(s.queue, envelope); err != nil {
		log.Warnf("Failed to publish event %s: %v", event, err)
	}
}
