package events

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
)

// Publisher is the event sink services write to. Publishing is
// fire-and-forget; a broken broker never fails a request.
type Publisher interface {
	PublishStatusChange(topic string, ev StatusChanged)
}

// NopPublisher drops everything. Used when KAFKA_BROKERS is unset and in
// tests that do not assert on events.
type NopPublisher struct{}

func (NopPublisher) PublishStatusChange(string, StatusChanged) {}

// KafkaPublisher buffers messages in an inbox channel and drains it from a
// single goroutine, flushing the remainder on shutdown. The inbox is never
// closed: handlers may still publish while the HTTP server drains in-flight
// requests, so shutdown is signalled through done and late messages are
// dropped instead.
type KafkaPublisher struct {
	w       *kafka.Writer
	inbox   chan kafka.Message
	done    chan struct{}
	closeCh chan struct{}
}

func NewKafkaPublisher(brokers []string, buf int) *KafkaPublisher {
	return &KafkaPublisher{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Async:        true,
		},
		inbox:   make(chan kafka.Message, buf),
		done:    make(chan struct{}),
		closeCh: make(chan struct{}),
	}
}

// Start drains the inbox until ctx is cancelled, then flushes what is left.
func (p *KafkaPublisher) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				close(p.done)
				for {
					select {
					case m := <-p.inbox:
						if err := p.w.WriteMessages(context.Background(), m); err != nil {
							log.Printf("events: flush write failed: %v", err)
						}
					default:
						_ = p.w.Close()
						close(p.closeCh)
						return
					}
				}
			case m := <-p.inbox:
				if err := p.w.WriteMessages(context.Background(), m); err != nil {
					log.Printf("events: write failed: %v", err)
				}
			}
		}
	}()
}

func (p *KafkaPublisher) PublishStatusChange(topic string, ev StatusChanged) {
	env, err := newEnvelope(topic, ev.EntityID, ev)
	if err != nil {
		log.Printf("events: marshal payload failed: %v", err)
		return
	}
	value, err := json.Marshal(env)
	if err != nil {
		log.Printf("events: marshal envelope failed: %v", err)
		return
	}
	select {
	case <-p.done:
		// Shutdown already started; the drain goroutine may be gone.
		log.Printf("events: shutting down, dropping %s for %s", topic, ev.EntityID)
		return
	default:
	}
	select {
	case p.inbox <- kafka.Message{
		Topic: topic,
		Key:   []byte(ev.EntityID),
		Value: value,
		Time:  time.Now(),
	}:
	default:
		// Inbox full: drop rather than block the request path.
		log.Printf("events: inbox full, dropping %s for %s", topic, ev.EntityID)
	}
}

// WaitClosed blocks until the drain goroutine has flushed and exited.
func (p *KafkaPublisher) WaitClosed() { <-p.closeCh }
