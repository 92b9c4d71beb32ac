package events

import (
	"context"
	"testing"
	"time"
)

func TestPublishDuringShutdownDropsInsteadOfPanicking(t *testing.T) {
	// Unroutable broker: nothing should be written in this test anyway.
	p := NewKafkaPublisher([]string{"127.0.0.1:1"}, 4)

	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)
	cancel()
	p.WaitClosed()

	// A handler finishing an in-flight request after shutdown began may
	// still publish. The message is dropped; it must never fail the caller.
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("PublishStatusChange after shutdown panicked: %v", r)
		}
	}()
	p.PublishStatusChange(TopicOrderStatusChanged, StatusChanged{
		EntityID: "order-1", Kind: "ORDER", To: "PENDING",
	})
}

func TestPublishNonBlockingWhenInboxFull(t *testing.T) {
	p := NewKafkaPublisher([]string{"127.0.0.1:1"}, 1)
	// No drain goroutine running: the second publish finds the inbox full
	// and must return immediately.
	ev := StatusChanged{EntityID: "b-1", Kind: "LOGISTICS", To: "CONFIRMED"}

	finished := make(chan struct{})
	go func() {
		p.PublishStatusChange(TopicBookingStatusChanged, ev)
		p.PublishStatusChange(TopicBookingStatusChanged, ev)
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("PublishStatusChange blocked on a full inbox")
	}
}
