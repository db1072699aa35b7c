package queue

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestInMemoryPublishConsume(t *testing.T) {
	q := NewInMemory(4)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	evt := SubmittedEvent{
		EventID:           "evt-1",
		JustificationCode: "J1",
		StudentCode:       "STU-1",
		AbsenceCodes:      []string{"ABS-1", "ABS-2"},
		FileCount:         2,
		SubmittedAt:       time.Now().UTC(),
	}
	msg, err := NewSubmittedMessage(evt)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := q.Publish(ctx, msg); err != nil {
		t.Fatalf("publish: %v", err)
	}

	messages, err := q.Consume(ctx)
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	select {
	case got := <-messages:
		if got.Type != TypeJustificationSubmitted {
			t.Errorf("type: got %q", got.Type)
		}
		decoded, err := DecodeSubmitted(got)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if decoded.JustificationCode != "J1" || len(decoded.AbsenceCodes) != 2 {
			t.Errorf("event content: %+v", decoded)
		}
	case <-ctx.Done():
		t.Fatal("expected a message")
	}
}

func TestInMemoryConsumeStopsOnCancel(t *testing.T) {
	q := NewInMemory(1)
	ctx, cancel := context.WithCancel(context.Background())

	messages, err := q.Consume(ctx)
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	cancel()

	select {
	case _, open := <-messages:
		if open {
			t.Fatal("expected closed channel after cancel")
		}
	case <-time.After(time.Second):
		t.Fatal("consume channel did not close")
	}
}

func TestRedisQueuePublishConsume(t *testing.T) {
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	q := NewRedisQueue(client, "test:events")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	msg, err := NewSubmittedMessage(SubmittedEvent{JustificationCode: "J1", StudentCode: "STU-1"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := q.Publish(ctx, msg); err != nil {
		t.Fatalf("publish: %v", err)
	}

	messages, err := q.Consume(ctx)
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	select {
	case got := <-messages:
		decoded, err := DecodeSubmitted(got)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if decoded.JustificationCode != "J1" {
			t.Errorf("event content: %+v", decoded)
		}
	case <-ctx.Done():
		t.Fatal("expected a message from redis")
	}
}

// A dead redis connection must not spin the consume loop and must still
// honor cancellation promptly.
func TestRedisQueueConsumeStopsWhenRedisDown(t *testing.T) {
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	s.Close()

	q := NewRedisQueue(client, "test:events")
	ctx, cancel := context.WithCancel(context.Background())

	messages, err := q.Consume(ctx)
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	cancel()

	select {
	case _, open := <-messages:
		if open {
			t.Fatal("expected closed channel after cancel")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("consume loop did not stop while redis was down")
	}
}
