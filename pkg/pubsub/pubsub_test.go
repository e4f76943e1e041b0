package pubsub

import (
	"sync"
	"testing"
	"time"
)

func TestPubSub_ConcurrentSubscribeUnsubscribe(t *testing.T) {
	ps := NewMemoryPubSub()
	defer ps.Close()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				sub, err := ps.Subscribe("healthcheck", func(msg []byte) {})
				if err != nil {
					t.Errorf("Subscribe: %v", err)
					return
				}
				ps.Publish("healthcheck", []byte("tick"))
				if err := sub.Unsubscribe(); err != nil {
					t.Errorf("Unsubscribe: %v", err)
				}
			}
		}()
	}
	wg.Wait()

	if n := ps.SubscriberCount("healthcheck"); n != 0 {
		t.Errorf("expected no subscribers, got %d", n)
	}
	if ps.TopicCount() != 0 {
		t.Errorf("empty topics should be removed, got %d", ps.TopicCount())
	}
}

func TestPubSub_CloseWhilePublishing(t *testing.T) {
	ps := NewMemoryPubSub()

	var subs []Subscription
	for i := 0; i < 20; i++ {
		sub, err := ps.Subscribe("topic", func(msg []byte) {})
		if err != nil {
			t.Fatalf("Subscribe: %v", err)
		}
		subs = append(subs, sub)
	}

	stop := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
					ps.Publish("topic", []byte("message"))
				}
			}
		}()
	}

	time.Sleep(10 * time.Millisecond)
	ps.Close()
	close(stop)
	wg.Wait()

	for _, sub := range subs {
		sub.Unsubscribe()
	}
	if err := ps.Publish("topic", nil); err != ErrPubSubClosed {
		t.Errorf("expected ErrPubSubClosed, got %v", err)
	}
	if _, err := ps.Subscribe("topic", func([]byte) {}); err != ErrPubSubClosed {
		t.Errorf("expected ErrPubSubClosed, got %v", err)
	}
}

func TestPubSub_DoubleUnsubscribe(t *testing.T) {
	ps := NewMemoryPubSub()
	defer ps.Close()

	sub, err := ps.Subscribe("topic", func(msg []byte) {})
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := sub.Unsubscribe(); err != nil {
			t.Errorf("Unsubscribe %d: %v", i, err)
		}
	}
}

func TestPubSub_MessageDelivery(t *testing.T) {
	ps := NewMemoryPubSub()
	defer ps.Close()

	received := make(chan string, 10)
	sub, _ := ps.Subscribe("topic", func(msg []byte) {
		received <- string(msg)
	})
	defer sub.Unsubscribe()

	messages := []string{"msg1", "msg2", "msg3"}
	for _, msg := range messages {
		ps.Publish("topic", []byte(msg))
	}

	for i, expected := range messages {
		select {
		case got := <-received:
			if got != expected {
				t.Errorf("message %d: got %q, want %q", i, got, expected)
			}
		case <-time.After(time.Second):
			t.Fatalf("timeout waiting for message %d", i)
		}
	}
}

func TestPubSub_PanickingHandlerKeepsSubscription(t *testing.T) {
	ps := NewMemoryPubSub()
	defer ps.Close()

	received := make(chan string, 2)
	sub, _ := ps.Subscribe("topic", func(msg []byte) {
		if string(msg) == "bad" {
			panic("bad message")
		}
		received <- string(msg)
	})
	defer sub.Unsubscribe()

	ps.Publish("topic", []byte("bad"))
	ps.Publish("topic", []byte("good"))

	select {
	case got := <-received:
		if got != "good" {
			t.Errorf("expected good, got %q", got)
		}
	case <-time.After(time.Second):
		t.Fatal("subscription died after a panic")
	}
}

func TestPubSub_DropsWhenFull(t *testing.T) {
	ps := NewMemoryPubSub()
	defer ps.Close()

	block := make(chan struct{})
	sub, _ := ps.Subscribe("topic", func(msg []byte) { <-block })
	defer sub.Unsubscribe()
	defer close(block)

	for i := 0; i < DefaultBufferSize+10; i++ {
		ps.Publish("topic", []byte("x"))
	}
	if ps.Dropped() == 0 {
		t.Error("expected dropped messages on a full subscriber")
	}
}

type snapshot struct {
	Avg string `msgpack:"avg"`
	P95 string `msgpack:"p95"`
}

func TestTypedPublishSubscribe(t *testing.T) {
	ps := NewMemoryPubSub()
	defer ps.Close()

	got := make(chan snapshot, 1)
	sub, err := Subscribe(ps, "healthcheck", func(s snapshot) { got <- s })
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer sub.Unsubscribe()

	ps.Publish("healthcheck", []byte{0xc1}) // not msgpack, skipped
	if err := Publish(ps, "healthcheck", snapshot{Avg: "80", P95: "120"}); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	select {
	case s := <-got:
		if s.Avg != "80" || s.P95 != "120" {
			t.Errorf("unexpected snapshot %+v", s)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for snapshot")
	}
}

func BenchmarkPubSub_Publish(b *testing.B) {
	ps := NewMemoryPubSub()
	defer ps.Close()

	for i := 0; i < 100; i++ {
		ps.Subscribe("bench-topic", func(msg []byte) {})
	}
	msg := []byte("benchmark message payload")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ps.Publish("bench-topic", msg)
	}
}
