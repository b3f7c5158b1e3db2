// pkg/event/event_test.go
package event

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestBus_PublishReachesSubscriber(t *testing.T) {
	bus := New()

	var (
		mu  sync.Mutex
		got []any
	)
	done := make(chan struct{})

	bus.Subscribe(ModuleExecuted, func(ctx context.Context, data any) {
		mu.Lock()
		got = append(got, data)
		mu.Unlock()
		close(done)
	})

	bus.Publish(context.Background(), ModuleExecuted, "port_scanner")

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handler was not invoked")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 || got[0] != "port_scanner" {
		t.Errorf("expected one event with payload, got %v", got)
	}
}

func TestBus_PublishWithoutSubscribersIsNoop(t *testing.T) {
	bus := New()
	// Must not panic or block.
	bus.Publish(context.Background(), SessionCreated, nil)
}

func TestBus_MultipleSubscribers(t *testing.T) {
	bus := New()

	var wg sync.WaitGroup
	wg.Add(2)
	bus.Subscribe(ConfigReloaded, func(ctx context.Context, data any) { wg.Done() })
	bus.Subscribe(ConfigReloaded, func(ctx context.Context, data any) { wg.Done() })

	bus.Publish(context.Background(), ConfigReloaded, nil)

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("not all handlers were invoked")
	}
}
