package notify_test

import (
	"errors"
	"testing"

	"NetMonitorAPI/internal/logger"
	"NetMonitorAPI/internal/models"
	"NetMonitorAPI/internal/notify"
)

func newFanout(t *testing.T) *notify.Fanout {
	t.Helper()
	log, err := logger.New(logger.Config{Level: logger.ERROR})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return notify.NewFanout(log)
}

func TestBroadcastDeliversToAll(t *testing.T) {
	f := newFanout(t)

	var first, second int
	f.Register(notify.ObserverFunc(func(models.Event) error { first++; return nil }))
	f.Register(notify.ObserverFunc(func(models.Event) error { second++; return nil }))

	f.Broadcast(models.Event{Type: models.EventMetricsUpdate})
	f.Broadcast(models.Event{Type: models.EventMetricsUpdate})

	if first != 2 || second != 2 {
		t.Errorf("deliveries = %d, %d; want 2, 2", first, second)
	}
}

func TestFailingObserverIsDropped(t *testing.T) {
	f := newFanout(t)

	var healthy int
	f.Register(notify.ObserverFunc(func(models.Event) error { healthy++; return nil }))
	f.Register(notify.ObserverFunc(func(models.Event) error { return errors.New("boom") }))

	f.Broadcast(models.Event{Type: models.EventAlert})
	if f.Count() != 1 {
		t.Fatalf("observer count = %d after failure, want 1", f.Count())
	}
	if healthy != 1 {
		t.Errorf("healthy observer missed the event: %d deliveries", healthy)
	}

	// Subsequent broadcasts only reach the survivor.
	f.Broadcast(models.Event{Type: models.EventAlert})
	if healthy != 2 {
		t.Errorf("healthy deliveries = %d, want 2", healthy)
	}
}

func TestUnregister(t *testing.T) {
	f := newFanout(t)

	var count int
	token := f.Register(notify.ObserverFunc(func(models.Event) error { count++; return nil }))
	f.Unregister(token)
	f.Unregister("no-such-token")

	f.Broadcast(models.Event{Type: models.EventAlert})
	if count != 0 {
		t.Errorf("unregistered observer still received %d event(s)", count)
	}
	if f.Count() != 0 {
		t.Errorf("observer count = %d, want 0", f.Count())
	}
}
