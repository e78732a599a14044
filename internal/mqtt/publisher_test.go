package mqtt

import (
	"errors"
	"testing"
	"time"

	"NetMonitorAPI/internal/config"
	"NetMonitorAPI/internal/logger"
	"NetMonitorAPI/internal/models"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(logger.Config{Level: logger.ERROR})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func newTestPublisher(t *testing.T) *Publisher {
	t.Helper()
	cfg := &config.MQTTConfig{
		Broker:      "localhost",
		Port:        1883,
		ClientID:    "test",
		TopicPrefix: "netmonitor",
	}
	p, err := NewPublisher(cfg, testLogger(t))
	if err != nil {
		t.Fatalf("NewPublisher: %v", err)
	}
	return p
}

// Handle must only enqueue. Even with no broker connected and the queue
// saturated it has to return immediately so the event fan-out is never
// held up by the publisher.
func TestHandleNeverBlocks(t *testing.T) {
	p := newTestPublisher(t)
	event := models.NewCollectionErrorEvent("r1", errors.New("device unreachable"))

	finished := make(chan struct{})
	go func() {
		defer close(finished)
		for i := 0; i < 10*queueSize; i++ {
			if err := p.Handle(event); err != nil {
				t.Errorf("Handle: %v", err)
				return
			}
		}
	}()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("Handle blocked with a saturated queue")
	}

	if got := len(p.queue); got != queueSize {
		t.Errorf("queued events = %d, want full queue of %d", got, queueSize)
	}
}

func TestHandleQueuesEvent(t *testing.T) {
	p := newTestPublisher(t)

	if err := p.Handle(models.NewAlertAcknowledgedEvent("alert_r1_20260314_100000_system", "operator")); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	select {
	case event := <-p.queue:
		if event.Type != models.EventAlertAcknowledged {
			t.Errorf("queued event type = %q, want %q", event.Type, models.EventAlertAcknowledged)
		}
	default:
		t.Fatal("event was not queued")
	}
}
