package websocket

import (
	"context"
	"testing"
	"time"

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

func runHub(t *testing.T) (*Hub, context.CancelFunc, chan struct{}) {
	t.Helper()
	hub := NewHub(testLogger(t))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()
	return hub, cancel, done
}

func TestHubDeliversBroadcastToClients(t *testing.T) {
	hub, cancel, done := runHub(t)
	defer func() {
		cancel()
		<-done
	}()

	client := &Client{hub: hub, send: make(chan models.Event, 4)}
	if !hub.add(client) {
		t.Fatal("running hub rejected a client")
	}

	if err := hub.Handle(models.NewMetricsUpdateEvent("r1", models.CycleSummary{InterfaceCount: 2})); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	select {
	case event := <-client.send:
		if event.Type != models.EventMetricsUpdate || event.DeviceID != "r1" {
			t.Errorf("unexpected event: %+v", event)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("event never reached the client")
	}
}

func TestHubRejectsClientsAfterShutdown(t *testing.T) {
	hub, cancel, done := runHub(t)
	cancel()
	<-done

	client := &Client{hub: hub, send: make(chan models.Event, 1)}

	added := make(chan bool, 1)
	go func() { added <- hub.add(client) }()
	select {
	case ok := <-added:
		if ok {
			t.Fatal("client accepted after shutdown")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("add blocked after shutdown")
	}

	removed := make(chan struct{})
	go func() {
		hub.remove(client)
		close(removed)
	}()
	select {
	case <-removed:
	case <-time.After(2 * time.Second):
		t.Fatal("remove blocked after shutdown")
	}
}

func TestHubShutdownClosesClientSends(t *testing.T) {
	hub, cancel, done := runHub(t)

	client := &Client{hub: hub, send: make(chan models.Event, 1)}
	if !hub.add(client) {
		t.Fatal("running hub rejected a client")
	}

	cancel()
	<-done

	select {
	case _, ok := <-client.send:
		if ok {
			t.Fatal("expected send channel closed, got an event")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("send channel not closed on shutdown")
	}
}
