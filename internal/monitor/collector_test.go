package monitor_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"NetMonitorAPI/internal/device"
	"NetMonitorAPI/internal/logger"
	"NetMonitorAPI/internal/models"
	"NetMonitorAPI/internal/monitor"
)

// fakeSource is a scripted TelemetrySource for collector and supervisor
// tests. Any nil error field returns the canned payload.
type fakeSource struct {
	interfaces   []models.InterfaceMetric
	peers        []models.BGPMetric
	system       *models.SystemMetric
	interfaceErr error
	peerErr      error
	systemErr    error
}

func (f *fakeSource) FetchInterfaces(ctx context.Context, deviceID string, access device.Access) ([]models.InterfaceMetric, error) {
	if f.interfaceErr != nil {
		return nil, f.interfaceErr
	}
	return f.interfaces, nil
}

func (f *fakeSource) FetchBGPPeers(ctx context.Context, deviceID string, access device.Access) ([]models.BGPMetric, error) {
	if f.peerErr != nil {
		return nil, f.peerErr
	}
	return f.peers, nil
}

func (f *fakeSource) FetchSystem(ctx context.Context, deviceID string, access device.Access) (*models.SystemMetric, error) {
	if f.systemErr != nil {
		return nil, f.systemErr
	}
	return f.system, nil
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(logger.Config{Level: logger.ERROR})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func TestCollectAllFamilies(t *testing.T) {
	source := &fakeSource{
		interfaces: []models.InterfaceMetric{{DeviceID: "r1", InterfaceName: "ge-0/0/0", Status: "up"}},
		peers:      []models.BGPMetric{{DeviceID: "r1", PeerAddress: "10.0.0.2", State: "Established"}},
		system:     &models.SystemMetric{DeviceID: "r1", MemoryUsage: 512, MemoryTotal: 1024},
	}
	c := monitor.NewCollector(source, time.Second, testLogger(t))

	result, err := c.Collect(context.Background(), "r1", device.Access{Host: "192.0.2.1"})
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(result.Interfaces) != 1 || len(result.BGPPeers) != 1 || result.System == nil {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.System.MemoryPercent != 50.0 {
		t.Errorf("memory percent = %v, want 50.0", result.System.MemoryPercent)
	}
}

func TestCollectPartialFailure(t *testing.T) {
	// A single failing family leaves that family empty and keeps the rest.
	source := &fakeSource{
		interfaces: []models.InterfaceMetric{{DeviceID: "r1", InterfaceName: "ge-0/0/0", Status: "up"}},
		peerErr:    errors.New("bgp not configured"),
		system:     &models.SystemMetric{DeviceID: "r1"},
	}
	c := monitor.NewCollector(source, time.Second, testLogger(t))

	result, err := c.Collect(context.Background(), "r1", device.Access{Host: "192.0.2.1"})
	if err != nil {
		t.Fatalf("collect must not fail on a partial error: %v", err)
	}
	if len(result.Interfaces) != 1 {
		t.Errorf("interface family lost: %+v", result.Interfaces)
	}
	if len(result.BGPPeers) != 0 {
		t.Errorf("expected empty peer family, got %+v", result.BGPPeers)
	}
	if result.System == nil {
		t.Error("system family lost")
	}
}

func TestCollectUnreachable(t *testing.T) {
	source := &fakeSource{
		interfaceErr: device.ErrUnreachable,
		peerErr:      device.ErrUnreachable,
		systemErr:    device.ErrUnreachable,
	}
	c := monitor.NewCollector(source, time.Second, testLogger(t))

	_, err := c.Collect(context.Background(), "r1", device.Access{Host: "192.0.2.1"})
	if !errors.Is(err, device.ErrUnreachable) {
		t.Fatalf("expected ErrUnreachable, got %v", err)
	}
}

func TestCollectUnreachableOneFamilyOnly(t *testing.T) {
	// Unreachable on one family while others answer means the device is
	// not down; the cycle must proceed with what it got.
	source := &fakeSource{
		interfaceErr: device.ErrUnreachable,
		peers:        []models.BGPMetric{{DeviceID: "r1", PeerAddress: "10.0.0.2", State: "Established"}},
		system:       &models.SystemMetric{DeviceID: "r1"},
	}
	c := monitor.NewCollector(source, time.Second, testLogger(t))

	result, err := c.Collect(context.Background(), "r1", device.Access{Host: "192.0.2.1"})
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(result.BGPPeers) != 1 || result.System == nil {
		t.Fatalf("surviving families lost: %+v", result)
	}
}

func TestCollectDerivedFields(t *testing.T) {
	source := &fakeSource{
		interfaces: []models.InterfaceMetric{
			{DeviceID: "r1", InterfaceName: "ge-0/0/0", Speed: 1000, RxBytes: 50, TxBytes: 25},
			{DeviceID: "r1", InterfaceName: "ge-0/0/1", Speed: 0, RxBytes: 50},
			{DeviceID: "r1", InterfaceName: "ge-0/0/2", Speed: 1000, RxBytes: 5000},
		},
		system: &models.SystemMetric{DeviceID: "r1", MemoryUsage: 100, MemoryTotal: 0},
	}
	c := monitor.NewCollector(source, time.Second, testLogger(t))

	result, err := c.Collect(context.Background(), "r1", device.Access{Host: "192.0.2.1"})
	if err != nil {
		t.Fatalf("collect: %v", err)
	}

	if got := result.Interfaces[0].UtilizationRx; got != 0.4 {
		t.Errorf("utilization rx = %v, want 0.4", got)
	}
	if got := result.Interfaces[0].UtilizationTx; got != 0.2 {
		t.Errorf("utilization tx = %v, want 0.2", got)
	}
	if got := result.Interfaces[1].UtilizationRx; got != 0 {
		t.Errorf("zero-speed interface utilization = %v, want 0", got)
	}
	if got := result.Interfaces[2].UtilizationRx; got != 1.0 {
		t.Errorf("oversubscribed interface utilization = %v, want clamp to 1.0", got)
	}
	if got := result.System.MemoryPercent; got != 0 {
		t.Errorf("zero-total memory percent = %v, want 0", got)
	}
}
