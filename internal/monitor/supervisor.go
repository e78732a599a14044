package monitor

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"NetMonitorAPI/internal/device"
	"NetMonitorAPI/internal/logger"
	"NetMonitorAPI/internal/models"
	"NetMonitorAPI/internal/notify"
	"NetMonitorAPI/internal/repository"
)

var (
	// ErrDeviceExists is returned when registering an already monitored device.
	ErrDeviceExists = errors.New("device already registered")
	// ErrDeviceNotFound is returned when unregistering an unknown device.
	ErrDeviceNotFound = errors.New("device not registered")
)

// Status is the control-surface snapshot of the supervisor.
type Status struct {
	Running    bool              `json:"running"`
	Interval   float64           `json:"interval_seconds"`
	DeviceIDs  []string          `json:"device_ids"`
	Thresholds models.Thresholds `json:"thresholds"`
}

// Supervisor owns the poll loop. It keeps the registry of monitored
// devices and the threshold configuration, runs one collection cycle per
// interval and fans events out to observers. All exported methods are
// safe for concurrent use.
type Supervisor struct {
	collector  *Collector
	metricRepo repository.IMetricRepository
	alertRepo  repository.IAlertRepository
	fanout     *notify.Fanout
	log        *logger.Logger

	concurrency int64
	stopGrace   time.Duration

	mu         sync.RWMutex
	devices    map[string]device.Access
	thresholds models.Thresholds

	lifecycle sync.Mutex
	running   bool
	interval  time.Duration
	cancel    context.CancelFunc
	done      chan struct{}
}

func NewSupervisor(
	collector *Collector,
	metricRepo repository.IMetricRepository,
	alertRepo repository.IAlertRepository,
	fanout *notify.Fanout,
	concurrency int,
	stopGrace time.Duration,
	log *logger.Logger,
) *Supervisor {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Supervisor{
		collector:   collector,
		metricRepo:  metricRepo,
		alertRepo:   alertRepo,
		fanout:      fanout,
		log:         log,
		concurrency: int64(concurrency),
		stopGrace:   stopGrace,
		devices:     make(map[string]device.Access),
		thresholds:  models.DefaultThresholds(),
	}
}

// RegisterDevice adds a device to the poll set. It takes effect from the
// next cycle snapshot.
func (s *Supervisor) RegisterDevice(deviceID string, access device.Access) error {
	if deviceID == "" {
		return fmt.Errorf("device id must not be empty")
	}
	if access.Host == "" {
		return fmt.Errorf("device %s: host must not be empty", deviceID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.devices[deviceID]; exists {
		return fmt.Errorf("%w: %s", ErrDeviceExists, deviceID)
	}
	s.devices[deviceID] = access
	s.log.Info("Device registered for monitoring: %s (%s)", deviceID, access.Host)
	return nil
}

// UnregisterDevice removes a device from the poll set. Stored metrics and
// alerts are kept.
func (s *Supervisor) UnregisterDevice(deviceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.devices[deviceID]; !exists {
		return fmt.Errorf("%w: %s", ErrDeviceNotFound, deviceID)
	}
	delete(s.devices, deviceID)
	s.log.Info("Device unregistered from monitoring: %s", deviceID)
	return nil
}

// UpdateThresholds merges the partial map into the current configuration.
// The call is all-or-nothing: an invalid entry rejects the whole update
// and leaves the existing thresholds untouched.
func (s *Supervisor) UpdateThresholds(partial models.Thresholds) error {
	if err := partial.Validate(); err != nil {
		return fmt.Errorf("invalid thresholds: %w", err)
	}

	s.mu.Lock()
	s.thresholds = s.thresholds.Merge(partial)
	s.mu.Unlock()
	s.log.Info("Thresholds updated (%d key(s))", len(partial))
	return nil
}

// Status reports the lifecycle state, the configured interval, the
// monitored device ids and a copy of the current thresholds.
func (s *Supervisor) Status() Status {
	s.lifecycle.Lock()
	running := s.running
	interval := s.interval
	s.lifecycle.Unlock()

	s.mu.RLock()
	ids := make([]string, 0, len(s.devices))
	for id := range s.devices {
		ids = append(ids, id)
	}
	thresholds := s.thresholds.Clone()
	s.mu.RUnlock()
	sort.Strings(ids)

	return Status{
		Running:    running,
		Interval:   interval.Seconds(),
		DeviceIDs:  ids,
		Thresholds: thresholds,
	}
}

// Start launches the poll loop in the background. Calling Start while
// already running is a no-op with a warning. The first cycle runs
// immediately, then once per interval until Stop.
func (s *Supervisor) Start(interval time.Duration) {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	if s.running {
		s.log.Warn("Monitoring already running; start ignored")
		return
	}
	if interval <= 0 {
		interval = time.Minute
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.running = true
	s.interval = interval
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.run(ctx, interval, s.done)
	s.log.Info("Monitoring started (interval %s)", interval)
}

// Stop halts the poll loop. In-flight device fetches get a bounded grace
// period to finish before Stop returns. Calling Stop while stopped is a
// no-op.
func (s *Supervisor) Stop() {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	if !s.running {
		return
	}
	s.cancel()

	select {
	case <-s.done:
	case <-time.After(s.stopGrace):
		s.log.Warn("Monitoring loop did not drain within %s; abandoning in-flight fetches", s.stopGrace)
	}

	s.running = false
	s.interval = 0
	s.cancel = nil
	s.done = nil
	s.log.Info("Monitoring stopped")
}

func (s *Supervisor) run(ctx context.Context, interval time.Duration, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.runCycle(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runCycle(ctx)
		}
	}
}

// runCycle polls every registered device once. Devices are collected
// concurrently under a bounded semaphore; one device's failure never
// affects another, and nothing escapes the cycle.
func (s *Supervisor) runCycle(ctx context.Context) {
	s.mu.RLock()
	devices := make(map[string]device.Access, len(s.devices))
	for id, access := range s.devices {
		devices[id] = access
	}
	thresholds := s.thresholds.Clone()
	s.mu.RUnlock()

	if len(devices) == 0 {
		return
	}

	sem := semaphore.NewWeighted(s.concurrency)
	var wg sync.WaitGroup
	for id, access := range devices {
		if err := sem.Acquire(ctx, 1); err != nil {
			break // shutting down
		}
		wg.Add(1)
		go func(deviceID string, access device.Access) {
			defer wg.Done()
			defer sem.Release(1)
			defer func() {
				if r := recover(); r != nil {
					s.log.Error("Panic while polling %s: %v", deviceID, r)
				}
			}()
			s.pollDevice(ctx, deviceID, access, thresholds)
		}(id, access)
	}
	wg.Wait()
}

func (s *Supervisor) pollDevice(ctx context.Context, deviceID string, access device.Access, thresholds models.Thresholds) {
	result, err := s.collector.Collect(ctx, deviceID, access)
	if err != nil {
		s.log.Error("Collection failed for %s: %v", deviceID, err)
		s.fanout.Broadcast(models.NewCollectionErrorEvent(deviceID, err))
		return
	}

	// Persist before evaluating so alerts always describe stored values.
	if err := s.metricRepo.AppendInterfaces(ctx, result.Interfaces); err != nil {
		s.log.Error("Storing interface metrics for %s: %v", deviceID, err)
	}
	if err := s.metricRepo.AppendBGPPeers(ctx, result.BGPPeers); err != nil {
		s.log.Error("Storing BGP metrics for %s: %v", deviceID, err)
	}
	if result.System != nil {
		if err := s.metricRepo.AppendSystem(ctx, result.System); err != nil {
			s.log.Error("Storing system metrics for %s: %v", deviceID, err)
		}
	}

	alerts := Evaluate(result, thresholds, time.Now().UTC())
	for i := range alerts {
		if err := s.alertRepo.Create(ctx, &alerts[i]); err != nil {
			s.log.Error("Storing alert %s: %v", alerts[i].AlertID, err)
			continue
		}
		s.fanout.Broadcast(models.NewAlertEvent(alerts[i]))
	}

	summary := models.CycleSummary{
		InterfaceCount: len(result.Interfaces),
		BGPPeerCount:   len(result.BGPPeers),
	}
	if result.System != nil {
		summary.SystemHealth = result.System.MemoryPercent
	}
	s.fanout.Broadcast(models.NewMetricsUpdateEvent(deviceID, summary))
}

// CurrentMetrics returns the most recent stored samples for a device.
func (s *Supervisor) CurrentMetrics(ctx context.Context, deviceID string) (*models.DeviceMetrics, error) {
	return s.metricRepo.Latest(ctx, deviceID)
}

// HistoricalInterfaces returns interface samples within [start, end].
func (s *Supervisor) HistoricalInterfaces(ctx context.Context, deviceID string, start, end time.Time) ([]models.InterfaceMetric, error) {
	return s.metricRepo.HistoricalInterfaces(ctx, deviceID, start, end)
}

// HistoricalBGPPeers returns BGP samples within [start, end].
func (s *Supervisor) HistoricalBGPPeers(ctx context.Context, deviceID string, start, end time.Time) ([]models.BGPMetric, error) {
	return s.metricRepo.HistoricalBGPPeers(ctx, deviceID, start, end)
}

// HistoricalSystem returns system samples within [start, end].
func (s *Supervisor) HistoricalSystem(ctx context.Context, deviceID string, start, end time.Time) ([]models.SystemMetric, error) {
	return s.metricRepo.HistoricalSystem(ctx, deviceID, start, end)
}

// ActiveAlerts returns unacknowledged alerts, optionally device filtered.
func (s *Supervisor) ActiveAlerts(ctx context.Context, deviceID string) ([]models.Alert, error) {
	return s.alertRepo.Active(ctx, deviceID)
}

// AlertHistory returns stored alerts newest first, paginated.
func (s *Supervisor) AlertHistory(ctx context.Context, limit, offset int) ([]models.Alert, error) {
	return s.alertRepo.History(ctx, limit, offset)
}

// AcknowledgeAlert marks an alert acknowledged and announces it to
// observers. Returns false when no alert with that id exists.
func (s *Supervisor) AcknowledgeAlert(ctx context.Context, alertID, acknowledgedBy string) (bool, error) {
	ok, err := s.alertRepo.Acknowledge(ctx, alertID, acknowledgedBy)
	if err != nil {
		return false, err
	}
	if ok {
		s.fanout.Broadcast(models.NewAlertAcknowledgedEvent(alertID, acknowledgedBy))
	}
	return ok, nil
}
