// Package monitor contains the polling engine: telemetry collection,
// threshold evaluation and the supervisor that drives both on a timer.
package monitor

import (
	"context"
	"errors"
	"time"

	"NetMonitorAPI/internal/device"
	"NetMonitorAPI/internal/logger"
	"NetMonitorAPI/internal/models"
)

// CollectResult holds one device's telemetry for a single poll cycle.
// A family that could not be fetched is simply empty (or nil for System).
type CollectResult struct {
	DeviceID   string
	Interfaces []models.InterfaceMetric
	BGPPeers   []models.BGPMetric
	System     *models.SystemMetric
}

// Collector fetches the three metric families from a telemetry source.
// Each family is attempted independently so that, say, a device without
// BGP still yields interface and system samples.
type Collector struct {
	source  device.TelemetrySource
	timeout time.Duration
	log     *logger.Logger
}

func NewCollector(source device.TelemetrySource, timeout time.Duration, log *logger.Logger) *Collector {
	return &Collector{source: source, timeout: timeout, log: log}
}

// Collect gathers all three families for one device. Per-family failures
// are logged and leave that family empty. Only a transport-level failure
// (device.ErrUnreachable) is returned, and only when it affected every
// family, so the caller can report the device as down for the cycle.
func (c *Collector) Collect(ctx context.Context, deviceID string, access device.Access) (*CollectResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	result := &CollectResult{DeviceID: deviceID}
	unreachable := 0

	interfaces, err := c.source.FetchInterfaces(ctx, deviceID, access)
	if err != nil {
		if errors.Is(err, device.ErrUnreachable) {
			unreachable++
		}
		c.log.Warn("Interface collection failed for %s: %v", deviceID, err)
	} else {
		result.Interfaces = interfaces
	}

	peers, err := c.source.FetchBGPPeers(ctx, deviceID, access)
	if err != nil {
		if errors.Is(err, device.ErrUnreachable) {
			unreachable++
		}
		c.log.Warn("BGP collection failed for %s: %v", deviceID, err)
	} else {
		result.BGPPeers = peers
	}

	system, err := c.source.FetchSystem(ctx, deviceID, access)
	if err != nil {
		if errors.Is(err, device.ErrUnreachable) {
			unreachable++
		}
		c.log.Warn("System collection failed for %s: %v", deviceID, err)
	} else {
		result.System = system
	}

	if unreachable == 3 {
		return nil, device.ErrUnreachable
	}

	deriveFields(result)
	return result, nil
}

// deriveFields computes the ratio fields from raw counters. Utilization is
// a 0.0 to 1.0 ratio of bits seen against link speed; memory_percent stays a
// percentage. A missing or zero denominator yields 0, never a division error.
func deriveFields(result *CollectResult) {
	for i := range result.Interfaces {
		m := &result.Interfaces[i]
		if m.Speed > 0 {
			m.UtilizationRx = clamp(float64(m.RxBytes*8)/float64(m.Speed), 1)
			m.UtilizationTx = clamp(float64(m.TxBytes*8)/float64(m.Speed), 1)
		} else {
			m.UtilizationRx = 0
			m.UtilizationTx = 0
		}
	}

	if sys := result.System; sys != nil {
		if sys.MemoryTotal > 0 {
			sys.MemoryPercent = clamp(float64(sys.MemoryUsage)/float64(sys.MemoryTotal)*100, 100)
		} else {
			sys.MemoryPercent = 0
		}
	}
}

func clamp(v, max float64) float64 {
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}
