package monitor

import (
	"fmt"
	"time"

	"NetMonitorAPI/internal/models"
)

// Evaluate compares one device's freshly collected metrics against the
// given thresholds and returns a new alert for every breach. It is pure:
// no deduplication against earlier cycles, no I/O, no hidden state.
func Evaluate(result *CollectResult, thresholds models.Thresholds, now time.Time) []models.Alert {
	if result == nil {
		return nil
	}

	var alerts []models.Alert

	if sys := result.System; sys != nil {
		alerts = append(alerts, evaluateSystem(result.DeviceID, sys, thresholds, now)...)
	}
	for i := range result.Interfaces {
		alerts = append(alerts, evaluateInterface(result.DeviceID, &result.Interfaces[i], thresholds, now)...)
	}
	for i := range result.BGPPeers {
		if alert := evaluatePeer(result.DeviceID, &result.BGPPeers[i], now); alert != nil {
			alerts = append(alerts, *alert)
		}
	}

	return alerts
}

func evaluateSystem(deviceID string, sys *models.SystemMetric, thresholds models.Thresholds, now time.Time) []models.Alert {
	var alerts []models.Alert

	if crit, ok := thresholds[models.ThresholdCPUCritical]; ok && sys.CPULoad1Min > crit {
		alerts = append(alerts, newAlert(deviceID, models.MetricTypeSystem, models.SeverityCritical,
			"High CPU Usage", fmt.Sprintf("CPU load is %.1f", sys.CPULoad1Min),
			&crit, &sys.CPULoad1Min, now))
	} else if warn, ok := thresholds[models.ThresholdCPUWarning]; ok && sys.CPULoad1Min > warn {
		alerts = append(alerts, newAlert(deviceID, models.MetricTypeSystem, models.SeverityWarning,
			"Elevated CPU Usage", fmt.Sprintf("CPU load is %.1f", sys.CPULoad1Min),
			&warn, &sys.CPULoad1Min, now))
	}

	if crit, ok := thresholds[models.ThresholdMemoryCritical]; ok && sys.MemoryPercent > crit {
		alerts = append(alerts, newAlert(deviceID, models.MetricTypeSystem, models.SeverityCritical,
			"High Memory Usage", fmt.Sprintf("Memory usage is %.1f%%", sys.MemoryPercent),
			&crit, &sys.MemoryPercent, now))
	} else if warn, ok := thresholds[models.ThresholdMemoryWarning]; ok && sys.MemoryPercent > warn {
		alerts = append(alerts, newAlert(deviceID, models.MetricTypeSystem, models.SeverityWarning,
			"Elevated Memory Usage", fmt.Sprintf("Memory usage is %.1f%%", sys.MemoryPercent),
			&warn, &sys.MemoryPercent, now))
	}

	if sys.Temperature != nil {
		temp := *sys.Temperature
		if crit, ok := thresholds[models.ThresholdTempCritical]; ok && temp > crit {
			alerts = append(alerts, newAlert(deviceID, models.MetricTypeSystem, models.SeverityCritical,
				"High Temperature", fmt.Sprintf("Temperature is %.1f°C", temp),
				&crit, &temp, now))
		} else if warn, ok := thresholds[models.ThresholdTempWarning]; ok && temp > warn {
			alerts = append(alerts, newAlert(deviceID, models.MetricTypeSystem, models.SeverityWarning,
				"Elevated Temperature", fmt.Sprintf("Temperature is %.1f°C", temp),
				&warn, &temp, now))
		}
	}

	return alerts
}

func evaluateInterface(deviceID string, intf *models.InterfaceMetric, thresholds models.Thresholds, now time.Time) []models.Alert {
	var alerts []models.Alert

	if intf.Status == models.IfStatusDown {
		alerts = append(alerts, newAlert(deviceID, models.MetricTypeInterface, models.SeverityCritical,
			"Interface Down", fmt.Sprintf("Interface %s is down", intf.InterfaceName),
			nil, nil, now))
	}

	totalPackets := intf.RxPackets + intf.TxPackets
	if totalPackets > 0 {
		errorRate := float64(intf.RxErrors+intf.TxErrors) / float64(totalPackets)
		if crit, ok := thresholds[models.ThresholdIfErrorRateCritical]; ok && errorRate > crit {
			alerts = append(alerts, newAlert(deviceID, models.MetricTypeInterface, models.SeverityCritical,
				"High Interface Error Rate",
				fmt.Sprintf("Interface %s error rate is %.2f%%", intf.InterfaceName, errorRate*100),
				&crit, &errorRate, now))
		} else if warn, ok := thresholds[models.ThresholdIfErrorRateWarning]; ok && errorRate > warn {
			alerts = append(alerts, newAlert(deviceID, models.MetricTypeInterface, models.SeverityWarning,
				"Elevated Interface Error Rate",
				fmt.Sprintf("Interface %s error rate is %.2f%%", intf.InterfaceName, errorRate*100),
				&warn, &errorRate, now))
		}
	}

	return alerts
}

func evaluatePeer(deviceID string, peer *models.BGPMetric, now time.Time) *models.Alert {
	if peer.State == models.BGPStateEstablished {
		return nil
	}
	alert := newAlert(deviceID, models.MetricTypeBGP, models.SeverityCritical,
		"BGP Session Down",
		fmt.Sprintf("BGP session with %s (AS%d) is %s", peer.PeerAddress, peer.PeerAS, peer.State),
		nil, nil, now)
	return &alert
}

func newAlert(deviceID, metricType, severity, title, message string, thresholdValue, currentValue *float64, now time.Time) models.Alert {
	return models.Alert{
		AlertID:        models.NewAlertID(deviceID, metricType, now),
		DeviceID:       deviceID,
		MetricType:     metricType,
		Severity:       severity,
		Title:          title,
		Message:        message,
		ThresholdValue: thresholdValue,
		CurrentValue:   currentValue,
		Timestamp:      now,
	}
}
