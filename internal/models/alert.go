package models

import (
	"fmt"
	"time"
)

// Alert severities
const (
	SeverityCritical = "critical"
	SeverityWarning  = "warning"
	SeverityInfo     = "info"
)

// Alert is the persistent record of a threshold breach. Alerts are immutable
// once created except for the acknowledgement fields.
type Alert struct {
	AlertID        string     `json:"alert_id" db:"alert_id"`
	DeviceID       string     `json:"device_id" db:"device_id"`
	MetricType     string     `json:"metric_type" db:"metric_type"`
	Severity       string     `json:"severity" db:"severity"`
	Title          string     `json:"title" db:"title"`
	Message        string     `json:"message" db:"message"`
	ThresholdValue *float64   `json:"threshold_value" db:"threshold_value"`
	CurrentValue   *float64   `json:"current_value" db:"current_value"`
	Timestamp      time.Time  `json:"timestamp" db:"timestamp"`
	Acknowledged   bool       `json:"acknowledged" db:"acknowledged"`
	AcknowledgedBy *string    `json:"acknowledged_by" db:"acknowledged_by"`
	AcknowledgedAt *time.Time `json:"acknowledged_at" db:"acknowledged_at"`
}

// NewAlertID builds the alert identifier from the device, metric type and
// creation instant. The second-level resolution means a retried evaluation in
// the same second produces the same ID, which the store treats as a no-op.
func NewAlertID(deviceID, metricType string, at time.Time) string {
	return fmt.Sprintf("alert_%s_%s_%s", deviceID, at.UTC().Format("20060102_150405"), metricType)
}
