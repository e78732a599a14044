package models

import "time"

// Event types pushed to observers. Type tells the consumer which of the
// optional fields are set.
const (
	EventMetricsUpdate     = "metrics_update"
	EventAlert             = "alert"
	EventCollectionError   = "collection_error"
	EventAlertAcknowledged = "alert_acknowledged"
)

// Event is the JSON message delivered to every registered observer.
type Event struct {
	Type           string        `json:"type"`
	Timestamp      time.Time     `json:"timestamp"`
	DeviceID       string        `json:"device_id,omitempty"`
	Summary        *CycleSummary `json:"summary,omitempty"`
	Alert          *Alert        `json:"alert,omitempty"`
	Error          string        `json:"error,omitempty"`
	AlertID        string        `json:"alert_id,omitempty"`
	AcknowledgedBy string        `json:"acknowledged_by,omitempty"`
}

// CycleSummary is the per-device payload of a metrics_update event.
type CycleSummary struct {
	InterfaceCount int     `json:"interface_count"`
	BGPPeerCount   int     `json:"bgp_peer_count"`
	SystemHealth   float64 `json:"system_health"`
}

func NewMetricsUpdateEvent(deviceID string, summary CycleSummary) Event {
	return Event{
		Type:      EventMetricsUpdate,
		Timestamp: time.Now().UTC(),
		DeviceID:  deviceID,
		Summary:   &summary,
	}
}

func NewAlertEvent(alert Alert) Event {
	return Event{
		Type:      EventAlert,
		Timestamp: time.Now().UTC(),
		DeviceID:  alert.DeviceID,
		Alert:     &alert,
	}
}

func NewCollectionErrorEvent(deviceID string, err error) Event {
	return Event{
		Type:      EventCollectionError,
		Timestamp: time.Now().UTC(),
		DeviceID:  deviceID,
		Error:     err.Error(),
	}
}

func NewAlertAcknowledgedEvent(alertID, acknowledgedBy string) Event {
	return Event{
		Type:           EventAlertAcknowledged,
		Timestamp:      time.Now().UTC(),
		AlertID:        alertID,
		AcknowledgedBy: acknowledgedBy,
	}
}
