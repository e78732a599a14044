// internal/models/metrics.go

package models

import (
	"time"
)

// Metric type discriminators shared by storage, alerts and queries.
const (
	MetricTypeSystem    = "system"
	MetricTypeInterface = "interface"
	MetricTypeBGP       = "bgp"
)

// Interface operational states as reported by devices.
const (
	IfStatusUp   = "up"
	IfStatusDown = "down"
)

// BGPStateEstablished is the only session state considered healthy.
const BGPStateEstablished = "Established"

// InterfaceMetric is one sample of a physical interface. The natural key is
// (device_id, interface_name, timestamp); a second sample with the same key
// replaces the first.
type InterfaceMetric struct {
	DeviceID      string    `json:"device_id" db:"device_id"`
	InterfaceName string    `json:"interface_name" db:"interface_name"`
	Status        string    `json:"status" db:"status"`
	AdminStatus   string    `json:"admin_status" db:"admin_status"`
	Speed         int64     `json:"speed" db:"speed"` // bits/sec
	MTU           int       `json:"mtu" db:"mtu"`
	RxPackets     int64     `json:"rx_packets" db:"rx_packets"`
	TxPackets     int64     `json:"tx_packets" db:"tx_packets"`
	RxBytes       int64     `json:"rx_bytes" db:"rx_bytes"`
	TxBytes       int64     `json:"tx_bytes" db:"tx_bytes"`
	RxErrors      int64     `json:"rx_errors" db:"rx_errors"`
	TxErrors      int64     `json:"tx_errors" db:"tx_errors"`
	RxDrops       int64     `json:"rx_drops" db:"rx_drops"`
	TxDrops       int64     `json:"tx_drops" db:"tx_drops"`
	UtilizationRx float64   `json:"utilization_rx" db:"utilization_rx"`
	UtilizationTx float64   `json:"utilization_tx" db:"utilization_tx"`
	Timestamp     time.Time `json:"timestamp" db:"timestamp"`
}

// BGPMetric is one sample of a routing session with a peer. The natural key
// is (device_id, peer_address, timestamp).
type BGPMetric struct {
	DeviceID         string    `json:"device_id" db:"device_id"`
	PeerAddress      string    `json:"peer_address" db:"peer_address"`
	PeerAS           int64     `json:"peer_as" db:"peer_as"`
	State            string    `json:"state" db:"state"`
	Uptime           int64     `json:"uptime" db:"uptime"` // seconds
	ReceivedRoutes   int64     `json:"received_routes" db:"received_routes"`
	AdvertisedRoutes int64     `json:"advertised_routes" db:"advertised_routes"`
	InputMessages    int64     `json:"input_messages" db:"input_messages"`
	OutputMessages   int64     `json:"output_messages" db:"output_messages"`
	Timestamp        time.Time `json:"timestamp" db:"timestamp"`
}

// SystemMetric is one sample of control-plane health. One sample per device
// per instant: the natural key is (device_id, timestamp).
type SystemMetric struct {
	DeviceID      string    `json:"device_id" db:"device_id"`
	CPULoad1Min   float64   `json:"cpu_load_1min" db:"cpu_load_1min"`
	CPULoad5Min   float64   `json:"cpu_load_5min" db:"cpu_load_5min"`
	CPULoad15Min  float64   `json:"cpu_load_15min" db:"cpu_load_15min"`
	MemoryUsage   int64     `json:"memory_usage" db:"memory_usage"` // bytes
	MemoryTotal   int64     `json:"memory_total" db:"memory_total"` // bytes
	MemoryPercent float64   `json:"memory_percent" db:"memory_percent"`
	Temperature   *float64  `json:"temperature" db:"temperature"` // °C, nil when not reported
	UptimeSeconds int64     `json:"uptime_seconds" db:"uptime_seconds"`
	Timestamp     time.Time `json:"timestamp" db:"timestamp"`
}

// DeviceMetrics groups the rows on file for one device as returned by the
// store's latest query. Interfaces and BGPPeers hold every stored sample,
// newest first; callers wanting one row per interface must group by name.
type DeviceMetrics struct {
	System     *SystemMetric     `json:"system"`
	Interfaces []InterfaceMetric `json:"interfaces"`
	BGPPeers   []BGPMetric       `json:"bgp_peers"`
}
