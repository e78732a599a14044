package repository

import (
	"context"
	"database/sql"
	"time"

	"NetMonitorAPI/internal/logger"
	"NetMonitorAPI/internal/models"
)

// IMetricRepository defines the time-series storage for collected telemetry.
// Appends are idempotent upserts keyed by each record's natural key.
type IMetricRepository interface {
	AppendInterfaces(ctx context.Context, metrics []models.InterfaceMetric) error
	AppendBGPPeers(ctx context.Context, metrics []models.BGPMetric) error
	AppendSystem(ctx context.Context, metric *models.SystemMetric) error
	Latest(ctx context.Context, deviceID string) (*models.DeviceMetrics, error)
	HistoricalInterfaces(ctx context.Context, deviceID string, start, end time.Time) ([]models.InterfaceMetric, error)
	HistoricalBGPPeers(ctx context.Context, deviceID string, start, end time.Time) ([]models.BGPMetric, error)
	HistoricalSystem(ctx context.Context, deviceID string, start, end time.Time) ([]models.SystemMetric, error)
}

type MetricRepository struct {
	db  *sql.DB
	log *logger.Logger
}

func NewMetricRepository(db *sql.DB, log *logger.Logger) *MetricRepository {
	return &MetricRepository{db: db, log: log}
}

const interfaceColumns = `device_id, interface_name, status, admin_status, speed, mtu,
	rx_packets, tx_packets, rx_bytes, tx_bytes, rx_errors, tx_errors,
	rx_drops, tx_drops, utilization_rx, utilization_tx, timestamp`

const bgpColumns = `device_id, peer_address, peer_as, state, uptime,
	received_routes, advertised_routes, input_messages, output_messages, timestamp`

const systemColumns = `device_id, cpu_load_1min, cpu_load_5min, cpu_load_15min,
	memory_usage, memory_total, memory_percent, temperature, uptime_seconds, timestamp`

// AppendInterfaces upserts interface samples. A malformed record is dropped
// with a warning rather than failing the batch; a storage failure aborts the
// batch and surfaces as a StorageError.
func (r *MetricRepository) AppendInterfaces(ctx context.Context, metrics []models.InterfaceMetric) error {
	query := `
		INSERT INTO interface_metrics (` + interfaceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (device_id, interface_name, timestamp) DO UPDATE SET
			status = excluded.status,
			admin_status = excluded.admin_status,
			speed = excluded.speed,
			mtu = excluded.mtu,
			rx_packets = excluded.rx_packets,
			tx_packets = excluded.tx_packets,
			rx_bytes = excluded.rx_bytes,
			tx_bytes = excluded.tx_bytes,
			rx_errors = excluded.rx_errors,
			tx_errors = excluded.tx_errors,
			rx_drops = excluded.rx_drops,
			tx_drops = excluded.tx_drops,
			utilization_rx = excluded.utilization_rx,
			utilization_tx = excluded.utilization_tx
	`

	for _, m := range metrics {
		if m.DeviceID == "" || m.InterfaceName == "" || m.Timestamp.IsZero() {
			r.log.Warn("Dropping malformed interface metric (device=%q iface=%q)", m.DeviceID, m.InterfaceName)
			continue
		}
		_, err := r.db.ExecContext(ctx, query,
			m.DeviceID, m.InterfaceName, m.Status, m.AdminStatus, m.Speed, m.MTU,
			m.RxPackets, m.TxPackets, m.RxBytes, m.TxBytes, m.RxErrors, m.TxErrors,
			m.RxDrops, m.TxDrops, m.UtilizationRx, m.UtilizationTx, m.Timestamp.UTC(),
		)
		if err != nil {
			return storageErr("append interface metrics", err)
		}
	}

	return nil
}

// AppendBGPPeers upserts routing-session samples, same semantics as
// AppendInterfaces.
func (r *MetricRepository) AppendBGPPeers(ctx context.Context, metrics []models.BGPMetric) error {
	query := `
		INSERT INTO bgp_metrics (` + bgpColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (device_id, peer_address, timestamp) DO UPDATE SET
			peer_as = excluded.peer_as,
			state = excluded.state,
			uptime = excluded.uptime,
			received_routes = excluded.received_routes,
			advertised_routes = excluded.advertised_routes,
			input_messages = excluded.input_messages,
			output_messages = excluded.output_messages
	`

	for _, m := range metrics {
		if m.DeviceID == "" || m.PeerAddress == "" || m.Timestamp.IsZero() {
			r.log.Warn("Dropping malformed BGP metric (device=%q peer=%q)", m.DeviceID, m.PeerAddress)
			continue
		}
		_, err := r.db.ExecContext(ctx, query,
			m.DeviceID, m.PeerAddress, m.PeerAS, m.State, m.Uptime,
			m.ReceivedRoutes, m.AdvertisedRoutes, m.InputMessages, m.OutputMessages,
			m.Timestamp.UTC(),
		)
		if err != nil {
			return storageErr("append bgp metrics", err)
		}
	}

	return nil
}

// AppendSystem upserts the system sample for one device and instant. A nil
// metric is a no-op.
func (r *MetricRepository) AppendSystem(ctx context.Context, metric *models.SystemMetric) error {
	if metric == nil {
		return nil
	}
	if metric.DeviceID == "" || metric.Timestamp.IsZero() {
		r.log.Warn("Dropping malformed system metric (device=%q)", metric.DeviceID)
		return nil
	}

	query := `
		INSERT INTO system_metrics (` + systemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (device_id, timestamp) DO UPDATE SET
			cpu_load_1min = excluded.cpu_load_1min,
			cpu_load_5min = excluded.cpu_load_5min,
			cpu_load_15min = excluded.cpu_load_15min,
			memory_usage = excluded.memory_usage,
			memory_total = excluded.memory_total,
			memory_percent = excluded.memory_percent,
			temperature = excluded.temperature,
			uptime_seconds = excluded.uptime_seconds
	`

	var temp sql.NullFloat64
	if metric.Temperature != nil {
		temp = sql.NullFloat64{Float64: *metric.Temperature, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, query,
		metric.DeviceID, metric.CPULoad1Min, metric.CPULoad5Min, metric.CPULoad15Min,
		metric.MemoryUsage, metric.MemoryTotal, metric.MemoryPercent, temp,
		metric.UptimeSeconds, metric.Timestamp.UTC(),
	)
	if err != nil {
		return storageErr("append system metric", err)
	}

	return nil
}

// Latest returns the most recent system sample plus every interface and BGP
// row on file for the device, newest first. Callers needing one row per
// interface must group by name themselves.
func (r *MetricRepository) Latest(ctx context.Context, deviceID string) (*models.DeviceMetrics, error) {
	out := &models.DeviceMetrics{
		Interfaces: []models.InterfaceMetric{},
		BGPPeers:   []models.BGPMetric{},
	}

	sysQuery := `
		SELECT ` + systemColumns + `
		FROM system_metrics
		WHERE device_id = $1
		ORDER BY timestamp DESC
		LIMIT 1
	`
	row := r.db.QueryRowContext(ctx, sysQuery, deviceID)
	sys, err := scanSystemMetric(row)
	if err != nil && err != sql.ErrNoRows {
		return nil, storageErr("query latest system metric", err)
	}
	if err == nil {
		out.System = sys
	}

	ifQuery := `
		SELECT ` + interfaceColumns + `
		FROM interface_metrics
		WHERE device_id = $1
		ORDER BY timestamp DESC
	`
	ifaces, err := r.queryInterfaces(ctx, ifQuery, deviceID)
	if err != nil {
		return nil, err
	}
	out.Interfaces = ifaces

	bgpQuery := `
		SELECT ` + bgpColumns + `
		FROM bgp_metrics
		WHERE device_id = $1
		ORDER BY timestamp DESC
	`
	peers, err := r.queryBGPPeers(ctx, bgpQuery, deviceID)
	if err != nil {
		return nil, err
	}
	out.BGPPeers = peers

	return out, nil
}

// HistoricalInterfaces returns interface samples within [start, end],
// ascending by timestamp. An empty result is not an error.
func (r *MetricRepository) HistoricalInterfaces(ctx context.Context, deviceID string, start, end time.Time) ([]models.InterfaceMetric, error) {
	query := `
		SELECT ` + interfaceColumns + `
		FROM interface_metrics
		WHERE device_id = $1 AND timestamp >= $2 AND timestamp <= $3
		ORDER BY timestamp ASC
	`
	return r.queryInterfaces(ctx, query, deviceID, start.UTC(), end.UTC())
}

// HistoricalBGPPeers returns routing-session samples within [start, end].
func (r *MetricRepository) HistoricalBGPPeers(ctx context.Context, deviceID string, start, end time.Time) ([]models.BGPMetric, error) {
	query := `
		SELECT ` + bgpColumns + `
		FROM bgp_metrics
		WHERE device_id = $1 AND timestamp >= $2 AND timestamp <= $3
		ORDER BY timestamp ASC
	`
	return r.queryBGPPeers(ctx, query, deviceID, start.UTC(), end.UTC())
}

// HistoricalSystem returns system samples within [start, end].
func (r *MetricRepository) HistoricalSystem(ctx context.Context, deviceID string, start, end time.Time) ([]models.SystemMetric, error) {
	query := `
		SELECT ` + systemColumns + `
		FROM system_metrics
		WHERE device_id = $1 AND timestamp >= $2 AND timestamp <= $3
		ORDER BY timestamp ASC
	`

	rows, err := r.db.QueryContext(ctx, query, deviceID, start.UTC(), end.UTC())
	if err != nil {
		return nil, storageErr("query historical system metrics", err)
	}
	defer rows.Close()

	metrics := []models.SystemMetric{}
	for rows.Next() {
		m, err := scanSystemMetric(rows)
		if err != nil {
			return nil, storageErr("scan system metric", err)
		}
		metrics = append(metrics, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate system metrics", err)
	}

	return metrics, nil
}

func (r *MetricRepository) queryInterfaces(ctx context.Context, query string, args ...interface{}) ([]models.InterfaceMetric, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr("query interface metrics", err)
	}
	defer rows.Close()

	metrics := []models.InterfaceMetric{}
	for rows.Next() {
		var m models.InterfaceMetric
		err := rows.Scan(
			&m.DeviceID, &m.InterfaceName, &m.Status, &m.AdminStatus, &m.Speed, &m.MTU,
			&m.RxPackets, &m.TxPackets, &m.RxBytes, &m.TxBytes, &m.RxErrors, &m.TxErrors,
			&m.RxDrops, &m.TxDrops, &m.UtilizationRx, &m.UtilizationTx, &m.Timestamp,
		)
		if err != nil {
			return nil, storageErr("scan interface metric", err)
		}
		metrics = append(metrics, m)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate interface metrics", err)
	}

	return metrics, nil
}

func (r *MetricRepository) queryBGPPeers(ctx context.Context, query string, args ...interface{}) ([]models.BGPMetric, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr("query bgp metrics", err)
	}
	defer rows.Close()

	metrics := []models.BGPMetric{}
	for rows.Next() {
		var m models.BGPMetric
		err := rows.Scan(
			&m.DeviceID, &m.PeerAddress, &m.PeerAS, &m.State, &m.Uptime,
			&m.ReceivedRoutes, &m.AdvertisedRoutes, &m.InputMessages, &m.OutputMessages,
			&m.Timestamp,
		)
		if err != nil {
			return nil, storageErr("scan bgp metric", err)
		}
		metrics = append(metrics, m)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate bgp metrics", err)
	}

	return metrics, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSystemMetric(row rowScanner) (*models.SystemMetric, error) {
	var m models.SystemMetric
	var temp sql.NullFloat64

	err := row.Scan(
		&m.DeviceID, &m.CPULoad1Min, &m.CPULoad5Min, &m.CPULoad15Min,
		&m.MemoryUsage, &m.MemoryTotal, &m.MemoryPercent, &temp,
		&m.UptimeSeconds, &m.Timestamp,
	)
	if err != nil {
		return nil, err
	}
	if temp.Valid {
		m.Temperature = &temp.Float64
	}

	return &m, nil
}
