package repository

import (
	"context"
	"database/sql"
	"time"

	"NetMonitorAPI/internal/models"
)

// IAlertRepository defines the alert ledger. Alerts are append-only; only the
// acknowledgement fields ever change.
type IAlertRepository interface {
	Create(ctx context.Context, alert *models.Alert) error
	GetByID(ctx context.Context, alertID string) (*models.Alert, error)
	Acknowledge(ctx context.Context, alertID, acknowledgedBy string) (bool, error)
	Active(ctx context.Context, deviceID string) ([]models.Alert, error)
	History(ctx context.Context, limit, offset int) ([]models.Alert, error)
	DeleteOld(ctx context.Context, olderThan time.Duration) (int64, error)
}

type AlertRepository struct {
	db *sql.DB
}

func NewAlertRepository(db *sql.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

const alertColumns = `alert_id, device_id, metric_type, severity, title, message,
	threshold_value, current_value, timestamp, acknowledged, acknowledged_by, acknowledged_at`

// Create inserts an alert. An alert_id already on file makes the call a
// silent no-op, so retried evaluations are safe.
func (r *AlertRepository) Create(ctx context.Context, alert *models.Alert) error {
	query := `
		INSERT INTO alerts (` + alertColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (alert_id) DO NOTHING
	`

	_, err := r.db.ExecContext(ctx, query,
		alert.AlertID, alert.DeviceID, alert.MetricType, alert.Severity,
		alert.Title, alert.Message,
		nullFloat(alert.ThresholdValue), nullFloat(alert.CurrentValue),
		alert.Timestamp.UTC(), alert.Acknowledged,
		nullString(alert.AcknowledgedBy), nullTime(alert.AcknowledgedAt),
	)
	if err != nil {
		return storageErr("create alert", err)
	}

	return nil
}

// GetByID returns the alert or nil when no row matches.
func (r *AlertRepository) GetByID(ctx context.Context, alertID string) (*models.Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM alerts WHERE alert_id = $1`

	alert, err := scanAlert(r.db.QueryRowContext(ctx, query, alertID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("get alert", err)
	}

	return alert, nil
}

// Acknowledge stamps the acknowledgement fields and reports whether a row
// matched. Acknowledging an already-acknowledged alert succeeds and re-stamps
// acknowledged_by and acknowledged_at.
func (r *AlertRepository) Acknowledge(ctx context.Context, alertID, acknowledgedBy string) (bool, error) {
	query := `
		UPDATE alerts
		SET acknowledged = TRUE, acknowledged_by = $1, acknowledged_at = $2
		WHERE alert_id = $3
	`

	result, err := r.db.ExecContext(ctx, query, acknowledgedBy, time.Now().UTC(), alertID)
	if err != nil {
		return false, storageErr("acknowledge alert", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, storageErr("acknowledge alert", err)
	}

	return affected > 0, nil
}

// Active returns unacknowledged alerts, newest first, optionally filtered by
// device. An empty deviceID means all devices.
func (r *AlertRepository) Active(ctx context.Context, deviceID string) ([]models.Alert, error) {
	query := `
		SELECT ` + alertColumns + `
		FROM alerts
		WHERE acknowledged = FALSE
		ORDER BY timestamp DESC
	`
	args := []interface{}{}

	if deviceID != "" {
		query = `
			SELECT ` + alertColumns + `
			FROM alerts
			WHERE acknowledged = FALSE AND device_id = $1
			ORDER BY timestamp DESC
		`
		args = append(args, deviceID)
	}

	return r.queryAlerts(ctx, query, args...)
}

// History returns a paginated view of all alerts, newest first.
func (r *AlertRepository) History(ctx context.Context, limit, offset int) ([]models.Alert, error) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT ` + alertColumns + `
		FROM alerts
		ORDER BY timestamp DESC
		LIMIT $1 OFFSET $2
	`

	return r.queryAlerts(ctx, query, limit, offset)
}

// DeleteOld removes acknowledged alerts older than the given age and returns
// how many rows were removed.
func (r *AlertRepository) DeleteOld(ctx context.Context, olderThan time.Duration) (int64, error) {
	query := `DELETE FROM alerts WHERE acknowledged = TRUE AND timestamp < $1`

	result, err := r.db.ExecContext(ctx, query, time.Now().UTC().Add(-olderThan))
	if err != nil {
		return 0, storageErr("delete old alerts", err)
	}

	return result.RowsAffected()
}

func (r *AlertRepository) queryAlerts(ctx context.Context, query string, args ...interface{}) ([]models.Alert, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr("query alerts", err)
	}
	defer rows.Close()

	alerts := []models.Alert{}
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, storageErr("scan alert", err)
		}
		alerts = append(alerts, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate alerts", err)
	}

	return alerts, nil
}

func scanAlert(row rowScanner) (*models.Alert, error) {
	var a models.Alert
	var threshold, current sql.NullFloat64
	var ackedBy sql.NullString
	var ackedAt sql.NullTime

	err := row.Scan(
		&a.AlertID, &a.DeviceID, &a.MetricType, &a.Severity, &a.Title, &a.Message,
		&threshold, &current, &a.Timestamp, &a.Acknowledged, &ackedBy, &ackedAt,
	)
	if err != nil {
		return nil, err
	}

	if threshold.Valid {
		a.ThresholdValue = &threshold.Float64
	}
	if current.Valid {
		a.CurrentValue = &current.Float64
	}
	if ackedBy.Valid {
		a.AcknowledgedBy = &ackedBy.String
	}
	if ackedAt.Valid {
		a.AcknowledgedAt = &ackedAt.Time
	}

	return &a, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

func nullTime(v *time.Time) sql.NullTime {
	if v == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: v.UTC(), Valid: true}
}
