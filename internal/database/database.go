// internal/database/database.go

package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"NetMonitorAPI/internal/config"

	// Database drivers register themselves with database/sql as side
	// effects. Both are pure Go.
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

type Database struct {
	DB  *sql.DB
	cfg *config.DatabaseConfig
}

func New(cfg *config.DatabaseConfig) (*Database, error) {
	var (
		driver string
		dsn    string
	)

	switch cfg.Driver {
	case "postgres":
		driver = "postgres"
		dsn = fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
		)
	case "sqlite":
		driver = "sqlite"
		if cfg.Path != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		dsn = cfg.Path
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	d := &Database{DB: db, cfg: cfg}
	if err := d.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return d, nil
}

// migrate creates the metric and alert tables. The UNIQUE-by-natural-key
// constraints back the upsert semantics of the repositories. All column types
// are accepted by both SQLite and Postgres.
func (d *Database) migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS interface_metrics (
			device_id      TEXT NOT NULL,
			interface_name TEXT NOT NULL,
			status         TEXT NOT NULL,
			admin_status   TEXT NOT NULL,
			speed          BIGINT NOT NULL DEFAULT 0,
			mtu            INTEGER NOT NULL DEFAULT 0,
			rx_packets     BIGINT NOT NULL DEFAULT 0,
			tx_packets     BIGINT NOT NULL DEFAULT 0,
			rx_bytes       BIGINT NOT NULL DEFAULT 0,
			tx_bytes       BIGINT NOT NULL DEFAULT 0,
			rx_errors      BIGINT NOT NULL DEFAULT 0,
			tx_errors      BIGINT NOT NULL DEFAULT 0,
			rx_drops       BIGINT NOT NULL DEFAULT 0,
			tx_drops       BIGINT NOT NULL DEFAULT 0,
			utilization_rx DOUBLE PRECISION NOT NULL DEFAULT 0,
			utilization_tx DOUBLE PRECISION NOT NULL DEFAULT 0,
			timestamp      TIMESTAMP NOT NULL,
			PRIMARY KEY (device_id, interface_name, timestamp)
		)`,
		`CREATE TABLE IF NOT EXISTS bgp_metrics (
			device_id         TEXT NOT NULL,
			peer_address      TEXT NOT NULL,
			peer_as           BIGINT NOT NULL DEFAULT 0,
			state             TEXT NOT NULL,
			uptime            BIGINT NOT NULL DEFAULT 0,
			received_routes   BIGINT NOT NULL DEFAULT 0,
			advertised_routes BIGINT NOT NULL DEFAULT 0,
			input_messages    BIGINT NOT NULL DEFAULT 0,
			output_messages   BIGINT NOT NULL DEFAULT 0,
			timestamp         TIMESTAMP NOT NULL,
			PRIMARY KEY (device_id, peer_address, timestamp)
		)`,
		`CREATE TABLE IF NOT EXISTS system_metrics (
			device_id      TEXT NOT NULL,
			cpu_load_1min  DOUBLE PRECISION NOT NULL DEFAULT 0,
			cpu_load_5min  DOUBLE PRECISION NOT NULL DEFAULT 0,
			cpu_load_15min DOUBLE PRECISION NOT NULL DEFAULT 0,
			memory_usage   BIGINT NOT NULL DEFAULT 0,
			memory_total   BIGINT NOT NULL DEFAULT 0,
			memory_percent DOUBLE PRECISION NOT NULL DEFAULT 0,
			temperature    DOUBLE PRECISION,
			uptime_seconds BIGINT NOT NULL DEFAULT 0,
			timestamp      TIMESTAMP NOT NULL,
			PRIMARY KEY (device_id, timestamp)
		)`,
		`CREATE TABLE IF NOT EXISTS alerts (
			alert_id        TEXT PRIMARY KEY,
			device_id       TEXT NOT NULL,
			metric_type     TEXT NOT NULL,
			severity        TEXT NOT NULL,
			title           TEXT NOT NULL,
			message         TEXT NOT NULL,
			threshold_value DOUBLE PRECISION,
			current_value   DOUBLE PRECISION,
			timestamp       TIMESTAMP NOT NULL,
			acknowledged    BOOLEAN NOT NULL DEFAULT FALSE,
			acknowledged_by TEXT,
			acknowledged_at TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_interface_metrics_device_ts
			ON interface_metrics (device_id, timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_bgp_metrics_device_ts
			ON bgp_metrics (device_id, timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_device_acked
			ON alerts (device_id, acknowledged)`,
	}

	for _, stmt := range statements {
		if _, err := d.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, stmt)
		}
	}

	return nil
}

func (d *Database) Close() error {
	return d.DB.Close()
}

func (d *Database) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := d.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	var result int
	if err := d.DB.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("database query check failed: %w", err)
	}

	return nil
}

func (d *Database) Stats() sql.DBStats {
	return d.DB.Stats()
}
