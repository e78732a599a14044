package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"NetMonitorAPI/internal/config"
	"NetMonitorAPI/internal/database"
	"NetMonitorAPI/internal/device"
	"NetMonitorAPI/internal/handler"
	"NetMonitorAPI/internal/logger"
	"NetMonitorAPI/internal/models"
	"NetMonitorAPI/internal/monitor"
	"NetMonitorAPI/internal/notify"
	"NetMonitorAPI/internal/repository"
)

type idleSource struct{}

func (idleSource) FetchInterfaces(ctx context.Context, deviceID string, access device.Access) ([]models.InterfaceMetric, error) {
	return nil, nil
}

func (idleSource) FetchBGPPeers(ctx context.Context, deviceID string, access device.Access) ([]models.BGPMetric, error) {
	return nil, nil
}

func (idleSource) FetchSystem(ctx context.Context, deviceID string, access device.Access) (*models.SystemMetric, error) {
	return nil, nil
}

type apiFixture struct {
	router    *mux.Router
	alertRepo *repository.AlertRepository
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	log, err := logger.New(logger.Config{Level: logger.ERROR})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}

	db, err := database.New(&config.DatabaseConfig{
		Driver:       "sqlite",
		Path:         ":memory:",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	})
	if err != nil {
		t.Fatalf("database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	metricRepo := repository.NewMetricRepository(db.DB, log)
	alertRepo := repository.NewAlertRepository(db.DB)
	fanout := notify.NewFanout(log)
	collector := monitor.NewCollector(idleSource{}, time.Second, log)
	supervisor := monitor.NewSupervisor(collector, metricRepo, alertRepo, fanout, 2, time.Second, log)
	t.Cleanup(supervisor.Stop)

	router := mux.NewRouter()
	handler.NewMonitorHandler(supervisor, log).RegisterRoutes(router)
	handler.NewAlertHandler(supervisor, log).RegisterRoutes(router)

	return &apiFixture{router: router, alertRepo: alertRepo}
}

func (fx *apiFixture) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	fx.router.ServeHTTP(rec, req)
	return rec
}

func TestRegisterDeviceEndpoint(t *testing.T) {
	fx := newAPIFixture(t)

	rec := fx.do(t, "POST", "/monitor/devices", map[string]interface{}{
		"device_id": "r1",
		"host":      "192.0.2.1",
		"transport": "ssh",
		"username":  "admin",
		"password":  "secret",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	// Re-registering conflicts.
	rec = fx.do(t, "POST", "/monitor/devices", map[string]interface{}{
		"device_id": "r1",
		"host":      "192.0.2.1",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate status = %d, want 409", rec.Code)
	}

	// Missing host is a bad request.
	rec = fx.do(t, "POST", "/monitor/devices", map[string]interface{}{
		"device_id": "r2",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing host status = %d, want 400", rec.Code)
	}
}

func TestUnregisterDeviceEndpoint(t *testing.T) {
	fx := newAPIFixture(t)

	fx.do(t, "POST", "/monitor/devices", map[string]interface{}{
		"device_id": "r1",
		"host":      "192.0.2.1",
	})

	rec := fx.do(t, "DELETE", "/monitor/devices/r1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	rec = fx.do(t, "DELETE", "/monitor/devices/r1", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d, want 404", rec.Code)
	}
}

func TestStatusEndpoint(t *testing.T) {
	fx := newAPIFixture(t)

	rec := fx.do(t, "GET", "/monitor/status", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var status monitor.Status
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if status.Running {
		t.Error("supervisor reported running before start")
	}
	if status.Thresholds["cpu_warning"] != 70.0 {
		t.Errorf("thresholds missing from status: %+v", status.Thresholds)
	}
}

func TestStartStopEndpoints(t *testing.T) {
	fx := newAPIFixture(t)

	rec := fx.do(t, "POST", "/monitor/start", map[string]interface{}{"interval_seconds": 3600})
	if rec.Code != http.StatusOK {
		t.Fatalf("start status = %d, want 200", rec.Code)
	}
	var status monitor.Status
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !status.Running || status.Interval != 3600 {
		t.Fatalf("status after start = %+v", status)
	}

	rec = fx.do(t, "POST", "/monitor/stop", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("stop status = %d, want 200", rec.Code)
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if status.Running {
		t.Fatal("still running after stop")
	}
}

func TestUpdateThresholdsEndpoint(t *testing.T) {
	fx := newAPIFixture(t)

	rec := fx.do(t, "PUT", "/monitor/thresholds", map[string]float64{"cpu_warning": 75.0})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var status monitor.Status
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if status.Thresholds["cpu_warning"] != 75.0 {
		t.Errorf("cpu_warning = %v, want 75.0", status.Thresholds["cpu_warning"])
	}
	if status.Thresholds["cpu_critical"] != 90.0 {
		t.Errorf("cpu_critical = %v, want 90.0 (untouched)", status.Thresholds["cpu_critical"])
	}

	rec = fx.do(t, "PUT", "/monitor/thresholds", map[string]float64{"cpu_warning": -1.0})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid threshold status = %d, want 400", rec.Code)
	}
}

func TestAcknowledgeEndpoint(t *testing.T) {
	fx := newAPIFixture(t)
	ctx := context.Background()

	alert := models.Alert{
		AlertID:    "alert_r1_20260314_100000_system",
		DeviceID:   "r1",
		MetricType: models.MetricTypeSystem,
		Severity:   models.SeverityCritical,
		Title:      "High CPU Usage",
		Message:    "CPU load is 95.0",
		Timestamp:  time.Now().UTC(),
	}
	if err := fx.alertRepo.Create(ctx, &alert); err != nil {
		t.Fatalf("create: %v", err)
	}

	rec := fx.do(t, "PUT", "/alerts/acknowledge/"+alert.AlertID, map[string]string{
		"acknowledged_by": "operator",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	rec = fx.do(t, "PUT", "/alerts/acknowledge/alert_missing", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing alert status = %d, want 404", rec.Code)
	}
}

func TestActiveAlertsEndpoint(t *testing.T) {
	fx := newAPIFixture(t)
	ctx := context.Background()

	for _, id := range []string{"alert_r1_20260314_100000_system", "alert_r2_20260314_100000_system"} {
		alert := models.Alert{
			AlertID:    id,
			DeviceID:   id[6:8],
			MetricType: models.MetricTypeSystem,
			Severity:   models.SeverityWarning,
			Title:      "Elevated CPU Usage",
			Message:    "CPU load is 75.0",
			Timestamp:  time.Now().UTC(),
		}
		if err := fx.alertRepo.Create(ctx, &alert); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	rec := fx.do(t, "GET", "/alerts/active", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var alerts []models.Alert
	if err := json.Unmarshal(rec.Body.Bytes(), &alerts); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(alerts) != 2 {
		t.Fatalf("got %d alerts, want 2", len(alerts))
	}

	rec = fx.do(t, "GET", "/alerts/active?device_id=r1", nil)
	if err := json.Unmarshal(rec.Body.Bytes(), &alerts); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(alerts) != 1 || alerts[0].DeviceID != "r1" {
		t.Fatalf("device filter failed: %+v", alerts)
	}
}
