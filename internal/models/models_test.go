package models_test

import (
	"testing"
	"time"

	"NetMonitorAPI/internal/models"
)

func TestNewAlertID(t *testing.T) {
	at := time.Date(2026, 3, 14, 10, 30, 45, 0, time.UTC)

	got := models.NewAlertID("router1", models.MetricTypeBGP, at)
	want := "alert_router1_20260314_103045_bgp"
	if got != want {
		t.Errorf("NewAlertID = %q, want %q", got, want)
	}
}

func TestNewAlertIDNormalizesToUTC(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*3600)
	local := time.Date(2026, 3, 14, 12, 30, 45, 0, loc)
	utc := time.Date(2026, 3, 14, 10, 30, 45, 0, time.UTC)

	if models.NewAlertID("r1", "system", local) != models.NewAlertID("r1", "system", utc) {
		t.Error("alert ids must not depend on the input timezone")
	}
}

func TestDefaultThresholds(t *testing.T) {
	th := models.DefaultThresholds()

	want := map[string]float64{
		"cpu_warning":                   70.0,
		"cpu_critical":                  90.0,
		"memory_warning":                80.0,
		"memory_critical":               95.0,
		"interface_error_rate_warning":  0.01,
		"interface_error_rate_critical": 0.05,
		"temperature_warning":           70.0,
		"temperature_critical":          85.0,
	}
	for name, value := range want {
		if th[name] != value {
			t.Errorf("%s = %v, want %v", name, th[name], value)
		}
	}
}

func TestThresholdsMerge(t *testing.T) {
	base := models.Thresholds{"cpu_warning": 70.0, "cpu_critical": 90.0}

	merged := base.Merge(models.Thresholds{"cpu_warning": 75.0, "disk_warning": 80.0})

	if merged["cpu_warning"] != 75.0 {
		t.Errorf("overwritten key = %v, want 75.0", merged["cpu_warning"])
	}
	if merged["cpu_critical"] != 90.0 {
		t.Errorf("untouched key = %v, want 90.0", merged["cpu_critical"])
	}
	if merged["disk_warning"] != 80.0 {
		t.Errorf("new key = %v, want 80.0", merged["disk_warning"])
	}
	if base["cpu_warning"] != 70.0 {
		t.Error("Merge must not mutate the receiver")
	}
}

func TestThresholdsValidate(t *testing.T) {
	valid := models.Thresholds{"cpu_warning": 75.0}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid map rejected: %v", err)
	}

	invalid := []models.Thresholds{
		{"": 1.0},
		{"cpu_warning": -5.0},
	}
	for _, th := range invalid {
		if err := th.Validate(); err == nil {
			t.Errorf("invalid map %v accepted", th)
		}
	}
}
