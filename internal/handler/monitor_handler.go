package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"NetMonitorAPI/internal/device"
	"NetMonitorAPI/internal/logger"
	"NetMonitorAPI/internal/models"
	"NetMonitorAPI/internal/monitor"
)

type MonitorHandler struct {
	supervisor *monitor.Supervisor
	log        *logger.Logger
}

func NewMonitorHandler(supervisor *monitor.Supervisor, log *logger.Logger) *MonitorHandler {
	return &MonitorHandler{
		supervisor: supervisor,
		log:        log,
	}
}

func (h *MonitorHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/monitor/devices", h.RegisterDevice).Methods("POST")
	r.HandleFunc("/monitor/devices/{device_id}", h.UnregisterDevice).Methods("DELETE")
	r.HandleFunc("/monitor/start", h.Start).Methods("POST")
	r.HandleFunc("/monitor/stop", h.Stop).Methods("POST")
	r.HandleFunc("/monitor/status", h.Status).Methods("GET")
	r.HandleFunc("/monitor/thresholds", h.UpdateThresholds).Methods("PUT")
	r.HandleFunc("/monitor/metrics/{device_id}", h.CurrentMetrics).Methods("GET")
	r.HandleFunc("/monitor/metrics/{device_id}/history", h.HistoricalMetrics).Methods("GET")
}

type registerDeviceRequest struct {
	DeviceID  string `json:"device_id"`
	Host      string `json:"host"`
	Port      int    `json:"port"`
	Transport string `json:"transport"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	Community string `json:"community"`
}

func (h *MonitorHandler) RegisterDevice(w http.ResponseWriter, r *http.Request) {
	var req registerDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	access := device.Access{
		Host:      req.Host,
		Port:      req.Port,
		Transport: req.Transport,
		Username:  req.Username,
		Password:  req.Password,
		Community: req.Community,
	}

	if err := h.supervisor.RegisterDevice(req.DeviceID, access); err != nil {
		if errors.Is(err, monitor.ErrDeviceExists) {
			respondError(w, http.StatusConflict, err.Error())
			return
		}
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{
		"status":    "device registered",
		"device_id": req.DeviceID,
	})
}

func (h *MonitorHandler) UnregisterDevice(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	deviceID := vars["device_id"]

	if err := h.supervisor.UnregisterDevice(deviceID); err != nil {
		if errors.Is(err, monitor.ErrDeviceNotFound) {
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status":    "device unregistered",
		"device_id": deviceID,
	})
}

type startRequest struct {
	IntervalSeconds int `json:"interval_seconds"`
}

func (h *MonitorHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}
	if req.IntervalSeconds < 0 {
		respondError(w, http.StatusBadRequest, "interval_seconds must be positive")
		return
	}

	h.supervisor.Start(time.Duration(req.IntervalSeconds) * time.Second)
	respondJSON(w, http.StatusOK, h.supervisor.Status())
}

func (h *MonitorHandler) Stop(w http.ResponseWriter, r *http.Request) {
	h.supervisor.Stop()
	respondJSON(w, http.StatusOK, h.supervisor.Status())
}

func (h *MonitorHandler) Status(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.supervisor.Status())
}

func (h *MonitorHandler) UpdateThresholds(w http.ResponseWriter, r *http.Request) {
	var partial models.Thresholds
	if err := json.NewDecoder(r.Body).Decode(&partial); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.supervisor.UpdateThresholds(partial); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, h.supervisor.Status())
}

func (h *MonitorHandler) CurrentMetrics(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	deviceID := vars["device_id"]

	metrics, err := h.supervisor.CurrentMetrics(r.Context(), deviceID)
	if err != nil {
		h.log.Error("Failed to get current metrics for %s: %v", deviceID, err)
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, metrics)
}

func (h *MonitorHandler) HistoricalMetrics(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	deviceID := vars["device_id"]

	start, end, err := parseTimeRange(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "start/end must be RFC 3339 timestamps")
		return
	}

	metricType := r.URL.Query().Get("type")
	switch metricType {
	case models.MetricTypeInterface:
		metrics, err := h.supervisor.HistoricalInterfaces(r.Context(), deviceID, start, end)
		if err != nil {
			h.log.Error("Failed to get interface history for %s: %v", deviceID, err)
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		respondJSON(w, http.StatusOK, metrics)
	case models.MetricTypeBGP:
		metrics, err := h.supervisor.HistoricalBGPPeers(r.Context(), deviceID, start, end)
		if err != nil {
			h.log.Error("Failed to get BGP history for %s: %v", deviceID, err)
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		respondJSON(w, http.StatusOK, metrics)
	case models.MetricTypeSystem, "":
		metrics, err := h.supervisor.HistoricalSystem(r.Context(), deviceID, start, end)
		if err != nil {
			h.log.Error("Failed to get system history for %s: %v", deviceID, err)
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		respondJSON(w, http.StatusOK, metrics)
	default:
		respondError(w, http.StatusBadRequest, "type must be one of: system, interface, bgp")
	}
}
