package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"NetMonitorAPI/internal/logger"
	"NetMonitorAPI/internal/monitor"
)

type AlertHandler struct {
	supervisor *monitor.Supervisor
	log        *logger.Logger
}

func NewAlertHandler(supervisor *monitor.Supervisor, log *logger.Logger) *AlertHandler {
	return &AlertHandler{
		supervisor: supervisor,
		log:        log,
	}
}

func (h *AlertHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/alerts/active", h.GetActiveAlerts).Methods("GET")
	r.HandleFunc("/alerts/history", h.GetAlertHistory).Methods("GET")
	r.HandleFunc("/alerts/acknowledge/{alert_id}", h.Acknowledge).Methods("PUT")
}

func (h *AlertHandler) GetActiveAlerts(w http.ResponseWriter, r *http.Request) {
	deviceID := r.URL.Query().Get("device_id")

	alerts, err := h.supervisor.ActiveAlerts(r.Context(), deviceID)
	if err != nil {
		h.log.Error("Failed to get active alerts: %v", err)
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, alerts)
}

func (h *AlertHandler) GetAlertHistory(w http.ResponseWriter, r *http.Request) {
	limit := 50
	offset := 0

	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil {
			limit = parsed
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if parsed, err := strconv.Atoi(o); err == nil {
			offset = parsed
		}
	}

	alerts, err := h.supervisor.AlertHistory(r.Context(), limit, offset)
	if err != nil {
		h.log.Error("Failed to get alert history: %v", err)
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, alerts)
}

type acknowledgeRequest struct {
	AcknowledgedBy string `json:"acknowledged_by"`
}

func (h *AlertHandler) Acknowledge(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	alertID := vars["alert_id"]

	var req acknowledgeRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}
	if req.AcknowledgedBy == "" {
		req.AcknowledgedBy = "system"
	}

	ok, err := h.supervisor.AcknowledgeAlert(r.Context(), alertID, req.AcknowledgedBy)
	if err != nil {
		h.log.Error("Failed to acknowledge alert %s: %v", alertID, err)
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !ok {
		respondError(w, http.StatusNotFound, "Alert not found")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "alert acknowledged"})
}
