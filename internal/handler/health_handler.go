package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"NetMonitorAPI/internal/database"
	"NetMonitorAPI/internal/logger"
	"NetMonitorAPI/internal/monitor"
	"NetMonitorAPI/internal/mqtt"
)

type HealthHandler struct {
	db         *database.Database
	publisher  *mqtt.Publisher // nil when MQTT is disabled
	supervisor *monitor.Supervisor
	log        *logger.Logger
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Services  struct {
		Database   bool `json:"database"`
		MQTT       bool `json:"mqtt"`
		Monitoring bool `json:"monitoring"`
	} `json:"services"`
}

func NewHealthHandler(db *database.Database, publisher *mqtt.Publisher, supervisor *monitor.Supervisor, log *logger.Logger) *HealthHandler {
	return &HealthHandler{
		db:         db,
		publisher:  publisher,
		supervisor: supervisor,
		log:        log,
	}
}

func (h *HealthHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.Health).Methods("GET")
	r.HandleFunc("/health/live", h.Liveness).Methods("GET")
	r.HandleFunc("/health/ready", h.Readiness).Methods("GET")
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	response := healthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
	}

	dbErr := h.db.Health(ctx)
	response.Services.Database = (dbErr == nil)
	response.Services.MQTT = h.publisher == nil || h.publisher.IsConnected()
	response.Services.Monitoring = h.supervisor.Status().Running

	if !response.Services.Database || !response.Services.MQTT {
		response.Status = "degraded"
		h.log.Warn("Health check degraded - DB: %v, MQTT: %v", response.Services.Database, response.Services.MQTT)
	}

	statusCode := http.StatusOK
	if response.Status == "degraded" {
		statusCode = http.StatusServiceUnavailable
	}

	respondJSON(w, statusCode, response)
}

func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "alive",
	})
}

func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Health(ctx); err != nil {
		h.log.Warn("Readiness check failed - DB error: %v", err)
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}
