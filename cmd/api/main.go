package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"NetMonitorAPI/internal/config"
	"NetMonitorAPI/internal/database"
	"NetMonitorAPI/internal/device"
	"NetMonitorAPI/internal/handler"
	"NetMonitorAPI/internal/logger"
	"NetMonitorAPI/internal/monitor"
	"NetMonitorAPI/internal/mqtt"
	"NetMonitorAPI/internal/notify"
	"NetMonitorAPI/internal/repository"
	"NetMonitorAPI/internal/server"
	"NetMonitorAPI/internal/websocket"
)

func main() {
	// 1. Load Config
	cfg, err := config.Load()
	if err != nil {
		// Fallback logger since main logger isn't ready
		panic("Failed to load configuration: " + err.Error())
	}

	// 2. Initialize Logger
	log, err := logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		LogFilePath: cfg.Logging.FilePath,
		UseColors:   cfg.Logging.UseColors,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer log.Close()

	if err := cfg.Validate(); err != nil {
		log.Fatal("Configuration validation failed: %v", err)
	}

	cfg.Print()
	log.Info("Starting Net Monitor API Server")

	// 3. Database Connection
	db, err := database.New(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	log.Info("Database connected successfully")

	ctx := context.Background()
	if err := db.Health(ctx); err != nil {
		log.Fatal("Database health check failed: %v", err)
	}

	// 4. Initialize Repositories
	metricRepo := repository.NewMetricRepository(db.DB, log)
	alertRepo := repository.NewAlertRepository(db.DB)

	// 5. Event Fan-out + WebSocket Hub
	fanout := notify.NewFanout(log)

	hub := websocket.NewHub(log)
	hubCtx, hubCancel := context.WithCancel(context.Background())
	defer hubCancel()
	go hub.Run(hubCtx)
	fanout.Register(hub)

	// 6. Optional MQTT bridge
	var publisher *mqtt.Publisher
	if cfg.MQTT.Enabled {
		publisher, err = mqtt.NewPublisher(&cfg.MQTT, log)
		if err != nil {
			log.Fatal("Failed to create MQTT publisher: %v", err)
		}
		if err := publisher.Connect(); err != nil {
			log.Fatal("Failed to connect to MQTT broker: %v", err)
		}
		defer publisher.Disconnect()
		fanout.Register(publisher)
	}

	// 7. Telemetry Source + Monitoring Supervisor
	source := &device.MultiSource{
		SSH:  device.NewSSHSource(cfg.Monitor.FetchTimeout, log),
		SNMP: device.NewSNMPSource(cfg.Monitor.FetchTimeout, log),
	}
	collector := monitor.NewCollector(source, cfg.Monitor.FetchTimeout, log)
	supervisor := monitor.NewSupervisor(
		collector,
		metricRepo,
		alertRepo,
		fanout,
		cfg.Monitor.Concurrency,
		cfg.Monitor.StopGrace,
		log,
	)
	defer supervisor.Stop()

	// 8. Initialize Handlers
	monitorHandler := handler.NewMonitorHandler(supervisor, log)
	alertHandler := handler.NewAlertHandler(supervisor, log)
	healthHandler := handler.NewHealthHandler(db, publisher, supervisor, log)

	// 9. Start HTTP Server
	srv := server.New(cfg, log)
	srv.RegisterHandlers(monitorHandler, alertHandler, healthHandler, hub)

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal("Server failed: %v", err)
		}
	}()

	log.Info("API server ready on http://%s:%d", cfg.Server.Host, cfg.Server.Port)

	// 10. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Warn("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error: %v", err)
	}

	supervisor.Stop()

	log.Info("Shutdown complete")
}
