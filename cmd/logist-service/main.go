package main

import (
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/nurpe/logist-zp/internal/audit"
	"github.com/nurpe/logist-zp/internal/auth"
	"github.com/nurpe/logist-zp/internal/config"
	"github.com/nurpe/logist-zp/internal/db"
	"github.com/nurpe/logist-zp/internal/excel"
	httphandler "github.com/nurpe/logist-zp/internal/http"
	"github.com/nurpe/logist-zp/internal/http/middleware"
	"github.com/nurpe/logist-zp/internal/logger"
	"github.com/nurpe/logist-zp/internal/metrics"
	"github.com/nurpe/logist-zp/internal/model"
	"github.com/nurpe/logist-zp/internal/pdf"
	"github.com/nurpe/logist-zp/internal/repository"
	"github.com/nurpe/logist-zp/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment, cfg.LogLevel)

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}
	sqlDB, err := database.DB()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to access database pool")
	}

	var appMetrics *metrics.Metrics
	if cfg.Metrics.Enabled {
		registry := prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		appMetrics = metrics.New(registry)
	}

	tripRepo := repository.NewTripRepository(database)
	sessionRepo := repository.NewSessionRepository(database)
	actRepo := repository.NewActRepository(database)
	payrollRepo := repository.NewPayrollRepository(database)
	advanceRepo := repository.NewAdvanceRepository(database)
	settingsRepo := repository.NewSettingsRepository(database)
	dashboardRepo := repository.NewDashboardRepository(database)
	employeeRepo := repository.NewReferenceRepository[model.Employee](database)
	carrierRepo := repository.NewReferenceRepository[model.Carrier](database)
	buyerRepo := repository.NewReferenceRepository[model.Buyer](database)

	trail := audit.NewGormTrail(database)
	excelGenerator := excel.NewGenerator()
	pdfGenerator, err := pdf.NewGenerator(cfg.PDF.FontPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init pdf generator")
	}

	settingsService := service.NewSettingsService(settingsRepo, log)
	services := httphandler.Services{
		Trips:     service.NewTripService(database, tripRepo, carrierRepo, trail, appMetrics),
		Sessions:  service.NewSessionService(database, sessionRepo, trail, appMetrics),
		Acts:      service.NewActService(database, actRepo, tripRepo, buyerRepo, excelGenerator, pdfGenerator),
		Payroll:   service.NewPayrollService(database, payrollRepo, tripRepo, sessionRepo, settingsService, trail, excelGenerator, appMetrics, log),
		Advances:  service.NewAdvanceService(advanceRepo, employeeRepo),
		Dashboard: service.NewDashboardService(dashboardRepo, buyerRepo),
		Settings:  settingsService,
		References: httphandler.References{
			Employees:    service.NewReferenceService("employee", employeeRepo),
			Carriers:     service.NewReferenceService("carrier", carrierRepo),
			Buyers:       service.NewReferenceService("buyer", buyerRepo),
			Materials:    service.NewReferenceService("material", repository.NewReferenceRepository[model.Material](database)),
			Vehicles:     service.NewReferenceService("vehicle", repository.NewReferenceRepository[model.Vehicle](database)),
			Machinery:    service.NewReferenceService("machinery", repository.NewReferenceRepository[model.Machinery](database)),
			ObjectPlaces: service.NewReferenceService("object place", repository.NewReferenceRepository[model.ObjectPlace](database)),
		},
	}

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	handler := httphandler.NewHandler(services, sqlDB.PingContext, log)
	authMiddleware := middleware.Auth(tokenParser)
	router, err := httphandler.NewRouter(handler, authMiddleware, appMetrics, cfg)
	if err != nil {
		log.Error().Err(err).Msg("failed to build router")
		os.Exit(1)
	}

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Str("db_driver", cfg.DB.Driver).Bool("metrics", appMetrics != nil).Msg("starting logistics service")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
