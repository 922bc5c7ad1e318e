package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"qrlink/cmd"
	"qrlink/internal/api"
	"qrlink/internal/config"
	"qrlink/internal/geo"
	"qrlink/internal/models"
	"qrlink/internal/monitor"
	"qrlink/internal/qrimage"
	"qrlink/internal/repository"
	"qrlink/internal/services"
	"qrlink/internal/summary"
	"qrlink/internal/workers"
)

// RunServerCmd starts the HTTP server, the visit workers and the target
// URL monitor.
var RunServerCmd = &cobra.Command{
	Use:   "run-server",
	Short: "Starts the QR short-link API server and background processes.",
	Long: `Initializes the database, wires the repositories and services,
starts the asynchronous visit workers and the target URL monitor,
then serves the HTTP API.`,
	Run: func(cobraCmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig()
		if err != nil {
			logrus.Fatalf("Failed to load configuration: %v", err)
		}

		db, err := gorm.Open(sqlite.Open(cfg.Database.Name), &gorm.Config{})
		if err != nil {
			logrus.Fatalf("Failed to connect to database: %v", err)
		}

		if err := db.AutoMigrate(&models.Code{}, &models.Visit{}); err != nil {
			logrus.Fatalf("Failed to migrate database: %v", err)
		}

		codeRepo := repository.NewCodeRepository(db)
		visitRepo := repository.NewVisitRepository(db)
		logrus.Info("Repositories initialized.")

		// Geo lookup is optional; without a database every visit gets
		// the unknown location.
		var locator geo.Locator = geo.NoopLocator{}
		if cfg.GeoIP.DBPath != "" {
			geoLocator, err := geo.Open(cfg.GeoIP.DBPath)
			if err != nil {
				logrus.Warnf("Geo lookup disabled: %v", err)
			} else {
				defer geoLocator.Close()
				locator = geoLocator
			}
		}

		summaryTimeout := time.Duration(cfg.Summary.TimeoutSeconds) * time.Second
		summarizer := summary.ForEndpoint(cfg.Summary.Endpoint, cfg.Summary.APIKey, summaryTimeout)

		visitEvents := make(chan models.VisitEvent, cfg.Analytics.BufferSize)
		workers.StartVisitWorkers(cfg.Analytics.WorkerCount, visitEvents, visitRepo)
		logrus.Infof("Visit event channel initialized with a buffer of %d. %d worker(s) started.",
			cfg.Analytics.BufferSize, cfg.Analytics.WorkerCount)

		codeService := services.NewCodeService(codeRepo, qrimage.NewPNGEncoder(), cfg.Server.BaseURL)
		recorder := services.NewChannelRecorder(visitEvents)
		resolver := services.NewResolver(codeRepo, locator, recorder)
		analyticsService := services.NewAnalyticsService(codeRepo, visitRepo, summarizer, summaryTimeout)
		logrus.Info("Services initialized.")

		monitorInterval := time.Duration(cfg.Monitor.IntervalMinutes) * time.Minute
		targetMonitor := monitor.NewTargetMonitor(codeRepo, monitorInterval)
		go targetMonitor.Start()
		logrus.Infof("Target URL monitor started with an interval of %v.", monitorInterval)

		router := gin.Default()
		api.SetupRoutes(router, codeService, resolver, analyticsService)
		logrus.Info("API routes configured.")

		serverAddr := fmt.Sprintf(":%d", cfg.Server.Port)
		srv := &http.Server{
			Addr:    serverAddr,
			Handler: router,
		}

		go func() {
			logrus.Infof("Starting server on %s", serverAddr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logrus.Fatalf("Failed to start server: %v", err)
			}
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logrus.Info("Shutdown signal received. Stopping server...")

		// Stop accepting requests first; only then may the event
		// channel close, so no in-flight redirect can hit a closed
		// recorder.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logrus.Errorf("HTTP server shutdown: %v", err)
		}

		// Close the recorder and give the workers time to drain.
		recorder.Close()
		time.Sleep(5 * time.Second)

		logrus.Info("Server stopped cleanly.")
	},
}

func init() {
	cmd.RootCmd.AddCommand(RunServerCmd)
}
