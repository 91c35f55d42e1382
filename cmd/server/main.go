package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"

	"github.com/manakavoo/manakavoo-backend/internal/api"
	"github.com/manakavoo/manakavoo-backend/internal/config"
	"github.com/manakavoo/manakavoo-backend/internal/logging"
	providerfactory "github.com/manakavoo/manakavoo-backend/internal/providers/factory"
	"github.com/manakavoo/manakavoo-backend/internal/repository/factory"
	"github.com/manakavoo/manakavoo-backend/internal/services"
	"github.com/manakavoo/manakavoo-backend/internal/youtube"
)

func main() {
	configFile := flag.String("config", "", "path to config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	logr, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatal("Failed to configure logging:", err)
	}

	// Open storage
	stores, err := factory.Open(cfg.Storage, logr)
	if err != nil {
		logr.WithError(err).Fatal("Failed to open storage")
	}
	defer stores.Close()

	provider, err := providerfactory.CreateProvider(cfg.LLM, logr)
	if err != nil {
		logr.WithError(err).Fatal("Failed to create completion provider")
	}

	svc := services.NewServices(
		cfg,
		provider,
		stores.Conversations,
		stores.Transcripts,
		youtube.NewClient(cfg.YouTube, logr),
		logr,
	)

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Manakavoo Backend",
		ErrorHandler: api.ErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.CORSOrigins,
		AllowHeaders: "*",
		AllowMethods: "GET, POST, OPTIONS",
	}))

	api.SetupRoutes(app, cfg.Server, svc, logr)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		logr.Info("Shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logr.WithError(err).Error("Shutdown failed")
		}
	}()

	logr.WithFields(logrus.Fields{
		"addr":     cfg.Server.Addr(),
		"storage":  cfg.Storage.Driver,
		"provider": provider.Name(),
	}).Info("Manakavoo backend starting")
	if err := app.Listen(cfg.Server.Addr()); err != nil {
		logr.WithError(err).Error("Server stopped")
	}
}
