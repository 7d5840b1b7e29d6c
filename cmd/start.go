package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"customer-merger/core/loader"
	"customer-merger/core/lock"
	"customer-merger/core/logger"
	"customer-merger/core/middleware/auth"
	"customer-merger/core/middleware/rayid"
	"customer-merger/core/storage"
	"customer-merger/feature/online"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "customer-merger/docs/swagger"
)

// @title Customer Merger API
// @version 1.0
// @description API for triggering customer profile merges and reading profiles.
// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the merge server",
	Long:  `Starts the HTTP server that triggers merge runs and serves customer profiles.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		// 1. Configuration, logger and store
		rt, err := bootstrap()
		if err != nil {
			log.Fatalf("Failed to start: %v", err)
		}
		cfg, logg := rt.cfg, rt.logger
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		// 2. Run lock (redis when configured)
		locker, err := lock.New(ctx, cfg.Redis)
		if err != nil {
			logg.Fatal("Failed to create run lock", zap.Error(err))
		}
		if cfg.Redis.Addr != "" {
			logg.Info("Using redis run lock", zap.String("addr", cfg.Redis.Addr))
		}

		// 3. Snapshot archive (optional)
		archiver, err := storage.FromConfig(cfg.Storage)
		if err != nil {
			logg.Fatal("Failed to create storage client", zap.Error(err))
		}
		if err := archiver.EnsureBucket(ctx); err != nil {
			logg.Warn("Archive bucket unavailable, reports will not be archived", zap.Error(err))
			archiver = nil
		}

		// 4. Features
		controller := online.NewController(rt.store, cfg.Merge, logg)
		service := online.NewService(controller, rt.store, locker, archiver, logg)

		mgr := loader.NewManager()
		mgr.Register(online.NewFeature(service, online.NewHandler(service, logg)))

		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
		})

		// RayID first so every log line below carries it.
		app.Use(rayid.New())

		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		if cfg.Server.Docs {
			app.Get("/swagger/*", swagger.HandlerDefault)
		}

		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey, Skip: []string{"/swagger"}}))
		if !cfg.Server.IsProtected() {
			logg.Warn("No API key configured, the API is open")
		}

		loaded, err := mgr.LoadAll(app.Group(cfg.Server.Prefix))
		if err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}
		logg.Info("Loaded features", zap.Strings("features", loaded))

		go func() {
			logg.Info("Starting server", zap.String("address", cfg.Server.Address()))
			if err := app.Listen(cfg.Server.Address()); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		_ = app.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
