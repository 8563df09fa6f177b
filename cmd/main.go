package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vnkhanh/devlearn-backend/config"
	"github.com/vnkhanh/devlearn-backend/controllers"
	"github.com/vnkhanh/devlearn-backend/middleware"
	"github.com/vnkhanh/devlearn-backend/routes"
	"github.com/vnkhanh/devlearn-backend/seed"
	"github.com/vnkhanh/devlearn-backend/ws"
)

var (
	cfg      config.Config
	logger   *zap.Logger
	seedFile string
)

var rootCmd = &cobra.Command{
	Use:   "devlearn",
	Short: "DevLearn catalog backend",
	Long:  "REST API cho catalog Subject/Topic, live code runner và catalog websocket.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Load .env
		if err := godotenv.Load(); err != nil {
			fmt.Fprintln(os.Stderr, "Không tìm thấy file .env")
		}

		cfg = config.Load()
		var err error
		logger, err = config.InitLogger(cfg.Env)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Chạy HTTP server",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "AutoMigrate các bảng users, subjects, topics",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := config.Connect(cfg)
		if err != nil {
			return err
		}
		if err := config.Migrate(db); err != nil {
			return err
		}
		logger.Info("migrate done")
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Nạp dữ liệu mẫu (admin, subjects, topics)",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := config.Connect(cfg)
		if err != nil {
			return err
		}
		if err := config.Migrate(db); err != nil {
			return err
		}

		catalog, err := seed.DefaultCatalog()
		if seedFile != "" {
			catalog, err = seed.LoadCatalog(seedFile)
		}
		if err != nil {
			return err
		}

		report, err := seed.Run(cmd.Context(), db, catalog, seed.Admin{
			Email:    cfg.AdminEmail,
			Password: cfg.AdminPassword,
		})
		if err != nil {
			return err
		}
		logger.Info("seed done",
			zap.Bool("adminCreated", report.AdminCreated),
			zap.Int("subjectsCreated", report.SubjectsCreated),
			zap.Int("subjectsSkipped", report.SubjectsSkipped),
			zap.Int("topicsCreated", report.TopicsCreated),
			zap.Int("topicsSkipped", report.TopicsSkipped),
		)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "file YAML catalog (mặc định dùng catalog nhúng sẵn)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := config.InitDB(cfg); err != nil {
		return err
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.ZapLogger(logger))

	//Bật CORS
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Auth-Token"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))
	ws.SetAllowedOrigins(cfg.CORSOrigins)
	controllers.ConfigureLiveCode(cfg.LiveCodeTimeout)

	// Gọi SetupRouter để đăng ký route
	r = routes.SetupRouter(r)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server running", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	ws.H.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
