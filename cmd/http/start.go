package http

import (
	"log/slog"
	"path/filepath"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/coachbook/coachbook_backend/config"
	"github.com/coachbook/coachbook_backend/internal/api/http"
	"github.com/coachbook/coachbook_backend/internal/api/http/router"
	"github.com/coachbook/coachbook_backend/internal/app"
	"github.com/coachbook/coachbook_backend/pkg/logs"
)

func NewStartCommand() *cobra.Command {
	var (
		shutdownTimeout time.Duration
		verboseFx       bool
	)

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the HTTP API server and event workers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, err := cmd.Root().PersistentFlags().GetString("config")
			if err != nil {
				return err
			}

			cfg, err := config.ReadConfig(filepath.Dir(cfgPath))
			if err != nil {
				return err
			}

			// Set up structured logger before fx starts so all logs use it.
			logger, closeLogs, err := logs.New(cfg)
			if err != nil {
				return err
			}
			defer closeLogs()
			slog.SetDefault(logger)

			fxApp := fx.New(
				fx.Supply(cfg),
				app.InfraModule,
				app.ServiceModule,
				app.WorkerModule,
				router.Module,
				http.Module,
				fx.Invoke(func(*fiber.App) {}),
				fx.StopTimeout(shutdownTimeout),
				fx.WithLogger(func() fxevent.Logger {
					if verboseFx {
						return &fxevent.SlogLogger{Logger: logger}
					}
					return fxevent.NopLogger
				}),
			)

			fxApp.Run()
			return nil
		},
	}

	cmd.Flags().DurationVar(&shutdownTimeout, "shutdown-timeout", 30*time.Second, "Maximum time to wait for graceful shutdown")
	cmd.Flags().BoolVar(&verboseFx, "verbose-fx", false, "Log dependency injection events")

	return cmd
}
