// Runbook — локальный исполнитель автоматизации: декларативные
// workflow из JSON-файлов плюс пайплайн обработки загрузок.
//
// Использование:
//
//	runbook [--config config.yaml] [--workflow FILE] [--upload FILE] [--verbose]
//	runbook scheduler [--config config.yaml]
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/shaiso/Runbook/internal/config"
	"github.com/shaiso/Runbook/internal/engine"
	"github.com/shaiso/Runbook/internal/orchestrator"
	"github.com/shaiso/Runbook/internal/scheduler"
	"github.com/shaiso/Runbook/internal/telemetry"
	"github.com/shaiso/Runbook/internal/upload"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	var (
		configPath   string
		workflowPath string
		uploadPath   string
		verbose      bool
	)

	rootCmd := &cobra.Command{
		Use:           "runbook",
		Short:         "Runbook — local automation runner",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(configPath, verbose)
			if err != nil {
				return err
			}

			if workflowPath == "" && uploadPath == "" {
				return cmd.Help()
			}

			orch := buildOrchestrator(cfg, logger)

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			if workflowPath != "" {
				logger.Info("executing workflow", "path", workflowPath)
				if _, err := orch.SubmitWorkflow(ctx, workflowPath); err != nil {
					return fmt.Errorf("execute workflow: %w", err)
				}
			}

			if uploadPath != "" {
				logger.Info("processing upload", "path", uploadPath)
				if _, err := orch.SubmitUpload(ctx, uploadPath); err != nil {
					return fmt.Errorf("process upload: %w", err)
				}
			}

			logger.Info("done")
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Configuration file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.Flags().StringVarP(&workflowPath, "workflow", "w", "", "Workflow file to execute")
	rootCmd.Flags().StringVarP(&uploadPath, "upload", "u", "", "File to process as upload")

	rootCmd.AddCommand(newSchedulerCmd(&configPath, &verbose))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// newSchedulerCmd создаёт команду daemon-режима: cron-планировщик
// плюс HTTP-сервер с /healthz и /metrics.
func newSchedulerCmd(configPath *string, verbose *bool) *cobra.Command {
	var listenAddr string

	cmd := &cobra.Command{
		Use:   "scheduler",
		Short: "Run the cron scheduler daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(*configPath, *verbose)
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			orch := buildOrchestrator(cfg, logger)
			sched := scheduler.New(scheduler.Config{
				Orchestrator: orch,
				Schedules:    cfg.Schedules,
				Logger:       logger,
			})

			mux := http.NewServeMux()
			mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("ok"))
			})
			mux.Handle("/metrics", promhttp.Handler())

			server := &http.Server{Addr: listenAddr, Handler: mux}
			go func() {
				logger.Info("listening", "addr", listenAddr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("http server failed", "error", err)
					cancel()
				}
			}()

			sched.Run(ctx)

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			return server.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&listenAddr, "listen", ":8081", "HTTP listen address for /healthz and /metrics")

	return cmd
}

// setup загружает конфигурацию и инициализирует глобальный логгер.
func setup(configPath string, verbose bool) (config.Config, *slog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, nil, err
	}

	level := telemetry.ParseLevel(cfg.Logging.LogLevel)
	if verbose {
		level = slog.LevelDebug
	}
	logger := telemetry.SetupLogger(level)

	logger.Info("configuration loaded", "path", configPath)
	return cfg, logger, nil
}

func buildOrchestrator(cfg config.Config, logger *slog.Logger) *orchestrator.Orchestrator {
	eng := engine.New(cfg.Workflow, logger)
	uploads := upload.New(cfg.Upload, logger)

	return orchestrator.New(orchestrator.Config{
		Engine:        eng,
		Uploads:       uploads,
		MaxConcurrent: cfg.Workflow.MaxConcurrentWorkflows,
		Logger:        logger,
	})
}
