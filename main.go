// Design studio backend: plans and generates product design variants through
// external image providers, scores them, and exports Nuke finishing scripts.
package main

import (
	"context"
	"fmt"
	"os"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"studio_backend/agent"
	"studio_backend/core"
	"studio_backend/core/validation"
	"studio_backend/db"
	"studio_backend/imagegen"
	"studio_backend/iteration"
	"studio_backend/logging"
	"studio_backend/nukescript"
	"studio_backend/shutdown"
	"studio_backend/storage"
	"studio_backend/webapi"
)

func main() {
	// Service management commands (install/start/stop) exit here.
	if HandleServiceCommand(os.Args) {
		return
	}

	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		// Use fmt here since logger isn't initialized yet
		fmt.Printf("Warning: .env file not found: %v\n", err)
	}

	isDevelopment := os.Getenv("DEV_MODE") == "true"

	logger, err := logging.NewLogger(isDevelopment, core.GetEnvOrDefault("LOG_FILE", "app.log"))
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(core.ExitCodeError)
	}
	defer func() {
		if syncErr := logger.Sync(); syncErr != nil {
			fmt.Printf("Failed to sync logger: %v\n", syncErr)
		}
	}()

	if code := runStartupValidation(logger); code != core.ExitCodeSuccess {
		os.Exit(code)
	}

	config, err := core.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}
	if err := config.Validate(); err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}

	logger.Info("Configuration loaded",
		zap.String("provider", config.Provider),
		zap.String("host", config.Host),
		zap.Int("port", config.Port),
		zap.Int("max_parallel_agents", config.MaxParallelAgents),
		zap.Duration("generation_timeout", config.GenerationTimeout),
		zap.String("output_dir", config.OutputDir),
		zap.String("database_path", config.DatabasePath),
		zap.Bool("auth_enabled", config.WebAPIPassword != ""),
		zap.Bool("dev_mode", isDevelopment),
	)

	provider, err := imagegen.NewProviderFromConfig(config)
	if err != nil {
		logger.Fatal("Failed to create generation provider", zap.Error(err))
	}

	if err := db.MigrateUpFromPath(config.DatabasePath, config.MigrationsPath); err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}
	conn, err := db.OpenWithDefaults(config.DatabasePath)
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}
	history := db.NewHistoryRepository(conn)

	store, err := storage.NewStore(config.OutputDir)
	if err != nil {
		logger.Fatal("Failed to create output storage", zap.Error(err))
	}

	executor, err := agent.NewExecutor(provider, logger.Zap(), config.MaxParallelAgents)
	if err != nil {
		logger.Fatal("Failed to create variant executor", zap.Error(err))
	}
	runner, err := iteration.NewRunner(provider, logger.Zap(), config.MaxParallelAgents)
	if err != nil {
		logger.Fatal("Failed to create iteration runner", zap.Error(err))
	}

	pipeline, err := webapi.NewPipeline(
		agent.NewPlanner(config.FallbackPalettes),
		executor,
		runner,
		store,
		history,
		nukescript.NewGenerator(config.NukeExport),
		config.Provider,
		logger.Zap(),
	)
	if err != nil {
		logger.Fatal("Failed to wire pipeline", zap.Error(err))
	}

	serverConfig := webapi.DefaultServerConfig()
	serverConfig.Host = config.Host
	serverConfig.Port = config.Port
	serverConfig.Password = config.WebAPIPassword
	server, err := webapi.NewServer(serverConfig, pipeline, logger.Zap())
	if err != nil {
		logger.Fatal("Failed to create API server", zap.Error(err))
	}

	manager := shutdown.NewManager(logger.Zap())
	manager.Register("logs", 5, func(ctx context.Context) error {
		// Syncing a console core attached to a tty reports EINVAL; only
		// the rotating file core needs the flush.
		_ = logger.Sync()
		return nil
	})
	manager.Register("http server", 10, server.Shutdown)
	manager.Register("database", 30, func(ctx context.Context) error {
		return conn.Close()
	})
	manager.Start()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	exitCode := core.ExitCodeSuccess
	select {
	case err := <-serverErr:
		if err != nil {
			logger.Error("Server failed", zap.Error(err))
			exitCode = core.ExitCodeError
		}
	case <-manager.Context().Done():
	}

	if err := manager.Shutdown(); err != nil {
		logger.Error("Shutdown finished with errors", zap.Error(err))
		if exitCode == core.ExitCodeSuccess {
			exitCode = core.ExitCodeError
		}
	}

	if exitCode == core.ExitCodeSuccess {
		exitCode = signalExitCode(manager.Signal())
	}

	logger.Info("Goodbye!")
	os.Exit(exitCode)
}

// signalExitCode maps a signal-initiated shutdown to the conventional
// 128+signal exit code.
func signalExitCode(sig os.Signal) int {
	switch sig {
	case syscall.SIGINT:
		return core.ExitCodeSIGINT
	case syscall.SIGTERM:
		return core.ExitCodeSIGTERM
	default:
		return core.ExitCodeSuccess
	}
}

// runStartupValidation checks the environment before any heavy component is
// constructed. Returns ExitCodeSuccess when all checks pass.
func runStartupValidation(logger *logging.Logger) int {
	logger.Info("Starting startup validation...")

	result := validation.NewSuite().WithShowProgress(true).Validate()
	if !result.Success {
		logger.Error("Configuration validation failed",
			zap.Int("passed", result.PassedSteps),
			zap.Int("failed", result.FailedSteps),
			zap.Duration("duration", result.Duration),
		)
		for _, step := range result.Steps {
			if step.Status == validation.StepFailed {
				logger.Error("Validation step failed",
					zap.String("step", step.Name),
					zap.String("message", step.Message),
					zap.Error(step.Error),
				)
			}
		}
		return core.ExitCodeError
	}

	logger.Info("Configuration validation passed",
		zap.Int("checks_passed", result.PassedSteps),
		zap.Duration("duration", result.Duration),
	)
	return core.ExitCodeSuccess
}
