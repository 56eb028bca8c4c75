package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/open-sauced/pizza/analyzer/pkg/config"
	"github.com/open-sauced/pizza/analyzer/pkg/github"
	"github.com/open-sauced/pizza/analyzer/pkg/notify"
	"github.com/open-sauced/pizza/analyzer/pkg/server"
)

func main() {
	var logger *zap.Logger
	var err error

	// Initialize & parse flags
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to .yaml file config")
	debugMode := flag.Bool("debug", false, "run in debug mode")
	flag.Parse()

	if *debugMode {
		logger, err = zap.NewDevelopment()
		if err != nil {
			log.Fatalf("Could not initiate debug zap logger: %v", err)
		}
	} else {
		logger, err = zap.NewProduction()
		if err != nil {
			log.Fatalf("Could not initiate production zap logger: %v", err)
		}
	}

	sugarLogger := logger.Sugar()
	sugarLogger.Infof("initiated zap logger with level: %d", sugarLogger.Level())

	// Load the environment variables from the .env file
	err = config.LoadDotEnv()
	if err != nil {
		sugarLogger.Warnf("Failed to load the dot env file. Continuing with existing environment: %v", err)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		sugarLogger.Fatalf("Could not load configuration: %s", err.Error())
	}

	if cfg.Token == "" {
		sugarLogger.Warnf("No GitHub token configured. Upstream requests will be unauthenticated")
	}

	githubClient, err := github.NewTokenClient(cfg.Token, github.Options{
		BaseURL:        cfg.BaseURL,
		UserAgent:      cfg.UserAgent,
		CommitsPerPage: cfg.CommitsPerPage,
	}, sugarLogger)
	if err != nil {
		sugarLogger.Fatalf("Could not create GitHub client: %s", err.Error())
	}

	// The console observer receives the results of every request
	observers := notify.NewRegistry()
	subscription := observers.Subscribe(notify.NewConsoleObserver("Observer", os.Stdout))
	defer subscription.Unsubscribe()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	analyzerServer := server.NewAnalyzerServer(githubClient, observers, sugarLogger)
	analyzerServer.ShutdownTimeout = cfg.ShutdownTimeout

	if err := analyzerServer.Run(ctx, cfg.Address()); err != nil {
		sugarLogger.Fatalf("Server failed: %s", err.Error())
	}
	sugarLogger.Infof("Server stopped")
}
