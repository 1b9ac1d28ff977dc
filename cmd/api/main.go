package main

import (
	"os"

	"github.com/yigit/termsched/internal/bootstrap"
	"github.com/yigit/termsched/internal/pkg/logger"
	"github.com/yigit/termsched/internal/server"
)

// @title termsched API
// @version 1.0
// @description Semester timetable generation and course enrollment
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = bootstrap.DefaultConfigPath
	}

	srv, err := server.NewServer(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
