package main

import (
	"os"

	"github.com/yigit/termsched/internal/pkg/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logger.Error().Err(err).Msg("termctl failed")
		os.Exit(1)
	}
}
