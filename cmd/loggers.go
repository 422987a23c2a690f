package cmd

import (
	"github.com/sirupsen/logrus"

	"github.com/knowgen/knowgen/internal/logging"
)

// getLogger builds the logger after flag parsing so --verbose is honored.
func getLogger() *logrus.Logger {
	return logging.New(verbose)
}
