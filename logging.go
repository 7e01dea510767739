package main

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// logger is the process-wide structured logger.
var logger = logrus.New()

// initLogger configures the logger from the environment. LOG_LEVEL
// defaults to info; LOG_FORMAT=json switches to machine-readable
// output for log collection.
func initLogger() {
	level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	logger.SetOutput(os.Stdout)
}
