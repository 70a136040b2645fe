package logging

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// Setup configures the global logrus logger from the loaded configuration.
// Production environments log JSON for ingestion; development keeps the
// human-readable text formatter.
func Setup(logLevel, environment string) {
	level, err := logrus.ParseLevel(strings.ToLower(logLevel))
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	if environment != "development" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

// WithComponent returns an entry tagged with the originating component so
// pipeline stages can be filtered in aggregated logs.
func WithComponent(name string) *logrus.Entry {
	return logrus.WithField("component", name)
}
