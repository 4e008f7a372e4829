package config

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// NewLogger builds the process logger. An unknown level falls back to info.
func NewLogger(level, format string) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	if format == "text" {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
	return log
}

// LoggerFromConfig builds the logger from log.level and log.format.
func LoggerFromConfig() *logrus.Logger {
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "json")
	return NewLogger(viper.GetString("log.level"), viper.GetString("log.format"))
}
