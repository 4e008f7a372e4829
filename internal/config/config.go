package config

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

var envBindings = map[string]string{
	"database.host":           "DATABASE_HOST",
	"database.port":           "DATABASE_PORT",
	"database.user":           "DATABASE_USER",
	"database.password":       "DATABASE_PASSWORD",
	"database.name":           "DATABASE_NAME",
	"database.ssl_mode":       "DATABASE_SSL_MODE",
	"database.auto_migrate":   "DATABASE_AUTO_MIGRATE",
	"redis.host":              "REDIS_HOST",
	"redis.port":              "REDIS_PORT",
	"redis.password":          "REDIS_PASSWORD",
	"redis.db":                "REDIS_DB",
	"jwt.secret_key":          "JWT_SECRET_KEY",
	"server.port":             "PORT",
	"server.shutdown_timeout": "SERVER_SHUTDOWN_TIMEOUT",
	"log.level":               "LOG_LEVEL",
	"log.format":              "LOG_FORMAT",
	"transfer.lock_timeout":   "TRANSFER_LOCK_TIMEOUT",
	"transfer.timezone":       "TRANSFER_TIMEZONE",
	"transfer.events_queue":   "TRANSFER_EVENTS_QUEUE",
	"sweeper.schedule":        "SWEEPER_SCHEDULE",
	"sweeper.lock_ttl":        "SWEEPER_LOCK_TTL",
	"sweeper.lock_key":        "SWEEPER_LOCK_KEY",
}

// Load reads the optional config file and binds every key to its environment variable.
// Environment variables win over the file.
func Load(path string, log *logrus.Logger) {
	viper.SetConfigFile(path)
	viper.AutomaticEnv()

	for key, env := range envBindings {
		viper.BindEnv(key, env)
	}

	if err := viper.ReadInConfig(); err != nil {
		log.WithError(err).Warn("Config file not found, using environment and defaults")
	}
}
