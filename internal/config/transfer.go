package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type TransferConfig struct {
	LockTimeout   time.Duration
	TimeZone      string
	EventsQueue   string
	SweepSchedule string
	SweepLockTTL  time.Duration
	SweepLockKey  string
}

func LoadTransferConfig() *TransferConfig {
	viper.SetDefault("transfer.lock_timeout", 5*time.Second)
	viper.SetDefault("transfer.timezone", "Local")
	viper.SetDefault("transfer.events_queue", "card_transfers")
	viper.SetDefault("sweeper.schedule", "0 0 * * *")
	viper.SetDefault("sweeper.lock_ttl", 10*time.Minute)
	viper.SetDefault("sweeper.lock_key", "card_sweeper:lock")

	return &TransferConfig{
		LockTimeout:   viper.GetDuration("transfer.lock_timeout"),
		TimeZone:      viper.GetString("transfer.timezone"),
		EventsQueue:   viper.GetString("transfer.events_queue"),
		SweepSchedule: viper.GetString("sweeper.schedule"),
		SweepLockTTL:  viper.GetDuration("sweeper.lock_ttl"),
		SweepLockKey:  viper.GetString("sweeper.lock_key"),
	}
}

// Location resolves the zone used for calendar days and the sweep schedule.
func (c *TransferConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("transfer timezone %q: %w", c.TimeZone, err)
	}
	return loc, nil
}
