// internal/workers/students/import-roll-csv/config.go
package importrollcsv

import (
	"time"

	"agency-workers/internal/common/config"
)

type Config struct {
	Timeout time.Duration
	// LockKey guards the single active upload across worker instances.
	LockKey string
	LockTTL time.Duration
}

func LoadConfig(cfg *config.Config) *Config {
	c := &Config{
		Timeout: 2 * time.Minute,
		LockKey: "roll-upload:lock",
		LockTTL: 5 * time.Minute,
	}
	if cfg != nil {
		if wc := cfg.GetWorkerConfig(TaskType); wc.Timeout > 0 {
			c.Timeout = config.GetDuration(wc.Timeout)
		}
	}
	if c.LockTTL < c.Timeout {
		c.LockTTL = c.Timeout
	}
	return c
}
