// internal/workers/remittance/find-remittable-students/config.go
package findremittablestudents

import (
	"time"

	"agency-workers/internal/common/config"
	"agency-workers/internal/models"
)

type Config struct {
	Timeout            time.Duration
	DefaultAgentStatus string
}

func LoadConfig(cfg *config.Config) *Config {
	c := &Config{
		Timeout:            30 * time.Second,
		DefaultAgentStatus: models.StatusAvailable,
	}
	if cfg != nil {
		if wc := cfg.GetWorkerConfig(TaskType); wc.Timeout > 0 {
			c.Timeout = config.GetDuration(wc.Timeout)
		}
	}
	return c
}
