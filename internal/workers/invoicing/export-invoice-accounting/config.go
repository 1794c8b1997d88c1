// internal/workers/invoicing/export-invoice-accounting/config.go
package exportinvoiceaccounting

import (
	"time"

	"agency-workers/internal/common/config"
)

type Config struct {
	Timeout time.Duration
}

func LoadConfig(cfg *config.Config) *Config {
	c := &Config{Timeout: 30 * time.Second}
	if cfg != nil {
		if wc := cfg.GetWorkerConfig(TaskType); wc.Timeout > 0 {
			c.Timeout = config.GetDuration(wc.Timeout)
		}
	}
	return c
}
