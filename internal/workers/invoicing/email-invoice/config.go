// internal/workers/invoicing/email-invoice/config.go
package emailinvoice

import (
	"time"

	"agency-workers/internal/common/config"
	"agency-workers/internal/documents"
)

type Config struct {
	Timeout time.Duration
	Options documents.Options
}

func LoadConfig(cfg *config.Config) *Config {
	c := &Config{Timeout: 60 * time.Second}
	if cfg == nil {
		return c
	}
	if wc := cfg.GetWorkerConfig(TaskType); wc.Timeout > 0 {
		c.Timeout = config.GetDuration(wc.Timeout)
	}
	c.Options = documents.OptionsFrom(cfg.Documents)
	return c
}
