// internal/workers/invoicing/find-invoiceable-students/config.go
package findinvoiceablestudents

import (
	"time"

	"agency-workers/internal/common/config"
	"agency-workers/internal/models"
)

type Config struct {
	Timeout time.Duration
	// DefaultPaymentStatus applies when the job does not name one.
	DefaultPaymentStatus string
}

func LoadConfig(cfg *config.Config) *Config {
	c := &Config{
		Timeout:              30 * time.Second,
		DefaultPaymentStatus: models.StatusDue,
	}
	if cfg != nil {
		if wc := cfg.GetWorkerConfig(TaskType); wc.Timeout > 0 {
			c.Timeout = config.GetDuration(wc.Timeout)
		}
	}
	return c
}
