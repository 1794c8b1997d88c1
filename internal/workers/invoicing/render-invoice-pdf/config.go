// internal/workers/invoicing/render-invoice-pdf/config.go
package renderinvoicepdf

import (
	"fmt"
	"time"

	"agency-workers/internal/common/config"
	"agency-workers/internal/documents"
)

type Config struct {
	Timeout   time.Duration
	OutputDir string
	Options   documents.Options
}

func LoadConfig(cfg *config.Config) *Config {
	c := &Config{Timeout: 60 * time.Second, OutputDir: "output"}
	if cfg != nil {
		if wc := cfg.GetWorkerConfig(TaskType); wc.Timeout > 0 {
			c.Timeout = config.GetDuration(wc.Timeout)
		}
		if cfg.Documents.OutputDir != "" {
			c.OutputDir = cfg.Documents.OutputDir
		}
		c.Options = documents.OptionsFrom(cfg.Documents)
	}
	return c
}

func (c *Config) Validate() error {
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir is required")
	}
	return nil
}
