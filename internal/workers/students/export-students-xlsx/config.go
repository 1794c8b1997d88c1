// internal/workers/students/export-students-xlsx/config.go
package exportstudentsxlsx

import (
	"time"

	"agency-workers/internal/common/config"
)

const defaultSlots = 3

type Config struct {
	Timeout          time.Duration
	OutputDir        string
	ApplicationSlots int
	// MaxRows caps a single export; the API's page limit applies when zero.
	MaxRows int
}

func LoadConfig(cfg *config.Config) *Config {
	c := &Config{Timeout: 2 * time.Minute, OutputDir: "output", ApplicationSlots: defaultSlots}
	if cfg == nil {
		return c
	}
	if wc := cfg.GetWorkerConfig(TaskType); wc.Timeout > 0 {
		c.Timeout = config.GetDuration(wc.Timeout)
	}
	if cfg.Documents.OutputDir != "" {
		c.OutputDir = cfg.Documents.OutputDir
	}
	if cfg.Documents.ApplicationSlots > 0 {
		c.ApplicationSlots = cfg.Documents.ApplicationSlots
	}
	c.MaxRows = cfg.AgencyAPI.PageLimit
	return c
}
