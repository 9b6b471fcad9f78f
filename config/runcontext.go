package config

import (
	"time"

	"airbnb-harvester/utils"
)

// RunContext carries the per-run state every component needs: the loaded
// configuration, the logger, the sanitized query slug used to name output
// files, and the run's start time. It is constructed once in main and
// threaded through calls; nothing reads it from package globals.
type RunContext struct {
	Cfg       *Config
	Log       *utils.Logger
	QuerySlug string
	StartedAt time.Time
}

// NewRunContext builds a RunContext for one scrape run.
func NewRunContext(cfg *Config, log *utils.Logger, querySlug string) *RunContext {
	return &RunContext{
		Cfg:       cfg,
		Log:       log,
		QuerySlug: querySlug,
		StartedAt: time.Now(),
	}
}
