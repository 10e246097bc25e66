// internal/config/overlay.go
package config

import (
	"os"
	"strconv"
	"strings"
)

// OverlayEnv applies JOBSIFTER_* environment overrides on top of the file
// config. Cron deployments set these instead of editing the YAML in place.
func OverlayEnv(cfg *Config) {
	if v := os.Getenv("JOBSIFTER_START_URL"); v != "" {
		cfg.Source.StartURL = v
	}
	if v := os.Getenv("JOBSIFTER_SOLVER_URL"); v != "" {
		cfg.Challenge.SolverURL = v
	}
	if v := os.Getenv("JOBSIFTER_CLASSIFIER_ENDPOINT"); v != "" {
		cfg.Classifier.Endpoint = v
	}
	if v := os.Getenv("JOBSIFTER_WORKBOOK"); v != "" {
		cfg.Store.Workbook = v
	}
	if v := os.Getenv("JOBSIFTER_EMPLOYERS_BLOCK"); v != "" {
		var list []string
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				list = append(list, p)
			}
		}
		cfg.Filters.EmployersBlock = list
	}
	if v := os.Getenv("JOBSIFTER_MANUAL_LOGIN"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Source.ManualLogin = b
		}
	}
	if v := os.Getenv("JOBSIFTER_HEADLESS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Source.Headless = b
		}
	}
}
