package config

import (
	"github.com/knadh/koanf/v2"
)

func loadDefaults(k *koanf.Koanf) error {
	defaults := map[string]any{
		"server.host": "0.0.0.0",
		"server.port": 8080,

		"database.max_connections": 25,

		"provider.mode":             "synthetic",
		"provider.root":             "/data/datasets",
		"provider.synthetic_frames": 12,

		"compression.engine":      "stub",
		"compression.frame_delay": "0s",

		"runner.budget":     "60s",
		"runner.max_frames": 500,
		"runner.workers":    4,
		"runner.queue_size": 64,

		"logging.level":  "info",
		"logging.format": "pretty",
	}

	for key, val := range defaults {
		k.Set(key, val)
	}
	return nil
}
