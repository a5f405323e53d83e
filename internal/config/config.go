// Package config loads and validates the YAML configuration.
package config

// Defaults returns a Config with baseline values filled in.
func Defaults() Config {
	cfg := Config{}
	applyDefaults(&cfg)
	return cfg
}

// applyDefaults fills zero-value fields with sensible defaults.
func applyDefaults(cfg *Config) {
	if cfg.Gateway.Port == 0 {
		cfg.Gateway.Port = 8080
	}
	if cfg.Gateway.Bind == "" {
		cfg.Gateway.Bind = "0.0.0.0"
	}
	if cfg.Engine.LiveModel == "" {
		cfg.Engine.LiveModel = "gemini-2.0-flash-live-001"
	}
	if cfg.Engine.SummaryModel == "" {
		cfg.Engine.SummaryModel = "gemini-2.0-flash"
	}
	if cfg.Engine.Voice == "" {
		cfg.Engine.Voice = "Puck"
	}
	if cfg.Records.Sheet == "" {
		cfg.Records.Sheet = "WorkOrders"
	}
	if len(cfg.Hours.Weekdays) == 0 {
		cfg.Hours.Weekdays = []string{"Mon", "Tue", "Wed", "Thu", "Fri"}
	}
	if cfg.Hours.StartHour == 0 && cfg.Hours.EndHour == 0 {
		cfg.Hours.StartHour = 8
		cfg.Hours.EndHour = 17
	}
	if cfg.Hours.Timezone == "" {
		cfg.Hours.Timezone = "America/Chicago"
	}
	if cfg.Recovery.CallbackDelayMinutes == 0 {
		cfg.Recovery.CallbackDelayMinutes = 4
	}
	if cfg.Recovery.Store == "" {
		cfg.Recovery.Store = "memory"
	}
	if cfg.Recovery.DBPath == "" {
		cfg.Recovery.DBPath = "callrouter.db"
	}
	if cfg.Session.EventBuffer == 0 {
		cfg.Session.EventBuffer = 256
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}
