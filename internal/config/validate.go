package config

import (
	"fmt"
	"time"
)

// Issue is a single validation problem with a config path for context.
type Issue struct {
	Path    string
	Message string
}

// Validate checks a loaded Config for problems that would prevent the
// gateway from serving calls. It returns all issues found, not just the first.
func Validate(cfg *Config) []Issue {
	var issues []Issue

	if cfg.Gateway.Port < 1 || cfg.Gateway.Port > 65535 {
		issues = append(issues, Issue{"gateway.port", fmt.Sprintf("invalid port %d", cfg.Gateway.Port)})
	}
	if cfg.Gateway.PublicURL == "" {
		issues = append(issues, Issue{"gateway.publicUrl", "public URL is required to build the media stream address"})
	}
	if cfg.Twilio.AccountSID == "" {
		issues = append(issues, Issue{"twilio.accountSid", "account SID is required"})
	}
	if cfg.Twilio.AuthToken == "" {
		issues = append(issues, Issue{"twilio.authToken", "auth token is required"})
	}
	if cfg.Twilio.MainNumber == "" {
		issues = append(issues, Issue{"twilio.mainNumber", "main number is required"})
	}
	if cfg.Engine.APIKey == "" {
		issues = append(issues, Issue{"engine.apiKey", "engine API key is required"})
	}
	if cfg.Hours.StartHour < 0 || cfg.Hours.StartHour > 23 {
		issues = append(issues, Issue{"businessHours.startHour", "hour must be 0-23"})
	}
	if cfg.Hours.EndHour < 0 || cfg.Hours.EndHour > 24 {
		issues = append(issues, Issue{"businessHours.endHour", "hour must be 0-24"})
	}
	if cfg.Hours.EndHour <= cfg.Hours.StartHour {
		issues = append(issues, Issue{"businessHours", "end hour must be after start hour"})
	}
	if _, err := time.LoadLocation(cfg.Hours.Timezone); err != nil {
		issues = append(issues, Issue{"businessHours.timezone", "unknown timezone " + cfg.Hours.Timezone})
	}
	if cfg.Recovery.Store != "memory" && cfg.Recovery.Store != "sqlite" {
		issues = append(issues, Issue{"recovery.store", "store must be \"memory\" or \"sqlite\""})
	}

	return issues
}
