package config

// Config is the root configuration for the call routing backend.
type Config struct {
	Gateway   GatewayConfig   `yaml:"gateway,omitempty"`
	Twilio    TwilioConfig    `yaml:"twilio,omitempty"`
	Engine    EngineConfig    `yaml:"engine,omitempty"`
	Records   RecordsConfig   `yaml:"records,omitempty"`
	Hours     HoursConfig     `yaml:"businessHours,omitempty"`
	Recovery  RecoveryConfig  `yaml:"recovery,omitempty"`
	Session   SessionConfig   `yaml:"session,omitempty"`
	Logging   LoggingConfig   `yaml:"logging,omitempty"`
}

// GatewayConfig controls the webhook HTTP server.
type GatewayConfig struct {
	Port      int    `yaml:"port,omitempty"`
	Bind      string `yaml:"bind,omitempty"`
	PublicURL string `yaml:"publicUrl,omitempty"` // externally reachable base URL, used to build the media stream wss:// URL
}

// TwilioConfig holds telephony provider credentials and numbers.
type TwilioConfig struct {
	AccountSID     string   `yaml:"accountSid"`
	AuthToken      string   `yaml:"authToken"`
	MainNumber     string   `yaml:"mainNumber"`               // primary inbound line, also the outbound caller ID
	TechLines      []string `yaml:"techLines,omitempty"`      // dialed numbers routed as technician lines
	TechForward    string   `yaml:"techForward,omitempty"`    // E.164 number live calls are redirected to
}

// EngineConfig configures the conversational engine.
type EngineConfig struct {
	APIKey       string `yaml:"apiKey"`
	LiveModel    string `yaml:"liveModel,omitempty"`    // duplex audio model
	SummaryModel string `yaml:"summaryModel,omitempty"` // one-shot transcript summarization model
	Voice        string `yaml:"voice,omitempty"`
	Persona      string `yaml:"persona,omitempty"` // base system prompt; empty uses the built-in script
}

// RecordsConfig configures the spreadsheet-backed records service.
type RecordsConfig struct {
	SpreadsheetID   string `yaml:"spreadsheetId"`
	Sheet           string `yaml:"sheet,omitempty"`
	CredentialsFile string `yaml:"credentialsFile,omitempty"` // service account JSON
	UploadLinkBase  string `yaml:"uploadLinkBase,omitempty"`  // photo upload URL prefix, tracking code appended
}

// HoursConfig is the weekly window during which technician lines route live.
type HoursConfig struct {
	Weekdays  []string `yaml:"weekdays,omitempty"` // e.g. ["Mon", "Tue", ...]
	StartHour int      `yaml:"startHour,omitempty"`
	EndHour   int      `yaml:"endHour,omitempty"`
	Timezone  string   `yaml:"timezone,omitempty"` // IANA zone name
}

// RecoveryConfig controls dropped-call recovery.
type RecoveryConfig struct {
	CallbackDelayMinutes int    `yaml:"callbackDelayMinutes,omitempty"`
	Store                string `yaml:"store,omitempty"` // "memory" | "sqlite"
	DBPath               string `yaml:"dbPath,omitempty"`
}

// SessionConfig tunes per-call session behavior.
type SessionConfig struct {
	EventBuffer int `yaml:"eventBuffer,omitempty"` // engine event channel depth
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level string `yaml:"level,omitempty"` // "silent" | "fatal" | "error" | "warn" | "info" | "debug" | "trace"
}
