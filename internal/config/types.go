// Package config provides configuration types for DeskPilot.
package config

// Config represents the main DeskPilot configuration.
type Config struct {
	Assistant    AssistantConfig   `toml:"assistant"`
	Safety       SafetyConfig      `toml:"safety"`
	Applications map[string]string `toml:"applications"`
	Folders      map[string]string `toml:"folders"`
	Paths        PathsConfig       `toml:"paths"`
	Web          WebConfig         `toml:"web"`
	Email        EmailConfig       `toml:"email"`
	WhatsApp     WhatsAppConfig    `toml:"whatsapp"`
	Telephony    TelephonyConfig   `toml:"telephony"`
	Logging      LoggingConfig     `toml:"logging"`
}

// AssistantConfig contains regional and workspace settings.
type AssistantConfig struct {
	// CountryCode is prepended to domestic phone numbers, e.g. "+233"
	CountryCode string `toml:"country_code"`

	// WorkspaceDir is where create and delete commands operate
	WorkspaceDir string `toml:"workspace_dir"`
}

// SafetyConfig gates filesystem and shell access.
type SafetyConfig struct {
	AllowedDirectories []string `toml:"allowed_directories"`
	DangerousCommands  []string `toml:"dangerous_commands"`
}

// PathsConfig contains file system paths.
type PathsConfig struct {
	DataDir        string `toml:"data_dir"`
	LogsDir        string `toml:"logs_dir"`
	HistoryDB      string `toml:"history_db"`
	ScreenshotsDir string `toml:"screenshots_dir"`
}

// WebConfig configures browser actions.
type WebConfig struct {
	// SearchURL is the query prefix; the encoded query is appended
	SearchURL string `toml:"search_url"`
	HomePage  string `toml:"home_page"`
}

// EmailConfig holds SMTP settings.
type EmailConfig struct {
	Address    string `toml:"address"`
	Password   string `toml:"password"`
	SMTPServer string `toml:"smtp_server"`
	SMTPPort   int    `toml:"smtp_port"`
}

// WhatsAppConfig selects how WhatsApp messages are delivered.
type WhatsAppConfig struct {
	Mode        string `toml:"mode"` // browser, automate
	WaitSeconds int    `toml:"wait_seconds"`
}

// TelephonyConfig holds Twilio credentials.
type TelephonyConfig struct {
	TwilioAccountSID  string `toml:"twilio_account_sid"`
	TwilioAuthToken   string `toml:"twilio_auth_token"`
	TwilioPhoneNumber string `toml:"twilio_phone_number"`
	DefaultTwiMLURL   string `toml:"default_twiml_url"`
}

// LoggingConfig configures the console and rotating file logs.
type LoggingConfig struct {
	Level      string `toml:"level"` // debug, info, warn, error
	JSON       bool   `toml:"json"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
}
