// Package config handles DeskPilot configuration loading and management.
package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Environment variables that override secrets from the config file.
const (
	EnvEmailPassword     = "DESKPILOT_EMAIL_PASSWORD"
	EnvTwilioAccountSID  = "TWILIO_ACCOUNT_SID"
	EnvTwilioAuthToken   = "TWILIO_AUTH_TOKEN"
	EnvTwilioPhoneNumber = "TWILIO_PHONE_NUMBER"
)

// DefaultPath returns ~/.deskpilot/config.toml.
func DefaultPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".deskpilot", "config.toml")
}

// Default returns the default configuration.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".deskpilot")

	return &Config{
		Assistant: AssistantConfig{
			CountryCode:  "+233",
			WorkspaceDir: filepath.Join(homeDir, "Documents"),
		},
		Safety: SafetyConfig{
			AllowedDirectories: []string{
				filepath.Join(homeDir, "Documents"),
				filepath.Join(homeDir, "Downloads"),
				filepath.Join(homeDir, "Pictures"),
				filepath.Join(homeDir, "Music"),
				filepath.Join(homeDir, "Videos"),
			},
			DangerousCommands: []string{"rm -rf", "format", "del /f /s /q", "shutdown", "restart"},
		},
		Applications: defaultApplications(runtime.GOOS),
		Folders:      map[string]string{},
		Paths: PathsConfig{
			DataDir:        dataDir,
			LogsDir:        filepath.Join(dataDir, "logs"),
			HistoryDB:      filepath.Join(dataDir, "history.db"),
			ScreenshotsDir: filepath.Join(homeDir, "Pictures", "Screenshots"),
		},
		Web: WebConfig{
			SearchURL: "https://www.google.com/search?q=",
			HomePage:  "https://www.google.com",
		},
		Email: EmailConfig{
			SMTPServer: "smtp.gmail.com",
			SMTPPort:   587,
		},
		WhatsApp: WhatsAppConfig{
			Mode:        "browser",
			WaitSeconds: 15,
		},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 5,
		},
	}
}

func defaultApplications(goos string) map[string]string {
	switch goos {
	case "windows":
		return map[string]string{
			"chrome":     "C:/Program Files/Google/Chrome/Application/chrome.exe",
			"firefox":    "C:/Program Files/Mozilla Firefox/firefox.exe",
			"notepad":    "C:/Windows/System32/notepad.exe",
			"calculator": "calc.exe",
		}
	case "darwin":
		return map[string]string{
			"chrome":     "/Applications/Google Chrome.app",
			"firefox":    "/Applications/Firefox.app",
			"safari":     "/Applications/Safari.app",
			"notepad":    "/System/Applications/TextEdit.app",
			"calculator": "/System/Applications/Calculator.app",
		}
	default:
		return map[string]string{
			"chrome":     "google-chrome",
			"firefox":    "firefox",
			"notepad":    "gedit",
			"calculator": "gnome-calculator",
		}
	}
}

// Load loads the configuration from the given path.
// If the file doesn't exist, returns defaults.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return applyEnv(cfg), nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	cfg = expandPaths(cfg)
	return applyEnv(cfg), nil
}

// LoadEnvFile loads KEY=VALUE pairs from a .env file into the process
// environment without overriding variables that are already set. A missing
// file is not an error.
func LoadEnvFile(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	return godotenv.Load(path)
}

// Save saves the configuration to the given path.
func (c *Config) Save(configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	file, err := os.OpenFile(configPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := toml.NewEncoder(file)
	return encoder.Encode(c)
}

// applyEnv overrides secrets with non-empty environment variables.
func applyEnv(cfg *Config) *Config {
	override := func(dst *string, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	override(&cfg.Email.Password, EnvEmailPassword)
	override(&cfg.Telephony.TwilioAccountSID, EnvTwilioAccountSID)
	override(&cfg.Telephony.TwilioAuthToken, EnvTwilioAuthToken)
	override(&cfg.Telephony.TwilioPhoneNumber, EnvTwilioPhoneNumber)
	return cfg
}

// expandPaths expands a leading ~ in every configured path.
func expandPaths(cfg *Config) *Config {
	cfg.Assistant.WorkspaceDir = expandHome(cfg.Assistant.WorkspaceDir)
	cfg.Paths.DataDir = expandHome(cfg.Paths.DataDir)
	cfg.Paths.LogsDir = expandHome(cfg.Paths.LogsDir)
	cfg.Paths.HistoryDB = expandHome(cfg.Paths.HistoryDB)
	cfg.Paths.ScreenshotsDir = expandHome(cfg.Paths.ScreenshotsDir)

	for i, dir := range cfg.Safety.AllowedDirectories {
		cfg.Safety.AllowedDirectories[i] = expandHome(dir)
	}
	for name, path := range cfg.Folders {
		cfg.Folders[name] = expandHome(path)
	}
	return cfg
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, `~\`) {
		return path
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(homeDir, path[1:])
}

// FolderPaths returns the OS default folder table merged with the [folders]
// overrides. Keys are lowercase; aliases point at the same directory.
func (c *Config) FolderPaths() map[string]string {
	homeDir, _ := os.UserHomeDir()
	paths := map[string]string{
		"documents": filepath.Join(homeDir, "Documents"),
		"downloads": filepath.Join(homeDir, "Downloads"),
		"pictures":  filepath.Join(homeDir, "Pictures"),
		"music":     filepath.Join(homeDir, "Music"),
		"videos":    filepath.Join(homeDir, "Videos"),
		"desktop":   filepath.Join(homeDir, "Desktop"),
	}
	if runtime.GOOS == "darwin" {
		paths["videos"] = filepath.Join(homeDir, "Movies")
	}
	aliases := map[string]string{
		"pics":     "pictures",
		"pix":      "pictures",
		"docs":     "documents",
		"download": "downloads",
	}
	for alias, target := range aliases {
		paths[alias] = paths[target]
	}
	for name, path := range c.Folders {
		paths[strings.ToLower(name)] = path
	}
	return paths
}

// ApplicationPaths returns the [applications] table keyed by lowercase name.
func (c *Config) ApplicationPaths() map[string]string {
	paths := make(map[string]string, len(c.Applications))
	for name, path := range c.Applications {
		paths[strings.ToLower(strings.TrimSpace(name))] = path
	}
	return paths
}
