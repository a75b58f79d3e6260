package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// Config is the root configuration for ticketbot.
type Config struct {
	General        GeneralConfig `json:"general"`
	Slack          SlackConfig   `json:"slack"`
	Sheets         SheetsConfig  `json:"sheets"`
	Intake         IntakeConfig  `json:"intake"`
	Metrics        MetricsConfig `json:"metrics"`
	Categories     []Category    `json:"categories,omitempty"`
	CategoriesFile string        `json:"categoriesFile,omitempty"` // optional YAML file, merged after Categories
}

type GeneralConfig struct {
	LogLevel  string `json:"logLevel"`
	LogFile   string `json:"logFile,omitempty"`
	BusBuffer int    `json:"busBuffer"`
	Timezone  string `json:"timezone"` // IANA name used for report timestamps; "Local" when empty
}

type SlackConfig struct {
	Enabled  bool   `json:"enabled"`
	BotToken string `json:"botToken"`
	AppToken string `json:"appToken"` // required for Socket Mode
}

// SheetsConfig configures the spreadsheet integration. An empty credentials
// path disables the write path entirely; that is not an error.
type SheetsConfig struct {
	CredentialsPath string `json:"credentialsPath,omitempty"`
}

// IntakeConfig carries the tunables of the auto-create heuristics.
type IntakeConfig struct {
	AutoCreateMinLen int    `json:"autoCreateMinLen"` // below this, text is assumed too short to contain a table
	MinTableLabels   int    `json:"minTableLabels"`   // detection labels required for a table match
	LinkTTLMinutes   int    `json:"linkTtlMinutes"`   // pending deep-link expiry; 0 = never
	WelcomeMessage   string `json:"welcomeMessage,omitempty"`
}

type MetricsConfig struct {
	Enabled  bool   `json:"enabled"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Endpoint string `json:"endpoint"`
}

// Category binds a channel to a ticket kind and its spreadsheet destination.
// Ordering in the config is significant: the router takes the first match.
type Category struct {
	Tag         string   `json:"tag" yaml:"tag"`   // "issue" | "requirement"
	Name        string   `json:"name" yaml:"name"` // channel name to match; may contain '*' wildcards
	Keywords    []string `json:"keywords" yaml:"keywords"`
	SheetID     string   `json:"sheetId" yaml:"sheetId"`
	SheetName   string   `json:"sheetName" yaml:"sheetName"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	ChannelIDs  []string `json:"channelIds,omitempty" yaml:"channelIds,omitempty"` // allow-list, checked before name matching
}

// KnownTags lists the supported category tags.
var KnownTags = []string{"issue", "requirement"}

// DefaultConfigDir returns the default config directory (~/.ticketbot).
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".ticketbot"
	}
	return filepath.Join(home, ".ticketbot")
}

func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.json")
}

func Load(path string) (*Config, error) {
	path = expandPath(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config file %s: %w", path, err)
	}

	// Substitute environment variables: ${VAR} and ${VAR:-default}
	data = []byte(ExpandEnvVars(string(data)))

	cfg := Defaults()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("cannot parse config file %s: %w", path, err)
	}

	cfg.General.LogFile = expandPath(cfg.General.LogFile)
	cfg.Sheets.CredentialsPath = expandPath(cfg.Sheets.CredentialsPath)
	cfg.CategoriesFile = expandPath(cfg.CategoriesFile)

	if cfg.CategoriesFile != "" {
		extra, err := LoadCategories(cfg.CategoriesFile)
		if err != nil {
			return nil, err
		}
		cfg.Categories = append(cfg.Categories, extra...)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns in config strings.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-(.*?))?\}`)

// ExpandEnvVars replaces ${VAR} with the environment variable value.
// Supports default values: ${VAR:-default} uses "default" when VAR is unset or empty.
func ExpandEnvVars(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		groups := envVarPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		varName := groups[1]
		defaultVal := ""
		hasDefault := len(groups) >= 3 && groups[2] != ""
		if hasDefault {
			defaultVal = groups[2]
		}

		val, exists := os.LookupEnv(varName)
		if !exists || val == "" {
			if hasDefault {
				return defaultVal
			}
			return match // keep original if no env var and no default
		}
		return val
	})
}

func Save(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0o644)
}

// Validate checks that the config has valid values.
func Validate(cfg *Config) error {
	var errs []string

	if cfg.General.BusBuffer < 1 {
		errs = append(errs, "general.busBuffer must be >= 1")
	}
	if cfg.General.Timezone != "" {
		if _, err := time.LoadLocation(cfg.General.Timezone); err != nil {
			errs = append(errs, fmt.Sprintf("general.timezone %q is not a valid IANA zone", cfg.General.Timezone))
		}
	}
	if cfg.Intake.AutoCreateMinLen < 0 {
		errs = append(errs, "intake.autoCreateMinLen must be >= 0")
	}
	if cfg.Intake.MinTableLabels < 1 {
		errs = append(errs, "intake.minTableLabels must be >= 1")
	}
	if cfg.Intake.LinkTTLMinutes < 0 {
		errs = append(errs, "intake.linkTtlMinutes must be >= 0")
	}
	if cfg.Metrics.Port < 0 || cfg.Metrics.Port > 65535 {
		errs = append(errs, "metrics.port must be between 0 and 65535")
	}
	if cfg.Slack.Enabled {
		if cfg.Slack.BotToken == "" {
			errs = append(errs, "slack.botToken is required when slack is enabled")
		}
		if cfg.Slack.AppToken == "" {
			errs = append(errs, "slack.appToken is required when slack is enabled")
		}
	}

	for i, cat := range cfg.Categories {
		if !validTag(cat.Tag) {
			errs = append(errs, fmt.Sprintf("categories[%d].tag %q must be one of: %s", i, cat.Tag, strings.Join(KnownTags, ", ")))
		}
		if cat.Name == "" && len(cat.ChannelIDs) == 0 {
			errs = append(errs, fmt.Sprintf("categories[%d] needs a name or a channelIds allow-list", i))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validTag(tag string) bool {
	for _, t := range KnownTags {
		if tag == t {
			return true
		}
	}
	return false
}

// Location resolves the configured report timezone, defaulting to the local
// zone when unset or unloadable.
func (g GeneralConfig) Location() *time.Location {
	if g.Timezone == "" || g.Timezone == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(g.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
