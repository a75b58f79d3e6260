package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExpandEnvVars(t *testing.T) {
	os.Setenv("TB_TEST_TOKEN", "xoxb-123")
	os.Setenv("TB_TEST_EMPTY", "")
	defer os.Unsetenv("TB_TEST_TOKEN")
	defer os.Unsetenv("TB_TEST_EMPTY")

	cases := []struct {
		in   string
		want string
	}{
		{"${TB_TEST_TOKEN}", "xoxb-123"},
		{"prefix ${TB_TEST_TOKEN} suffix", "prefix xoxb-123 suffix"},
		{"${TB_TEST_MISSING:-fallback}", "fallback"},
		{"${TB_TEST_EMPTY:-fallback}", "fallback"},
		{"${TB_TEST_TOKEN:-fallback}", "xoxb-123"},
		{"${TB_TEST_MISSING}", "${TB_TEST_MISSING}"}, // kept verbatim without a default
		{"no variables here", "no variables here"},
	}
	for _, tc := range cases {
		if got := ExpandEnvVars(tc.in); got != tc.want {
			t.Errorf("ExpandEnvVars(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDefaultsAreValid(t *testing.T) {
	if err := Validate(Defaults()); err != nil {
		t.Errorf("default config must validate: %v", err)
	}
}

func TestLoad(t *testing.T) {
	os.Setenv("TB_TEST_BOT_TOKEN", "xoxb-live")
	defer os.Unsetenv("TB_TEST_BOT_TOKEN")

	path := filepath.Join(t.TempDir(), "config.json")
	content := `{
		"general": {"logLevel": "debug", "busBuffer": 20, "timezone": "UTC"},
		"slack": {"enabled": true, "botToken": "${TB_TEST_BOT_TOKEN}", "appToken": "xapp-1"},
		"intake": {"autoCreateMinLen": 80, "minTableLabels": 3, "linkTtlMinutes": 60},
		"categories": [
			{"tag": "issue", "name": "incident", "keywords": ["SRE"], "sheetId": "sid", "sheetName": "Issues"}
		]
	}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.General.LogLevel != "debug" || cfg.General.BusBuffer != 20 {
		t.Errorf("general = %+v", cfg.General)
	}
	if cfg.Slack.BotToken != "xoxb-live" {
		t.Errorf("env var not expanded: %q", cfg.Slack.BotToken)
	}
	if cfg.Intake.AutoCreateMinLen != 80 || cfg.Intake.MinTableLabels != 3 {
		t.Errorf("intake = %+v", cfg.Intake)
	}
	if len(cfg.Categories) != 1 || cfg.Categories[0].SheetID != "sid" {
		t.Errorf("categories = %+v", cfg.Categories)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestLoad_MergesCategoriesFile(t *testing.T) {
	dir := t.TempDir()
	catsPath := filepath.Join(dir, "categories.yaml")
	catsYAML := `categories:
  - tag: requirement
    name: "*request*"
    keywords: [feature]
    sheetId: sid-2
    sheetName: Requirements
`
	if err := os.WriteFile(catsPath, []byte(catsYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	cfgPath := filepath.Join(dir, "config.json")
	content := `{
		"general": {"busBuffer": 10},
		"intake": {"minTableLabels": 2},
		"categories": [{"tag": "issue", "name": "incident"}],
		"categoriesFile": ` + jsonQuote(catsPath) + `
	}`
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Categories) != 2 {
		t.Fatalf("categories = %d, want json + yaml merged", len(cfg.Categories))
	}
	// File-sourced categories are appended after the inline ones.
	if cfg.Categories[1].Tag != "requirement" || cfg.Categories[1].SheetID != "sid-2" {
		t.Errorf("merged category = %+v", cfg.Categories[1])
	}
}

// jsonQuote quotes a path for embedding in a JSON literal.
func jsonQuote(s string) string {
	return `"` + strings.ReplaceAll(s, `\`, `\\`) + `"`
}

func TestValidate(t *testing.T) {
	base := func() *Config { return Defaults() }

	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"bad tag", func(c *Config) { c.Categories[0].Tag = "incident" }, "tag"},
		{"no name or ids", func(c *Config) { c.Categories[0].Name = "" }, "name or a channelIds"},
		{"zero bus buffer", func(c *Config) { c.General.BusBuffer = 0 }, "busBuffer"},
		{"bad timezone", func(c *Config) { c.General.Timezone = "Mars/Olympus" }, "timezone"},
		{"bad port", func(c *Config) { c.Metrics.Port = 70000 }, "port"},
		{"zero min labels", func(c *Config) { c.Intake.MinTableLabels = 0 }, "minTableLabels"},
		{"slack without tokens", func(c *Config) { c.Slack.Enabled = true }, "botToken"},
	}
	for _, tc := range cases {
		cfg := base()
		tc.mutate(cfg)
		err := Validate(cfg)
		if err == nil {
			t.Errorf("%s: expected a validation error", tc.name)
			continue
		}
		if !strings.Contains(err.Error(), tc.wantErr) {
			t.Errorf("%s: error %q does not mention %q", tc.name, err, tc.wantErr)
		}
	}

	// ChannelIDs alone satisfy the channel identity requirement.
	cfg := base()
	cfg.Categories[0].Name = ""
	cfg.Categories[0].ChannelIDs = []string{"C123"}
	if err := Validate(cfg); err != nil {
		t.Errorf("channelIds-only category should validate: %v", err)
	}
}

func TestLocation(t *testing.T) {
	if got := (GeneralConfig{Timezone: "UTC"}).Location(); got.String() != "UTC" {
		t.Errorf("Location = %v", got)
	}
	for _, tz := range []string{"", "Local", "Not/AZone"} {
		if got := (GeneralConfig{Timezone: tz}).Location(); got == nil {
			t.Errorf("Timezone %q: Location must never be nil", tz)
		}
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	if err := Save(path, Defaults()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load after Save: %v", err)
	}
	if cfg.Intake.AutoCreateMinLen != Defaults().Intake.AutoCreateMinLen {
		t.Errorf("round-tripped intake = %+v", cfg.Intake)
	}
}
