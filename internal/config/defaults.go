package config

func Defaults() *Config {
	return &Config{
		General: GeneralConfig{
			LogLevel:  "info",
			BusBuffer: 100,
			Timezone:  "Local",
		},
		Slack: SlackConfig{
			Enabled: false,
		},
		Intake: IntakeConfig{
			AutoCreateMinLen: 50,
			MinTableLabels:   2,
			LinkTTLMinutes:   1440,
			WelcomeMessage: "Hi! I file tickets from this channel. Paste a filled-in " +
				"ticket table and I will record it automatically, or send a short " +
				"message with the trigger keywords and I will open a form for you.",
		},
		Metrics: MetricsConfig{
			Enabled:  false,
			Host:     "127.0.0.1",
			Port:     9091,
			Endpoint: "/metrics",
		},
		Categories: []Category{
			{
				Tag:         "issue",
				Name:        "incident",
				Keywords:    []string{"SRE"},
				SheetName:   "Issues",
				Description: "Issue / bug tracking",
			},
			{
				Tag:         "requirement",
				Name:        "request",
				Keywords:    []string{"feature"},
				SheetName:   "Requirements",
				Description: "Requirement intake",
			},
		},
	}
}
