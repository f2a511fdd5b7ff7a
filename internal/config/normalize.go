package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeService()
	c.normalizeDefaults()
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeNotifications()
	c.normalizeLogging()
	c.normalizeDevServer()
	return nil
}

func (c *Config) normalizeService() {
	if value, ok := os.LookupEnv("MEWAI_BASE_URL"); ok && strings.TrimSpace(value) != "" {
		c.Service.BaseURL = value
	}
	c.Service.BaseURL = strings.TrimRight(strings.TrimSpace(c.Service.BaseURL), "/")
	if c.Service.BaseURL == "" {
		c.Service.BaseURL = defaultBaseURL
	}
	c.Service.APIToken = strings.TrimSpace(c.Service.APIToken)
	if c.Service.APIToken == "" {
		if value, ok := os.LookupEnv("MEWAI_API_TOKEN"); ok {
			c.Service.APIToken = strings.TrimSpace(value)
		}
	}
	if c.Service.RequestTimeoutSeconds <= 0 {
		c.Service.RequestTimeoutSeconds = defaultRequestTimeoutSeconds
	}
	if c.Polling.IntervalSeconds == 0 {
		c.Polling.IntervalSeconds = defaultPollIntervalSeconds
	}
	if c.Polling.StageCount == 0 {
		c.Polling.StageCount = defaultStageCount
	}
}

func (c *Config) normalizeDefaults() {
	c.Defaults.Tone = strings.ToLower(strings.TrimSpace(c.Defaults.Tone))
	if c.Defaults.Tone == "" {
		c.Defaults.Tone = defaultTone
	}
	c.Defaults.Length = strings.ToLower(strings.TrimSpace(c.Defaults.Length))
	if c.Defaults.Length == "" {
		c.Defaults.Length = defaultLength
	}
	platforms := make([]string, 0, len(c.Defaults.Platforms))
	seen := make(map[string]struct{}, len(c.Defaults.Platforms))
	for _, platform := range c.Defaults.Platforms {
		normalized := strings.ToLower(strings.TrimSpace(platform))
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		platforms = append(platforms, normalized)
	}
	if len(platforms) == 0 {
		platforms = defaultPlatforms()
	}
	c.Defaults.Platforms = platforms
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir()
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.NtfyTopic == "" {
		if value, ok := os.LookupEnv("MEWAI_NTFY_TOPIC"); ok {
			c.Notifications.NtfyTopic = strings.TrimSpace(value)
		}
	}
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyRequestTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizeDevServer() {
	c.DevServer.Bind = strings.TrimSpace(c.DevServer.Bind)
	if c.DevServer.Bind == "" {
		c.DevServer.Bind = defaultDevServerBind
	}
	if c.DevServer.StepSeconds <= 0 {
		c.DevServer.StepSeconds = defaultDevServerStepSeconds
	}
}
