package config

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
)

var (
	knownTones     = []string{"formal", "casual", "technical"}
	knownLengths   = []string{"short", "medium", "long"}
	knownPlatforms = []string{"blog", "instagram", "twitter", "linkedin"}
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateService(); err != nil {
		return err
	}
	if err := c.validatePolling(); err != nil {
		return err
	}
	if err := c.validateDefaults(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateService() error {
	parsed, err := url.Parse(c.Service.BaseURL)
	if err != nil {
		return fmt.Errorf("service.base_url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("service.base_url must use http or https, got %q", c.Service.BaseURL)
	}
	if parsed.Host == "" {
		return errors.New("service.base_url must include a host")
	}
	if c.Service.RequestTimeoutSeconds > maxRequestTimeoutSeconds {
		return fmt.Errorf("service.request_timeout_seconds must be at most %d", maxRequestTimeoutSeconds)
	}
	return nil
}

func (c *Config) validatePolling() error {
	if c.Polling.IntervalSeconds < minPollIntervalSeconds || c.Polling.IntervalSeconds > maxPollIntervalSeconds {
		return fmt.Errorf("polling.interval_seconds must be between %d and %d", minPollIntervalSeconds, maxPollIntervalSeconds)
	}
	if c.Polling.StageCount < 1 {
		return errors.New("polling.stage_count must be positive")
	}
	return nil
}

func (c *Config) validateDefaults() error {
	if !slices.Contains(knownTones, c.Defaults.Tone) {
		return fmt.Errorf("defaults.tone must be one of %v, got %q", knownTones, c.Defaults.Tone)
	}
	if !slices.Contains(knownLengths, c.Defaults.Length) {
		return fmt.Errorf("defaults.length must be one of %v, got %q", knownLengths, c.Defaults.Length)
	}
	for _, platform := range c.Defaults.Platforms {
		if !slices.Contains(knownPlatforms, platform) {
			return fmt.Errorf("defaults.platforms: unknown platform %q", platform)
		}
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.NtfyTopic == "" {
		return nil
	}
	parsed, err := url.Parse(c.Notifications.NtfyTopic)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("notifications.ntfy_topic must be a full URL, got %q", c.Notifications.NtfyTopic)
	}
	return nil
}
