package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"mewai/internal/config"
	"mewai/internal/genclient"
	"mewai/internal/history"
	"mewai/internal/logging"
	"mewai/internal/notifications"
)

var errHistoryDisabled = errors.New("job history is disabled (set [history] enabled = true)")

type commandContext struct {
	configFlag  *string
	baseURLFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger

	historyOnce sync.Once
	history     *history.Store
	historyErr  error
}

func newCommandContext(configFlag, baseURLFlag *string) *commandContext {
	return &commandContext{
		configFlag:  configFlag,
		baseURLFlag: baseURLFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.baseURLFlag != nil && strings.TrimSpace(*c.baseURLFlag) != "" {
			cfg.Service.BaseURL = strings.TrimRight(strings.TrimSpace(*c.baseURLFlag), "/")
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

func (c *commandContext) log() *slog.Logger {
	c.loggerOnce.Do(func() {
		logger, err := logging.NewFromConfig(c.configValue())
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		c.logger = logger
	})
	return c.logger
}

func (c *commandContext) client() (*genclient.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	client, err := genclient.New(cfg.Service.BaseURL,
		genclient.WithTimeout(cfg.RequestTimeout()),
		genclient.WithAPIToken(cfg.Service.APIToken),
		genclient.WithLogger(c.log()),
	)
	if err != nil {
		return nil, fmt.Errorf("configure generation client: %w", err)
	}
	return client, nil
}

// historyStore opens the job archive once. It returns errHistoryDisabled when
// the archive is turned off.
func (c *commandContext) historyStore() (*history.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.History.Enabled {
		return nil, errHistoryDisabled
	}
	c.historyOnce.Do(func() {
		c.history, c.historyErr = history.Open(cfg)
	})
	return c.history, c.historyErr
}

func (c *commandContext) notifier() notifications.Service {
	return notifications.NewService(c.configValue())
}

func (c *commandContext) close() {
	if c.history != nil {
		_ = c.history.Close()
		c.history = nil
	}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
