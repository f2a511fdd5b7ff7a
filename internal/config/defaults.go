package config

const (
	defaultBaseURL               = "http://127.0.0.1:8000"
	defaultRequestTimeoutSeconds = 15
	defaultPollIntervalSeconds   = 2
	defaultStageCount            = 4
	defaultTone                  = "casual"
	defaultLength                = "medium"
	defaultGenerateImages        = true
	defaultStateDirFallback      = "~/.local/state/mewai"
	defaultHistoryEnabled        = true
	defaultNotifyRequestTimeout  = 10
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
	defaultDevServerBind         = "127.0.0.1:8000"
	defaultDevServerStepSeconds  = 2
	minPollIntervalSeconds       = 1
	maxPollIntervalSeconds       = 10
	maxRequestTimeoutSeconds     = 120
)

func defaultPlatforms() []string {
	return []string{"blog", "instagram", "twitter", "linkedin"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Service: Service{
			BaseURL:               defaultBaseURL,
			RequestTimeoutSeconds: defaultRequestTimeoutSeconds,
		},
		Polling: Polling{
			IntervalSeconds: defaultPollIntervalSeconds,
			StageCount:      defaultStageCount,
		},
		Defaults: Defaults{
			Tone:           defaultTone,
			Length:         defaultLength,
			Platforms:      defaultPlatforms(),
			GenerateImages: defaultGenerateImages,
		},
		Paths: Paths{
			StateDir: defaultStateDir(),
		},
		History: History{
			Enabled: defaultHistoryEnabled,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
			Completed:      true,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		DevServer: DevServer{
			Bind:        defaultDevServerBind,
			StepSeconds: defaultDevServerStepSeconds,
		},
	}
}
