package config

// Config is the root configuration structure for pipedeck.
// Serialised to ~/.pipedeck/config.json.
type Config struct {
	GitHub  GitHubConfig  `mapstructure:"github"  json:"github" yaml:"github"`
	Watch   WatchConfig   `mapstructure:"watch"   json:"watch" yaml:"watch"`
	Metrics MetricsConfig `mapstructure:"metrics" json:"metrics" yaml:"metrics"`
	Gateway GatewayConfig `mapstructure:"gateway" json:"gateway" yaml:"gateway"`
	Notify  NotifyConfig  `mapstructure:"notify"  json:"notify" yaml:"notify"`
}

// GitHubConfig holds credentials for the GitHub API.
type GitHubConfig struct {
	// Token is the bearer token. Empty means unauthenticated requests,
	// subject to GitHub's anonymous rate limit. Also read from the
	// GITHUB_TOKEN environment variable.
	Token string `mapstructure:"token" json:"token" yaml:"token"`
	// Host allows enterprise GitHub (e.g. github.mycompany.com).
	Host string `mapstructure:"host" json:"host" yaml:"host"`
}

// WatchConfig selects which repositories the dashboard polls.
type WatchConfig struct {
	Owner string   `mapstructure:"owner" json:"owner" yaml:"owner"`
	Repos []string `mapstructure:"repos" json:"repos" yaml:"repos"`
	// RunsPerRepo caps how many recent workflow runs become pipelines.
	RunsPerRepo int `mapstructure:"runs_per_repo" json:"runs_per_repo" yaml:"runs_per_repo"`
}

// MetricsConfig controls the synthetic system-metrics sampler.
type MetricsConfig struct {
	// IntervalSeconds is the sampling period (default 5).
	IntervalSeconds int `mapstructure:"interval_seconds" json:"interval_seconds" yaml:"interval_seconds"`
}

// GatewayConfig controls the local HTTP gateway.
type GatewayConfig struct {
	// Port is the localhost HTTP port the gateway listens on (default: 6270).
	Port int `mapstructure:"port" json:"port" yaml:"port"`
	// RefreshSchedule is a robfig/cron expression or "@every ..." spec for
	// the background cache refresh (default "@every 5m").
	RefreshSchedule string `mapstructure:"refresh_schedule" json:"refresh_schedule" yaml:"refresh_schedule"`
}

// NotifyConfig configures the failure-notification channels.
type NotifyConfig struct {
	Slack   SlackNotifyConfig   `mapstructure:"slack"   json:"slack" yaml:"slack"`
	Webhook WebhookNotifyConfig `mapstructure:"webhook" json:"webhook" yaml:"webhook"`
	// Events lists the event types to notify on. Empty means defaults
	// (pipeline.failed and refresh.failed).
	Events []string `mapstructure:"events" json:"events" yaml:"events"`
}

// SlackNotifyConfig holds a Slack incoming-webhook URL.
type SlackNotifyConfig struct {
	WebhookURL string `mapstructure:"webhook_url" json:"webhook_url" yaml:"webhook_url"`
}

// WebhookNotifyConfig holds a generic webhook endpoint with optional
// HMAC-SHA256 signing secret.
type WebhookNotifyConfig struct {
	URL    string `mapstructure:"url"    json:"url" yaml:"url"`
	Secret string `mapstructure:"secret" json:"secret" yaml:"secret"`
}
