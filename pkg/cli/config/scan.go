package config

import (
	"log/slog"
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/secmon-lab/nudgebot/pkg/usecase"
	"github.com/urfave/cli/v3"
)

// ScanFile is the TOML form of the scan settings. Unset keys keep flag values.
type ScanFile struct {
	InactiveDays    *int     `toml:"inactive_days"`
	MessageTemplate *string  `toml:"message_template"`
	NotifyInterval  *string  `toml:"notify_interval"`
	Concurrency     *int     `toml:"concurrency"`
	ChannelTypes    []string `toml:"channel_types"`
}

// LoadScanFile loads scan settings from a TOML file
func LoadScanFile(path string) (*ScanFile, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read scan config file", goerr.V(ConfigPathKey, path))
	}

	var file ScanFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, goerr.Wrap(err, "failed to parse TOML config", goerr.V(ConfigPathKey, path))
	}

	return &file, nil
}

// ScanSettings is the resolved scan configuration
type ScanSettings struct {
	InactiveDays    int
	MessageTemplate string
	NotifyInterval  time.Duration
	Concurrency     int
	ChannelTypes    []string
}

func (x ScanSettings) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("inactive_days", x.InactiveDays),
		slog.Int("message_template.len", len(x.MessageTemplate)),
		slog.Duration("notify_interval", x.NotifyInterval),
		slog.Int("concurrency", x.Concurrency),
		slog.Any("channel_types", x.ChannelTypes),
	)
}

// Validate checks the resolved settings
func (x *ScanSettings) Validate() error {
	if x.InactiveDays < 1 {
		return goerr.Wrap(ErrInvalidConfig, "inactive_days must be at least 1", goerr.V("inactive_days", x.InactiveDays))
	}
	if x.MessageTemplate == "" {
		return goerr.Wrap(ErrInvalidConfig, "message_template must not be empty")
	}
	if x.NotifyInterval < 0 {
		return goerr.Wrap(ErrInvalidConfig, "notify_interval must not be negative", goerr.V("notify_interval", x.NotifyInterval))
	}
	if x.Concurrency < 1 {
		return goerr.Wrap(ErrInvalidConfig, "concurrency must be at least 1", goerr.V("concurrency", x.Concurrency))
	}
	if len(x.ChannelTypes) == 0 {
		return goerr.Wrap(ErrInvalidConfig, "channel_types must not be empty")
	}
	return nil
}

// UseCaseConfig converts the settings for the scan use case
func (x *ScanSettings) UseCaseConfig() usecase.ScanConfig {
	return usecase.ScanConfig{
		InactiveDays:    x.InactiveDays,
		MessageTemplate: x.MessageTemplate,
	}
}

// UseCaseOptions converts the settings for the scan use case
func (x *ScanSettings) UseCaseOptions() []usecase.ScanOption {
	return []usecase.ScanOption{
		usecase.WithNotifyInterval(x.NotifyInterval),
		usecase.WithConcurrency(x.Concurrency),
	}
}

// Scan holds CLI flags for the inactivity scan
type Scan struct {
	configPath      string
	inactiveDays    int
	messageTemplate string
	notifyInterval  time.Duration
	concurrency     int
	channelTypes    []string
}

func (x *Scan) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "scan-config",
			Usage:       "TOML file with scan settings; explicitly set flags take precedence",
			Category:    "Scan",
			Sources:     cli.EnvVars("NUDGEBOT_SCAN_CONFIG"),
			Destination: &x.configPath,
		},
		&cli.IntFlag{
			Name:        "inactive-days",
			Usage:       "Days without a message before a user is notified",
			Category:    "Scan",
			Value:       usecase.DefaultInactiveDays,
			Sources:     cli.EnvVars("NUDGEBOT_INACTIVE_DAYS"),
			Destination: &x.inactiveDays,
		},
		&cli.StringFlag{
			Name:        "message-template",
			Usage:       "Notification text; {user_name} is replaced with the user name",
			Category:    "Scan",
			Value:       usecase.DefaultMessageTemplate,
			Sources:     cli.EnvVars("NUDGEBOT_MESSAGE_TEMPLATE"),
			Destination: &x.messageTemplate,
		},
		&cli.DurationFlag{
			Name:        "notify-interval",
			Usage:       "Delay after each notification",
			Category:    "Scan",
			Value:       usecase.DefaultNotifyInterval,
			Sources:     cli.EnvVars("NUDGEBOT_NOTIFY_INTERVAL"),
			Destination: &x.notifyInterval,
		},
		&cli.IntFlag{
			Name:        "scan-concurrency",
			Usage:       "Users classified in parallel",
			Category:    "Scan",
			Value:       1,
			Sources:     cli.EnvVars("NUDGEBOT_SCAN_CONCURRENCY"),
			Destination: &x.concurrency,
		},
		&cli.StringSliceFlag{
			Name:        "channel-types",
			Usage:       "Conversation types scanned for activity",
			Category:    "Scan",
			Value:       []string{"public_channel"},
			Sources:     cli.EnvVars("NUDGEBOT_CHANNEL_TYPES"),
			Destination: &x.channelTypes,
		},
	}
}

// Configure resolves the settings from flags and the optional TOML file
func (x *Scan) Configure(c *cli.Command) (*ScanSettings, error) {
	var file *ScanFile
	if x.configPath != "" {
		f, err := LoadScanFile(x.configPath)
		if err != nil {
			return nil, err
		}
		file = f
	}

	settings, err := x.resolve(file, c.IsSet)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid scan settings", goerr.V(ConfigPathKey, x.configPath))
	}
	return settings, nil
}

func (x *Scan) resolve(file *ScanFile, isSet func(name string) bool) (*ScanSettings, error) {
	settings := &ScanSettings{
		InactiveDays:    x.inactiveDays,
		MessageTemplate: x.messageTemplate,
		NotifyInterval:  x.notifyInterval,
		Concurrency:     x.concurrency,
		ChannelTypes:    x.channelTypes,
	}

	if file != nil {
		if file.InactiveDays != nil && !isSet("inactive-days") {
			settings.InactiveDays = *file.InactiveDays
		}
		if file.MessageTemplate != nil && !isSet("message-template") {
			settings.MessageTemplate = *file.MessageTemplate
		}
		if file.NotifyInterval != nil && !isSet("notify-interval") {
			d, err := time.ParseDuration(*file.NotifyInterval)
			if err != nil {
				return nil, goerr.Wrap(ErrInvalidConfig, "invalid notify_interval",
					goerr.V("notify_interval", *file.NotifyInterval),
					goerr.V("error", err.Error()),
				)
			}
			settings.NotifyInterval = d
		}
		if file.Concurrency != nil && !isSet("scan-concurrency") {
			settings.Concurrency = *file.Concurrency
		}
		if len(file.ChannelTypes) > 0 && !isSet("channel-types") {
			settings.ChannelTypes = file.ChannelTypes
		}
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}
