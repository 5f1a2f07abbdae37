// Package config resolves runtime settings from defaults, WELC_ environment
// variables, a JSON config file and command-line flags.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	DefaultPort        = "9182"
	DefaultNatsURL     = "nats://127.0.0.1:4222"
	DefaultNatsSubject = "welc.channels"
	DefaultInterval    = time.Minute
	envPrefix          = "WELC"
)

// Config holds runtime configuration.
type Config struct {
	Port          string        `mapstructure:"port"`
	SystemName    string        `mapstructure:"system_name"`
	NatsURL       string        `mapstructure:"nats_url"`
	NatsSubject   string        `mapstructure:"nats_subject"`
	PushInterval  time.Duration `mapstructure:"push_interval"`
	Computer      string        `mapstructure:"computer"`
	User          string        `mapstructure:"user"`
	Domain        string        `mapstructure:"domain"`
	Password      string        `mapstructure:"password"`
	Channels      []string      `mapstructure:"channels"`
	Providers     []string      `mapstructure:"providers"`
	LogFile       string        `mapstructure:"log_file"`
	LogMaxSizeMB  int           `mapstructure:"log_max_size_mb"`
	LogMaxBackups int           `mapstructure:"log_max_backups"`
	LogMaxAgeDays int           `mapstructure:"log_max_age_days"`
}

// SetDefaults registers Viper defaults.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("port", DefaultPort)
	v.SetDefault("system_name", "")
	v.SetDefault("nats_url", DefaultNatsURL)
	v.SetDefault("nats_subject", DefaultNatsSubject)
	v.SetDefault("push_interval", DefaultInterval.String())
	v.SetDefault("computer", "")
	v.SetDefault("user", "")
	v.SetDefault("domain", "")
	v.SetDefault("password", "")
	v.SetDefault("channels", []string{})
	v.SetDefault("providers", []string{})
	v.SetDefault("log_file", "")
	v.SetDefault("log_max_size_mb", 10)
	v.SetDefault("log_max_backups", 3)
	v.SetDefault("log_max_age_days", 28)
}

// BindGlobalFlags registers the flags every command understands.
func BindGlobalFlags(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.String("config", "", "Path to JSON config file")
	f.String("computer", "", "Remote computer to connect to (default: local machine)")
	f.String("user", "", "User name for the remote session")
	f.String("domain", "", "Domain for the remote session")
	f.String("password", "", "Password for the remote session")
	f.String("log_file", "", "Write logs to this file instead of stderr")
}

// BindServeFlags registers the flags of the serve command.
func BindServeFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("port", "", "Port for the /metrics endpoint (e.g. 9182)")
	f.String("system_name", "", "System name reported in metrics and pushed payloads")
	f.String("nats_url", "", "NATS server URL")
	f.String("nats_subject", "", "JetStream subject to publish snapshots to")
	f.Duration("push_interval", 0, "How often to push snapshots, e.g. 30s, 5m")
	f.StringSlice("channels", nil, "Channel name patterns to export (repeatable)")
	f.StringSlice("providers", nil, "Provider name patterns to export (repeatable)")
}

// LoadConfig resolves configuration for cmd: flags > env > file > defaults.
func LoadConfig(cmd *cobra.Command) (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path, _ := cmd.Flags().GetString("config"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("json")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	for _, name := range []string{"port", "system_name", "nats_url", "nats_subject", "computer", "user", "domain", "password", "log_file"} {
		bindFlagIfSet(v, cmd, name)
	}
	if cmd.Flags().Changed("push_interval") {
		val, _ := cmd.Flags().GetDuration("push_interval")
		v.Set("push_interval", val.String())
	}
	for _, name := range []string{"channels", "providers"} {
		if cmd.Flags().Changed(name) {
			val, _ := cmd.Flags().GetStringSlice(name)
			v.Set(name, val)
		}
	}

	if raw := v.GetString("push_interval"); !validInterval(raw) {
		return nil, fmt.Errorf("invalid push_interval %q", raw)
	}

	cfg := &Config{}
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(cfg, hook); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.Channels = cleanList(cfg.Channels)
	cfg.Providers = cleanList(cfg.Providers)
	return cfg, nil
}

func validInterval(s string) bool {
	d, err := time.ParseDuration(s)
	return err == nil && d > 0
}

func bindFlagIfSet(v *viper.Viper, cmd *cobra.Command, name string) {
	if cmd.Flags().Changed(name) {
		val, _ := cmd.Flags().GetString(name)
		v.Set(name, val)
	}
}

// cleanList splits comma separated items and drops blanks, so a list from
// the file and a comma separated env value end up the same.
func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		for _, part := range strings.Split(item, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
