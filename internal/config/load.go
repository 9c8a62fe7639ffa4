package config

import (
	"flag"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/nibzard/taskpad/internal/datadir"
	"github.com/nibzard/taskpad/internal/kv"
	"github.com/nibzard/taskpad/internal/store"
)

// Load loads configuration from defaults, config files, the environment
// and the flags in args, in that order. Flags are registered on fs.
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	cws, err := LoadWithSources(fs, args)
	if err != nil {
		return nil, err
	}
	return cws.Config, nil
}

// LoadWithSources loads configuration and tracks the source of each value.
func LoadWithSources(fs *flag.FlagSet, args []string) (*ConfigWithSources, error) {
	cfg := &Config{}
	cws := &ConfigWithSources{
		Config:  cfg,
		Sources: make(map[string]ConfigSource),
	}

	setDefaults(cfg)
	for _, key := range configFields() {
		cws.Sources[key] = SourceDefault
	}

	if path := findUserConfigFile(); path != "" {
		if err := cws.loadFile(path, SourceUserFile); err != nil {
			return nil, fmt.Errorf("loading user config file %s: %w", path, err)
		}
	}
	if path := findProjectConfigFile(); path != "" {
		if err := cws.loadFile(path, SourceProjFile); err != nil {
			return nil, fmt.Errorf("loading project config file %s: %w", path, err)
		}
	}

	if err := loadFromEnv(cfg, cws.Sources); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	if fs != nil {
		if err := parseFlags(cfg, fs, args, cws.Sources); err != nil {
			return nil, err
		}
	}

	if err := finalizeConfig(cfg); err != nil {
		return nil, fmt.Errorf("finalizing config: %w", err)
	}
	return cws, nil
}

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	cfg.Backend = DefaultBackend
	cfg.DataDir = DefaultDataDir
	cfg.RedisAddr = DefaultRedisAddr
	cfg.RedisPrefix = DefaultRedisPrefix
	cfg.Sort = DefaultSort
	cfg.Notifications = true
	cfg.NotifyCommand = DefaultNotifyCommand
	cfg.ReminderPollSeconds = DefaultReminderPollSeconds
	cfg.ReminderGraceSeconds = DefaultReminderGraceSeconds
	cfg.MaxNotifyWorkers = DefaultMaxNotifyWorkers
	cfg.LogLevel = DefaultLogLevel
	cfg.LogFormat = DefaultLogFormat
}

// loadFile decodes a TOML file over the current config. Keys present in
// the file are attributed to source.
func (cws *ConfigWithSources) loadFile(path string, source ConfigSource) error {
	md, err := toml.DecodeFile(path, cws.Config)
	if err != nil {
		return err
	}
	for _, key := range md.Keys() {
		k := key.String()
		if _, ok := cws.Sources[k]; ok {
			cws.Sources[k] = source
		}
	}
	for _, key := range md.Undecoded() {
		cws.Unknown = append(cws.Unknown, key.String())
	}
	cws.Files = append(cws.Files, path)
	return nil
}

// finalizeConfig normalizes values, fills derived paths and validates.
func finalizeConfig(cfg *Config) error {
	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))
	cfg.Sort = strings.ToLower(strings.TrimSpace(cfg.Sort))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(cfg.LogFormat))

	if strings.TrimSpace(cfg.DataDir) == "" {
		cfg.DataDir = DefaultDataDir
	}
	cfg.DataDir = expandPath(cfg.DataDir)
	if cfg.SQLitePath == "" {
		cfg.SQLitePath = datadir.DatabasePath(cfg.DataDir)
	} else {
		cfg.SQLitePath = expandPath(cfg.SQLitePath)
	}
	if cfg.LogFile == "" {
		cfg.LogFile = datadir.LogPath(cfg.DataDir)
	} else {
		cfg.LogFile = expandPath(cfg.LogFile)
	}

	return validate(cfg)
}

func validate(cfg *Config) error {
	if err := kv.ValidateBackend(cfg.Backend); err != nil {
		return err
	}
	if _, err := store.ParseSortOption(cfg.Sort); err != nil {
		return err
	}
	if _, err := log.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level %q: %w", cfg.LogLevel, err)
	}
	switch cfg.LogFormat {
	case "text", "json", "logfmt":
	default:
		return fmt.Errorf("invalid log_format %q, must be one of: text, json, logfmt", cfg.LogFormat)
	}
	if cfg.RedisDB < 0 {
		return fmt.Errorf("redis_db must be >= 0, got %d", cfg.RedisDB)
	}
	if cfg.ReminderPollSeconds < 1 {
		return fmt.Errorf("reminder_poll_seconds must be >= 1, got %d", cfg.ReminderPollSeconds)
	}
	if cfg.ReminderGraceSeconds < 0 {
		return fmt.Errorf("reminder_grace_seconds must be >= 0, got %d", cfg.ReminderGraceSeconds)
	}
	if cfg.MaxNotifyWorkers < 0 {
		return fmt.Errorf("max_notify_workers must be >= 0, got %d", cfg.MaxNotifyWorkers)
	}
	return nil
}
