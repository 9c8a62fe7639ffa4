package config

// Default values.
const (
	DefaultBackend              = "file"
	DefaultDataDir              = "~/.taskpad"
	DefaultRedisAddr            = "localhost:6379"
	DefaultRedisPrefix          = "taskpad:"
	DefaultSort                 = "created"
	DefaultNotifyCommand        = "notify-send"
	DefaultReminderPollSeconds  = 5
	DefaultReminderGraceSeconds = 60
	DefaultMaxNotifyWorkers     = 4
	DefaultLogLevel             = "info"
	DefaultLogFormat            = "text"
)

// Config holds all taskpad configuration.
type Config struct {
	// Storage
	Backend       string `toml:"backend"`
	DataDir       string `toml:"data_dir"`
	SQLitePath    string `toml:"sqlite_path"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	RedisPrefix   string `toml:"redis_prefix"`

	// FeedChannel is the Redis pub/sub channel for change messages.
	// Empty disables the feed.
	FeedChannel string `toml:"feed_channel"`

	// Sort is the initial sort option of the task list.
	Sort string `toml:"sort"`

	// Reminders
	Notifications        bool   `toml:"notifications"`
	NotifyCommand        string `toml:"notify_command"`
	ReminderPollSeconds  int    `toml:"reminder_poll_seconds"`
	ReminderGraceSeconds int    `toml:"reminder_grace_seconds"`
	MaxNotifyWorkers     int    `toml:"max_notify_workers"`

	// Logging
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LogTimestamps bool   `toml:"log_timestamps"`
	LogCaller     bool   `toml:"log_caller"`
	// LogFile is where the TUI writes its log. Defaults to taskpad.log in DataDir.
	LogFile string `toml:"log_file"`
}

// ConfigSource represents where a configuration value came from.
type ConfigSource string

const (
	SourceDefault  ConfigSource = "default"
	SourceUserFile ConfigSource = "user config"
	SourceProjFile ConfigSource = "project config"
	SourceEnv      ConfigSource = "environment"
	SourceFlag     ConfigSource = "flag"
)

// ConfigWithSources wraps Config with source tracking for each field.
type ConfigWithSources struct {
	Config  *Config
	Sources map[string]ConfigSource
	// Files lists the config files that were read, lowest priority first.
	Files []string
	// Unknown lists keys found in config files that taskpad does not use.
	Unknown []string
}
