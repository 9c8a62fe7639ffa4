package config

// field binds one config value to its file key, environment variable and flag.
type field struct {
	key   string // TOML key, also the key in ConfigWithSources.Sources
	env   string
	flag  string
	usage string
	ptr   any // *string, *int or *bool into a Config
}

func fields(cfg *Config) []field {
	return []field{
		{"backend", "TASKPAD_BACKEND", "backend", "Storage backend (file|sqlite|redis|memory)", &cfg.Backend},
		{"data_dir", "TASKPAD_DATA_DIR", "data-dir", "Data directory", &cfg.DataDir},
		{"sqlite_path", "TASKPAD_SQLITE_PATH", "sqlite-path", "SQLite database path (default <data-dir>/taskpad.db)", &cfg.SQLitePath},
		{"redis_addr", "TASKPAD_REDIS_ADDR", "redis-addr", "Redis address", &cfg.RedisAddr},
		{"redis_password", "TASKPAD_REDIS_PASSWORD", "redis-password", "Redis password", &cfg.RedisPassword},
		{"redis_db", "TASKPAD_REDIS_DB", "redis-db", "Redis database number", &cfg.RedisDB},
		{"redis_prefix", "TASKPAD_REDIS_PREFIX", "redis-prefix", "Prefix for Redis keys", &cfg.RedisPrefix},
		{"feed_channel", "TASKPAD_FEED_CHANNEL", "feed-channel", "Redis channel for change messages (empty disables)", &cfg.FeedChannel},
		{"sort", "TASKPAD_SORT", "sort", "Initial sort (created|priority|due|category)", &cfg.Sort},
		{"notifications", "TASKPAD_NOTIFICATIONS", "notifications", "Deliver due-date reminders", &cfg.Notifications},
		{"notify_command", "TASKPAD_NOTIFY_COMMAND", "notify-command", "Command that shows a reminder (title and body are appended)", &cfg.NotifyCommand},
		{"reminder_poll_seconds", "TASKPAD_REMINDER_POLL", "reminder-poll", "Seconds between reminder checks", &cfg.ReminderPollSeconds},
		{"reminder_grace_seconds", "TASKPAD_REMINDER_GRACE", "reminder-grace", "Seconds a missed reminder may still fire", &cfg.ReminderGraceSeconds},
		{"max_notify_workers", "TASKPAD_MAX_NOTIFY_WORKERS", "max-notify-workers", "Concurrent reminder deliveries (0 = unlimited)", &cfg.MaxNotifyWorkers},
		{"log_level", "TASKPAD_LOG_LEVEL", "log-level", "Log level (debug|info|warn|error)", &cfg.LogLevel},
		{"log_format", "TASKPAD_LOG_FORMAT", "log-format", "Log format (text|json|logfmt)", &cfg.LogFormat},
		{"log_timestamps", "TASKPAD_LOG_TIMESTAMPS", "log-timestamps", "Include timestamps in logs", &cfg.LogTimestamps},
		{"log_caller", "TASKPAD_LOG_CALLER", "log-caller", "Include caller in logs", &cfg.LogCaller},
		{"log_file", "TASKPAD_LOG_FILE", "log-file", "TUI log file (default <data-dir>/taskpad.log)", &cfg.LogFile},
	}
}

// configFields returns the keys of all config fields.
func configFields() []string {
	var cfg Config
	fs := fields(&cfg)
	keys := make([]string, len(fs))
	for i, f := range fs {
		keys[i] = f.key
	}
	return keys
}
