package config

// ExampleConfig returns an example taskpad.toml with every key at its default.
func ExampleConfig() string {
	return `# taskpad configuration
# Place this file at ~/.taskpad/taskpad.toml or ./taskpad.toml.
# Environment variables (TASKPAD_*) and flags override these values.

# Storage backend: file, sqlite, redis or memory
backend = "file"

# Data directory for the file store, the sqlite database and the TUI log
data_dir = "~/.taskpad"

# sqlite_path = "~/.taskpad/taskpad.db"

# Redis backend
redis_addr = "localhost:6379"
redis_password = ""
redis_db = 0
redis_prefix = "taskpad:"

# Publish every change to this Redis channel (empty disables)
feed_channel = ""

# Initial sort: created, priority, due or category
sort = "created"

# Reminders
notifications = true
notify_command = "notify-send"
reminder_poll_seconds = 5
reminder_grace_seconds = 60
max_notify_workers = 4

# Logging
log_level = "info"     # debug, info, warn, error
log_format = "text"    # text, json, logfmt
log_timestamps = false
log_caller = false
# log_file = "~/.taskpad/taskpad.log"
`
}
