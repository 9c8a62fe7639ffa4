package config

import (
	"os"
	"path/filepath"
	"slices"

	"github.com/nibzard/taskpad/internal/datadir"
)

// projectConfigNames are checked in the working directory, in order.
var projectConfigNames = []string{"taskpad.toml", ".taskpad.toml"}

// findProjectConfigFile looks for a config file in the current directory.
func findProjectConfigFile() string {
	for _, name := range projectConfigNames {
		if info, err := os.Stat(name); err == nil && !info.IsDir() {
			return name
		}
	}
	return ""
}

// findUserConfigFile checks ~/.taskpad/taskpad.toml first, then
// taskpad/taskpad.toml in the OS config directory.
func findUserConfigFile() string {
	home, err := os.UserHomeDir()
	if err == nil {
		p := datadir.ConfigPath(filepath.Join(home, datadir.Dir))
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	if cfgDir := osUserConfigDir(); cfgDir != "" {
		p := filepath.Join(cfgDir, "taskpad", datadir.ConfigFile)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Source returns where key got its value. Unknown keys report SourceDefault.
func (cws *ConfigWithSources) Source(key string) ConfigSource {
	if s, ok := cws.Sources[key]; ok {
		return s
	}
	return SourceDefault
}

// Keys returns the tracked config keys in sorted order.
func (cws *ConfigWithSources) Keys() []string {
	keys := make([]string, 0, len(cws.Sources))
	for k := range cws.Sources {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// GetConfigFile returns the highest priority config file that was read, or "".
func (cws *ConfigWithSources) GetConfigFile() string {
	if len(cws.Files) == 0 {
		return ""
	}
	return cws.Files[len(cws.Files)-1]
}

// Value returns the value of key formatted for display. Secrets are masked.
func (cws *ConfigWithSources) Value(key string) (any, bool) {
	for _, f := range fields(cws.Config) {
		if f.key != key {
			continue
		}
		switch p := f.ptr.(type) {
		case *string:
			if key == "redis_password" && *p != "" {
				return "********", true
			}
			return *p, true
		case *int:
			return *p, true
		case *bool:
			return *p, true
		}
	}
	return nil, false
}
