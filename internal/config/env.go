package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/nibzard/taskpad/internal/utils"
)

// loadFromEnv overrides cfg with TASKPAD_* variables. Empty variables are ignored.
func loadFromEnv(cfg *Config, sources map[string]ConfigSource) error {
	for _, f := range fields(cfg) {
		v, ok := os.LookupEnv(f.env)
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		switch p := f.ptr.(type) {
		case *string:
			*p = v
		case *int:
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("%s: invalid integer %q", f.env, v)
			}
			*p = n
		case *bool:
			*p = utils.BoolFromString(v)
		}
		if sources != nil {
			sources[f.key] = SourceEnv
		}
	}
	return nil
}
