package config

import (
	"flag"
)

// registerFlags defines one flag per config field on fs. Each flag writes
// straight into cfg, so values already loaded act as the flag defaults.
// Returns a map from flag name to config key.
func registerFlags(cfg *Config, fs *flag.FlagSet) map[string]string {
	names := make(map[string]string)
	for _, f := range fields(cfg) {
		switch p := f.ptr.(type) {
		case *string:
			fs.StringVar(p, f.flag, *p, f.usage)
		case *int:
			fs.IntVar(p, f.flag, *p, f.usage)
		case *bool:
			fs.BoolVar(p, f.flag, *p, f.usage)
		}
		names[f.flag] = f.key
	}
	return names
}

// parseFlags parses args into cfg and marks every flag that was set.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string, sources map[string]ConfigSource) error {
	names := registerFlags(cfg, fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if sources != nil {
		fs.Visit(func(f *flag.Flag) {
			if key, ok := names[f.Name]; ok {
				sources[key] = SourceFlag
			}
		})
	}
	return nil
}
