package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// Configuration keys. The flag bound to each key is listed in flagKeys.
const (
	keyWidth       = "resize.width"
	keyHeight      = "resize.height"
	keyPercentage  = "resize.percentage"
	keySquare      = "resize.square"
	keyKeepRatio   = "resize.keep_ratio"
	keyRounding    = "resize.rounding"
	keyStrict      = "resize.strict"
	keyWorkers     = "resize.workers"
	keyQuality     = "output.quality"
	keyBackground  = "output.background"
	keyConcurrency = "exec.concurrency"
	keyLogLevel    = "log_level"
)

// flagKeys maps the command line flags to the configuration keys they override.
var flagKeys = map[string]string{
	"width":   keyWidth,
	"height":  keyHeight,
	"perc":    keyPercentage,
	"square":  keySquare,
	"ratio":   keyKeepRatio,
	"round":   keyRounding,
	"strict":  keyStrict,
	"workers": keyWorkers,
	"quality": keyQuality,
	"bg":      keyBackground,
	"conc":    keyConcurrency,
}

// setDefaults registers the built-in values, used when neither
// the configuration file nor a flag provides one.
func setDefaults(v *viper.Viper) {
	v.SetDefault(keyWidth, 0)
	v.SetDefault(keyHeight, 0)
	v.SetDefault(keyPercentage, false)
	v.SetDefault(keySquare, false)
	v.SetDefault(keyKeepRatio, false)
	v.SetDefault(keyRounding, "truncate")
	v.SetDefault(keyStrict, false)
	v.SetDefault(keyWorkers, 1)
	v.SetDefault(keyQuality, 100)
	v.SetDefault(keyBackground, "")
	v.SetDefault(keyConcurrency, runtime.NumCPU())
	v.SetDefault(keyLogLevel, "info")
}

// loadConfig reads the TOML configuration file and applies the flags explicitly
// set on the command line on top of it. A missing default file is not an error.
func loadConfig(fset *flag.FlagSet, path string, explicit bool) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit || !(errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)) {
			return nil, fmt.Errorf("could not read config file %s: %w", path, err)
		}
	}

	var rounding bool
	fset.Visit(func(f *flag.Flag) {
		key, ok := flagKeys[f.Name]
		if !ok {
			return
		}
		if key == keyRounding {
			rounding = true
			return
		}
		v.Set(key, f.Value.(flag.Getter).Get())
	})
	// The -round flag is a switch while the config key names the mode.
	if rounding {
		if fset.Lookup("round").Value.String() == "true" {
			v.Set(keyRounding, "half_even")
		} else {
			v.Set(keyRounding, "truncate")
		}
	}

	return v, nil
}

// logLevel converts the configured level name into a zerolog level.
// Empty or unknown names fall back to the info level.
func logLevel(name string) zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(name)))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}
