// Package config resolves the evaluation settings from flags, positional
// arguments, environment variables and an optional YAML file.
//
// Precedence follows viper: flags, then DICEBENCH_* environment variables,
// then the config file, then defaults.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	dicebench "github.com/jamesainslie/go-dicebench"
	"github.com/jamesainslie/go-dicebench/runner"
)

const (
	EnvPrefix         = "DICEBENCH"
	DefaultConfigName = "dicebench"
)

// ErrUsage indicates malformed command line arguments.
var ErrUsage = errors.New("config: invalid arguments")

// Competitor is a configured competitor program.
type Competitor struct {
	Name string `mapstructure:"name"`
	Path string `mapstructure:"path"`
}

// Config is the resolved evaluation configuration.
type Config struct {
	Competitors []Competitor  `mapstructure:"competitors"`
	DataDir     string        `mapstructure:"data_dir"`
	ResultsDir  string        `mapstructure:"results_dir"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Render      bool          `mapstructure:"render"`
	Listen      string        `mapstructure:"listen"`
	LogLevel    string        `mapstructure:"log_level"`
	NoColor     bool          `mapstructure:"no_color"`
}

// flag name -> config key
var flagKeys = map[string]string{
	"data-dir":    "data_dir",
	"results-dir": "results_dir",
	"timeout":     "timeout",
	"render":      "render",
	"listen":      "listen",
	"log-level":   "log_level",
	"no-color":    "no_color",
}

// RegisterFlags adds the evaluation flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "config file (default ./"+DefaultConfigName+".yaml if present)")
	fs.StringArray("competitor", nil, "competitor as name=path (repeatable)")
	fs.String("data-dir", "", "directory searched recursively for evaluation videos")
	fs.String("results-dir", "", "directory in which the timestamped run directory is created")
	fs.Duration("timeout", runner.DefaultTimeout, "wall-clock limit per competitor run")
	fs.Bool("render", true, "write an overlay image per attempt")
	fs.String("listen", "", "serve the live leaderboard on this address (e.g. :8080)")
	fs.String("log-level", "info", "log level: debug, info, warn, error")
	fs.Bool("no-color", false, "disable colored console output")
}

// Load resolves the configuration. args are the positional arguments in the
// form "name path [name path ...] dataDir resultsDir"; they may be empty
// when everything comes from flags or the config file.
func Load(fs *pflag.FlagSet, args []string) (*Config, error) {
	v := viper.New()
	v.SetDefault("timeout", runner.DefaultTimeout)
	v.SetDefault("render", true)
	v.SetDefault("log_level", "info")
	v.SetDefault("data_dir", "")
	v.SetDefault("results_dir", "")
	v.SetDefault("listen", "")
	v.SetDefault("no_color", false)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	for name, key := range flagKeys {
		if f := fs.Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	if err := readConfigFile(v, fs); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if f := fs.Lookup("competitor"); f != nil {
		flagged, err := fs.GetStringArray("competitor")
		if err != nil {
			return nil, err
		}
		for _, arg := range flagged {
			c, err := parseCompetitor(arg)
			if err != nil {
				return nil, err
			}
			cfg.Competitors = append(cfg.Competitors, c)
		}
	}

	if err := cfg.applyArgs(args); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func readConfigFile(v *viper.Viper, fs *pflag.FlagSet) error {
	path, _ := fs.GetString("config")
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", path, err)
		}
		return nil
	}

	v.AddConfigPath(".")
	v.SetConfigName(DefaultConfigName)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func parseCompetitor(arg string) (Competitor, error) {
	name, path, ok := strings.Cut(arg, "=")
	if !ok || name == "" || path == "" {
		return Competitor{}, fmt.Errorf("%w: competitor %q, want name=path", ErrUsage, arg)
	}
	return Competitor{Name: name, Path: path}, nil
}

// applyArgs merges "name path ... dataDir resultsDir".
func (c *Config) applyArgs(args []string) error {
	if len(args) == 0 {
		return nil
	}
	if len(args) < 4 || len(args)%2 != 0 {
		return fmt.Errorf("%w: want name path [name path ...] dataDir resultsDir, got %d arguments", ErrUsage, len(args))
	}

	n := len(args) - 2
	for i := 0; i < n; i += 2 {
		c.Competitors = append(c.Competitors, Competitor{Name: args[i], Path: args[i+1]})
	}
	c.DataDir = args[n]
	c.ResultsDir = args[n+1]
	return nil
}

// DicebenchCompetitors converts the configured competitors.
func (c *Config) DicebenchCompetitors() []dicebench.Competitor {
	out := make([]dicebench.Competitor, len(c.Competitors))
	for i, comp := range c.Competitors {
		out[i] = dicebench.Competitor{Name: comp.Name, ExecutablePath: comp.Path}
	}
	return out
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("%w: log level %q", ErrUsage, c.LogLevel)
	}
	return level, nil
}

// Validate checks everything that can be checked before the corpus is read.
func (c *Config) Validate() error {
	if err := dicebench.CheckCompetitors(c.DicebenchCompetitors()); err != nil {
		return err
	}
	if c.DataDir == "" || c.ResultsDir == "" {
		return fmt.Errorf("%w: data and results directories are required", dicebench.ErrNotDirectory)
	}
	if err := dicebench.CheckDirectory(c.DataDir); err != nil {
		return fmt.Errorf("data dir: %w", err)
	}
	if err := dicebench.CheckDirectory(c.ResultsDir); err != nil {
		return fmt.Errorf("results dir: %w", err)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive, got %s", ErrUsage, c.Timeout)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}
