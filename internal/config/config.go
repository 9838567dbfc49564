// Package config loads taskboard settings.
//
// Sources, lowest precedence first: built-in defaults, the global file
// (~/.taskboard/config.yaml, or $TASKBOARD_CONFIG_DIR/config.yaml), the project file
// (./.taskboard/config.yaml), an explicit --config file, TASKBOARD_* environment variables,
// then command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	EnvPrefix    = "TASKBOARD"
	EnvConfigDir = "TASKBOARD_CONFIG_DIR"
	dirName      = ".taskboard"
	fileName     = "config.yaml"
)

type Config struct {
	// Dir holds taskboard.sqlite.
	Dir    string    `mapstructure:"dir" yaml:"dir"`
	Addr   string    `mapstructure:"addr" yaml:"addr"`
	Format string    `mapstructure:"format" yaml:"format"`
	Pretty bool      `mapstructure:"pretty" yaml:"pretty"`
	Seed   string    `mapstructure:"seed" yaml:"seed"`
	Log    LogConfig `mapstructure:"log" yaml:"log"`
	Web    WebConfig `mapstructure:"web" yaml:"web"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"` // text|json
}

type WebConfig struct {
	ReadOnly    bool   `mapstructure:"read_only" yaml:"read_only"`
	DatastarSrc string `mapstructure:"datastar_src" yaml:"datastar_src"`
}

const DefaultDatastarSrc = "https://cdn.jsdelivr.net/gh/starfederation/datastar@v1.0.0/bundles/datastar.js"

func Default() Config {
	return Config{
		Addr:   "127.0.0.1:3333",
		Format: "json",
		Log:    LogConfig{Level: "info", Format: "text"},
		Web:    WebConfig{DatastarSrc: DefaultDatastarSrc},
	}
}

// ConfigDir returns $TASKBOARD_CONFIG_DIR or ~/.taskboard.
func ConfigDir() (string, error) {
	if v := strings.TrimSpace(os.Getenv(EnvConfigDir)); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, dirName), nil
}

func GlobalPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

func ProjectPath(workDir string) string {
	return filepath.Join(workDir, dirName, fileName)
}

// DefaultDir is the data dir used when none is configured.
func DefaultDir() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "board"), nil
}

type LoadOptions struct {
	// File is an explicit config file; it must exist.
	File string
	// WorkDir locates the project file. Empty means the current directory.
	WorkDir string
	// Flags are bound by name: dir, addr, format, pretty, seed, log-level, log-format, read-only.
	Flags *pflag.FlagSet
}

var flagKeys = map[string]string{
	"dir":        "dir",
	"addr":       "addr",
	"format":     "format",
	"pretty":     "pretty",
	"seed":       "seed",
	"log-level":  "log.level",
	"log-format": "log.format",
	"read-only":  "web.read_only",
}

func Load(opts LoadOptions) (Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v, Default())

	if global, err := GlobalPath(); err == nil {
		if err := mergeFile(v, global, false); err != nil {
			return Config{}, err
		}
	}
	workDir := opts.WorkDir
	if workDir == "" {
		if cwd, err := os.Getwd(); err == nil {
			workDir = cwd
		}
	}
	if workDir != "" {
		if err := mergeFile(v, ProjectPath(workDir), false); err != nil {
			return Config{}, err
		}
	}
	if f := strings.TrimSpace(opts.File); f != "" {
		if err := mergeFile(v, f, true); err != nil {
			return Config{}, err
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.Flags != nil {
		for name, key := range flagKeys {
			if f := opts.Flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, err
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if strings.TrimSpace(cfg.Dir) == "" {
		d, err := DefaultDir()
		if err != nil {
			return Config{}, err
		}
		cfg.Dir = d
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("dir", d.Dir)
	v.SetDefault("addr", d.Addr)
	v.SetDefault("format", d.Format)
	v.SetDefault("pretty", d.Pretty)
	v.SetDefault("seed", d.Seed)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("web.read_only", d.Web.ReadOnly)
	v.SetDefault("web.datastar_src", d.Web.DatastarSrc)
}

func mergeFile(v *viper.Viper, path string, required bool) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return nil
		}
		return err
	}
	v.SetConfigFile(path)
	if err := v.MergeInConfig(); err != nil {
		return fmt.Errorf("config %s: %w", path, err)
	}
	return nil
}

func (c Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Format)) {
	case "json", "edn", "yaml":
	default:
		return fmt.Errorf("config: invalid format %q (expected json|edn|yaml)", c.Format)
	}
	switch strings.ToLower(strings.TrimSpace(c.Log.Format)) {
	case "", "text", "json":
	default:
		return fmt.Errorf("config: invalid log.format %q (expected text|json)", c.Log.Format)
	}
	return nil
}

func (c Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}
