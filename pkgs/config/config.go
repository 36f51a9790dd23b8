// Package config loads ecsgen settings from ecsgen.yaml, ECSGEN_* environment
// variables and command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"go/token"
	"runtime"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
	"golang.org/x/mod/module"
)

// FileName is the configuration file looked up in the working directory.
const FileName = "ecsgen"

// EnvPrefix prefixes environment overrides: ECSGEN_QUERY_PREFIX.
const EnvPrefix = "ECSGEN"

// Config is the complete tool configuration.
type Config struct {
	Names         Names     `mapstructure:"names"`
	QueryPrefix   string    `mapstructure:"query_prefix"`
	PoolPrefix    string    `mapstructure:"pool_prefix"`
	RuntimeImport string    `mapstructure:"runtime_import"`
	OutputSuffix  string    `mapstructure:"output_suffix"`
	Jobs          int       `mapstructure:"jobs"`
	Format        bool      `mapstructure:"format"`
	Strict        bool      `mapstructure:"strict"`
	Log           LogConfig `mapstructure:"log"`
}

// Names are the identifiers that make up the DSL.
type Names struct {
	Each    string `mapstructure:"each"`
	Without string `mapstructure:"without"`
	Method  string `mapstructure:"method"`
	Base    string `mapstructure:"base"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level      zapcore.Level `mapstructure:"level"`
	File       string        `mapstructure:"file"`
	MaxSize    int           `mapstructure:"max_size"`
	MaxBackups int           `mapstructure:"max_backups"`
	MaxAge     int           `mapstructure:"max_age"`
	Compress   bool          `mapstructure:"compress"`
	Dev        bool          `mapstructure:"dev"`
}

var defaults = map[string]any{
	"names.each":      "Each",
	"names.without":   "Without",
	"names.method":    "Update",
	"names.base":      "UpdateSystem",
	"query_prefix":    "query_",
	"pool_prefix":     "pool",
	"runtime_import":  "github.com/aledsdavies/ecsgen/ecs",
	"output_suffix":   "_ecs.go",
	"jobs":            0,
	"format":          true,
	"strict":          false,
	"log.level":       "info",
	"log.max_size":    10,
	"log.max_backups": 3,
	"log.max_age":     28,
}

// flagKeys maps command-line flags to configuration keys.
var flagKeys = map[string]string{
	"each":           "names.each",
	"without":        "names.without",
	"query-prefix":   "query_prefix",
	"pool-prefix":    "pool_prefix",
	"runtime-import": "runtime_import",
	"output-suffix":  "output_suffix",
	"jobs":           "jobs",
	"format":         "format",
	"strict":         "strict",
	"log-level":      "log.level",
	"log-file":       "log.file",
}

// New returns a viper instance with defaults and environment lookup set up.
func New() *viper.Viper {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// BindFlags binds the flags of fs that carry configuration keys. Flags that
// fs does not define are skipped.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

// Load reads the configuration. An explicit path must exist; otherwise
// ecsgen.yaml is looked up in the working directory and is optional.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.TextUnmarshallerHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Jobs <= 0 {
		cfg.Jobs = runtime.NumCPU()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// OnChange re-decodes the configuration whenever the loaded file changes and
// passes the result, or the decode error, to fn.
func OnChange(v *viper.Viper, fn func(*Config, error)) {
	v.OnConfigChange(func(fsnotify.Event) {
		fn(decode(v))
	})
	v.WatchConfig()
}

// Validate checks that names are identifiers and paths are well formed.
func (c *Config) Validate() error {
	var errs []error
	idents := []struct{ field, value string }{
		{"names.each", c.Names.Each},
		{"names.without", c.Names.Without},
		{"names.method", c.Names.Method},
		{"names.base", c.Names.Base},
		{"query_prefix", c.QueryPrefix},
		{"pool_prefix", c.PoolPrefix},
	}
	for _, id := range idents {
		if !token.IsIdentifier(id.value) {
			errs = append(errs, fmt.Errorf("%s: %q is not an identifier", id.field, id.value))
		}
	}
	if c.Names.Each == c.Names.Without {
		errs = append(errs, fmt.Errorf("names.each and names.without must differ"))
	}
	if c.QueryPrefix == c.PoolPrefix {
		errs = append(errs, fmt.Errorf("query_prefix and pool_prefix must differ"))
	}
	if err := module.CheckImportPath(c.RuntimeImport); err != nil {
		errs = append(errs, fmt.Errorf("runtime_import: %w", err))
	}
	if !strings.HasSuffix(c.OutputSuffix, ".go") || strings.HasSuffix(c.OutputSuffix, "_test.go") {
		errs = append(errs, fmt.Errorf("output_suffix: %q must end in .go and not _test.go", c.OutputSuffix))
	}
	return errors.Join(errs...)
}
