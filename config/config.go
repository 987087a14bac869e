// Package config loads tcl-runtime settings from YAML and .env files.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/tcl-runtime/binding"
	"github.com/wippyai/tcl-runtime/binding/wasmlib"
	"github.com/wippyai/tcl-runtime/errors"
	"github.com/wippyai/tcl-runtime/interp"
)

// EnvResourceDir overrides resource_dir when set.
const EnvResourceDir = "TCL_RESOURCE_DIR"

const (
	BackendNative = "native"
	BackendWasm   = "wasm"
)

// Config is the top-level configuration.
type Config struct {
	Globals     map[string]string `yaml:"globals"`      // Set global-only after bootstrap.
	ResourceDir string            `yaml:"resource_dir"` // The library lives in ResourceDir/ThirdParty.
	Library     string            `yaml:"library"`      // Overrides the backend's default file name.
	Backend     string            `yaml:"backend"`
	LogLevel    string            `yaml:"log_level"`
	Startup     []string          `yaml:"startup"` // Scripts evaluated after bootstrap, in order.
	Wasm        WasmConfig        `yaml:"wasm"`
	ID          uint32            `yaml:"id"`
}

// WasmConfig holds settings for the wasm backend.
type WasmConfig struct {
	MemoryLimitPages uint32 `yaml:"memory_limit_pages"` // 64KiB pages (0 = wazero default).
}

// Default returns the configuration used when no file is given.
func Default() Config {
	c := Config{
		ResourceDir: ".",
		Backend:     BackendNative,
		LogLevel:    "info",
	}
	c.ApplyEnv()
	return c
}

// Load reads a YAML file on top of Default(). Environment variables
// referenced as ${VAR} or $VAR are expanded before parsing.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is caller-provided configuration
	if err != nil {
		return Config{}, errors.Config("load "+path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return Config{}, errors.Config("parse "+path, err)
	}
	cfg.ApplyEnv()
	return cfg, nil
}

// LoadEnv loads environment variables from path. Missing files are ignored
// and variables already set are kept.
func LoadEnv(path string) error {
	err := godotenv.Load(path)
	if err != nil && !os.IsNotExist(err) {
		return errors.Config("load env "+path, err)
	}
	return nil
}

// ApplyEnv applies environment overrides.
func (c *Config) ApplyEnv() {
	if dir := os.Getenv(EnvResourceDir); dir != "" {
		c.ResourceDir = dir
	}
}

// Validate checks that the configuration is internally consistent.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendNative, BackendWasm:
	default:
		return errors.Config(fmt.Sprintf("backend %q: want %q or %q", c.Backend, BackendNative, BackendWasm), nil)
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return errors.Config("log_level", err)
	}
	for name := range c.Globals {
		if name == "" {
			return errors.Config("globals: empty variable name", nil)
		}
		if name == interp.IDVar {
			return errors.Config(fmt.Sprintf("globals: %s is reserved for the interpreter id", interp.IDVar), nil)
		}
	}
	return nil
}

// Logger builds a development logger at the configured level.
func (c Config) Logger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, errors.Config("log_level", err)
	}
	zc := zap.NewDevelopmentConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

// BindingOptions maps the configuration onto binding options.
func (c Config) BindingOptions(logger *zap.Logger) binding.Options {
	opts := binding.Options{
		Dir:      c.ResourceDir,
		FileName: c.Library,
		Logger:   logger,
	}
	if c.Backend == BackendWasm {
		opts.Loader = wasmlib.NewLoader(&wasmlib.Config{
			Logger:           logger,
			MemoryLimitPages: c.Wasm.MemoryLimitPages,
			Stdout:           os.Stdout,
			Stderr:           os.Stderr,
		})
	}
	return opts
}
