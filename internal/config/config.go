// Package config loads and saves the user configuration. It is read once at
// startup; the session works on an immutable copy.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	apperrors "filephile/internal/errors"
	"filephile/internal/eventbus"
	"filephile/internal/log"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. FILEPHILE_SHOW_HIDDEN=true
const EnvPrefix = "FILEPHILE"

// Config represents the application configuration
type Config struct {
	SequenceTimeoutMS int               `toml:"sequence_timeout_ms" mapstructure:"sequence_timeout_ms"`
	StrictPrefixes    bool              `toml:"strict_prefixes" mapstructure:"strict_prefixes"`
	WrapCursor        bool              `toml:"wrap_cursor" mapstructure:"wrap_cursor"`
	ShowHidden        bool              `toml:"show_hidden" mapstructure:"show_hidden"`
	ScrollOff         int               `toml:"scroll_off" mapstructure:"scroll_off"`
	Sort              string            `toml:"sort" mapstructure:"sort"`
	SortReverse       bool              `toml:"sort_reverse" mapstructure:"sort_reverse"`
	ConfirmDelete     bool              `toml:"confirm_delete" mapstructure:"confirm_delete"`
	ConfirmQuit       bool              `toml:"confirm_quit" mapstructure:"confirm_quit"`
	ConflictPolicy    string            `toml:"conflict_policy" mapstructure:"conflict_policy"`
	AutoRefresh       bool              `toml:"auto_refresh" mapstructure:"auto_refresh"`
	EditorCommand     string            `toml:"editor_command" mapstructure:"editor_command"`
	ExternalCommands  map[string]string `toml:"external_commands" mapstructure:"external_commands"`
	Bindings          []Binding         `toml:"bindings" mapstructure:"bindings"`
}

// SequenceTimeout returns the inter-key timeout
func (c *Config) SequenceTimeout() time.Duration {
	return time.Duration(c.SequenceTimeoutMS) * time.Millisecond
}

// Service handles configuration management
type Service interface {
	Load() (*Config, error)
	Save(cfg *Config) error
	LoadFromPath(path string) (*Config, error)
	SaveToPath(cfg *Config, path string) error
	Path() string
}

type service struct {
	bus      eventbus.EventBus
	filePath string
}

// NewService creates a config service for path, or for the default
// location when path is empty. bus may be nil.
func NewService(path string, bus eventbus.EventBus) Service {
	if path == "" {
		path = DefaultPath()
	}
	return &service{bus: bus, filePath: path}
}

// DefaultPath returns <user config dir>/filephile/config.toml
func DefaultPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		home, herr := os.UserHomeDir()
		if herr != nil {
			home = "."
		}
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, "filephile", "config.toml")
}

func (s *service) Path() string {
	return s.filePath
}

// Load reads the service's file. A missing file yields the defaults.
func (s *service) Load() (*Config, error) {
	if _, err := os.Stat(s.filePath); os.IsNotExist(err) {
		log.Infof("no config at %s, using defaults", s.filePath)
		cfg, err := read("")
		if err != nil {
			return nil, err
		}
		s.publishLoaded(cfg)
		return cfg, nil
	}
	cfg, err := s.LoadFromPath(s.filePath)
	if err != nil {
		return nil, err
	}
	s.publishLoaded(cfg)
	return cfg, nil
}

func (s *service) publishLoaded(cfg *Config) {
	if s.bus != nil {
		s.bus.Publish(eventbus.ConfigLoadedEvent{Path: s.filePath, Bindings: len(cfg.Bindings)})
	}
}

// LoadFromPath reads and validates the file at path
func (s *service) LoadFromPath(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, apperrors.NewConfigError("config file not found", path, err)
	}
	return read(path)
}

// read layers defaults, the file at path (if any) and the environment
func read(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigType("toml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, apperrors.NewConfigError("failed to parse config", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to decode config", path, err)
	}
	if cfg.ExternalCommands == nil {
		cfg.ExternalCommands = make(map[string]string)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("sequence_timeout_ms", d.SequenceTimeoutMS)
	v.SetDefault("strict_prefixes", d.StrictPrefixes)
	v.SetDefault("wrap_cursor", d.WrapCursor)
	v.SetDefault("show_hidden", d.ShowHidden)
	v.SetDefault("scroll_off", d.ScrollOff)
	v.SetDefault("sort", d.Sort)
	v.SetDefault("sort_reverse", d.SortReverse)
	v.SetDefault("confirm_delete", d.ConfirmDelete)
	v.SetDefault("confirm_quit", d.ConfirmQuit)
	v.SetDefault("conflict_policy", d.ConflictPolicy)
	v.SetDefault("auto_refresh", d.AutoRefresh)
	v.SetDefault("editor_command", d.EditorCommand)
}

// Save writes cfg to the service's file
func (s *service) Save(cfg *Config) error {
	if err := s.SaveToPath(cfg, s.filePath); err != nil {
		return err
	}
	if s.bus != nil {
		s.bus.Publish(eventbus.ConfigSavedEvent{Path: s.filePath})
	}
	return nil
}

// SaveToPath writes cfg as TOML to path
func (s *service) SaveToPath(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := Encode(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Encode renders cfg as TOML
func Encode(cfg *Config) ([]byte, error) {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(cfg); err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return buf.Bytes(), nil
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	editor := os.Getenv("VISUAL")
	if editor == "" {
		editor = os.Getenv("EDITOR")
	}
	if editor == "" {
		editor = "vi"
	}
	return &Config{
		SequenceTimeoutMS: int(time.Second / time.Millisecond),
		WrapCursor:        false,
		ShowHidden:        false,
		ScrollOff:         3,
		Sort:              "kind",
		ConfirmDelete:     true,
		ConfirmQuit:       true,
		ConflictPolicy:    "prompt",
		AutoRefresh:       true,
		EditorCommand:     editor,
		ExternalCommands: map[string]string{
			"pager": "less {}",
		},
		Bindings: DefaultBindings(),
	}
}
