package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/jakebf/folio/internal/analytics"
	"github.com/jakebf/folio/internal/particles"
	"github.com/jakebf/folio/internal/typewriter"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// ─── Config ──────────────────────────────────────────────────────────────────

const (
	themeAuto  = "auto"
	themeDark  = "dark"
	themeLight = "light"
)

type motionConfig struct {
	Reduced bool `mapstructure:"reduced" yaml:"reduced"`
	FPS     int  `mapstructure:"fps" yaml:"fps"`
}

type typewriterConfig struct {
	CharDelay    time.Duration `mapstructure:"char_delay"`
	StepDelay    time.Duration `mapstructure:"step_delay"`
	InitialDelay time.Duration `mapstructure:"initial_delay"` // 0 means char_delay
}

// MarshalYAML writes durations in Go syntax ("40ms") so the file stays
// hand-editable.
func (t typewriterConfig) MarshalYAML() (any, error) {
	return map[string]string{
		"char_delay":    t.CharDelay.String(),
		"step_delay":    t.StepDelay.String(),
		"initial_delay": t.InitialDelay.String(),
	}, nil
}

type canvasConfig struct {
	CellWidth  float64 `mapstructure:"cell_width" yaml:"cell_width"`   // pixels per terminal column
	CellHeight float64 `mapstructure:"cell_height" yaml:"cell_height"` // pixels per terminal row
}

type tokensConfig struct {
	Dark  particles.Tokens `mapstructure:"dark" yaml:"dark"`
	Light particles.Tokens `mapstructure:"light" yaml:"light"`
}

type analyticsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	DB      string `mapstructure:"db" yaml:"db"`
}

type contactConfig struct {
	Email string `mapstructure:"email" yaml:"email"`
}

type config struct {
	Theme      string           `mapstructure:"theme" yaml:"theme"` // auto, dark or light
	Motion     motionConfig     `mapstructure:"motion" yaml:"motion"`
	Typewriter typewriterConfig `mapstructure:"typewriter" yaml:"typewriter"`
	Particles  particles.Config `mapstructure:"particles" yaml:"particles"`
	Canvas     canvasConfig     `mapstructure:"canvas" yaml:"canvas"`
	Tokens     tokensConfig     `mapstructure:"tokens" yaml:"tokens"`
	ContentDir string           `mapstructure:"content_dir" yaml:"content_dir"` // empty uses the built-in content
	Analytics  analyticsConfig  `mapstructure:"analytics" yaml:"analytics"`
	Contact    contactConfig    `mapstructure:"contact" yaml:"contact"`
	LogFile    string           `mapstructure:"log_file" yaml:"log_file"`
}

// setDefaults registers every key so that FOLIO_* environment variables
// can override any of them.
func setDefaults(v *viper.Viper) {
	v.SetDefault("theme", themeAuto)

	v.SetDefault("motion.reduced", false)
	v.SetDefault("motion.fps", particles.DefaultFPS)

	v.SetDefault("typewriter.char_delay", typewriter.DefaultCharDelay.String())
	v.SetDefault("typewriter.step_delay", typewriter.DefaultStepDelay.String())
	v.SetDefault("typewriter.initial_delay", "0s")

	p := particles.DefaultConfig()
	v.SetDefault("particles.density", p.Density)
	v.SetDefault("particles.connection_distance", p.ConnectionDistance)
	v.SetDefault("particles.aura_radius", p.AuraRadius)
	v.SetDefault("particles.drift_speed", p.DriftSpeed)
	v.SetDefault("particles.cursor_smoothing", p.CursorSmoothing)
	v.SetDefault("particles.min_opacity", p.MinOpacity)
	v.SetDefault("particles.max_opacity", p.MaxOpacity)
	v.SetDefault("particles.base_size", p.BaseSize)
	v.SetDefault("particles.hover_size", p.HoverSize)
	v.SetDefault("particles.line_opacity", p.LineOpacity)
	v.SetDefault("particles.attraction", p.Attraction)
	v.SetDefault("particles.easing", p.Easing)
	v.SetDefault("particles.max_particles", 400)

	// A terminal cell is roughly twice as tall as it is wide.
	v.SetDefault("canvas.cell_width", 8.0)
	v.SetDefault("canvas.cell_height", 16.0)

	for name, t := range map[string]particles.Tokens{"dark": particles.DarkTokens, "light": particles.LightTokens} {
		v.SetDefault("tokens."+name+".primary", t.Primary)
		v.SetDefault("tokens."+name+".accent", t.Accent)
		v.SetDefault("tokens."+name+".muted_foreground", t.MutedForeground)
		v.SetDefault("tokens."+name+".background", t.Background)
	}

	v.SetDefault("content_dir", "")
	v.SetDefault("analytics.enabled", true)
	v.SetDefault("analytics.db", analytics.DefaultPath())
	v.SetDefault("contact.email", "boris@borisdouon.com")
	v.SetDefault("log_file", "")
}

func newDefaultConfig() config {
	v := viper.New()
	setDefaults(v)
	var cfg config
	// Defaults always decode.
	_ = v.Unmarshal(&cfg)
	cfg.normalize()
	return cfg
}

// configDir returns $XDG_CONFIG_HOME/folio, falling back to ~/.config/folio.
func configDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "folio"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine config directory: %w", err)
	}
	return filepath.Join(home, ".config", "folio"), nil
}

func configPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// expandHome expands a leading "~/" to the user's home directory.
func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// contractHome replaces the user's home directory prefix with "~/" for display.
func contractHome(path string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if rel, ok := strings.CutPrefix(path, home+string(filepath.Separator)); ok {
		return "~/" + rel
	}
	return path
}

// loadConfig reads path (or the default location when path is empty) over
// the built-in defaults, then applies FOLIO_* environment overrides. A
// missing file is not an error.
func loadConfig(path string) (config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else if dir, err := configDir(); err == nil {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(dir)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return newDefaultConfig(), fmt.Errorf("reading config: %w", err)
		}
	}

	v.SetEnvPrefix("FOLIO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg config
	if err := v.Unmarshal(&cfg); err != nil {
		return newDefaultConfig(), fmt.Errorf("decoding config: %w", err)
	}
	cfg.normalize()
	return cfg, nil
}

// normalize fixes values that would break the widgets.
func (c *config) normalize() {
	switch c.Theme {
	case themeAuto, themeDark, themeLight:
	default:
		c.Theme = themeAuto
	}
	if c.Motion.FPS <= 0 {
		c.Motion.FPS = particles.DefaultFPS
	}
	if c.Typewriter.CharDelay < 0 {
		c.Typewriter.CharDelay = typewriter.DefaultCharDelay
	}
	if c.Typewriter.StepDelay < 0 {
		c.Typewriter.StepDelay = typewriter.DefaultStepDelay
	}
	if c.Canvas.CellWidth <= 0 {
		c.Canvas.CellWidth = 8
	}
	if c.Canvas.CellHeight <= 0 {
		c.Canvas.CellHeight = 16
	}
	c.Particles = c.Particles.Normalize()
	c.ContentDir = expandHome(c.ContentDir)
	c.Analytics.DB = expandHome(c.Analytics.DB)
	c.LogFile = expandHome(c.LogFile)
}

// darkTheme resolves "auto" against the terminal background.
func (c config) darkTheme() bool {
	switch c.Theme {
	case themeDark:
		return true
	case themeLight:
		return false
	}
	return lipgloss.HasDarkBackground()
}

func (c config) palette(dark bool) particles.Palette {
	if dark {
		return particles.PaletteFromTokens(c.Tokens.Dark, true)
	}
	return particles.PaletteFromTokens(c.Tokens.Light, false)
}

func (c config) typewriterOptions() []typewriter.Option {
	opts := []typewriter.Option{
		typewriter.WithCharDelay(c.Typewriter.CharDelay),
		typewriter.WithStepDelay(c.Typewriter.StepDelay),
		typewriter.WithReducedMotion(c.Motion.Reduced),
	}
	if c.Typewriter.InitialDelay > 0 {
		opts = append(opts, typewriter.WithInitialDelay(c.Typewriter.InitialDelay))
	}
	return opts
}

func saveConfig(path string, cfg config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	// Atomic write: write to temp file then rename, so a crash mid-write
	// can't leave a truncated config file that gets silently replaced with defaults.
	tmp, err := os.CreateTemp(dir, ".config-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, path)
}
