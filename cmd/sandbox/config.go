package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/hubastard/quadtext/engine/colors"
	"github.com/hubastard/quadtext/engine/core"
	"github.com/hubastard/quadtext/engine/richtext"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/pflag"
)

const defaultMarkup = `Hello <b>quadtext</b> <quad displayKey=smile/>! Inline images sit on the
baseline <quad size=150% displayKey=heart/> and scale with the <size=32>font size</size>.
Animated: <quad displayKey=coin/0,coin/1,coin/2,coin/3/> <i>spinning coin</i>.
Links work too: <a href=https://go.dev>go.dev</a> and <a href=https://github.com>a longer link that may wrap across lines</a>.`

// Config is the sandbox configuration. It is read from a TOML file and then
// overridden by command-line flags.
type Config struct {
	Window core.Config       `toml:"window"`
	Text   richtext.Settings `toml:"text"`

	// Font is a TTF/OTF file; empty uses Go Regular.
	Font          string  `toml:"font"`
	FontPx        float32 `toml:"font_px"`
	Sprites       string  `toml:"sprites"`
	SpriteMaxEdge int     `toml:"sprite_max_edge"`
	Markup        string  `toml:"markup"`
	MarkupFile    string  `toml:"markup_file"`
	// Width of the layout rect in pixels, 0 for the window width.
	Width           float32 `toml:"width"`
	FrameIntervalMS int     `toml:"frame_interval_ms"`
	Watch           bool    `toml:"watch"`
	OpenLinks       bool    `toml:"open_links"`
	LogLevel        string  `toml:"log_level"`

	level slog.Level
}

func defaultConfig() Config {
	return Config{
		Window: core.Config{
			Title:      "quadtext sandbox",
			Width:      1280,
			Height:     720,
			VSync:      true,
			ClearColor: colors.DarkGray,
		},
		Text: richtext.Settings{
			FontSize: 28,
			Wrap:     true,
		},
		FontPx:   48,
		Sprites:  "assets/sprites",
		Markup:   defaultMarkup,
		LogLevel: "info",
	}
}

func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// parseArgs loads the config file named by --config and applies every flag
// that was set explicitly on top of it.
func parseArgs(args []string) (Config, error) {
	var (
		configPath string
		font       string
		fontPx     float32
		fontSize   float32
		sprites    string
		maxEdge    int
		markup     string
		markupFile string
		width      float32
		align      string
		bestFit    bool
		preview    bool
		plain      bool
		watch      bool
		openLinks  bool
		frameMS    int
		logLevel   string
		vsync      bool
	)

	flags := pflag.NewFlagSet("sandbox", pflag.ContinueOnError)
	flags.StringVarP(&configPath, "config", "c", "", "TOML config file")
	flags.StringVar(&font, "font", "", "TTF/OTF font file (default Go Regular)")
	flags.Float32Var(&fontPx, "font-px", 0, "Glyph atlas rasterization size in pixels")
	flags.Float32VarP(&fontSize, "size", "s", 0, "Font size in pixels")
	flags.StringVar(&sprites, "sprites", "", "Directory inline-object keys resolve against")
	flags.IntVar(&maxEdge, "sprite-max-edge", 0, "Downsize sprites larger than this many pixels")
	flags.StringVarP(&markup, "text", "t", "", "Markup to display")
	flags.StringVarP(&markupFile, "file", "f", "", "Read the markup from a file")
	flags.Float32VarP(&width, "width", "w", 0, "Layout width in pixels (0 uses the window width)")
	flags.StringVar(&align, "align", "", "Line alignment: left|center|right")
	flags.BoolVar(&bestFit, "best-fit", false, "Shrink the font until the text fits")
	flags.BoolVar(&preview, "preview", false, "Resolve sprite frames synchronously")
	flags.BoolVar(&plain, "plain", false, "Show the markup literally")
	flags.BoolVar(&watch, "watch", false, "Reload sprites when they change on disk")
	flags.BoolVar(&openLinks, "open-links", false, "Open clicked links in the system browser")
	flags.IntVar(&frameMS, "frame-ms", 0, "Animation frame interval in milliseconds")
	flags.StringVar(&logLevel, "log-level", "", "Log level: debug|info|warn|error")
	flags.BoolVar(&vsync, "vsync", true, "Wait for vertical sync")
	flags.Usage = func() {
		fmt.Fprintf(flags.Output(), "Usage: sandbox [flags]\n\n")
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return Config{}, err
	}
	set := flags.Changed
	if set("font") {
		cfg.Font = font
	}
	if set("font-px") {
		cfg.FontPx = fontPx
	}
	if set("size") {
		cfg.Text.FontSize = fontSize
	}
	if set("sprites") {
		cfg.Sprites = sprites
	}
	if set("sprite-max-edge") {
		cfg.SpriteMaxEdge = maxEdge
	}
	if set("text") {
		cfg.Markup = markup
	}
	if set("file") {
		cfg.MarkupFile = markupFile
	}
	if set("width") {
		cfg.Width = width
	}
	if set("align") {
		if err := cfg.Text.Alignment.UnmarshalText([]byte(align)); err != nil {
			return Config{}, err
		}
	}
	if set("best-fit") {
		cfg.Text.BestFit = bestFit
	}
	if set("preview") {
		cfg.Text.Preview = preview
	}
	if set("plain") {
		cfg.Text.PlainText = plain
	}
	if set("watch") {
		cfg.Watch = watch
	}
	if set("open-links") {
		cfg.OpenLinks = openLinks
	}
	if set("frame-ms") {
		cfg.FrameIntervalMS = frameMS
	}
	if set("log-level") {
		cfg.LogLevel = logLevel
	}
	if set("vsync") {
		cfg.Window.VSync = vsync
	}
	return cfg, cfg.finish()
}

// finish validates cfg and derives the fields that have no TOML form.
func (c *Config) finish() error {
	if err := c.level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	if c.FontPx <= 0 {
		return fmt.Errorf("font_px must be positive, got %v", c.FontPx)
	}
	if c.Width < 0 {
		return fmt.Errorf("width must not be negative, got %v", c.Width)
	}
	if c.FrameIntervalMS > 0 {
		c.Text.FrameInterval = time.Duration(c.FrameIntervalMS) * time.Millisecond
	}
	if c.MarkupFile != "" {
		b, err := os.ReadFile(c.MarkupFile)
		if err != nil {
			return fmt.Errorf("read markup: %w", err)
		}
		c.Markup = string(b)
	}
	return nil
}
