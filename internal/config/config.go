package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"
)

// MinBacklog is the smallest useful preload depth: the image on screen,
// the one fading in, and one slot being filled by the loader.
const MinBacklog = 3

type Mode string

const (
	ModeFade   Mode = "fade"
	ModeScroll Mode = "scroll"
)

type Easing string

const (
	EasingLinear    Easing = "linear"
	EasingEaseIn    Easing = "ease-in"
	EasingEaseOut   Easing = "ease-out"
	EasingEaseInOut Easing = "ease-in-out"
)

// Grid describes the tiling of the output window.
type Grid struct {
	Rows int
	Cols int
}

// Rect is a pixel rectangle, parsed from an X-style geometry string.
type Rect struct {
	W int
	H int
	X int
	Y int
}

// Config is built once at startup and never mutated afterwards. Every
// component holds it by reference.
type Config struct {
	WindowID       uint64
	Wallpapers     string
	Duration       time.Duration
	Fade           time.Duration
	Backlog        int
	Grid           Grid
	Mode           Mode
	ScrollSpeed    float64
	Easing         Easing
	Shuffle        bool
	FramerateLimit int

	// Geometry is nil when the output rect is inherited from the window.
	Geometry *Rect
}

// Load builds a Config from the resolved viper settings plus the window id
// argument. All validation happens here; nothing past this point should see
// an invalid configuration.
func Load(windowArg string) (*Config, error) {
	windowID, err := ParseWindowID(windowArg)
	if err != nil {
		return nil, err
	}

	grid, err := ParseGrid(viper.GetString("grid"))
	if err != nil {
		return nil, err
	}

	var geometry *Rect
	if s := viper.GetString("window_geometry"); s != "" {
		r, err := ParseGeometry(s)
		if err != nil {
			return nil, err
		}
		geometry = &r
	}

	cfg := &Config{
		WindowID:       windowID,
		Wallpapers:     viper.GetString("wallpapers"),
		Duration:       secondsDuration(viper.GetFloat64("duration")),
		Fade:           secondsDuration(viper.GetFloat64("fade")),
		Backlog:        viper.GetInt("backlog"),
		Grid:           grid,
		Mode:           Mode(viper.GetString("mode")),
		ScrollSpeed:    viper.GetFloat64("scroll_speed"),
		Easing:         Easing(viper.GetString("easing")),
		Shuffle:        viper.GetBool("shuffle"),
		FramerateLimit: viper.GetInt("framerate_limit"),
		Geometry:       geometry,
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func secondsDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func (c *Config) validate() error {
	if c.Wallpapers == "" {
		return fmt.Errorf("no wallpapers directory configured")
	}
	if c.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %v", c.Duration)
	}
	if c.Fade < 0 {
		return fmt.Errorf("fade must not be negative, got %v", c.Fade)
	}
	if c.Backlog < 0 {
		return fmt.Errorf("backlog must not be negative, got %d", c.Backlog)
	}
	if c.Backlog > 0 && c.Backlog < MinBacklog {
		log.Warnf("backlog %d is below the minimum of %d, clamping", c.Backlog, MinBacklog)
		c.Backlog = MinBacklog
	}
	switch c.Mode {
	case ModeFade, ModeScroll:
	default:
		return fmt.Errorf("unknown mode %q", c.Mode)
	}
	switch c.Easing {
	case EasingLinear, EasingEaseIn, EasingEaseOut, EasingEaseInOut:
	default:
		return fmt.Errorf("unknown easing %q", c.Easing)
	}
	if c.Mode == ModeScroll && c.ScrollSpeed <= 0 {
		return fmt.Errorf("scroll_speed must be positive, got %v", c.ScrollSpeed)
	}
	if c.FramerateLimit <= 0 {
		c.FramerateLimit = 60
	} else if c.FramerateLimit > 240 {
		c.FramerateLimit = 240
	}
	return nil
}

// ParseWindowID parses a window id argument of the form "0x4a0000b".
func ParseWindowID(s string) (uint64, error) {
	if !strings.HasPrefix(s, "0x") {
		return 0, fmt.Errorf("window id %q must start with 0x", s)
	}
	id, err := strconv.ParseUint(s[2:], 16, 64)
	if err != nil {
		return 0, fmt.Errorf("unable to parse window id %q: %w", s, err)
	}
	return id, nil
}

// ParseGrid parses a tiling spec of the form "RxC". An empty string means
// tiling is disabled.
func ParseGrid(s string) (Grid, error) {
	if s == "" {
		return Grid{Rows: 1, Cols: 1}, nil
	}
	rows, cols, ok := strings.Cut(s, "x")
	if !ok {
		return Grid{}, fmt.Errorf("grid %q must be of the form RxC", s)
	}
	r, err := strconv.Atoi(rows)
	if err != nil {
		return Grid{}, fmt.Errorf("unable to parse grid rows %q: %w", rows, err)
	}
	c, err := strconv.Atoi(cols)
	if err != nil {
		return Grid{}, fmt.Errorf("unable to parse grid cols %q: %w", cols, err)
	}
	if r < 1 || c < 1 {
		return Grid{}, fmt.Errorf("grid %q must have at least one row and column", s)
	}
	return Grid{Rows: r, Cols: c}, nil
}

// ParseGeometry parses an X-style geometry string, "WxH+X+Y" or "WxH".
func ParseGeometry(s string) (Rect, error) {
	size, pos, hasPos := strings.Cut(s, "+")

	width, height, ok := strings.Cut(size, "x")
	if !ok {
		return Rect{}, fmt.Errorf("geometry %q must be of the form WxH+X+Y", s)
	}
	w, err := strconv.Atoi(width)
	if err != nil {
		return Rect{}, fmt.Errorf("unable to parse width %q: %w", width, err)
	}
	h, err := strconv.Atoi(height)
	if err != nil {
		return Rect{}, fmt.Errorf("unable to parse height %q: %w", height, err)
	}
	if w <= 0 || h <= 0 {
		return Rect{}, fmt.Errorf("geometry %q must have a positive size", s)
	}

	rect := Rect{W: w, H: h}
	if hasPos {
		x, y, ok := strings.Cut(pos, "+")
		if !ok {
			return Rect{}, fmt.Errorf("geometry position %q must be of the form X+Y", pos)
		}
		rect.X, err = strconv.Atoi(x)
		if err != nil {
			return Rect{}, fmt.Errorf("unable to parse x %q: %w", x, err)
		}
		rect.Y, err = strconv.Atoi(y)
		if err != nil {
			return Rect{}, fmt.Errorf("unable to parse y %q: %w", y, err)
		}
	}
	return rect, nil
}
