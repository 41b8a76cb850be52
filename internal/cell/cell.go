// Package cell drives one tile of the output: it pulls decoded frames from
// its loader, keeps the texture backlog filled, and steps the transition
// state machine once per frame tick.
package cell

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/matjam/slidepaper/internal/backlog"
	"github.com/matjam/slidepaper/internal/config"
	"github.com/matjam/slidepaper/internal/loader"
	"github.com/matjam/slidepaper/internal/render"
)

// FrameSource is the loader-side handoff. The channel is the sole
// synchronization point between the decode goroutine and the render
// thread, so a consumer never observes a partially written frame.
type FrameSource interface {
	Frames() <-chan *loader.Frame
}

type state int

const (
	stateShowing state = iota
	stateFading
)

// Cell is owned by the render thread. Tick advances wall-clock time and
// returns the draw command for this frame.
type Cell struct {
	cfg      *config.Config
	viewport render.Viewport
	frames   FrameSource
	uploader render.Uploader
	backlog  *backlog.Backlog

	state     state
	remaining time.Duration
	progress  float32
	offset    float64
}

func New(cfg *config.Config, viewport render.Viewport, frames FrameSource, uploader render.Uploader) *Cell {
	capacity := cfg.Backlog
	if capacity < 1 {
		// Depth 0 collapses current and next into the same slot; images
		// are still swapped, just without a visible fade.
		capacity = 1
	}
	return &Cell{
		cfg:       cfg,
		viewport:  viewport,
		frames:    frames,
		uploader:  uploader,
		backlog:   backlog.New(capacity),
		state:     stateShowing,
		remaining: cfg.Duration,
	}
}

// Tick steps the cell by dt and returns the frame's draw command. The
// second return is false while nothing has been loaded yet.
func (c *Cell) Tick(dt time.Duration) (render.Command, bool) {
	c.fill()

	cur := c.backlog.Current()
	if cur == nil {
		return render.Command{}, false
	}

	if c.cfg.Mode == config.ModeScroll {
		c.offset += c.cfg.ScrollSpeed * dt.Seconds()
		for c.offset >= 1.0 {
			c.offset -= 1.0
		}
		return render.Command{
			Viewport: c.viewport,
			Mode:     config.ModeScroll,
			Cur:      cur,
			Offset:   float32(c.offset),
		}, true
	}

	switch c.state {
	case stateShowing:
		c.remaining -= dt
		if c.remaining <= 0 {
			c.remaining = 0
			c.beginTransition()
		}

	case stateFading:
		c.remaining -= dt
		if c.remaining <= 0 {
			// Emit one frame at exactly 1.0, then advance, so the fade
			// never overshoots into the swap.
			c.progress = 1
			cmd := c.fadeCommand()
			c.advance()
			return cmd, true
		}
		p := 1 - float32(c.remaining.Seconds()/c.cfg.Fade.Seconds())
		if p > c.progress {
			c.progress = p
		}
	}

	return c.fadeCommand(), true
}

// beginTransition fires once the display duration has elapsed. Fading is
// only valid once the next texture is confirmed resident; until then the
// cell holds at progress 0 rather than fading into nothing.
func (c *Cell) beginTransition() {
	if c.cfg.Backlog == 0 {
		c.swapDirect()
		return
	}
	if c.backlog.Next() == nil {
		return // loader lagging, keep showing current
	}
	if c.cfg.Fade == 0 {
		// Hard cut: no frame is ever rendered at partial progress.
		c.advance()
		return
	}
	c.state = stateFading
	c.remaining = c.cfg.Fade
	c.progress = 0
}

// advance promotes the next backlog slot to current and restarts the
// display timer.
func (c *Cell) advance() {
	if c.backlog.Advance() {
		c.fill()
	}
	c.state = stateShowing
	c.remaining = c.cfg.Duration
	c.progress = 0
}

// swapDirect services the depth-0 degenerate mode: replace the single
// resident texture as soon as a freshly decoded frame is available.
func (c *Cell) swapDirect() {
	select {
	case frame := <-c.frames.Frames():
		tex, err := c.uploader.Upload(frame.Image)
		if err != nil {
			log.Errorf("texture upload failed for %s: %v", frame.Path, err)
			return
		}
		c.backlog.Release()
		if err := c.backlog.Push(tex, frame.Path); err != nil {
			tex.Release()
			return
		}
		c.remaining = c.cfg.Duration
	default:
		// nothing decoded yet, hold the current image
	}
}

// fill drains completed frames into free backlog slots without ever
// blocking the render thread. Uploads happen here, in channel order, so
// display order matches the source's emission order.
func (c *Cell) fill() {
	for c.backlog.Len() < c.backlog.Cap() {
		select {
		case frame := <-c.frames.Frames():
			tex, err := c.uploader.Upload(frame.Image)
			if err != nil {
				log.Errorf("texture upload failed for %s: %v", frame.Path, err)
				continue
			}
			if err := c.backlog.Push(tex, frame.Path); err != nil {
				tex.Release()
				return
			}
		default:
			return
		}
	}
}

func (c *Cell) fadeCommand() render.Command {
	cur := c.backlog.Current()
	next := c.backlog.Next()
	if next == nil || c.state != stateFading {
		next = cur
	}
	return render.Command{
		Viewport: c.viewport,
		Mode:     config.ModeFade,
		Cur:      cur,
		Next:     next,
		Progress: c.progress,
	}
}

// ForceAdvance expires the current image immediately; the next tick starts
// the transition. Used by the "next" IPC command.
func (c *Cell) ForceAdvance() {
	if c.state == stateShowing {
		c.remaining = 0
	}
}

// CurrentPath reports which image the cell is showing.
func (c *Cell) CurrentPath() string {
	return c.backlog.CurrentPath()
}

// Progress exposes the fade progress for the current transition, 0 when
// not fading.
func (c *Cell) Progress() float32 {
	if c.state != stateFading {
		return 0
	}
	return c.progress
}

// Release frees every texture the cell holds. Render thread only.
func (c *Cell) Release() {
	c.backlog.Release()
}
