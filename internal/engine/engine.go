// Package engine owns the frame loop: it ticks every grid cell, hands
// their draw commands to the renderer, and services IPC commands between
// frames. Everything here runs on the render thread.
package engine

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/matjam/slidepaper/internal/cell"
	"github.com/matjam/slidepaper/internal/config"
	"github.com/matjam/slidepaper/internal/glxrenderer"
	"github.com/matjam/slidepaper/internal/grid"
	"github.com/matjam/slidepaper/internal/ipc"
	"github.com/matjam/slidepaper/internal/loader"
	"github.com/matjam/slidepaper/internal/render"
	"github.com/matjam/slidepaper/internal/source"
)

type Manager struct {
	cfg      *config.Config
	renderer render.Renderer
	grid     *grid.Grid
	sources  []*source.Source
	workers  []*loader.Worker
	cmds     chan ipc.Command
}

// NewManager attaches the renderer to the target window and builds one
// independent source+loader+cell pipeline per grid cell. Must be called
// from the goroutine that will call Run; the renderer locks it to its OS
// thread.
func NewManager(cfg *config.Config) (*Manager, error) {
	renderer, err := glxrenderer.NewRenderer(cfg)
	if err != nil {
		return nil, fmt.Errorf("unable to create renderer: %w", err)
	}

	m := &Manager{
		cfg:      cfg,
		renderer: renderer,
		cmds:     make(chan ipc.Command, 1),
	}

	width, height := renderer.Size()
	viewports := grid.SplitViewports(width, height, cfg.Grid.Rows, cfg.Grid.Cols)

	depth := cfg.Backlog
	if depth < 1 {
		depth = 1
	}

	cells := make([]*cell.Cell, 0, len(viewports))
	for _, vp := range viewports {
		src, err := source.New(cfg.Wallpapers, cfg.Shuffle)
		if err != nil {
			renderer.Cleanup()
			return nil, err
		}
		worker := loader.NewWorker(src, int(vp.W), int(vp.H), depth)
		worker.Start()

		m.sources = append(m.sources, src)
		m.workers = append(m.workers, worker)
		cells = append(cells, cell.New(cfg, vp, worker, renderer))
	}
	m.grid = grid.New(cells)

	log.Infof("rendering %dx%d into window 0x%x, %d cell(s)",
		width, height, cfg.WindowID, len(cells))
	return m, nil
}

// EnqueueCommand hands an IPC command to the frame loop. Dropping a
// command when one is already pending is fine; the socket client can retry.
func (m *Manager) EnqueueCommand(cmd ipc.Command) {
	select {
	case m.cmds <- cmd:
	default:
		log.Warnf("dropping %s command, one is already queued", cmd.Type)
	}
}

// CurrentWallpapers reports what each cell is showing, row-major.
func (m *Manager) CurrentWallpapers() []string {
	return m.grid.CurrentPaths()
}

// Run drives the frame loop until a stop command arrives or a loader gives
// up. The renderer's Swap paces the loop to the framerate limit.
func (m *Manager) Run() error {
	defer m.shutdown()

	var fatal error
	last := time.Now()
	running := true
	for running {
		select {
		case cmd := <-m.cmds:
			switch cmd.Type {
			case ipc.CommandStop:
				log.Info("stop command received")
				running = false
				continue
			case ipc.CommandNext:
				m.grid.ForceAdvance()
			case ipc.CommandLoad:
				if len(cmd.Args) == 0 {
					log.Error("load command with no wallpapers")
					continue
				}
				for _, src := range m.sources {
					src.Replace(cmd.Args)
				}
				log.Infof("loaded %d wallpapers", len(cmd.Args))
				m.grid.ForceAdvance()
			default:
				log.Errorf("unknown command %q", cmd.Type)
			}
		default:
		}

		for _, w := range m.workers {
			select {
			case err := <-w.Errs():
				fatal = err
				running = false
			default:
			}
		}
		if !running {
			break
		}

		now := time.Now()
		dt := now.Sub(last)
		last = now

		m.renderer.Begin()
		for _, cmd := range m.grid.Tick(dt) {
			if err := m.renderer.Draw(cmd); err != nil {
				log.Errorf("draw failed: %v", err)
			}
		}
		if err := m.renderer.Swap(); err != nil {
			return fmt.Errorf("unable to present frame: %w", err)
		}
	}

	return fatal
}

// shutdown releases GPU resources on the render thread. In-flight decodes
// are abandoned; Stop never waits for them.
func (m *Manager) shutdown() {
	for _, w := range m.workers {
		w.Stop()
	}
	m.grid.Release()
	m.renderer.Cleanup()
	log.Info("engine stopped")
}
