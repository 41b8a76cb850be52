// Package grid partitions the output window into rows×cols independent
// cells and iterates them once per frame. The cells share nothing but the
// read-only configuration and the output surface.
package grid

import (
	"time"

	"github.com/matjam/slidepaper/internal/cell"
	"github.com/matjam/slidepaper/internal/render"
)

// SplitViewports divides a w×h window into equal cells, row-major from the
// top-left. The last row and column absorb any remainder so the cells tile
// the window exactly. Viewport origins are bottom-left, as GL expects.
func SplitViewports(w, h, rows, cols int) []render.Viewport {
	cellW := w / cols
	cellH := h / rows

	viewports := make([]render.Viewport, 0, rows*cols)
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			vw := cellW
			if col == cols-1 {
				vw = w - cellW*(cols-1)
			}
			vh := cellH
			if row == rows-1 {
				vh = h - cellH*(rows-1)
			}
			// Flip the row so row 0 is the top of the window.
			y := h - cellH*row - vh
			viewports = append(viewports, render.Viewport{
				X: int32(cellW * col),
				Y: int32(y),
				W: int32(vw),
				H: int32(vh),
			})
		}
	}
	return viewports
}

// Grid ticks a set of cells and collects their draw commands.
type Grid struct {
	cells []*cell.Cell
}

func New(cells []*cell.Cell) *Grid {
	return &Grid{cells: cells}
}

// Tick steps every cell by dt. Cells with nothing loaded yet are skipped;
// one stalled cell never delays another.
func (g *Grid) Tick(dt time.Duration) []render.Command {
	cmds := make([]render.Command, 0, len(g.cells))
	for _, c := range g.cells {
		if cmd, ok := c.Tick(dt); ok {
			cmds = append(cmds, cmd)
		}
	}
	return cmds
}

// ForceAdvance expires the current image in every cell.
func (g *Grid) ForceAdvance() {
	for _, c := range g.cells {
		c.ForceAdvance()
	}
}

// CurrentPaths reports the image each cell is showing, row-major.
func (g *Grid) CurrentPaths() []string {
	paths := make([]string, len(g.cells))
	for i, c := range g.cells {
		paths[i] = c.CurrentPath()
	}
	return paths
}

// Release frees the textures of every cell. Render thread only.
func (g *Grid) Release() {
	for _, c := range g.cells {
		c.Release()
	}
}
