package render

import (
	"image"

	"github.com/matjam/slidepaper/internal/config"
)

// Texture is a GPU-resident image owned by exactly one backlog slot.
// Release must be called from the render thread.
type Texture interface {
	Release()
	Size() (int, int)
}

// Uploader turns a decoded pixel buffer into a Texture. Implemented by the
// renderer; called only from the render thread.
type Uploader interface {
	Upload(img *image.RGBA) (Texture, error)
}

// Viewport is a cell's rectangle in window pixel coordinates, origin at the
// bottom-left as GL expects.
type Viewport struct {
	X int32
	Y int32
	W int32
	H int32
}

// Command is everything the renderer needs to draw one cell for one frame.
// The renderer holds no scheduling state; it just consumes these.
type Command struct {
	Viewport Viewport
	Mode     config.Mode

	// Crossfade mode: Cur is blended into Next by Progress. Next may equal
	// Cur when no fade is in flight.
	Cur      Texture
	Next     Texture
	Progress float32

	// Scroll mode: vertical texture offset in [0,1), wrapping.
	Offset float32
}

// Renderer owns the GL context, shader programs and vertex geometry for the
// target window. All methods must be called from the render thread.
type Renderer interface {
	Uploader
	Size() (int, int)       // output rect in pixels
	Begin()                 // clear the frame
	Draw(cmd Command) error // one draw call per cell
	Swap() error            // present and pace to the framerate limit
	Cleanup()               // release every GL object created at setup
}

// ApplyEasing maps linear fade progress to the configured easing curve.
func ApplyEasing(mode config.Easing, t float32) float32 {
	switch mode {
	case config.EasingLinear:
		return t
	case config.EasingEaseIn:
		return t * t
	case config.EasingEaseOut:
		return t * (2 - t)
	case config.EasingEaseInOut:
		if t < 0.5 {
			return 2 * t * t
		}
		return -1 + (4-2*t)*t
	default:
		return t
	}
}
