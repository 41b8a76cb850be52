// Package loader decodes and resizes images off the render thread. A
// decode failure for one path is recoverable; a long run of consecutive
// failures means no image could ever be shown and escalates to a fatal
// error on the worker's error channel.
package loader

import (
	"bytes"
	"fmt"
	"image"
	"os"

	"github.com/charmbracelet/log"
	"golang.org/x/image/draw"
)

// MaxConsecutiveFailures bounds the retry run before a worker gives up.
const MaxConsecutiveFailures = 16

// Frame is a decoded, resized pixel buffer ready for GPU upload, tagged
// with the path it was loaded from.
type Frame struct {
	Path  string
	Image *image.RGBA
}

// Load decodes the image at path and center-crops it to exactly w×h.
func Load(path string, w, h int) (*Frame, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", path, err)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("unable to decode %s: %w", path, err)
	}
	return &Frame{Path: path, Image: CenterCrop(img, w, h)}, nil
}

// CenterCrop scales img to fill a w×h buffer, cropping whichever axis
// overflows so the aspect ratio is preserved.
func CenterCrop(img image.Image, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))

	b := img.Bounds()
	srcW, srcH := b.Dx(), b.Dy()
	if srcW == 0 || srcH == 0 {
		return dst
	}

	// Shrink the source rect to the target aspect, keeping it centered.
	cropW, cropH := srcW, srcH
	if srcW*h > w*srcH {
		cropW = srcH * w / h
	} else {
		cropH = srcW * h / w
	}
	x0 := b.Min.X + (srcW-cropW)/2
	y0 := b.Min.Y + (srcH-cropH)/2
	src := image.Rect(x0, y0, x0+cropW, y0+cropH)

	draw.CatmullRom.Scale(dst, dst.Bounds(), img, src, draw.Src, nil)
	return dst
}

// PathSource is where a worker pulls candidate paths from.
type PathSource interface {
	Next() string
}

// Worker pulls paths from a source and pushes decoded frames into a bounded
// channel. The channel capacity is the backlog depth, so decoding applies
// backpressure instead of running ahead of the display.
type Worker struct {
	src    PathSource
	width  int
	height int
	frames chan *Frame
	errs   chan error
	done   chan struct{}
}

func NewWorker(src PathSource, width, height, depth int) *Worker {
	if depth < 1 {
		depth = 1
	}
	return &Worker{
		src:    src,
		width:  width,
		height: height,
		frames: make(chan *Frame, depth),
		errs:   make(chan error, 1),
		done:   make(chan struct{}),
	}
}

// Frames delivers decoded frames in the order their paths were requested.
func (w *Worker) Frames() <-chan *Frame { return w.frames }

// Errs reports at most one fatal error, after which the worker has exited.
func (w *Worker) Errs() <-chan error { return w.errs }

// Start runs the decode loop in its own goroutine.
func (w *Worker) Start() {
	go w.run()
}

// Stop tells the worker to exit. An in-flight decode is abandoned at its
// next channel send; Stop never blocks on it.
func (w *Worker) Stop() {
	close(w.done)
}

func (w *Worker) run() {
	failures := 0
	for {
		select {
		case <-w.done:
			return
		default:
		}

		path := w.src.Next()
		frame, err := Load(path, w.width, w.height)
		if err != nil {
			log.Warnf("skipping %s: %v", path, err)
			failures++
			if failures >= MaxConsecutiveFailures {
				w.errs <- fmt.Errorf("%d consecutive decode failures, giving up: %w", failures, err)
				return
			}
			continue
		}
		failures = 0

		select {
		case w.frames <- frame:
		case <-w.done:
			return
		}
	}
}
