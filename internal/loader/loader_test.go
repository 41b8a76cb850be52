package loader

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, dir, name string, w, h int, c color.Color) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
	return path
}

func TestLoadResizesToExactDimensions(t *testing.T) {
	dir := t.TempDir()
	path := writePNG(t, dir, "wide.png", 400, 100, color.White)

	frame, err := Load(path, 64, 64)
	require.NoError(t, err)
	assert.Equal(t, path, frame.Path)
	assert.Equal(t, 64, frame.Image.Bounds().Dx())
	assert.Equal(t, 64, frame.Image.Bounds().Dy())
}

func TestLoadRejectsGarbage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.png")
	require.NoError(t, os.WriteFile(path, []byte("not an image"), 0o644))

	_, err := Load(path, 64, 64)
	assert.Error(t, err)
}

func TestLoadRejectsMissingFile(t *testing.T) {
	_, err := Load("/nonexistent.png", 64, 64)
	assert.Error(t, err)
}

func TestCenterCropPreservesAspect(t *testing.T) {
	// A 200x100 source into a 50x50 target crops the left and right
	// quarters; the center column survives.
	src := image.NewRGBA(image.Rect(0, 0, 200, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 200; x++ {
			if x >= 50 && x < 150 {
				src.Set(x, y, color.RGBA{R: 255, A: 255})
			} else {
				src.Set(x, y, color.RGBA{B: 255, A: 255})
			}
		}
	}

	dst := CenterCrop(src, 50, 50)
	assert.Equal(t, 50, dst.Bounds().Dx())
	assert.Equal(t, 50, dst.Bounds().Dy())

	// The cropped result should be entirely red: the blue margins fall
	// outside the center crop.
	r, _, b, _ := dst.At(25, 25).RGBA()
	assert.Greater(t, r, b)
	r, _, b, _ = dst.At(2, 2).RGBA()
	assert.Greater(t, r, b)
}

func TestCenterCropTallSource(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 100, 300))
	dst := CenterCrop(src, 60, 40)
	assert.Equal(t, 60, dst.Bounds().Dx())
	assert.Equal(t, 40, dst.Bounds().Dy())
}

// cyclicSource repeats a fixed path list forever, like source.Source does.
type cyclicSource struct {
	paths []string
	pos   int
}

func (s *cyclicSource) Next() string {
	p := s.paths[s.pos%len(s.paths)]
	s.pos++
	return p
}

func TestWorkerSkipsBadPaths(t *testing.T) {
	dir := t.TempDir()
	a := writePNG(t, dir, "a.png", 32, 32, color.White)
	bad := filepath.Join(dir, "bad.png")
	require.NoError(t, os.WriteFile(bad, []byte("garbage"), 0o644))
	c := writePNG(t, dir, "c.png", 32, 32, color.Black)

	w := NewWorker(&cyclicSource{paths: []string{a, bad, c}}, 16, 16, 3)
	w.Start()
	defer w.Stop()

	// The bad path is skipped without stalling: a is followed by c.
	first := <-w.Frames()
	assert.Equal(t, a, first.Path)
	second := <-w.Frames()
	assert.Equal(t, c, second.Path)
}

func TestWorkerEscalatesAfterConsecutiveFailures(t *testing.T) {
	bad := filepath.Join(t.TempDir(), "bad.png")
	require.NoError(t, os.WriteFile(bad, []byte("garbage"), 0o644))

	w := NewWorker(&cyclicSource{paths: []string{bad}}, 16, 16, 3)
	w.Start()

	select {
	case err := <-w.Errs():
		assert.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("worker never escalated after repeated decode failures")
	}
}

func TestWorkerStopAbandonsInFlightWork(t *testing.T) {
	dir := t.TempDir()
	a := writePNG(t, dir, "a.png", 32, 32, color.White)

	w := NewWorker(&cyclicSource{paths: []string{a}}, 16, 16, 1)
	w.Start()

	<-w.Frames()
	done := make(chan struct{})
	go func() {
		w.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop blocked on an in-flight decode")
	}
}

func TestWorkerOrderMatchesSource(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writePNG(t, dir, "1.png", 8, 8, color.White),
		writePNG(t, dir, "2.png", 8, 8, color.White),
		writePNG(t, dir, "3.png", 8, 8, color.White),
	}

	w := NewWorker(&cyclicSource{paths: paths}, 4, 4, 3)
	w.Start()
	defer w.Stop()

	for _, want := range paths {
		got := <-w.Frames()
		assert.Equal(t, want, got.Path)
	}
}
