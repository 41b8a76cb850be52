package cell

import (
	"errors"
	"image"
	"testing"
	"time"

	"github.com/matjam/slidepaper/internal/config"
	"github.com/matjam/slidepaper/internal/loader"
	"github.com/matjam/slidepaper/internal/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTexture struct {
	released bool
}

func (f *fakeTexture) Release()         { f.released = true }
func (f *fakeTexture) Size() (int, int) { return 1, 1 }

type fakeUploader struct {
	uploaded []*fakeTexture
	fail     bool
}

func (u *fakeUploader) Upload(img *image.RGBA) (render.Texture, error) {
	if u.fail {
		return nil, errors.New("upload failed")
	}
	tex := &fakeTexture{}
	u.uploaded = append(u.uploaded, tex)
	return tex, nil
}

type frameChan chan *loader.Frame

func (f frameChan) Frames() <-chan *loader.Frame { return f }

func frame(path string) *loader.Frame {
	return &loader.Frame{Path: path, Image: image.NewRGBA(image.Rect(0, 0, 1, 1))}
}

func fadeConfig(backlogDepth int, fade time.Duration) *config.Config {
	return &config.Config{
		Duration: 5 * time.Second,
		Fade:     fade,
		Backlog:  backlogDepth,
		Mode:     config.ModeFade,
		Easing:   config.EasingLinear,
	}
}

var vp = render.Viewport{X: 0, Y: 0, W: 100, H: 100}

func TestDisplayOrderRoundTrip(t *testing.T) {
	frames := make(frameChan, 3)
	frames <- frame("A")
	frames <- frame("B")
	frames <- frame("C")

	c := New(fadeConfig(3, time.Second), vp, frames, &fakeUploader{})

	// t=0: A becomes current.
	cmd, ok := c.Tick(0)
	require.True(t, ok)
	assert.Equal(t, "A", c.CurrentPath())
	assert.Zero(t, cmd.Progress)

	// 0-5s: showing A.
	for i := 0; i < 4; i++ {
		cmd, ok = c.Tick(time.Second)
		require.True(t, ok)
		assert.Equal(t, "A", c.CurrentPath())
		assert.Zero(t, cmd.Progress)
	}

	// t=5s: the fade A->B starts.
	cmd, ok = c.Tick(time.Second)
	require.True(t, ok)
	assert.Equal(t, "A", c.CurrentPath())
	assert.Zero(t, cmd.Progress)

	// 5-6s: fading, progress climbs and lands exactly on 1.
	cmd, _ = c.Tick(500 * time.Millisecond)
	assert.InDelta(t, 0.5, cmd.Progress, 1e-6)
	assert.Equal(t, "A", c.CurrentPath())

	cmd, _ = c.Tick(500 * time.Millisecond)
	assert.Equal(t, float32(1.0), cmd.Progress)

	// 6-11s: showing B.
	assert.Equal(t, "B", c.CurrentPath())
	for i := 0; i < 5; i++ {
		cmd, _ = c.Tick(time.Second)
	}

	// 11-12s: fading B->C.
	cmd, _ = c.Tick(time.Second)
	assert.Equal(t, float32(1.0), cmd.Progress)
	assert.Equal(t, "C", c.CurrentPath())

	// 12s onward: showing C.
	cmd, _ = c.Tick(3 * time.Second)
	assert.Equal(t, "C", c.CurrentPath())
	assert.Zero(t, cmd.Progress)
}

func TestProgressMonotoneUnderUnevenTicks(t *testing.T) {
	frames := make(frameChan, 3)
	frames <- frame("A")
	frames <- frame("B")

	c := New(fadeConfig(3, time.Second), vp, frames, &fakeUploader{})
	c.Tick(0)
	c.Tick(5 * time.Second) // enter the fade

	last := float32(0)
	for i := 0; i < 10 && c.CurrentPath() == "A"; i++ {
		cmd, ok := c.Tick(300 * time.Millisecond)
		require.True(t, ok)
		assert.GreaterOrEqual(t, cmd.Progress, last)
		last = cmd.Progress
	}
	assert.Equal(t, float32(1.0), last, "progress must land exactly on 1.0 before the advance")
	assert.Equal(t, "B", c.CurrentPath())
}

func TestZeroFadeIsInstant(t *testing.T) {
	frames := make(frameChan, 3)
	frames <- frame("A")
	frames <- frame("B")

	c := New(fadeConfig(3, 0), vp, frames, &fakeUploader{})
	c.Tick(0)

	// The switch happens in one tick; no frame has 0 < progress < 1.
	cmd, ok := c.Tick(5 * time.Second)
	require.True(t, ok)
	assert.Zero(t, cmd.Progress)
	assert.Equal(t, "B", c.CurrentPath())
}

func TestHoldsWhenLoaderLags(t *testing.T) {
	frames := make(frameChan, 3)
	frames <- frame("A")

	c := New(fadeConfig(3, time.Second), vp, frames, &fakeUploader{})
	c.Tick(0)

	// Duration elapses with no next image resident: hold at progress 0.
	for i := 0; i < 3; i++ {
		cmd, ok := c.Tick(2 * time.Second)
		require.True(t, ok)
		assert.Zero(t, cmd.Progress)
		assert.Equal(t, "A", c.CurrentPath())
	}

	// Once the loader catches up the fade starts on the next tick.
	frames <- frame("B")
	cmd, ok := c.Tick(100 * time.Millisecond)
	require.True(t, ok)
	assert.Zero(t, cmd.Progress)
	cmd, _ = c.Tick(time.Second)
	assert.Equal(t, float32(1.0), cmd.Progress)
	assert.Equal(t, "B", c.CurrentPath())
}

func TestDegenerateDepthZeroSwapsWithoutFade(t *testing.T) {
	frames := make(frameChan, 2)
	frames <- frame("A")
	frames <- frame("B")

	up := &fakeUploader{}
	c := New(fadeConfig(0, time.Second), vp, frames, up)

	_, ok := c.Tick(0)
	require.True(t, ok)
	assert.Equal(t, "A", c.CurrentPath())

	cmd, ok := c.Tick(5 * time.Second)
	require.True(t, ok)
	assert.Zero(t, cmd.Progress, "depth 0 must not produce a visible fade")
	assert.Equal(t, "B", c.CurrentPath())
	assert.True(t, up.uploaded[0].released, "the replaced texture must be released")
}

func TestNothingLoadedYet(t *testing.T) {
	frames := make(frameChan, 1)
	c := New(fadeConfig(3, time.Second), vp, frames, &fakeUploader{})

	_, ok := c.Tick(time.Second)
	assert.False(t, ok)
}

func TestUploadFailureSkipsFrame(t *testing.T) {
	frames := make(frameChan, 1)
	frames <- frame("A")

	c := New(fadeConfig(3, time.Second), vp, frames, &fakeUploader{fail: true})
	_, ok := c.Tick(time.Second)
	assert.False(t, ok)
}

func TestForceAdvance(t *testing.T) {
	frames := make(frameChan, 3)
	frames <- frame("A")
	frames <- frame("B")

	c := New(fadeConfig(3, time.Second), vp, frames, &fakeUploader{})
	c.Tick(0)

	c.ForceAdvance()
	cmd, _ := c.Tick(time.Millisecond)
	assert.Equal(t, "A", c.CurrentPath())
	assert.Zero(t, cmd.Progress) // fade begins now
	cmd, _ = c.Tick(2 * time.Second)
	assert.Equal(t, "B", c.CurrentPath())
}

func TestScrollModeWrapsOffset(t *testing.T) {
	frames := make(frameChan, 1)
	frames <- frame("A")

	cfg := &config.Config{
		Duration:    5 * time.Second,
		Backlog:     3,
		Mode:        config.ModeScroll,
		ScrollSpeed: 0.25,
		Easing:      config.EasingLinear,
	}
	c := New(cfg, vp, frames, &fakeUploader{})

	cmd, ok := c.Tick(2 * time.Second)
	require.True(t, ok)
	assert.Equal(t, config.ModeScroll, cmd.Mode)
	assert.InDelta(t, 0.5, cmd.Offset, 1e-6)

	// 0.25 screens/s for another 3s wraps past 1.0 back to 0.25.
	cmd, _ = c.Tick(3 * time.Second)
	assert.InDelta(t, 0.25, cmd.Offset, 1e-6)
	assert.Less(t, cmd.Offset, float32(1.0))
}

func TestReleaseFreesTextures(t *testing.T) {
	frames := make(frameChan, 2)
	frames <- frame("A")
	frames <- frame("B")

	up := &fakeUploader{}
	c := New(fadeConfig(3, time.Second), vp, frames, up)
	c.Tick(0)

	c.Release()
	for _, tex := range up.uploaded {
		assert.True(t, tex.released)
	}
}
