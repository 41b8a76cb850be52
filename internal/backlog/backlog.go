// Package backlog keeps a bounded FIFO of GPU-resident textures ahead of
// the image on screen, so a transition never waits on a decode.
package backlog

import (
	"errors"
	"time"

	"github.com/matjam/slidepaper/internal/render"
)

// ErrFull is returned by Push when every slot is occupied.
var ErrFull = errors.New("backlog is full")

// Entry is one slot: a texture plus its display metadata. Index 0 is the
// image currently on screen.
type Entry struct {
	Tex      render.Texture
	Path     string
	LoadedAt time.Time
}

// Backlog is only ever touched from the render thread; the handoff from
// the loader happens before Push via the worker's channel.
type Backlog struct {
	capacity int
	entries  []Entry
}

func New(capacity int) *Backlog {
	if capacity < 1 {
		capacity = 1
	}
	return &Backlog{
		capacity: capacity,
		entries:  make([]Entry, 0, capacity),
	}
}

// Push appends a texture to the queue. It is refused at capacity; the
// caller retries after the next Advance frees a slot.
func (b *Backlog) Push(tex render.Texture, path string) error {
	if len(b.entries) >= b.capacity {
		return ErrFull
	}
	b.entries = append(b.entries, Entry{Tex: tex, Path: path, LoadedAt: time.Now()})
	return nil
}

// Advance discards the currently displayed texture, releasing it
// immediately, and promotes the next slot. It reports whether a slot was
// freed and a refill should be requested. With a single entry there is
// nothing to promote and the current image stays; a cell never renders
// from an empty backlog.
func (b *Backlog) Advance() bool {
	if len(b.entries) <= 1 {
		return false
	}
	b.entries[0].Tex.Release()
	b.entries[0] = Entry{}
	b.entries = b.entries[1:]
	return true
}

// Current returns the texture on screen, or nil when nothing has been
// loaded yet.
func (b *Backlog) Current() render.Texture {
	if len(b.entries) == 0 {
		return nil
	}
	return b.entries[0].Tex
}

// CurrentPath returns the path of the image on screen.
func (b *Backlog) CurrentPath() string {
	if len(b.entries) == 0 {
		return ""
	}
	return b.entries[0].Path
}

// Next returns the queued texture a fade would blend into, or nil when the
// loader hasn't caught up yet.
func (b *Backlog) Next() render.Texture {
	if len(b.entries) < 2 {
		return nil
	}
	return b.entries[1].Tex
}

func (b *Backlog) Len() int { return len(b.entries) }

func (b *Backlog) Cap() int { return b.capacity }

// Release evicts everything, releasing each texture. Called on shutdown
// from the render thread.
func (b *Backlog) Release() {
	for i := range b.entries {
		b.entries[i].Tex.Release()
		b.entries[i] = Entry{}
	}
	b.entries = b.entries[:0]
}
