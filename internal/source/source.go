// Package source yields an endless sequence of image paths from a
// directory. When the directory is exhausted it is re-scanned and, if
// configured, re-shuffled, so the sequence never terminates.
package source

import (
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

// Source is safe for concurrent use; each grid cell owns its own instance
// but the IPC layer may swap the path list from another goroutine.
type Source struct {
	sync.Mutex
	dir     string
	shuffle bool
	paths   []string
	pos     int
}

// New scans dir for images. Finding zero usable images is a configuration
// error, not a runtime fault.
func New(dir string, shuffle bool) (*Source, error) {
	s := &Source{dir: dir, shuffle: shuffle}
	paths, err := scan(dir)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no images found in %s", dir)
	}
	s.paths = paths
	if shuffle {
		rand.Shuffle(len(s.paths), func(i, j int) {
			s.paths[i], s.paths[j] = s.paths[j], s.paths[i]
		})
	}
	return s, nil
}

// Next returns the next image path. On exhaustion the directory is
// re-scanned; if the re-scan fails or comes back empty the previous list is
// reused so the sequence keeps going.
func (s *Source) Next() string {
	s.Lock()
	defer s.Unlock()

	if s.pos >= len(s.paths) {
		s.rewind()
	}
	path := s.paths[s.pos]
	s.pos++
	return path
}

// rewind restarts the sequence, picking up directory changes. Caller holds
// the lock.
func (s *Source) rewind() {
	paths, err := scan(s.dir)
	if err != nil || len(paths) == 0 {
		log.Warnf("re-scan of %s failed, reusing previous list: %v", s.dir, err)
	} else {
		s.paths = paths
	}
	if s.shuffle {
		rand.Shuffle(len(s.paths), func(i, j int) {
			s.paths[i], s.paths[j] = s.paths[j], s.paths[i]
		})
	}
	s.pos = 0
}

// Len returns the number of paths in the current pass.
func (s *Source) Len() int {
	s.Lock()
	defer s.Unlock()
	return len(s.paths)
}

// Replace swaps in an explicit path list, restarting the sequence.
func (s *Source) Replace(paths []string) {
	s.Lock()
	defer s.Unlock()
	s.paths = append([]string(nil), paths...)
	s.pos = 0
	if s.shuffle {
		rand.Shuffle(len(s.paths), func(i, j int) {
			s.paths[i], s.paths[j] = s.paths[j], s.paths[i]
		})
	}
}

func scan(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("unable to read directory %s: %w", dir, err)
	}

	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := strings.ToLower(entry.Name())
		if strings.HasSuffix(name, ".png") ||
			strings.HasSuffix(name, ".jpg") ||
			strings.HasSuffix(name, ".jpeg") ||
			strings.HasSuffix(name, ".gif") {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	return paths, nil
}
