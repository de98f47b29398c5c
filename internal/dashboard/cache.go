package dashboard

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/KaramelBytes/cord19-explorer/internal/cleaning"
	"github.com/KaramelBytes/cord19-explorer/internal/papers"
	"github.com/KaramelBytes/cord19-explorer/internal/table"
)

// ErrNoData is returned when the cleaned file has not been produced yet.
var ErrNoData = errors.New("cleaned data not found")

// Snapshot is an immutable view of the cleaned file at one modification time.
// Callers must not modify Records.
type Snapshot struct {
	Path     string
	Records  []papers.Record
	Journals []string
	MinYear  int
	MaxYear  int
	ModTime  time.Time
}

// Cache loads the cleaned file once and reloads it when its modification
// time or size changes.
type Cache struct {
	path string
	opt  table.Options

	mu    sync.Mutex
	snap  *Snapshot
	size  int64
	loads int
}

// NewCache returns a cache over the cleaned file at path.
func NewCache(path string, opt table.Options) *Cache {
	return &Cache{path: path, opt: opt}
}

// Get returns the current snapshot, reloading the file if it changed.
func (c *Cache) Get() (*Snapshot, error) {
	fi, err := os.Stat(c.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNoData, c.path)
		}
		return nil, fmt.Errorf("stat cleaned data: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.snap != nil && c.snap.ModTime.Equal(fi.ModTime()) && c.size == fi.Size() {
		return c.snap, nil
	}
	t, err := table.Load(c.path, c.opt)
	if err != nil {
		return nil, err
	}
	// the file is normally already clean; re-deriving is idempotent and
	// guards against hand-edited files
	cleaned, _ := cleaning.Clean(t)
	recs := papers.FromTable(cleaned)
	snap := &Snapshot{
		Path:     c.path,
		Records:  recs,
		Journals: papers.Journals(recs),
		ModTime:  fi.ModTime(),
	}
	snap.MinYear, snap.MaxYear, _ = papers.YearBounds(recs)
	c.snap, c.size = snap, fi.Size()
	c.loads++
	return snap, nil
}

// Loads reports how many times the file has been read.
func (c *Cache) Loads() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loads
}
