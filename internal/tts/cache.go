package tts

import (
	"os"
	"path/filepath"

	"github.com/kaiwa-ai/reserve-gateway/internal/audio"
)

// Cache serves pre-synthesized template audio from disk. The cache directory
// is read-only at steady state; cmd/seedcache populates it at build time.
type Cache struct {
	dir string
}

// NewCache points at a directory of <label>.wav files. An empty dir disables
// the cache.
func NewCache(dir string) *Cache {
	return &Cache{dir: dir}
}

// Lookup returns the cached samples for a label, or ok=false on a miss.
func (c *Cache) Lookup(label string) (samples []int16, sampleRate int, ok bool) {
	if c == nil || c.dir == "" {
		return nil, 0, false
	}
	path := filepath.Join(c.dir, label+".wav")
	if _, err := os.Stat(path); err != nil {
		return nil, 0, false
	}
	samples, rate, err := audio.LoadWAV(path)
	if err != nil {
		return nil, 0, false
	}
	return samples, rate, true
}
