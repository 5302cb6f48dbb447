package raster

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"sync"
)

// FrameCache caches decoded frames by file path so the diagnostic server can
// run several pipeline stages against the same capture without re-reading it
// from disk. It is safe for concurrent use.
//
// Cached images stay resident until Evict or Clear is called; long sessions
// over many captures should clear periodically.
type FrameCache struct {
	mu     sync.RWMutex
	frames map[string]image.Image
}

// NewFrameCache creates an empty cache ready for concurrent use.
func NewFrameCache() *FrameCache {
	return &FrameCache{frames: make(map[string]image.Image)}
}

// Load returns the decoded image for path, reading and decoding it only on
// first access. Supported formats are PNG, JPEG and GIF.
func (c *FrameCache) Load(path string) (image.Image, error) {
	c.mu.RLock()
	if img, ok := c.frames[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open frame: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode frame: %w", err)
	}

	c.mu.Lock()
	c.frames[path] = img
	c.mu.Unlock()

	return img, nil
}

// LoadFrame loads the image at path and converts it into a Frame, applying
// the MaxIngestSide bound.
func (c *FrameCache) LoadFrame(path string) (*Frame, error) {
	img, err := c.Load(path)
	if err != nil {
		return nil, err
	}
	return FrameFromImage(img), nil
}

// Evict removes a single cached frame. Unknown paths are ignored.
func (c *FrameCache) Evict(path string) {
	c.mu.Lock()
	delete(c.frames, path)
	c.mu.Unlock()
}

// Clear drops every cached frame.
func (c *FrameCache) Clear() {
	c.mu.Lock()
	c.frames = make(map[string]image.Image)
	c.mu.Unlock()
}
