package render

import "sync"

// Container is the document target a report is rendered into. While it is
// empty the UI shows its placeholder instead.
type Container struct {
	mu   sync.RWMutex
	html []byte
}

func NewContainer() *Container {
	return &Container{}
}

// SetHTML replaces the document content.
func (c *Container) SetHTML(html []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.html = html
}

// HTML returns the current document content, nil when empty.
func (c *Container) HTML() []byte {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.html == nil {
		return nil
	}
	out := make([]byte, len(c.html))
	copy(out, c.html)
	return out
}

// Clear resets the container to the empty shell.
func (c *Container) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.html = nil
}

// Empty reports whether anything has been rendered.
func (c *Container) Empty() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.html) == 0
}
