package display

import "sync"

// Latest remembers the most recent frame.
type Latest struct {
	mu     sync.RWMutex
	frame  Frame
	seen   bool
	hidden bool
}

func NewLatest() *Latest { return &Latest{} }

func (l *Latest) Update(f Frame) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.frame = f
	l.seen = true
	l.hidden = false
}

func (l *Latest) Hide() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.hidden = true
}

// Frame returns the last frame and whether one is currently visible.
func (l *Latest) Frame() (Frame, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if !l.seen || l.hidden {
		return Frame{Hidden: true}, false
	}
	return l.frame, true
}
