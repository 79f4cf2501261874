package selector

import "slices"

// RecencyWindow is a fixed capacity FIFO of recently shown URLs.
type RecencyWindow struct {
	urls     []string
	capacity int
}

// NewRecencyWindow returns an empty window. A capacity of zero or less
// makes a window that never holds anything.
func NewRecencyWindow(capacity int) *RecencyWindow {
	if capacity < 0 {
		capacity = 0
	}
	return &RecencyWindow{
		urls:     make([]string, 0, capacity+1),
		capacity: capacity,
	}
}

// Push appends url, evicting the oldest entry when over capacity.
func (w *RecencyWindow) Push(url string) {
	if w.capacity == 0 {
		return
	}
	w.urls = append(w.urls, url)
	for len(w.urls) > w.capacity {
		w.urls = slices.Delete(w.urls, 0, 1)
	}
}

func (w *RecencyWindow) Contains(url string) bool {
	return slices.Contains(w.urls, url)
}

// URLs returns the window contents, oldest first.
func (w *RecencyWindow) URLs() []string {
	return slices.Clone(w.urls)
}

func (w *RecencyWindow) Len() int {
	return len(w.urls)
}

func (w *RecencyWindow) Capacity() int {
	return w.capacity
}

func (w *RecencyWindow) Clear() {
	w.urls = w.urls[:0]
}
