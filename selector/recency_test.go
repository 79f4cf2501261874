package selector

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecencyWindowFIFO(t *testing.T) {
	w := NewRecencyWindow(5)

	for _, url := range []string{"1", "2", "3", "4", "5"} {
		w.Push(url)
	}
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, w.URLs())

	w.Push("6")
	assert.Equal(t, 5, w.Len())
	assert.Equal(t, []string{"2", "3", "4", "5", "6"}, w.URLs())
	assert.False(t, w.Contains("1"))
	assert.True(t, w.Contains("6"))

	w.Push("7")
	w.Push("8")
	assert.Equal(t, []string{"4", "5", "6", "7", "8"}, w.URLs())
}

func TestRecencyWindowURLsIsCopy(t *testing.T) {
	w := NewRecencyWindow(2)
	w.Push("a")

	urls := w.URLs()
	urls[0] = "changed"
	assert.Equal(t, []string{"a"}, w.URLs())
}

func TestRecencyWindowZeroCapacity(t *testing.T) {
	for _, capacity := range []int{0, -3} {
		w := NewRecencyWindow(capacity)
		w.Push("a")
		assert.Equal(t, 0, w.Len())
		assert.False(t, w.Contains("a"))
		assert.Equal(t, 0, w.Capacity())
	}
}

func TestRecencyWindowClear(t *testing.T) {
	w := NewRecencyWindow(3)
	w.Push("a")
	w.Push("b")
	w.Clear()
	assert.Equal(t, 0, w.Len())
	assert.Empty(t, w.URLs())

	w.Push("c")
	assert.Equal(t, []string{"c"}, w.URLs())
}
