package assembler

import "sync"

// DefaultCounterStart is the first number handed out to prefix-based part numbers.
const DefaultCounterStart = 10000

// Counter issues sequential part numbers. It is safe for concurrent use; give each
// independent generation its own instance.
type Counter struct {
	mutex sync.Mutex
	start int
	next  int
}

func NewCounter(start int) *Counter {
	return &Counter{start: start, next: start}
}

// Next returns the current value and advances by one.
func (c *Counter) Next() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	n := c.next
	c.next++
	return n
}

// Last returns the most recently issued value, or false if none was issued.
func (c *Counter) Last() (int, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.next == c.start {
		return 0, false
	}
	return c.next - 1, true
}
