package orchestrator

import "sync"

const defaultCaptureLimit = 64 * 1024

// tailBuffer keeps the last limit bytes written to it. stdout and stderr of a child process are copied
// from separate goroutines, hence the lock.
type tailBuffer struct {
	lock  sync.Mutex
	limit int
	data  []byte
}

func newTailBuffer(limit int) *tailBuffer {
	if limit <= 0 {
		limit = defaultCaptureLimit
	}

	return &tailBuffer{limit: limit}
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.lock.Lock()
	defer b.lock.Unlock()

	if len(p) >= b.limit {
		b.data = append(b.data[:0], p[len(p)-b.limit:]...)
		return len(p), nil
	}

	b.data = append(b.data, p...)
	if over := len(b.data) - b.limit; over > 0 {
		n := copy(b.data, b.data[over:])
		b.data = b.data[:n]
	}

	return len(p), nil
}

func (b *tailBuffer) String() string {
	b.lock.Lock()
	defer b.lock.Unlock()

	return string(b.data)
}

func (b *tailBuffer) Reset() {
	b.lock.Lock()
	defer b.lock.Unlock()

	b.data = b.data[:0]
}
