package render

// FrameID identifies a requested animation frame.
type FrameID uint64

// Scheduler defers work to the next animation frame.
type Scheduler interface {
	RequestFrame(fn func()) FrameID
	CancelFrame(id FrameID)
}

// ManualScheduler queues frames until the host calls RunFrame. It suits
// event loops that already know when a frame boundary is, and tests.
type ManualScheduler struct {
	next    FrameID
	order   []FrameID
	pending map[FrameID]func()
}

// NewManualScheduler creates an empty scheduler.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{pending: make(map[FrameID]func())}
}

// RequestFrame queues fn for the next RunFrame.
func (m *ManualScheduler) RequestFrame(fn func()) FrameID {
	m.next++
	m.pending[m.next] = fn
	m.order = append(m.order, m.next)
	return m.next
}

// CancelFrame drops a queued callback. Unknown ids are ignored.
func (m *ManualScheduler) CancelFrame(id FrameID) {
	delete(m.pending, id)
}

// Pending returns the number of queued callbacks.
func (m *ManualScheduler) Pending() int {
	return len(m.pending)
}

// RunFrame runs every callback queued before the call, in request order.
// Callbacks requested while running wait for the next frame. It returns the
// number of callbacks run.
func (m *ManualScheduler) RunFrame() int {
	order := m.order
	m.order = nil
	ran := 0
	for _, id := range order {
		fn, ok := m.pending[id]
		if !ok {
			continue
		}
		delete(m.pending, id)
		fn()
		ran++
	}
	return ran
}
