package terminal

import (
	"time"

	"github.com/gdamore/tcell/v2"

	"nodeboard/render"
)

// PostEvent retries while the tcell event queue is full.
const (
	postRetries    = 100
	postRetryDelay = 2 * time.Millisecond
)

// frameEvent wakes the event loop for a requested frame.
type frameEvent struct {
	tcell.EventTime
	id render.FrameID
}

// FrameScheduler is a render.Scheduler that delivers frames through the
// tcell event queue, so callbacks run on the event loop goroutine.
//
// RequestFrame, CancelFrame and Dispatch must all be called from the event
// loop goroutine. Only the timer goroutines touch the screen, via PostEvent.
type FrameScheduler struct {
	screen   tcell.Screen
	interval time.Duration
	next     render.FrameID
	pending  map[render.FrameID]func()
}

// NewFrameScheduler creates a scheduler that fires frames interval after
// they are requested.
func NewFrameScheduler(screen tcell.Screen, interval time.Duration) *FrameScheduler {
	return &FrameScheduler{
		screen:   screen,
		interval: interval,
		pending:  make(map[render.FrameID]func()),
	}
}

// RequestFrame implements render.Scheduler.
func (f *FrameScheduler) RequestFrame(fn func()) render.FrameID {
	f.next++
	id := f.next
	f.pending[id] = fn

	post := func() {
		ev := &frameEvent{id: id}
		// A full queue is retried; a dropped frame would leave the
		// renderer waiting on it until some other input arrived.
		for attempt := 0; ; attempt++ {
			ev.SetEventNow()
			if err := f.screen.PostEvent(ev); err == nil || attempt == postRetries {
				return
			}
			time.Sleep(postRetryDelay)
		}
	}
	if f.interval <= 0 {
		go post()
	} else {
		time.AfterFunc(f.interval, post)
	}
	return id
}

// CancelFrame implements render.Scheduler.
func (f *FrameScheduler) CancelFrame(id render.FrameID) {
	delete(f.pending, id)
}

// Pending returns the number of frames not yet dispatched or cancelled.
func (f *FrameScheduler) Pending() int {
	return len(f.pending)
}

// Dispatch runs the callback for a frame event. It reports whether ev was
// a frame event at all.
func (f *FrameScheduler) Dispatch(ev tcell.Event) bool {
	fe, ok := ev.(*frameEvent)
	if !ok {
		return false
	}
	if fn, ok := f.pending[fe.id]; ok {
		delete(f.pending, fe.id)
		fn()
	}
	return true
}
