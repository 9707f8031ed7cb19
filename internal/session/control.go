package session

import "sync/atomic"

// Control is the thread-safe signaling surface between a foreground shell
// and the monitoring loop. Requests are flags read and cleared at the top of
// the next loop iteration; an in-flight OCR call is never preempted.
type Control struct {
	stop        atomic.Bool
	diagnostic  atomic.Bool
	forcedPhase atomic.Int32 // 0 none, 1 AwaitingCourse, 2 AwaitingResult
}

// NewControl creates a control surface.
func NewControl() *Control {
	return &Control{}
}

// Stop asks the loop to terminate after the current iteration.
func (c *Control) Stop() {
	c.stop.Store(true)
}

// Stopped reports whether a stop was requested.
func (c *Control) Stopped() bool {
	return c.stop.Load()
}

// RequestDiagnosticCapture asks the loop to save an annotated snapshot of
// the next frame.
func (c *Control) RequestDiagnosticCapture() {
	c.diagnostic.Store(true)
}

// ForcePhase asks the loop to switch the session to the given phase between
// iterations.
func (c *Control) ForcePhase(p Phase) {
	c.forcedPhase.Store(int32(p) + 1)
}

func (c *Control) takeDiagnostic() bool {
	return c.diagnostic.CompareAndSwap(true, false)
}

func (c *Control) takeForcedPhase() (Phase, bool) {
	v := c.forcedPhase.Swap(0)
	if v == 0 {
		return AwaitingCourse, false
	}
	return Phase(v - 1), true
}
