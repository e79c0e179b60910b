package race

import "time"

// TimerState represents the lifecycle state of a category timer
type TimerState string

const (
	TimerNotStarted TimerState = "not_started"
	TimerRunning    TimerState = "running"
	TimerPaused     TimerState = "paused"
	TimerStopped    TimerState = "stopped"
)

// Timer is the stopwatch for one category. Elapsed time is wall clock
// since start minus the accumulated paused duration.
type Timer struct {
	State       TimerState
	StartTime   time.Time
	StopTime    time.Time
	PauseTime   time.Time
	PausedTotal time.Duration

	now func() time.Time
}

// NewTimer creates a timer in the not-started state.
func NewTimer() *Timer {
	return &Timer{State: TimerNotStarted, now: time.Now}
}

// Start starts a fresh timer or resumes a paused one. No-op in any
// other state.
func (t *Timer) Start() {
	switch t.State {
	case TimerNotStarted:
		t.StartTime = t.clock()
		t.State = TimerRunning
	case TimerPaused:
		if !t.PauseTime.IsZero() {
			t.PausedTotal += t.clock().Sub(t.PauseTime)
			t.PauseTime = time.Time{}
		}
		t.State = TimerRunning
	}
}

// Stop stops a running timer. Stopped is terminal; only Reset leaves it.
func (t *Timer) Stop() {
	if t.State == TimerRunning {
		t.StopTime = t.clock()
		t.State = TimerStopped
	}
}

// Pause pauses a running timer.
func (t *Timer) Pause() {
	if t.State == TimerRunning {
		t.PauseTime = t.clock()
		t.State = TimerPaused
	}
}

// Reset returns the timer to not-started and clears all timestamps.
func (t *Timer) Reset() {
	t.State = TimerNotStarted
	t.StartTime = time.Time{}
	t.StopTime = time.Time{}
	t.PauseTime = time.Time{}
	t.PausedTotal = 0
}

// Elapsed returns the elapsed time at the given reference time. With a
// zero reference the anchor is state-dependent: stop time when stopped,
// pause time when paused, otherwise the current wall clock. Negative
// differences clamp to zero.
func (t *Timer) Elapsed(at time.Time) time.Duration {
	if t.State == TimerNotStarted || t.StartTime.IsZero() {
		return 0
	}

	end := at
	switch {
	case !at.IsZero():
	case t.State == TimerStopped && !t.StopTime.IsZero():
		end = t.StopTime
	case t.State == TimerPaused && !t.PauseTime.IsZero():
		end = t.PauseTime
	default:
		end = t.clock()
	}

	elapsed := end.Sub(t.StartTime) - t.PausedTotal
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

// Running reports whether the timer is currently running.
func (t *Timer) Running() bool {
	return t.State == TimerRunning
}

func (t *Timer) clock() time.Time {
	if t.now != nil {
		return t.now()
	}
	return time.Now()
}
