package playback

import "time"

// Clock abstracts time.Now so controller tests can run without real time
type Clock interface {
	Now() time.Time
}

// Timer is a cancelable pending callback
type Timer interface {
	Stop() bool
}

// Scheduler abstracts time.AfterFunc so the auto-advance timer can be
// driven deterministically in tests.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the wall clock
func SystemClock() Clock { return systemClock{} }

type systemScheduler struct{}

func (systemScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// SystemScheduler returns a Scheduler backed by time.AfterFunc
func SystemScheduler() Scheduler { return systemScheduler{} }
