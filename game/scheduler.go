package game

import "time"

type clockScheduler struct{}

func (clockScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

func NewClockScheduler() Scheduler {
	return clockScheduler{}
}
