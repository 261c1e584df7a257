package service

import "time"

// Recorder observes committed lifecycle transitions and payroll runs.
type Recorder interface {
	RecordTransition(entity, from, to string)
	ObservePayroll(operation string, duration time.Duration, err error)
}

type nopRecorder struct{}

func (nopRecorder) RecordTransition(string, string, string) {}

func (nopRecorder) ObservePayroll(string, time.Duration, error) {}

func recorderOrNop(r Recorder) Recorder {
	if r == nil {
		return nopRecorder{}
	}
	return r
}
