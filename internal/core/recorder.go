package core

import "time"

// Recorder receives service events for metrics. Implementations must be
// safe for concurrent use.
type Recorder interface {
	FileParsed(format string, d time.Duration, err error)
	FileRejected(reason string)
	Converted(source, target string, d time.Duration, err error)
	SessionsActive(n int)
}

type nopRecorder struct{}

func (nopRecorder) FileParsed(string, time.Duration, error)        {}
func (nopRecorder) FileRejected(string)                            {}
func (nopRecorder) Converted(string, string, time.Duration, error) {}
func (nopRecorder) SessionsActive(int)                             {}
