package lint

import "time"

// Stage describes a phase of the workspace batch run.
type Stage string

const (
	// StageDiscover is the file enumeration stage.
	StageDiscover Stage = "discover"
	// StageLint is the per-root vale invocation stage.
	StageLint Stage = "lint"
	// StagePublish is the store replacement stage.
	StagePublish Stage = "publish"
)

// Status captures progress state within a stage.
type Status string

const (
	// StatusQueued indicates the root is waiting for its invocation.
	StatusQueued Status = "queued"
	// StatusWorking indicates the stage is currently running.
	StatusWorking Status = "working"
	// StatusDone indicates the stage finished.
	StatusDone Status = "done"
	// StatusError indicates the stage failed.
	StatusError Status = "error"
)

// Event reports batch progress for one project root, or for the overall run
// when Root is empty.
type Event struct {
	Root    string
	Stage   Stage
	Status  Status
	Files   int
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events.
type ProgressSink interface {
	OnEvent(Event)
}

// ProgressFunc adapts a function to a ProgressSink.
type ProgressFunc func(Event)

func (f ProgressFunc) OnEvent(ev Event) { f(ev) }
