package dispatch

import (
	"time"

	"filephile/internal/input/action"
	"filephile/internal/operation"
)

// Effect asks the renderer to do something the engine cannot do itself
type Effect interface {
	effect()
}

// ScheduleTimeout asks for HandleTimeout(Generation) after After
type ScheduleTimeout struct {
	After      time.Duration
	Generation uint64
}

// StartOperation asks for Pending to be driven off the input goroutine,
// with the result handed back through HandleResult
type StartOperation struct {
	Pending *operation.Pending
}

// CancelOperations asks for the contexts of all running operations to be
// cancelled
type CancelOperations struct{}

// BeginTextInput opens a text field for Mode
type BeginTextInput struct {
	Mode    action.Mode
	Prompt  string
	Initial string
}

// EndTextInput closes the text field
type EndTextInput struct{}

// PassThrough hands the key to the open text field
type PassThrough struct{}

// OpenPager shows a file, or Content when Path is empty, in the pager
type OpenPager struct {
	Title   string
	Path    string
	Content string
}

// ShowHelp opens the key binding list for Mode
type ShowHelp struct {
	Mode action.Mode
}

// CopyToClipboard puts Text on the system clipboard
type CopyToClipboard struct {
	Text string
}

// WatchDirectory follows the current directory for changes on disk
type WatchDirectory struct {
	Dir string
}

// Quit ends the session
type Quit struct{}

func (ScheduleTimeout) effect()  {}
func (StartOperation) effect()   {}
func (CancelOperations) effect() {}
func (BeginTextInput) effect()   {}
func (EndTextInput) effect()     {}
func (PassThrough) effect()      {}
func (OpenPager) effect()        {}
func (ShowHelp) effect()         {}
func (CopyToClipboard) effect()  {}
func (WatchDirectory) effect()   {}
func (Quit) effect()             {}
