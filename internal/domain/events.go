package domain

// EventType represents the type of domain event
type EventType string

// Event types
const (
	EventOperationStarted   EventType = "OperationStarted"
	EventOperationProgress  EventType = "OperationProgress"
	EventOperationCompleted EventType = "OperationCompleted"
	EventDirectoryChanged   EventType = "DirectoryChanged"
	EventError              EventType = "Error"
	EventConfigLoaded       EventType = "ConfigLoaded"
	EventConfigSaved        EventType = "ConfigSaved"
	EventAppReady           EventType = "AppReady"
)

// DomainEvent is the interface for all domain events
type DomainEvent interface {
	Type() EventType
}

// OperationStartedEvent is emitted when the executor begins driving an operation
type OperationStartedEvent struct {
	ID    string
	Kind  OperationKind
	Total int
}

func (e OperationStartedEvent) Type() EventType { return EventOperationStarted }

// OperationProgressEvent is emitted after each item of an operation
type OperationProgressEvent struct {
	Progress OperationProgress
}

func (e OperationProgressEvent) Type() EventType { return EventOperationProgress }

// OperationCompletedEvent is emitted when an operation stops running, whether
// it finished, was cancelled or is waiting for a decision
type OperationCompletedEvent struct {
	ID     string
	Kind   OperationKind
	Status string
	Err    error
}

func (e OperationCompletedEvent) Type() EventType { return EventOperationCompleted }

// DirectoryChangedEvent is emitted by the watcher when the watched directory
// changes on disk
type DirectoryChangedEvent struct {
	Dir string
}

func (e DirectoryChangedEvent) Type() EventType { return EventDirectoryChanged }

// ErrorEvent is emitted when a background component fails
type ErrorEvent struct {
	Message string
	Err     error
}

func (e ErrorEvent) Type() EventType { return EventError }

// ConfigLoadedEvent is emitted when configuration is loaded
type ConfigLoadedEvent struct {
	Path     string
	Bindings int
}

func (e ConfigLoadedEvent) Type() EventType { return EventConfigLoaded }

// ConfigSavedEvent is emitted when configuration is written
type ConfigSavedEvent struct {
	Path string
}

func (e ConfigSavedEvent) Type() EventType { return EventConfigSaved }

// AppReadyEvent is emitted when the first listing has been loaded
type AppReadyEvent struct {
	Dir string
}

func (e AppReadyEvent) Type() EventType { return EventAppReady }
