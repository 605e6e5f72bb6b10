package ui

import (
	"filephile/internal/eventbus"
	"filephile/internal/operation"
)

// EventMsg wraps a domain event for the UI
type EventMsg struct {
	Event eventbus.DomainEvent
}

// timeoutMsg fires when a pending key sequence may have expired
type timeoutMsg struct {
	generation uint64
}

// resultMsg carries what Drive returned for an operation
type resultMsg struct {
	res operation.Result
}

// clipboardMsg reports the outcome of a yank to the system clipboard
type clipboardMsg struct {
	err error
}
