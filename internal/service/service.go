// Package service holds the application logic between the transport layers
// (HTTP, TUI) and the repository. Services validate input, assign IDs and
// timestamps, run cascades, and keep gamification state consistent.
package service

import (
	"errors"
	"time"
)

var (
	// ErrSessionBusy rejects a chat send while another send for the same
	// session is still in flight.
	ErrSessionBusy = errors.New("service: chat session busy")
	// ErrStatusNotAllowed rejects a task status outside its list's workflow.
	ErrStatusNotAllowed = errors.New("service: status not allowed in this list")
)

// clock is swappable in tests; services default to time.Now.
type clock func() time.Time
