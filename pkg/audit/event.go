// Package audit records deployment runs against a fabric.
package audit

import (
	"fmt"
	"os"
	"os/user"
	"time"
)

// Event is one Ansible run started by fabricctl.
type Event struct {
	ID        string        `json:"id"`
	Timestamp time.Time     `json:"timestamp"`
	User      string        `json:"user"`
	Operation string        `json:"operation"`
	Inventory string        `json:"inventory"`
	Command   string        `json:"command,omitempty"`
	Vault     bool          `json:"vault"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
	Duration  time.Duration `json:"duration"`
}

// Filter selects runs for history queries. Zero fields match everything.
type Filter struct {
	User        string
	Operation   string
	Inventory   string
	StartTime   time.Time
	EndTime     time.Time
	SuccessOnly bool
	FailureOnly bool
	VaultOnly   bool
	Limit       int
	Offset      int
}

// NewEvent creates a new audit event
func NewEvent(user, operation, inventory string) *Event {
	return &Event{
		ID:        generateID(),
		Timestamp: time.Now(),
		User:      user,
		Operation: operation,
		Inventory: inventory,
	}
}

// WithCommand sets the command line that was run
func (e *Event) WithCommand(cmd string) *Event {
	e.Command = cmd
	return e
}

// WithVault marks whether the vault password was requested
func (e *Event) WithVault(vault bool) *Event {
	e.Vault = vault
	return e
}

// WithSuccess marks the event as successful
func (e *Event) WithSuccess() *Event {
	e.Success = true
	return e
}

// WithError marks the event as failed
func (e *Event) WithError(err error) *Event {
	e.Success = false
	if err != nil {
		e.Error = err.Error()
	}
	return e
}

// WithDuration sets the operation duration
func (e *Event) WithDuration(d time.Duration) *Event {
	e.Duration = d
	return e
}

// CurrentUser returns the login name of the invoking user.
func CurrentUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	if name := os.Getenv("USER"); name != "" {
		return name
	}
	return "unknown"
}

func generateID() string {
	return fmt.Sprintf("%d", time.Now().UnixNano())
}
