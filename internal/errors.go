package internal

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyMessage is returned when a message is empty or whitespace only
	ErrEmptyMessage = errors.New("message is empty")

	// ErrSendInFlight is returned while another message is awaiting a reply
	ErrSendInFlight = errors.New("a message is already being sent")

	// ErrBackendRejected is returned when the backend answers with success=false
	ErrBackendRejected = errors.New("backend rejected the request")

	// ErrDeclined is returned when the user does not confirm a destructive action
	ErrDeclined = errors.New("action declined")

	// ErrNoBackend is returned when the assistant runs without a backend
	ErrNoBackend = errors.New("no backend configured")
)

// StorageError represents errors accessing the key/value store
type StorageError struct {
	Key string
	Op  string // "open", "get", "put", "delete", "apply", "scan"
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error: %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// ParseError represents errors decoding stored data
type ParseError struct {
	Source string // "chatHistory", "archivedSession", ...
	Key    string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error [%s] %s: %v", e.Source, e.Key, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// BackendError represents transport failures talking to the inference backend
type BackendError struct {
	Endpoint string
	Status   int
	Err      error
}

func (e *BackendError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("backend error [%s] status %d: %v", e.Endpoint, e.Status, e.Err)
	}
	return fmt.Sprintf("backend error [%s]: %v", e.Endpoint, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// ExportError represents errors during export
type ExportError struct {
	Format string
	Path   string
	Err    error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export error [%s] %s: %v", e.Format, e.Path, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}
