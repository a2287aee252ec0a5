package entity

import (
	"errors"
	"fmt"
)

var (
	// ErrNoMedia is returned when an upload batch is started without any media
	ErrNoMedia = errors.New("select at least one file to upload")
	// ErrBatchInProgress is returned when an upload batch is started while another runs
	ErrBatchInProgress = errors.New("an upload is already in progress")
	// ErrNotDirectory is returned when descending into something that isn't a directory
	ErrNotDirectory = errors.New("not a directory")
)

// ConfigurationError means the endpoint couldn't be turned into a valid address
type ConfigurationError struct {
	Endpoint string
	Cause    error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid server address %q: %v", e.Endpoint, e.Cause)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Cause
}

// ConnectionError means a session couldn't be established or the share couldn't be attached
type ConnectionError struct {
	Share string
	Cause error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("couldn't connect to share %q: %v", e.Share, e.Cause)
}

func (e *ConnectionError) Unwrap() error {
	return e.Cause
}

// ListingError means the contents of a remote directory couldn't be fetched
type ListingError struct {
	Path  string
	Cause error
}

func (e *ListingError) Error() string {
	return fmt.Sprintf("couldn't list %q: %v", e.Path, e.Cause)
}

func (e *ListingError) Unwrap() error {
	return e.Cause
}

// ItemTransferError means one item of a batch failed. It never aborts the batch.
type ItemTransferError struct {
	Index    int
	Filename string
	Stage    string // "load" or "write"
	Cause    error
}

func (e *ItemTransferError) Error() string {
	return fmt.Sprintf("item #%d (%s) failed to %s: %v", e.Index+1, e.Filename, e.Stage, e.Cause)
}

func (e *ItemTransferError) Unwrap() error {
	return e.Cause
}
