// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrMissingToken     = errors.New("missing DISCORD_BOT_TOKEN")
	ErrChannelNotFound  = errors.New("channel not found")
	ErrNoMarketData     = errors.New("no market data")
	ErrTermNotFound     = errors.New("term not found")
	ErrConfigInvalid    = errors.New("invalid configuration")
	ErrInvalidSchedule  = errors.New("invalid schedule")
	ErrTimeout          = errors.New("operation timed out")
	ErrDatabaseError    = errors.New("database error")
	ErrSchedulerStopped = errors.New("scheduler stopped")
)

// UsageError is returned when command arguments are missing or malformed.
// The Usage text is shown to the user verbatim.
type UsageError struct {
	Command string
	Usage   string
	Reason  string
}

func (e *UsageError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("usage error [%s]: %s", e.Command, e.Reason)
	}
	return fmt.Sprintf("usage error [%s]", e.Command)
}

// NewUsageError creates a new UsageError.
func NewUsageError(command, usage, reason string) *UsageError {
	return &UsageError{
		Command: command,
		Usage:   usage,
		Reason:  reason,
	}
}

// SinkError represents a failed delivery to an output channel.
type SinkError struct {
	Channel string
	Err     error
}

func (e *SinkError) Error() string {
	return fmt.Sprintf("sink error [%s]: %v", e.Channel, e.Err)
}

func (e *SinkError) Unwrap() error {
	return e.Err
}

// NewSinkError creates a new SinkError.
func NewSinkError(channel string, err error) *SinkError {
	return &SinkError{
		Channel: channel,
		Err:     err,
	}
}

// DataError represents a data-related error.
type DataError struct {
	DataType string
	Symbol   string
	Message  string
	Err      error
}

func (e *DataError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("data error [%s] %s: %s: %v", e.DataType, e.Symbol, e.Message, e.Err)
	}
	return fmt.Sprintf("data error [%s] %s: %s", e.DataType, e.Symbol, e.Message)
}

func (e *DataError) Unwrap() error {
	return e.Err
}

// NewDataError creates a new DataError.
func NewDataError(dataType, symbol, message string, err error) *DataError {
	return &DataError{
		DataType: dataType,
		Symbol:   symbol,
		Message:  message,
		Err:      err,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
