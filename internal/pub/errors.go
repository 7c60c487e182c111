package pub

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidOperation is returned for a command name that matches no
	// known operation.
	ErrInvalidOperation = errors.New("invalid operation")

	// ErrInsufficientArguments is returned when an operation is given fewer
	// positional arguments than it requires.
	ErrInsufficientArguments = errors.New("insufficient arguments")
)

// IsUsage reports whether err is a command line usage failure.
func IsUsage(err error) bool {
	return errors.Is(err, ErrInvalidOperation) || errors.Is(err, ErrInsufficientArguments)
}

// RemoteServiceError is a transport or service level failure returned by a
// remote call. It is always fatal to the invocation.
type RemoteServiceError struct {
	Op       string
	Resource string
	Err      error
}

func (e *RemoteServiceError) Error() string {
	if e.Resource == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Resource, e.Err)
}

func (e *RemoteServiceError) Unwrap() error {
	return e.Err
}

// RemoteError wraps err as a *RemoteServiceError. A nil err stays nil and an
// error that already is one is returned unchanged.
func RemoteError(op, resource string, err error) error {
	if err == nil {
		return nil
	}
	var rse *RemoteServiceError
	if errors.As(err, &rse) {
		return err
	}
	return &RemoteServiceError{Op: op, Resource: resource, Err: err}
}

// ProcessingError reports that a single message could not be processed.
// It is contained to its message: the message is left unacknowledged.
type ProcessingError struct {
	MessageID string
	Err       error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("failed to process message %s: %v", e.MessageID, e.Err)
}

func (e *ProcessingError) Unwrap() error {
	return e.Err
}
