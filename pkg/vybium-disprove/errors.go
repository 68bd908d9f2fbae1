package vybiumdisprove

import (
	"context"
	"errors"
	"fmt"

	"github.com/vybium/vybium-disprove/internal/vybium-disprove/assigner"
	"github.com/vybium/vybium-disprove/internal/vybium-disprove/chunker"
	"github.com/vybium/vybium-disprove/internal/vybium-disprove/hints"
	"github.com/vybium/vybium-disprove/internal/vybium-disprove/script"
	"github.com/vybium/vybium-disprove/internal/vybium-disprove/segment"
	"github.com/vybium/vybium-disprove/internal/vybium-disprove/store"
	"github.com/vybium/vybium-disprove/internal/vybium-disprove/vm"
)

// ErrorCode represents a vybium-disprove error code
type ErrorCode int

const (
	// ErrUnknown represents an unknown error
	ErrUnknown ErrorCode = iota

	// ErrInvalidConfig represents an invalid configuration error
	ErrInvalidConfig

	// ErrConstruction represents a segment that cannot produce its witness
	ErrConstruction

	// ErrCommitment represents a value the commitment capability rejected
	ErrCommitment

	// ErrExecution represents a leaf that failed on the reference machine
	ErrExecution

	// ErrChaining represents a name bound to different values across segments
	ErrChaining

	// ErrStorage represents a leaf store error
	ErrStorage

	// ErrInvalidInput represents an invalid input error
	ErrInvalidInput
)

// Error represents a vybium-disprove error
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error returns the error message
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("vybium-disprove error [%d]: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("vybium-disprove error [%d]: %s", e.Code, e.Message)
}

// Unwrap returns the cause of the error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target error
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// wrap attaches the code matching the internal cause
func wrap(message string, err error) error {
	if err == nil {
		return nil
	}

	var coded *Error
	if errors.As(err, &coded) {
		return err
	}

	code := ErrUnknown
	switch {
	case errors.Is(err, segment.ErrUnpopulated), errors.Is(err, segment.ErrRevealResult):
		code = ErrConstruction
	case errors.Is(err, assigner.ErrNotFilled), errors.Is(err, assigner.ErrConflict):
		code = ErrCommitment
	case errors.Is(err, chunker.ErrChainConflict):
		code = ErrChaining
	case errors.Is(err, chunker.ErrLeafTooLarge), errors.Is(err, hints.ErrNotPush),
		errors.Is(err, script.ErrMalformedScript):
		code = ErrInvalidInput
	case errors.Is(err, vm.ErrVerify), errors.Is(err, vm.ErrStackUnderflow),
		errors.Is(err, vm.ErrStackOverflow), errors.Is(err, vm.ErrStepLimit),
		errors.Is(err, vm.ErrEarlyReturn), errors.Is(err, vm.ErrUnknownOpcode),
		errors.Is(err, vm.ErrInvalidIndex), errors.Is(err, vm.ErrUnbalancedConditional),
		errors.Is(err, vm.ErrPushSize):
		code = ErrExecution
	case errors.Is(err, store.ErrBatchNotFound), errors.Is(err, store.ErrCorruptWitness):
		code = ErrStorage
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	}
	return &Error{Code: code, Message: message, Cause: err}
}
