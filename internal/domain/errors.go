package domain

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindValidation       ErrorKind = "validation"
	KindAuthFailure      ErrorKind = "auth_failure"
	KindNetworkFailure   ErrorKind = "network_failure"
	KindBackendRejection ErrorKind = "backend_rejection"
	KindSequencing       ErrorKind = "sequencing"
)

// Error is the failure type every core operation resolves to. Detail is the
// message shown to the user; for backend failures it is the server's detail
// string verbatim.
type Error struct {
	Kind   ErrorKind
	Op     string
	Status int
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s (%d): %s", e.Op, e.Kind, e.Status, e.Detail)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Detail)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewValidationError(op, detail string) error {
	return &Error{Kind: KindValidation, Op: op, Detail: detail}
}

func NewAuthFailure(op string, status int, detail string) error {
	return &Error{Kind: KindAuthFailure, Op: op, Status: status, Detail: detail}
}

func NewNetworkFailure(op string, err error) error {
	return &Error{Kind: KindNetworkFailure, Op: op, Detail: "network error, please try again", Err: err}
}

func NewBackendRejection(op string, status int, detail string) error {
	return &Error{Kind: KindBackendRejection, Op: op, Status: status, Detail: detail}
}

func NewSequencingError(op, detail string) error {
	return &Error{Kind: KindSequencing, Op: op, Detail: detail}
}

// KindOf reports the kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}

// DetailOf returns the user-facing message for err.
func DetailOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Detail
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

var (
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrPackageNotFound    = errors.New("package not found")
	ErrCheckoutNotFound   = errors.New("checkout not found")
	ErrStoreUnavailable   = errors.New("token store unavailable")
	ErrAlreadyInitialized = errors.New("session already initialized")
)

// Flow gate outcomes other than proceed, as errors for callers that chain
// the gate into an operation.
var (
	ErrLoginRequired = errors.New("login required")
	ErrAlreadyOwned  = errors.New("package already owned")
	ErrForbidden     = errors.New("forbidden")
)

// DecisionError converts a gate decision into nil or one of the gate errors.
func DecisionError(d Decision) error {
	switch d {
	case DecisionProceed:
		return nil
	case DecisionRequiresLogin:
		return ErrLoginRequired
	case DecisionAlreadyOwned:
		return ErrAlreadyOwned
	}
	return ErrForbidden
}
