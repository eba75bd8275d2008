package domain

import "errors"

// Error kinds. Every error returned by a service or repository matches
// exactly one of these through errors.Is.
var (
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrValidation       = errors.New("validation failed")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrInternal         = errors.New("internal error")
)

// Error is a domain error with a kind and an optional underlying cause.
type Error struct {
	Kind error
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

// Is lets a wrapped copy match its template (see Wrap).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind && t.Msg == e.Msg
}

// Wrap returns a copy of e carrying cause.
func (e *Error) Wrap(cause error) error {
	return &Error{Kind: e.Kind, Msg: e.Msg, Err: cause}
}

var (
	ErrProductNotFound   = &Error{Kind: ErrNotFound, Msg: "product not found"}
	ErrInvalidID         = &Error{Kind: ErrValidation, Msg: "invalid product id"}
	ErrAlreadyVoted      = &Error{Kind: ErrConflict, Msg: "User already voted"}
	ErrUserEmailRequired = &Error{Kind: ErrValidation, Msg: "userEmail is required"}
	ErrEmailRequired     = &Error{Kind: ErrValidation, Msg: "email is required"}
	ErrUserExists        = &Error{Kind: ErrConflict, Msg: "user already exists"}
	ErrEmptyUpdate       = &Error{Kind: ErrValidation, Msg: "no updatable fields supplied"}
)

// Unavailable wraps a store failure that is worth retrying (timeouts,
// network errors).
func Unavailable(op string, cause error) error {
	return &Error{Kind: ErrStoreUnavailable, Msg: op, Err: cause}
}

// Internal wraps any other unexpected store failure.
func Internal(op string, cause error) error {
	return &Error{Kind: ErrInternal, Msg: op, Err: cause}
}
