package errors

import (
	stderrors "errors"
	"fmt"
)

// Protocol errors. They signal programmer mistakes and should surface in tests, not in traffic.
var (
	ErrCustomIDTooLong            = fmt.Errorf("custom id too long")
	ErrInvalidEncodedCustomID     = fmt.Errorf("invalid encoded custom id")
	ErrUnknownView                = fmt.Errorf("unknown view")
	ErrNoComponentCallback        = fmt.Errorf("view has no component callback")
	ErrAutocompleteNotImplemented = fmt.Errorf("autocomplete not implemented")
	ErrDeferNotImplemented        = fmt.Errorf("defer not implemented")
	ErrDuplicateCustomIDPrefix    = fmt.Errorf("duplicate custom id prefixes")
	ErrDuplicateCommand           = fmt.Errorf("duplicate command registration")
	ErrRegistrySealed             = fmt.Errorf("registry is sealed")
	ErrInvalidView                = fmt.Errorf("invalid view definition")
	ErrUnknownField               = fmt.Errorf("unknown state field")
	ErrInvalidFieldValue          = fmt.Errorf("invalid state field value")
	ErrInvalidSchema              = fmt.Errorf("invalid state schema")
	ErrNoSendCallback             = fmt.Errorf("view has no send callback")
)

// Runtime errors.
var (
	ErrInvalidSignature     = fmt.Errorf("invalid request signature")
	ErrMissingPermissions   = fmt.Errorf("missing permissions")
	ErrOffloadTimeout       = fmt.Errorf("offloaded continuation timed out")
	ErrContinuationPanic    = fmt.Errorf("continuation panic")
	ErrHandlerPanic         = fmt.Errorf("handler panic")
	ErrUnknownInteraction   = fmt.Errorf("unknown interaction type")
	ErrMalformedInteraction = fmt.Errorf("malformed interaction")
	ErrNoRestClient         = fmt.Errorf("no rest client configured")
	ErrInvalidPublicKey     = fmt.Errorf("invalid public key")
	ErrRateLimited          = fmt.Errorf("rate limited")
	ErrWorkerPanic          = fmt.Errorf("worker panic")
)

// UserError is raised on purpose by handler logic. Its message is shown to the end user as is.
type UserError struct {
	Message string
}

func (e *UserError) Error() string {
	return e.Message
}

// User builds a UserError, formatting like fmt.Sprintf.
func User(format string, args ...any) error {
	return &UserError{Message: fmt.Sprintf(format, args...)}
}

// AsUser reports whether err wraps a UserError.
func AsUser(err error) (*UserError, bool) {
	var u *UserError
	if stderrors.As(err, &u) {
		return u, true
	}
	return nil, false
}
