package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrMissingField      = errors.New("missing required field")
	ErrMalformedPosition = errors.New("malformed position")
)

// FatalError marks an error past the point of in-cycle recovery, for example
// an exhausted fetch retry budget. Whether the watch loop stops on a failed
// cycle is decided by the watch.on_failure policy, not by the kind: FatalError
// tells the operator the cycle gave up retrying, while the policy says what
// happens next.
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string {
	return "fatal: " + e.Err.Error()
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// Fatal wraps err as a FatalError. It returns nil when err is nil.
func Fatal(err error) error {
	if err == nil {
		return nil
	}
	return &FatalError{Err: err}
}

// IsFatal reports whether any error in err's chain is a FatalError.
func IsFatal(err error) bool {
	var fe *FatalError
	return errors.As(err, &fe)
}
