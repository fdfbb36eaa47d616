package errors

import stderrors "errors"

// Is is errors.Is from the standard library, re-exported so callers
// importing this package do not need a second alias.
func Is(err, target error) bool { return stderrors.Is(err, target) }

// As is errors.As from the standard library.
func As(err error, target interface{}) bool { return stderrors.As(err, target) }
