package plotting

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument reports a malformed center, radius, style or layout.
	ErrInvalidArgument = errors.New("plotting: invalid argument")

	// ErrEnvironment reports that no surface could be allocated, either
	// because no backend is bound or because the backend refused.
	ErrEnvironment = errors.New("plotting: environment error")

	// ErrReleased is returned by axes whose figure has been closed.
	ErrReleased = errors.New("plotting: figure released")
)

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

func environmentf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrEnvironment, fmt.Sprintf(format, args...))
}

// InvalidArgument builds an error matching ErrInvalidArgument, for backends.
func InvalidArgument(format string, args ...any) error {
	return invalidf(format, args...)
}

// EnvironmentError builds an error matching ErrEnvironment, for backends.
func EnvironmentError(format string, args ...any) error {
	return environmentf(format, args...)
}
