package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrBackendUnavailable marks a retrieval backend that is not
	// configured or not reachable; the controller routes around it.
	ErrBackendUnavailable = errors.New("retrieval backend unavailable")

	// ErrProviderTimeout marks an external call that exceeded its
	// deadline; handled the same way as ErrBackendUnavailable.
	ErrProviderTimeout = errors.New("provider timeout")

	// ErrNoContext means chunking produced zero chunks for the
	// transcript; the request cannot be answered.
	ErrNoContext = errors.New("no context available")

	// ErrGenerationFailed means the generative model returned an
	// empty result or an error.
	ErrGenerationFailed = errors.New("generation failed")

	// ErrNoAnswer is the terminal failure after every retrieval path
	// has been exhausted.
	ErrNoAnswer = errors.New("no answer available")

	ErrInvalidInput = errors.New("invalid input")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}

// Unavailable reports whether err should make the controller skip the
// current retrieval path instead of failing the request. Timeouts and
// unreachable backends are treated identically.
func Unavailable(err error) bool {
	return errors.Is(err, ErrBackendUnavailable) || errors.Is(err, ErrProviderTimeout)
}
