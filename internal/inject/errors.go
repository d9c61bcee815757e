package inject

import (
	"errors"
	"fmt"
)

// ErrPromptRequired is returned when resolution needs interactive input but
// prompting is disabled.
var ErrPromptRequired = errors.New("interactive input required (re-run without --no-prompt)")

// PreconditionError reports a system state that blocks writing the stores.
type PreconditionError struct {
	Reason string
}

func (e *PreconditionError) Error() string {
	return e.Reason
}

// DiscoveryError reports a Steam artifact that could not be located.
type DiscoveryError struct {
	What string
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("could not locate %s", e.What)
}

// ExeError reports a game executable that failed validation.
type ExeError struct {
	Prefix string
	ExeRel string
}

func (e *ExeError) Error() string {
	return fmt.Sprintf("executable %q under prefix %q is not usable", e.ExeRel, e.Prefix)
}
