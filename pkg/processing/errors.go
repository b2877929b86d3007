package processing

import (
	"errors"
	"fmt"
)

// InsufficientDataError signals that a trait (or one of its scopes, e.g. a
// single season) has fewer usable races than its minimum threshold. It maps
// to a nil score, never to 0, and is not a process failure.
type InsufficientDataError struct {
	Trait    string
	Races    int
	Required int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("trait %s: %d races below minimum of %d",
		e.Trait, e.Races, e.Required)
}

func IsInsufficientData(err error) bool {
	var target *InsufficientDataError
	return errors.As(err, &target)
}
