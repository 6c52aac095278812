package exam

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownLicense is returned by Setup for a category missing from the catalog.
	ErrUnknownLicense = errors.New("unknown license category")
	// ErrInvalidHandle is returned when a spawner hands back an unset handle.
	ErrInvalidHandle = errors.New("spawner returned an invalid handle")
	// ErrMissingDependency is returned by New when a required collaborator is nil.
	ErrMissingDependency = errors.New("missing dependency")
)

func errMissing(what string) error {
	return fmt.Errorf("%w: %s", ErrMissingDependency, what)
}

// Violation is a failed penalty rule. It ends the trial as failed.
type Violation struct {
	Rule    string
	Message string
}

func (v *Violation) Error() string {
	return fmt.Sprintf("rule %s violated: %s", v.Rule, v.Message)
}
