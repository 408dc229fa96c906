package taskgroup

import "errors"

// Policy decides which error a failed group reports from Wait.
type Policy interface {
	// Aggregate receives the first recorded failure and every failure
	// observed by the group, in observation order, and returns the error the
	// group surfaces.
	Aggregate(first error, failures []error) error
}

// FirstWins reports only the first recorded failure; later failures are
// observed but discarded.
func FirstWins() Policy { return firstWins{} }

// CollectAll reports every observed failure joined into one error.
func CollectAll() Policy { return collectAll{} }

type firstWins struct{}

func (firstWins) Aggregate(first error, _ []error) error { return first }

type collectAll struct{}

func (collectAll) Aggregate(_ error, failures []error) error { return errors.Join(failures...) }
