package corruption

import (
	"errors"
	"fmt"

	"genomecorrupt/internal/vocab"
)

// Error classes. Every error returned by this package matches exactly one of
// them under errors.Is, so callers can tell a bad run configuration apart from
// inconsistent input data.
var (
	ErrConfiguration = errors.New("corruption: configuration error")
	ErrIntegrity     = errors.New("corruption: integrity error")
)

var (
	// ErrUnknownPolicy is returned for a policy name that is not registered.
	ErrUnknownPolicy = fmt.Errorf("%w: unknown policy", ErrConfiguration)
	// ErrTooFewModules is returned when a genome cannot supply the target module count.
	ErrTooFewModules = fmt.Errorf("%w: too few modules", ErrConfiguration)
	// ErrInvalidParams is returned for out-of-range policy parameters.
	ErrInvalidParams = fmt.Errorf("%w: invalid parameters", ErrConfiguration)

	// ErrDegenerateSample is returned when a corrupted vector would be all zero
	// for a genome that has at least one marker.
	ErrDegenerateSample = fmt.Errorf("%w: degenerate sample", ErrIntegrity)
	// ErrUnknownModule is returned when a module is missing from the canonical table.
	ErrUnknownModule = fmt.Errorf("%w: unknown module", ErrIntegrity)
	// ErrUnknownGenome is returned when a genome has no translation or decomposition.
	ErrUnknownGenome = fmt.Errorf("%w: unknown genome", ErrIntegrity)
)

// ErrUnknownMarker is the vocabulary lookup failure. Policies return it
// wrapped as an integrity error; vocab functions called directly return it
// bare.
var ErrUnknownMarker = vocab.ErrUnknownMarker

// IsConfiguration reports whether err is a configuration error.
func IsConfiguration(err error) bool { return errors.Is(err, ErrConfiguration) }

// IsIntegrity reports whether err is an integrity error.
func IsIntegrity(err error) bool { return errors.Is(err, ErrIntegrity) }
