package tabula

import (
	"errors"
	"fmt"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
)

// Effect errors
var (
	// ErrInvalidEffectOptions indicates that the options given to an effect do
	// not match the option set its type prescribes.
	ErrInvalidEffectOptions = errors.New("invalid effect options")

	// ErrIncompatibleEffect indicates that an effect cannot coexist with an
	// effect already attached to the note.
	ErrIncompatibleEffect = errors.New("incompatible effect")

	// ErrUnknownEffect indicates an effect type name that is not recognized.
	ErrUnknownEffect = errors.New("unknown effect type")

	// ErrNoFret indicates an effect that needs a fretted note was applied to an
	// empty slot.
	ErrNoFret = errors.New("note has no fret")
)

// Structure errors
var (
	// ErrUnknownDuration indicates a duration value outside the supported set.
	ErrUnknownDuration = errors.New("unknown duration")

	// ErrInvalidTuplet indicates a tuplet ratio or membership that is not valid.
	ErrInvalidTuplet = errors.New("invalid tuplet")

	// ErrInvalidGuitar indicates a guitar with no strings or a tuning that does
	// not match its string count.
	ErrInvalidGuitar = errors.New("invalid guitar")

	// ErrInvalidPosition indicates a string, fret or index out of bounds.
	ErrInvalidPosition = errors.New("position out of bounds")
)

// Object boundary errors
var (
	// ErrMissingField indicates that a required field is absent from a plain
	// object being deserialized.
	ErrMissingField = errors.New("missing required field")

	// ErrInvalidField indicates that a field is present but has the wrong type
	// or an unacceptable value.
	ErrInvalidField = errors.New("invalid field")
)

// invalid wraps a sentinel into a validation error carrying a formatted
// message for the caller.
func invalid(sentinel error, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	return fault.Wrap(sentinel,
		fmsg.WithDesc(msg, msg),
		ftag.With(ftag.InvalidArgument),
	)
}

// IsValidation reports whether err is a validation error, i.e. one that
// rejects an operation while leaving the document untouched.
func IsValidation(err error) bool {
	return err != nil && ftag.Get(err) == ftag.InvalidArgument
}
