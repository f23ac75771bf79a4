package editor

import (
	"errors"
	"fmt"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
)

var (
	// ErrNotFound indicates a command addressing a beat or bar that is not
	// in the track.
	ErrNotFound = errors.New("not found")

	// ErrEmptyClipboard indicates a paste with nothing copied.
	ErrEmptyClipboard = errors.New("clipboard is empty")

	// ErrNothingSelected indicates a command given an empty selection.
	ErrNothingSelected = errors.New("nothing selected")
)

func rejected(sentinel error, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	return fault.Wrap(sentinel,
		fmsg.WithDesc(msg, msg),
		ftag.With(ftag.InvalidArgument),
	)
}
