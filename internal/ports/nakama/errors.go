package nakama

import (
	"errors"

	"github.com/heroiclabs/nakama-common/runtime"

	"staredown/internal/app"
)

// toRuntimeError maps lobby errors onto Nakama runtime errors. The message is
// the wire kind so clients can switch on it.
func toRuntimeError(err error) error {
	if err == nil {
		return nil
	}
	kind := app.ErrorCode(err)
	var ipe *app.IllegalPlayError
	if errors.As(err, &ipe) {
		kind += ": " + ipe.Reason
	}

	switch {
	case errors.Is(err, app.ErrRoomNotFound):
		return runtime.NewError(kind, codeNotFound)
	case errors.Is(err, app.ErrNotSeated):
		return runtime.NewError(kind, codePermissionDenied)
	case errors.Is(err, app.ErrIllegalPlay), errors.Is(err, app.ErrMalformedRequest):
		return runtime.NewError(kind, codeInvalidArgument)
	case errors.Is(err, app.ErrRoomFull),
		errors.Is(err, app.ErrAlreadyStarted),
		errors.Is(err, app.ErrInsufficientPlayers),
		errors.Is(err, app.ErrNotPlaying),
		errors.Is(err, app.ErrNotYourTurn):
		return runtime.NewError(kind, codeFailedPrecondition)
	default:
		return runtime.NewError("Internal", codeInternal)
	}
}
