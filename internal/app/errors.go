package app

import (
	"errors"
	"fmt"
)

var (
	ErrRoomNotFound        = errors.New("room not found")
	ErrNotSeated           = errors.New("player not seated in room")
	ErrRoomFull            = errors.New("room is full")
	ErrAlreadyStarted      = errors.New("game already started")
	ErrInsufficientPlayers = errors.New("not enough players to start")
	ErrNotPlaying          = errors.New("game not in progress")
	ErrNotYourTurn         = errors.New("not your turn")
	ErrIllegalPlay         = errors.New("illegal play")
	ErrMalformedRequest    = errors.New("malformed request")
	ErrInternal            = errors.New("internal error")
)

// IllegalPlayError carries the validator's reason. It matches ErrIllegalPlay
// under errors.Is.
type IllegalPlayError struct {
	Reason string
}

func (e *IllegalPlayError) Error() string {
	return fmt.Sprintf("illegal play: %s", e.Reason)
}

func (e *IllegalPlayError) Is(target error) bool {
	return target == ErrIllegalPlay
}

func illegal(reason string) error {
	return &IllegalPlayError{Reason: reason}
}

// ErrorCode maps an error to the kind name transports put on the wire.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrRoomNotFound):
		return "RoomNotFound"
	case errors.Is(err, ErrNotSeated):
		return "NotSeated"
	case errors.Is(err, ErrRoomFull):
		return "RoomFull"
	case errors.Is(err, ErrAlreadyStarted):
		return "AlreadyStarted"
	case errors.Is(err, ErrInsufficientPlayers):
		return "InsufficientPlayers"
	case errors.Is(err, ErrNotPlaying):
		return "NotPlaying"
	case errors.Is(err, ErrNotYourTurn):
		return "NotYourTurn"
	case errors.Is(err, ErrIllegalPlay):
		return "IllegalPlay"
	case errors.Is(err, ErrMalformedRequest):
		return "MalformedRequest"
	default:
		return "Internal"
	}
}
