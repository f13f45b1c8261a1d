package httpapi

import (
	"fmt"

	"staredown/internal/app"
	"staredown/internal/lobby"
)

type ack struct {
	Success bool   `json:"success"`
	Type    string `json:"type,omitempty"`
}

type joinedResponse struct {
	Success bool `json:"success"`
	lobby.Joined
}

type updatesResponse struct {
	Success bool `json:"success"`
	lobby.Update
}

// Lobby is the slice of the room registry the transports drive.
type Lobby interface {
	Touch(token string)
	CreateRoom(token, name string) (lobby.Joined, error)
	JoinRoom(token, roomID, name string) (lobby.Joined, error)
	LeaveRoom(token, roomID, playerID string) error
	StartGame(token, roomID, playerID string) error
	PlayAgain(token, roomID, playerID string) error
	PlayCards(token, roomID, playerID string, cardIDs []string) error
	PassTurn(token, roomID, playerID string) error
	Drain(token, roomID, playerID string) (lobby.Update, error)
	Rooms() []lobby.RoomInfo
	Stats() lobby.Stats
}

var _ Lobby = (*lobby.Registry)(nil)

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", app.ErrMalformedRequest, fmt.Sprintf(format, args...))
}

func requireSeat(req request) error {
	if req.RoomID == "" {
		return malformed("roomId is required")
	}
	if req.PlayerID == "" {
		return malformed("playerId is required")
	}
	return nil
}

// dispatch runs one action envelope against the lobby and returns the
// success body.
func dispatch(l Lobby, token string, req request) (any, error) {
	switch req.Action {
	case ActionCreateRoom:
		j, err := l.CreateRoom(token, req.PlayerName)
		if err != nil {
			return nil, err
		}
		return joinedResponse{Success: true, Joined: j}, nil

	case ActionJoinRoom:
		if req.RoomID == "" {
			return nil, malformed("roomId is required")
		}
		j, err := l.JoinRoom(token, req.RoomID, req.PlayerName)
		if err != nil {
			return nil, err
		}
		return joinedResponse{Success: true, Joined: j}, nil

	case ActionGetUpdates:
		if err := requireSeat(req); err != nil {
			return nil, err
		}
		u, err := l.Drain(token, req.RoomID, req.PlayerID)
		if err != nil {
			return nil, err
		}
		return updatesResponse{Success: true, Update: u}, nil
	}

	if err := requireSeat(req); err != nil {
		return nil, err
	}

	var err error
	switch req.Action {
	case ActionLeaveRoom:
		err = l.LeaveRoom(token, req.RoomID, req.PlayerID)
		return ack{Success: err == nil, Type: "left_room"}, err
	case ActionStartGame:
		err = l.StartGame(token, req.RoomID, req.PlayerID)
		return ack{Success: err == nil, Type: "game_started"}, err
	case ActionPlayAgain:
		err = l.PlayAgain(token, req.RoomID, req.PlayerID)
		return ack{Success: err == nil, Type: "game_started"}, err
	case ActionPlayCards:
		err = l.PlayCards(token, req.RoomID, req.PlayerID, req.Cards)
		return ack{Success: err == nil}, err
	case ActionPassTurn:
		err = l.PassTurn(token, req.RoomID, req.PlayerID)
		return ack{Success: err == nil}, err
	default:
		return nil, malformed("unknown action %q", req.Action)
	}
}
