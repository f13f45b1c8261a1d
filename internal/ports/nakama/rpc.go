package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/heroiclabs/nakama-common/runtime"

	"staredown/internal/domain"
	"staredown/internal/lobby"
)

// rpcRequest is the payload shared by every game RPC.
type rpcRequest struct {
	RoomID     string          `json:"roomId,omitempty"`
	PlayerID   string          `json:"playerId,omitempty"`
	PlayerName string          `json:"playerName,omitempty"`
	Cards      domain.CardRefs `json:"cards,omitempty"`
}

type rpcAck struct {
	Success bool `json:"success"`
}

type rpcJoined struct {
	Success bool `json:"success"`
	lobby.Joined
}

type rpcUpdates struct {
	Success bool `json:"success"`
	lobby.Update
}

type rpcFunc = func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error)

// Module exposes the room registry as Nakama RPCs. The authenticated user id
// is the session token: RPCs refresh it, and so does an open realtime socket
// at every sweep.
type Module struct {
	reg      *lobby.Registry
	pusher   *Pusher
	presence *Presence
}

func NewModule(reg *lobby.Registry, pusher *Pusher) *Module {
	return &Module{reg: reg, pusher: pusher, presence: NewPresence()}
}

// RegisterEvents tracks realtime sessions so connected users keep their seats.
func RegisterEvents(initializer runtime.Initializer, m *Module) error {
	if err := initializer.RegisterEventSessionStart(m.presence.SessionStart); err != nil {
		return err
	}
	return initializer.RegisterEventSessionEnd(m.presence.SessionEnd)
}

// Sweep refreshes every connected user's session, runs the registry's idle
// expiry and forgets the seats it removed.
func (m *Module) Sweep() lobby.ExpiryReport {
	for _, uid := range m.presence.Connected() {
		m.reg.Touch(uid)
	}
	report := m.reg.ExpireIdle()
	m.pusher.Prune(report)
	return report
}

// RegisterRPCs registers every game RPC with the runtime.
func RegisterRPCs(initializer runtime.Initializer, m *Module) error {
	rpcs := map[string]rpcFunc{
		RpcCreateRoom:   m.CreateRoom,
		RpcJoinRoom:     m.JoinRoom,
		RpcLeaveRoom:    m.LeaveRoom,
		RpcStartGame:    m.StartGame,
		RpcPlayAgain:    m.PlayAgain,
		RpcPlayCards:    m.PlayCards,
		RpcPassTurn:     m.PassTurn,
		RpcDrainUpdates: m.DrainUpdates,
		RpcListRooms:    m.ListRooms,
	}
	for id, fn := range rpcs {
		if err := initializer.RegisterRpc(id, fn); err != nil {
			return err
		}
	}
	return nil
}

func userID(ctx context.Context) string {
	id, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	return id
}

func decode(payload string, needRoom, needPlayer bool) (rpcRequest, error) {
	var req rpcRequest
	if strings.TrimSpace(payload) != "" {
		if err := json.Unmarshal([]byte(payload), &req); err != nil {
			return req, runtime.NewError("MalformedRequest: invalid payload", codeInvalidArgument)
		}
	}
	if needRoom && req.RoomID == "" {
		return req, runtime.NewError("MalformedRequest: roomId is required", codeInvalidArgument)
	}
	if needPlayer && req.PlayerID == "" {
		return req, runtime.NewError("MalformedRequest: playerId is required", codeInvalidArgument)
	}
	return req, nil
}

func encode(v any) (string, error) {
	out, err := json.Marshal(v)
	if err != nil {
		return "", runtime.NewError("Internal", codeInternal)
	}
	return string(out), nil
}

func (m *Module) CreateRoom(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	req, err := decode(payload, false, false)
	if err != nil {
		return "", err
	}
	uid := userID(ctx)
	j, err := m.reg.CreateRoom(uid, req.PlayerName)
	if err != nil {
		logger.Warn("create_room [User:%s]: %v", uid, err)
		return "", toRuntimeError(err)
	}
	m.pusher.Bind(j.RoomID, j.PlayerID, uid)
	logger.Info("create_room [User:%s]: room %s", uid, j.RoomID)
	return encode(rpcJoined{Success: true, Joined: j})
}

func (m *Module) JoinRoom(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	req, err := decode(payload, true, false)
	if err != nil {
		return "", err
	}
	uid := userID(ctx)
	j, err := m.reg.JoinRoom(uid, req.RoomID, req.PlayerName)
	if err != nil {
		logger.Warn("join_room [User:%s]: %v", uid, err)
		return "", toRuntimeError(err)
	}
	m.pusher.Bind(j.RoomID, j.PlayerID, uid)
	return encode(rpcJoined{Success: true, Joined: j})
}

func (m *Module) LeaveRoom(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	req, err := decode(payload, true, true)
	if err != nil {
		return "", err
	}
	if err := m.reg.LeaveRoom(userID(ctx), req.RoomID, req.PlayerID); err != nil {
		return "", toRuntimeError(err)
	}
	m.pusher.Unbind(lobby.NormalizeRoomCode(req.RoomID), req.PlayerID)
	return encode(rpcAck{Success: true})
}

func (m *Module) StartGame(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	return m.seatAction(ctx, payload, func(token string, req rpcRequest) error {
		return m.reg.StartGame(token, req.RoomID, req.PlayerID)
	})
}

func (m *Module) PlayAgain(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	return m.seatAction(ctx, payload, func(token string, req rpcRequest) error {
		return m.reg.PlayAgain(token, req.RoomID, req.PlayerID)
	})
}

func (m *Module) PassTurn(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	return m.seatAction(ctx, payload, func(token string, req rpcRequest) error {
		return m.reg.PassTurn(token, req.RoomID, req.PlayerID)
	})
}

func (m *Module) PlayCards(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	return m.seatAction(ctx, payload, func(token string, req rpcRequest) error {
		return m.reg.PlayCards(token, req.RoomID, req.PlayerID, req.Cards)
	})
}

func (m *Module) DrainUpdates(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	req, err := decode(payload, true, true)
	if err != nil {
		return "", err
	}
	u, err := m.reg.Drain(userID(ctx), req.RoomID, req.PlayerID)
	if err != nil {
		return "", toRuntimeError(err)
	}
	return encode(rpcUpdates{Success: true, Update: u})
}

func (m *Module) ListRooms(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	return encode(m.reg.Rooms())
}

func (m *Module) seatAction(ctx context.Context, payload string, fn func(token string, req rpcRequest) error) (string, error) {
	req, err := decode(payload, true, true)
	if err != nil {
		return "", err
	}
	if err := fn(userID(ctx), req); err != nil {
		return "", toRuntimeError(err)
	}
	return encode(rpcAck{Success: true})
}
