package lobby

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"staredown/internal/app"
	"staredown/internal/domain"
	"staredown/internal/ports"
	"staredown/internal/session"
)

const maxRoomCodeAttempts = 32

type roomEntry struct {
	mu     sync.Mutex
	room   *domain.Room
	closed bool // deleted from the registry; callers holding the entry must treat it as gone
}

// Registry owns every live room. Rooms are independent: each has its own
// lock, and the registry map lock is never held while a room lock is being
// acquired.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*roomEntry

	svc         *app.Service
	sessions    *session.Registry
	notifier    ports.Notifier
	logger      *zap.Logger
	now         func() time.Time
	policy      Policy
	newRoomCode func() (string, error)
	newPlayerID func() string
}

// Joined is returned by CreateRoom and JoinRoom.
type Joined struct {
	RoomID   string         `json:"roomId"`
	PlayerID string         `json:"playerId"`
	Players  []app.SeatView `json:"players"`
}

// RoomInfo is a public listing entry.
type RoomInfo struct {
	RoomID      string   `json:"roomId"`
	PlayerCount int      `json:"playerCount"`
	GameStarted bool     `json:"gameStarted"`
	Players     []string `json:"players"`
}

// Stats are registry-wide counters.
type Stats struct {
	Rooms    int `json:"rooms"`
	Sessions int `json:"sessions"`
	Players  int `json:"players"`
}

// NewRegistry constructs an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		rooms:       make(map[string]*roomEntry),
		svc:         app.NewService(nil),
		sessions:    session.NewRegistry(),
		notifier:    ports.NopNotifier{},
		logger:      zap.NewNop(),
		now:         time.Now,
		policy:      DefaultPolicy(),
		newRoomCode: generateRoomCode,
		newPlayerID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Sessions exposes the session registry backing this lobby.
func (r *Registry) Sessions() *session.Registry {
	return r.sessions
}

// Touch records client liveness without any room operation.
func (r *Registry) Touch(token string) {
	r.sessions.Touch(token, r.now())
}

// CreateRoom opens a room seated with its creator, who becomes the dealer.
func (r *Registry) CreateRoom(token, name string) (Joined, error) {
	now := r.now()
	r.sessions.Touch(token, now)

	playerID := r.newPlayerID()
	creator := domain.NewPlayer(playerID, DisplayName(name, playerID))

	r.mu.Lock()
	code, err := r.unusedCodeLocked()
	if err != nil {
		r.mu.Unlock()
		r.logger.Error("room code generation failed", zap.Error(err))
		return Joined{}, app.ErrInternal
	}
	room := domain.NewRoom(code, creator, now)
	r.rooms[code] = &roomEntry{room: room}
	r.mu.Unlock()

	r.sessions.Bind(token, code, playerID, now)
	r.logger.Info("room created", zap.String("room", code), zap.String("player", playerID))

	return Joined{RoomID: code, PlayerID: playerID, Players: app.Roster(room)}, nil
}

func (r *Registry) unusedCodeLocked() (string, error) {
	for i := 0; i < maxRoomCodeAttempts; i++ {
		code, err := r.newRoomCode()
		if err != nil {
			return "", err
		}
		code = NormalizeRoomCode(code)
		if _, taken := r.rooms[code]; !taken && code != "" {
			return code, nil
		}
	}
	return "", fmt.Errorf("no unused room code after %d attempts", maxRoomCodeAttempts)
}

// JoinRoom seats a new player at the end of the ring.
func (r *Registry) JoinRoom(token, roomID, name string) (Joined, error) {
	playerID := r.newPlayerID()
	pl := domain.NewPlayer(playerID, DisplayName(name, playerID))

	var out Joined
	err := r.mutate(token, roomID, "join_room", func(room *domain.Room, now time.Time) ([]app.Event, error) {
		evs, err := r.svc.Join(room, pl, now)
		if err != nil {
			return nil, err
		}
		out = Joined{RoomID: room.ID, PlayerID: playerID, Players: app.Roster(room)}
		return evs, nil
	})
	if err != nil {
		return Joined{}, err
	}
	r.sessions.Bind(token, out.RoomID, playerID, r.now())
	return out, nil
}

// LeaveRoom vacates a seat. The room is deleted once nobody is left.
func (r *Registry) LeaveRoom(token, roomID, playerID string) error {
	err := r.mutate(token, roomID, "leave_room", func(room *domain.Room, now time.Time) ([]app.Event, error) {
		return r.svc.Leave(room, playerID, now)
	})
	if err != nil {
		return err
	}
	r.sessions.UnbindSeat(NormalizeRoomCode(roomID), playerID)
	return nil
}

// StartGame deals a new game.
func (r *Registry) StartGame(token, roomID, playerID string) error {
	return r.mutate(token, roomID, "start_game", func(room *domain.Room, now time.Time) ([]app.Event, error) {
		return r.svc.StartGame(room, playerID, now)
	})
}

// PlayAgain deals the next game after one has ended.
func (r *Registry) PlayAgain(token, roomID, playerID string) error {
	return r.mutate(token, roomID, "play_again", func(room *domain.Room, now time.Time) ([]app.Event, error) {
		return r.svc.StartGame(room, playerID, now)
	})
}

// PlayCards plays the cards identified by cardIDs from playerID's hand.
func (r *Registry) PlayCards(token, roomID, playerID string, cardIDs []string) error {
	return r.mutate(token, roomID, "play_cards", func(room *domain.Room, now time.Time) ([]app.Event, error) {
		return r.svc.PlayCards(room, playerID, cardIDs, now)
	})
}

// PassTurn passes playerID's turn.
func (r *Registry) PassTurn(token, roomID, playerID string) error {
	return r.mutate(token, roomID, "pass_turn", func(room *domain.Room, now time.Time) ([]app.Event, error) {
		return r.svc.PassTurn(room, playerID, now)
	})
}

// Drain empties playerID's outbox and returns it with a consistent snapshot
// of the room. Draining twice with nothing in between yields no messages the
// second time.
func (r *Registry) Drain(token, roomID, playerID string) (Update, error) {
	r.sessions.Touch(token, r.now())

	e, ok := r.lookup(roomID)
	if !ok {
		return Update{}, app.ErrRoomNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return Update{}, app.ErrRoomNotFound
	}
	pl, ok := e.room.Player(playerID)
	if !ok {
		return Update{}, app.ErrNotSeated
	}
	return Update{Messages: pl.Outbox.Drain(), State: snapshot(e.room, pl)}, nil
}

// Rooms lists every live room ordered by code.
func (r *Registry) Rooms() []RoomInfo {
	entries := r.entries()
	out := make([]RoomInfo, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		if !e.closed {
			out = append(out, RoomInfo{
				RoomID:      e.room.ID,
				PlayerCount: len(e.room.Players),
				GameStarted: e.room.GameStarted(),
				Players:     lo.Map(e.room.Players, func(p *domain.Player, _ int) string { return p.Name }),
			})
		}
		e.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RoomID < out[j].RoomID })
	return out
}

// Stats returns registry counters.
func (r *Registry) Stats() Stats {
	st := Stats{Sessions: r.sessions.Len()}
	for _, e := range r.entries() {
		e.mu.Lock()
		if !e.closed {
			st.Rooms++
			st.Players += len(e.room.Players)
		}
		e.mu.Unlock()
	}
	return st
}

func (r *Registry) lookup(roomID string) (*roomEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.rooms[NormalizeRoomCode(roomID)]
	return e, ok
}

func (r *Registry) entries() []*roomEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Values(r.rooms)
}

// remove deletes a closed entry. Called with the entry lock held.
func (r *Registry) remove(e *roomEntry) {
	e.closed = true
	r.mu.Lock()
	if cur, ok := r.rooms[e.room.ID]; ok && cur == e {
		delete(r.rooms, e.room.ID)
	}
	r.mu.Unlock()
}

type mutation func(room *domain.Room, now time.Time) ([]app.Event, error)

// mutate runs fn under the room lock, fans the resulting events out to the
// recipients' outboxes, and signals the notifier once the lock is released.
func (r *Registry) mutate(token, roomID, op string, fn mutation) error {
	now := r.now()
	r.sessions.Touch(token, now)

	e, ok := r.lookup(roomID)
	if !ok {
		return app.ErrRoomNotFound
	}

	id, notify, err := r.apply(e, op, now, fn)
	if err != nil {
		r.logger.Debug("room operation rejected",
			zap.String("op", op), zap.String("room", e.room.ID), zap.Error(err))
		return err
	}
	if len(notify) > 0 {
		r.notifier.Notify(id, notify)
	}
	return nil
}

func (r *Registry) apply(e *roomEntry, op string, now time.Time, fn mutation) (roomID string, notify []string, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	roomID = e.room.ID
	if e.closed {
		return roomID, nil, app.ErrRoomNotFound
	}

	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("room operation panicked",
				zap.String("op", op), zap.String("room", roomID), zap.Any("panic", p), zap.Stack("stack"))
			notify, err = nil, app.ErrInternal
		}
	}()

	evs, err := fn(e.room, now)
	if err != nil {
		return roomID, nil, err
	}

	notify = r.dispatch(e.room, evs, now)
	r.logEvents(roomID, evs)

	if len(e.room.Players) == 0 {
		r.remove(e)
		r.logger.Info("room deleted", zap.String("room", roomID), zap.String("reason", "empty"))
	}
	return roomID, notify, nil
}

// dispatch appends every event to its recipients' outboxes; events without
// explicit recipients go to every seated player. It returns the ids that
// received at least one message, in seat order.
func (r *Registry) dispatch(room *domain.Room, evs []app.Event, now time.Time) []string {
	touched := make(map[string]bool, len(room.Players))
	for _, ev := range evs {
		recipients := ev.Recipients
		if recipients == nil {
			recipients = lo.Map(room.Players, func(p *domain.Player, _ int) string { return p.ID })
		}
		for _, id := range recipients {
			pl, ok := room.Player(id)
			if !ok {
				continue
			}
			pl.Outbox.Push(string(ev.Kind), ev.Payload, now)
			touched[id] = true
		}
	}
	return lo.FilterMap(room.Players, func(p *domain.Player, _ int) (string, bool) {
		return p.ID, touched[p.ID]
	})
}

func (r *Registry) logEvents(roomID string, evs []app.Event) {
	for _, ev := range evs {
		switch ev.Kind {
		case app.EventGameStarted:
			p := ev.Payload.(app.GameStartedPayload)
			r.logger.Info("game started",
				zap.String("room", roomID), zap.String("dealer", p.DealerID), zap.Int("players", len(p.Players)))
		case app.EventGameEnded:
			p := ev.Payload.(app.GameEndedPayload)
			r.logger.Info("game ended",
				zap.String("room", roomID), zap.String("winner", p.WinnerID), zap.String("special", string(p.SpecialResult)))
		}
	}
}
