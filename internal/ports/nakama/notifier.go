package nakama

import (
	"context"
	"sync"

	"github.com/heroiclabs/nakama-common/runtime"

	"staredown/internal/lobby"
	"staredown/internal/ports"
)

// NotificationSender is the part of runtime.NakamaModule used for pushes.
type NotificationSender interface {
	NotificationSend(ctx context.Context, userID, subject string, content map[string]interface{}, code int, sender string, persistent bool) error
}

type seat struct {
	roomID   string
	playerID string
}

// Pusher implements ports.Notifier by sending a non-persistent Nakama
// notification to the user that owns each updated seat. The client reacts by
// calling drain_updates.
type Pusher struct {
	mu     sync.RWMutex
	owners map[seat]string // seat -> nakama user id

	sender NotificationSender
	logger runtime.Logger
}

var _ ports.Notifier = (*Pusher)(nil)

func NewPusher(sender NotificationSender, logger runtime.Logger) *Pusher {
	return &Pusher{
		owners: make(map[seat]string),
		sender: sender,
		logger: logger,
	}
}

// Bind records that userID plays the given seat.
func (p *Pusher) Bind(roomID, playerID, userID string) {
	if userID == "" {
		return
	}
	p.mu.Lock()
	p.owners[seat{roomID, playerID}] = userID
	p.mu.Unlock()
}

// Unbind forgets a seat.
func (p *Pusher) Unbind(roomID, playerID string) {
	p.mu.Lock()
	delete(p.owners, seat{roomID, playerID})
	p.mu.Unlock()
}

// Prune forgets seats removed by an expiry sweep.
func (p *Pusher) Prune(report lobby.ExpiryReport) {
	if len(report.Rooms) == 0 && len(report.Evicted) == 0 {
		return
	}
	gone := make(map[string]bool, len(report.Rooms))
	for _, id := range report.Rooms {
		gone[id] = true
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for _, b := range report.Evicted {
		delete(p.owners, seat{b.RoomID, b.PlayerID})
	}
	for s := range p.owners {
		if gone[s.roomID] {
			delete(p.owners, s)
		}
	}
}

// Len reports how many seats have a known owner.
func (p *Pusher) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.owners)
}

// Notify implements ports.Notifier.
func (p *Pusher) Notify(roomID string, playerIDs []string) {
	for _, id := range playerIDs {
		p.mu.RLock()
		userID, ok := p.owners[seat{roomID, id}]
		p.mu.RUnlock()
		if !ok {
			continue
		}
		content := map[string]interface{}{
			"roomId":   roomID,
			"playerId": id,
		}
		if err := p.sender.NotificationSend(context.Background(), userID, NotificationSubject, content, NotificationCodeUpdates, "", false); err != nil {
			p.logger.Warn("update notification to %s failed: %v", userID, err)
		}
	}
}
