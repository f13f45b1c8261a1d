package nakama

import (
	"context"
	"sync"

	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"
	"github.com/samber/lo"
)

// Presence counts open realtime sockets per Nakama user. A user may hold
// several sessions at once.
type Presence struct {
	mu    sync.Mutex
	users map[string]int
}

func NewPresence() *Presence {
	return &Presence{users: make(map[string]int)}
}

// SessionStart is registered as the runtime's session-start event.
func (p *Presence) SessionStart(ctx context.Context, logger runtime.Logger, evt *api.Event) {
	uid := userID(ctx)
	if uid == "" {
		return
	}
	p.mu.Lock()
	p.users[uid]++
	p.mu.Unlock()
}

// SessionEnd is registered as the runtime's session-end event.
func (p *Presence) SessionEnd(ctx context.Context, logger runtime.Logger, evt *api.Event) {
	uid := userID(ctx)
	p.mu.Lock()
	defer p.mu.Unlock()
	if n := p.users[uid]; n > 1 {
		p.users[uid] = n - 1
		return
	}
	delete(p.users, uid)
}

// Connected lists users with at least one open socket.
func (p *Presence) Connected() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return lo.Keys(p.users)
}
