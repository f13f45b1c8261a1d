package lobby

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"staredown/internal/app"
	"staredown/internal/domain"
	"staredown/internal/session"
)

// ExpiryReport summarises one sweep.
type ExpiryReport struct {
	Rooms   []string          // codes of deleted rooms
	Evicted []session.Binding // seats vacated because their session timed out
}

// ExpireIdle evicts seats whose session timed out, then deletes rooms that
// are empty, idle past their tier threshold, or older than the absolute cap.
// A room is never deleted while another operation holds its lock.
func (r *Registry) ExpireIdle() ExpiryReport {
	now := r.now()
	var report ExpiryReport

	for _, ev := range r.sessions.Expire(now, r.policy.SessionTTL) {
		err := r.LeaveRoom("", ev.RoomID, ev.PlayerID)
		switch {
		case err == nil:
			report.Evicted = append(report.Evicted, ev.Binding)
			r.logger.Info("seat evicted",
				zap.String("room", ev.RoomID), zap.String("player", ev.PlayerID), zap.String("reason", "session expired"))
		case errors.Is(err, app.ErrRoomNotFound), errors.Is(err, app.ErrNotSeated):
			// seat already gone
		default:
			r.logger.Warn("seat eviction failed", zap.String("room", ev.RoomID), zap.Error(err))
		}
	}

	for _, e := range r.entries() {
		e.mu.Lock()
		if !e.closed {
			if reason := r.expiryReason(e.room, now); reason != "" {
				r.remove(e)
				report.Rooms = append(report.Rooms, e.room.ID)
				r.logger.Info("room expired", zap.String("room", e.room.ID), zap.String("reason", reason))
			}
		}
		e.mu.Unlock()
	}
	return report
}

func (r *Registry) expiryReason(room *domain.Room, now time.Time) string {
	idle := now.Sub(room.LastActivity)
	switch {
	case len(room.Players) == 0:
		return "empty"
	case r.policy.MaxAge > 0 && now.Sub(room.CreatedAt) > r.policy.MaxAge:
		return "max age"
	case room.GameStarted() && r.policy.StartedIdle > 0 && idle > r.policy.StartedIdle:
		return "idle in game"
	case !room.GameStarted() && r.policy.UnstartedIdle > 0 && idle > r.policy.UnstartedIdle:
		return "idle in lobby"
	}
	return ""
}
