package ports

// Notifier signals transports that a room produced new updates.
type Notifier interface {
	// Notify is called after a room mutation has been committed, outside the
	// room lock. playerIDs are the seats whose outboxes received messages.
	// Implementations must not block on slow clients.
	Notify(roomID string, playerIDs []string)
}

// NopNotifier drops every signal; polling clients still see updates on drain.
type NopNotifier struct{}

// Notify implements Notifier.
func (NopNotifier) Notify(string, []string) {}

var _ Notifier = NopNotifier{}
