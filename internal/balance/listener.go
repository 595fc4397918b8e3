package balance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"
)

// Channel is the Postgres NOTIFY channel fired by the schema triggers
// whenever an expense row changes.
const Channel = "ledger_changed"

const (
	minReconnect = 10 * time.Second
	maxReconnect = time.Minute
	pingInterval = 90 * time.Second
)

// Listener invalidates the balance snapshot cache whenever the database
// reports a ledger change. Out-of-order or duplicated notifications are
// harmless: invalidation just forces the next read to refetch current truth.
type Listener struct {
	pql *pq.Listener
	svc *Service
}

// NewListener creates a listener on the ledger change channel.
func NewListener(databaseURL string, svc *Service) *Listener {
	pql := pq.NewListener(databaseURL, minReconnect, maxReconnect, func(event pq.ListenerEventType, err error) {
		if err != nil {
			slog.Error("ledger listener connection event", "event", event, "error", err)
		}
	})
	return &Listener{pql: pql, svc: svc}
}

// Run subscribes and blocks until the context is cancelled.
func (l *Listener) Run(ctx context.Context) error {
	if err := l.pql.Listen(Channel); err != nil {
		return fmt.Errorf("failed to listen on %s: %w", Channel, err)
	}
	defer l.pql.Close()

	slog.Info("listening for ledger changes", "channel", Channel)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case n := <-l.pql.Notify:
			// A nil notification signals a reconnect; changes may have been
			// missed while disconnected, so invalidate either way.
			notificationTotal.Inc()
			l.svc.Invalidate()
			if n != nil {
				slog.Debug("ledger changed", "payload", n.Extra)
			} else {
				slog.Warn("ledger listener reconnected, cache invalidated")
			}
		case <-time.After(pingInterval):
			if err := l.pql.Ping(); err != nil {
				slog.Error("ledger listener ping failed", "error", err)
			}
		}
	}
}
