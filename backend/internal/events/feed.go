package events

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/Jamshid777/exwebfullstack/backend/internal/models"
)

// SnapshotFunc loads the current balances for the periodic dashboard feed.
type SnapshotFunc func(ctx context.Context) ([]*models.Balance, error)

// Updates carries feed events to the hub.
var Updates = make(chan Event, 100) // Buffered channel

// InitFeed starts the background loop that periodically snapshots balances
// and pushes them onto the feed, so freshly connected dashboards converge
// without replaying history.
func InitFeed(interval time.Duration, snapshot SnapshotFunc, log zerolog.Logger) {
	log.Info().Dur("interval", interval).Msg("Initializing balance feed")
	go runFeed(interval, snapshot, log)
}

func runFeed(interval time.Duration, snapshot SnapshotFunc, log zerolog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		balances, err := snapshot(ctx)
		cancel()
		if err != nil {
			log.Error().Err(err).Msg("Balance feed snapshot failed")
			continue
		}

		event := Event{
			Type:    "balances",
			Payload: balances,
			Ts:      time.Now().UnixMilli(),
		}

		// Non-blocking send to avoid blocking the feed if the channel is full
		select {
		case Updates <- event:
		default:
			log.Warn().Msg("Feed channel full, dropping balance snapshot")
		}
	}
}
