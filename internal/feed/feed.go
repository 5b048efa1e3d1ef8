// Package feed delivers table-change notifications. Events carry no row
// diff: a subscriber that receives one re-queries the store, so delivery is
// at-least-once and redundant events are harmless.
package feed

import (
	"context"
	"time"
)

// Event signals that rows in Table changed in some way.
type Event struct {
	Table string
	At    time.Time
}

// Source is the single change-feed abstraction. Subscribe returns a channel
// of events for the given table and a release function that must be called
// on teardown; after release the channel is closed and no handler leaks.
// The channel is also closed when ctx is cancelled.
type Source interface {
	Subscribe(ctx context.Context, table string) (<-chan Event, func(), error)
}
