package domain

import "time"

// ChangeMessage is the payload relayed over the notifications fanout when a
// watched table changes. It deliberately carries no row diff: consumers
// re-query the store, so redundant deliveries are harmless.
type ChangeMessage struct {
	Table      string    `json:"table"`
	ObservedAt time.Time `json:"observed_at"`
	Origin     string    `json:"origin"`
}
