package service

import "github.com/rs/zerolog/log"

// Event types sent through a Broadcaster.
const (
	EventGameCreated   = "game_created"
	EventPiecePlaced   = "piece_placed"
	EventPieceRemoved  = "piece_removed"
	EventPhaseChanged  = "phase_changed"
	EventRegionSettled = "region_settled"
	EventGameFinished  = "game_finished"
)

// Broadcaster delivers board events to whoever is watching a game.
type Broadcaster interface {
	BroadcastGameEvent(gameID string, eventType string, data any)
}

// NoopBroadcaster discards every event.
type NoopBroadcaster struct{}

func (NoopBroadcaster) BroadcastGameEvent(string, string, any) {}

// LogBroadcaster writes events to the debug log.
type LogBroadcaster struct{}

func (LogBroadcaster) BroadcastGameEvent(gameID, eventType string, data any) {
	log.Debug().
		Str("gameId", gameID).
		Str("event", eventType).
		Interface("data", data).
		Msg("Board event")
}
