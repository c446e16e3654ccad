package model

import "time"

// Game status values.
const (
	StatusActive   = "active"
	StatusFinished = "finished"
)

// Event actions recorded in the placement log.
const (
	ActionPlace  = "place"
	ActionRemove = "remove"
	ActionPhase  = "phase"
)

// Game is one tracked board.
type Game struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Layout    string    `json:"layout"`
	Players   int       `json:"players"`
	Phase     string    `json:"phase"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PieceEvent is one entry of a game's ordered placement log. Replaying the
// log in Seq order rebuilds the board.
type PieceEvent struct {
	GameID    string    `json:"game_id"`
	Seq       int64     `json:"seq"`
	Action    string    `json:"action"`
	Kind      string    `json:"kind,omitempty"`
	Owner     int       `json:"owner"`
	Coord     int       `json:"coord"`
	Phase     string    `json:"phase,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// RouteScore is a player's current longest route length.
type RouteScore struct {
	Player int `json:"player"`
	Length int `json:"length"`
}
