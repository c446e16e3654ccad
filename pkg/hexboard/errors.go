package hexboard

import "errors"

var (
	// ErrInvalidCoordinate is returned for a node, edge or hex outside the
	// topology's coordinate domain, or a coordinate of the wrong kind.
	ErrInvalidCoordinate = errors.New("invalid coordinate")
	// ErrIllegalPlacement is returned when a piece is placed where it may not stand.
	ErrIllegalPlacement = errors.New("illegal placement")
	// ErrInconsistentRemoval is returned when the piece being removed is not on the board.
	ErrInconsistentRemoval = errors.New("inconsistent removal")
	ErrUnknownPlayer       = errors.New("unknown player")
	ErrNoPiecesLeft        = errors.New("no pieces left")
	ErrInvariantViolation  = errors.New("invariant violation")
)
