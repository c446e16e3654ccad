package service

import (
	"context"

	"github.com/freeeve/hexboard/pkg/hexboard"
)

// PlayerSummary is one player's view of the board.
type PlayerSummary struct {
	Player               hexboard.PlayerID    `json:"player"`
	VictoryPoints        int                  `json:"victoryPoints"`
	Remaining            hexboard.Supply      `json:"remaining"`
	Resources            hexboard.ResourceSet `json:"resources"`
	LongestRoute         int                  `json:"longestRoute"`
	PotentialRoads       []hexboard.EdgeID    `json:"potentialRoads"`
	PotentialShips       []hexboard.EdgeID    `json:"potentialShips"`
	PotentialSettlements []hexboard.NodeID    `json:"potentialSettlements"`
	PotentialCities      []hexboard.NodeID    `json:"potentialCities"`
	StartingAreas        []int                `json:"startingAreas,omitempty"`
	SettledAreas         []int                `json:"settledAreas,omitempty"`
}

// BoardSummary is the per-game state reported to clients.
type BoardSummary struct {
	GameID      string            `json:"gameId"`
	Phase       hexboard.Phase    `json:"phase"`
	Seq         int64             `json:"seq"`
	RouteHolder hexboard.PlayerID `json:"routeHolder"`
	RouteLength int               `json:"routeLength"`
	PieceCount  int               `json:"pieceCount"`
	Players     []PlayerSummary   `json:"players"`
}

// Summary reports every player's build options and standing.
func (s *BoardService) Summary(ctx context.Context, gameID string) (*BoardSummary, error) {
	var sum *BoardSummary
	err := s.withBoard(ctx, gameID, func(sess *session) error {
		sum = summarize(sess)
		return nil
	})
	return sum, err
}

func summarize(sess *session) *BoardSummary {
	b := sess.board
	sum := &BoardSummary{
		GameID:      sess.game.ID,
		Phase:       b.Phase(),
		Seq:         sess.seq,
		RouteHolder: sess.holder,
		PieceCount:  len(b.Placements()),
	}
	if p, err := b.Player(sess.holder); err == nil {
		sum.RouteLength = p.LongestRouteLength()
	}
	for _, p := range b.Players() {
		l := p.Ledger()
		sum.Players = append(sum.Players, PlayerSummary{
			Player:        p.ID(),
			VictoryPoints: p.VictoryPoints(),
			Remaining: hexboard.Supply{
				Roads:       l.Remaining(hexboard.Road),
				Settlements: l.Remaining(hexboard.Settlement),
				Cities:      l.Remaining(hexboard.City),
				Ships:       l.Remaining(hexboard.Ship),
			},
			Resources:            p.Resources(),
			LongestRoute:         p.LongestRouteLength(),
			PotentialRoads:       p.PotentialRoads(),
			PotentialShips:       p.PotentialShips(),
			PotentialSettlements: p.PotentialSettlements(),
			PotentialCities:      p.PotentialCities(),
			StartingAreas:        p.StartingAreas(),
			SettledAreas:         p.SettledAreas(),
		})
	}
	return sum
}

// Production returns what each player collects when number is rolled with
// the robber on robber (hexboard.NoHex for none).
func (s *BoardService) Production(ctx context.Context, gameID string, number int, robber hexboard.HexID) ([]hexboard.ResourceSet, error) {
	var out []hexboard.ResourceSet
	err := s.withBoard(ctx, gameID, func(sess *session) error {
		for _, p := range sess.board.Players() {
			out = append(out, p.ResourcesForDiceRoll(number, robber))
		}
		return nil
	})
	return out, err
}
