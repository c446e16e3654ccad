package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/freeeve/hexboard/internal/model"
)

func snapshotKey(gameID string) string { return "board:" + gameID + ":snapshot" }
func routesKey(gameID string) string   { return "board:" + gameID + ":routes" }

// SetSnapshot stores the serialized board snapshot.
func (c *Client) SetSnapshot(ctx context.Context, gameID string, snapshot json.RawMessage) error {
	return c.rdb.Set(ctx, snapshotKey(gameID), []byte(snapshot), 0).Err()
}

// GetSnapshot returns the stored snapshot, or nil if none is cached.
func (c *Client) GetSnapshot(ctx context.Context, gameID string) (json.RawMessage, error) {
	data, err := c.rdb.Get(ctx, snapshotKey(gameID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	return json.RawMessage(data), nil
}

// SetRouteLengths replaces the longest-route leaderboard for a game.
func (c *Client) SetRouteLengths(ctx context.Context, gameID string, scores []model.RouteScore) error {
	key := routesKey(gameID)
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		if len(scores) == 0 {
			return nil
		}
		members := make([]redis.Z, len(scores))
		for i, s := range scores {
			members[i] = redis.Z{Score: float64(s.Length), Member: strconv.Itoa(s.Player)}
		}
		pipe.ZAdd(ctx, key, members...)
		return nil
	})
	if err != nil {
		return fmt.Errorf("set route lengths: %w", err)
	}
	return nil
}

// RouteLeaders returns players ordered by longest route, longest first.
func (c *Client) RouteLeaders(ctx context.Context, gameID string) ([]model.RouteScore, error) {
	zs, err := c.rdb.ZRevRangeWithScores(ctx, routesKey(gameID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("route leaders: %w", err)
	}
	scores := make([]model.RouteScore, 0, len(zs))
	for _, z := range zs {
		member, _ := z.Member.(string)
		player, err := strconv.Atoi(member)
		if err != nil {
			return nil, fmt.Errorf("route leaders: bad member %q", member)
		}
		scores = append(scores, model.RouteScore{Player: player, Length: int(z.Score)})
	}
	return scores, nil
}

// DeleteGameData removes all cached state for a game.
func (c *Client) DeleteGameData(ctx context.Context, gameID string) error {
	return c.rdb.Del(ctx, snapshotKey(gameID), routesKey(gameID)).Err()
}
