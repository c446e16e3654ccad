// Package export writes board feature datasets as Parquet files.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"
	"gorgonia.org/tensor"

	"github.com/freeeve/hexboard/internal/bot/features"
	"github.com/freeeve/hexboard/pkg/hexboard"
)

const (
	schemaVersion = "board_features_v1"

	// edgeIndexKey holds the JSON-encoded (2, EdgeCount) endpoint table of
	// the board the rows were recorded on.
	edgeIndexKey = "edge_index"
)

// ErrNoEdgeIndex is returned by ReadEdgeIndex for files written without a
// topology.
var ErrNoEdgeIndex = errors.New("no edge index in file")

// FeatureRow is one training sample: a player's view of the board before a
// move, the move taken and the player's final score.
type FeatureRow struct {
	GameID    string    `parquet:"game_id,dict"`
	Seq       int64     `parquet:"seq"`
	Player    int32     `parquet:"player"`
	Phase     string    `parquet:"phase,dict"`
	Nodes     []float32 `parquet:"nodes"`
	Edges     []float32 `parquet:"edges"`
	Global    []float32 `parquet:"global"`
	MoveKind  string    `parquet:"move_kind,dict"`
	MoveCoord int32     `parquet:"move_coord"`
	FinalVP   int32     `parquet:"final_vp"`
}

// NewRow encodes player's view of b before move.
func NewRow(gameID string, seq int64, b *hexboard.Board, player hexboard.PlayerID, move hexboard.Piece) (FeatureRow, error) {
	enc, err := features.Encode(b, player)
	if err != nil {
		return FeatureRow{}, fmt.Errorf("feature row: %w", err)
	}
	return FeatureRow{
		GameID:    gameID,
		Seq:       seq,
		Player:    int32(player),
		Phase:     string(b.Phase()),
		Nodes:     enc.Nodes.Data().([]float32),
		Edges:     enc.Edges.Data().([]float32),
		Global:    enc.Global.Data().([]float32),
		MoveKind:  string(move.Kind),
		MoveCoord: int32(move.Coord),
	}, nil
}

// WriteParquet writes rows to outPath through a temp file and an atomic
// rename. When topo is not nil its edge index is stored in the file metadata.
func WriteParquet(outPath string, topo hexboard.Topology, rows []FeatureRow) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	opts := []parquet.WriterOption{
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}),
		parquet.KeyValueMetadata("schema", schemaVersion),
	}
	if topo != nil {
		index, err := json.Marshal(features.EdgeIndex(topo).Data())
		if err != nil {
			return fmt.Errorf("encode edge index: %w", err)
		}
		opts = append(opts, parquet.KeyValueMetadata(edgeIndexKey, string(index)))
	}

	tmpPath := outPath + ".tmp"
	_ = os.Remove(tmpPath)

	if err := parquet.WriteFile(tmpPath, rows, opts...); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write parquet: %w", err)
	}
	if err := os.Rename(tmpPath, outPath); err != nil {
		return fmt.Errorf("rename parquet: %w", err)
	}
	return nil
}

// ReadParquet loads every row of a file written by WriteParquet.
func ReadParquet(path string) ([]FeatureRow, error) {
	var rows []FeatureRow
	err := withFile(path, func(pf *parquet.File) error {
		reader := parquet.NewGenericReader[FeatureRow](pf)
		defer reader.Close()

		rows = make([]FeatureRow, reader.NumRows())
		n, err := reader.Read(rows)
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("read parquet: %w", err)
		}
		rows = rows[:n]
		return nil
	})
	return rows, err
}

// ReadEdgeIndex returns the (2, EdgeCount) endpoint tensor stored with the
// rows of a file.
func ReadEdgeIndex(path string) (*tensor.Dense, error) {
	var dense *tensor.Dense
	err := withFile(path, func(pf *parquet.File) error {
		v, ok := pf.Lookup(edgeIndexKey)
		if !ok {
			return ErrNoEdgeIndex
		}
		var data []int64
		if err := json.Unmarshal([]byte(v), &data); err != nil {
			return fmt.Errorf("decode edge index: %w", err)
		}
		if len(data)%2 != 0 {
			return fmt.Errorf("edge index has odd length %d", len(data))
		}
		dense = tensor.New(
			tensor.WithShape(2, len(data)/2),
			tensor.Of(tensor.Int64),
			tensor.WithBacking(data),
		)
		return nil
	})
	return dense, err
}

func withFile(path string, fn func(*parquet.File) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return err
	}
	pf, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		return fmt.Errorf("open parquet: %w", err)
	}
	if v, ok := pf.Lookup("schema"); ok && v != schemaVersion {
		return fmt.Errorf("unsupported schema %q", v)
	}
	return fn(pf)
}
