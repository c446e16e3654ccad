package export

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"testing"

	"gorgonia.org/tensor"

	"github.com/freeeve/hexboard/internal/bot/features"
	"github.com/freeeve/hexboard/pkg/hexboard"
)

func newRow(t *testing.T, gameID string, seq int64, b *hexboard.Board, player hexboard.PlayerID, move hexboard.Piece) FeatureRow {
	t.Helper()
	row, err := NewRow(gameID, seq, b, player, move)
	if err != nil {
		t.Fatalf("new row: %v", err)
	}
	return row
}

func TestWriteReadParquet(t *testing.T) {
	l := hexboard.StandardLayout()
	b, err := hexboard.NewBoard(l, 2)
	if err != nil {
		t.Fatalf("new board: %v", err)
	}

	h, _ := l.HexAt(0, 1)
	move := hexboard.Piece{Kind: hexboard.Settlement, Owner: 1, Coord: int(l.CornerNode(h, 3))}
	first := newRow(t, "g1", 1, b, 1, move)
	if err := b.Place(move); err != nil {
		t.Fatalf("place: %v", err)
	}
	second := newRow(t, "g1", 2, b, 0, hexboard.Piece{Kind: hexboard.Road, Owner: 0, Coord: 4})
	second.FinalVP = 3

	if got, want := len(first.Nodes), hexboard.StandardNodeCount*features.NumNodeFeatures; got != want {
		t.Errorf("expected %d node values, got %d", want, got)
	}
	if got, want := len(first.Edges), hexboard.StandardEdgeCount*features.NumEdgeFeatures; got != want {
		t.Errorf("expected %d edge values, got %d", want, got)
	}
	if got := len(first.Global); got != features.NumGlobalFeatures {
		t.Errorf("expected %d global values, got %d", features.NumGlobalFeatures, got)
	}

	out := filepath.Join(t.TempDir(), "nested", "features.parquet")
	if err := WriteParquet(out, l, []FeatureRow{first, second}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := os.Stat(out + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temp file should be renamed away, stat err: %v", err)
	}

	rows, err := ReadParquet(out)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].GameID != "g1" || rows[0].MoveKind != "settlement" || rows[0].MoveCoord != int32(move.Coord) {
		t.Errorf("unexpected first row header: %+v", rows[0])
	}
	if !slices.Equal(rows[0].Nodes, first.Nodes) {
		t.Error("node features did not round trip")
	}
	if rows[1].Player != 0 || rows[1].FinalVP != 3 {
		t.Errorf("expected player 0 with final VP 3, got %d and %d", rows[1].Player, rows[1].FinalVP)
	}
	if !slices.Equal(rows[1].Global, second.Global) {
		t.Error("global features did not round trip")
	}

	index, err := ReadEdgeIndex(out)
	if err != nil {
		t.Fatalf("read edge index: %v", err)
	}
	if !index.Shape().Eq(tensor.Shape{2, hexboard.StandardEdgeCount}) {
		t.Errorf("unexpected edge index shape %v", index.Shape())
	}
	if !reflect.DeepEqual(index.Data(), features.EdgeIndex(l).Data()) {
		t.Error("edge index differs from the layout's")
	}
}

func TestNewRowMatchesEncoding(t *testing.T) {
	b, err := hexboard.NewBoard(hexboard.StandardLayout(), 2)
	if err != nil {
		t.Fatalf("new board: %v", err)
	}
	row := newRow(t, "g", 1, b, 0, hexboard.Piece{})

	enc, err := features.Encode(b, 0)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !reflect.DeepEqual(enc.Nodes.Data(), row.Nodes) {
		t.Error("row nodes differ from the encoding")
	}
	if !reflect.DeepEqual(enc.Edges.Data(), row.Edges) {
		t.Error("row edges differ from the encoding")
	}
	if !reflect.DeepEqual(enc.Global.Data(), row.Global) {
		t.Error("row globals differ from the encoding")
	}
}

func TestReadEdgeIndexWithoutTopology(t *testing.T) {
	out := filepath.Join(t.TempDir(), "rows.parquet")
	if err := WriteParquet(out, nil, []FeatureRow{{GameID: "g", Seq: 1}}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := ReadEdgeIndex(out); !errors.Is(err, ErrNoEdgeIndex) {
		t.Errorf("expected ErrNoEdgeIndex, got %v", err)
	}
}

func TestNewRowUnknownPlayer(t *testing.T) {
	b, err := hexboard.NewBoard(hexboard.StandardLayout(), 2)
	if err != nil {
		t.Fatalf("new board: %v", err)
	}
	if _, err := NewRow("g", 1, b, 3, hexboard.Piece{}); err == nil {
		t.Error("expected an error for an unknown player")
	}
}

func TestReadParquetMissing(t *testing.T) {
	if _, err := ReadParquet(filepath.Join(t.TempDir(), "nope.parquet")); err == nil {
		t.Error("expected an error for a missing file")
	}
}
