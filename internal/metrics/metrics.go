// Package metrics records board operation metrics through the global
// OpenTelemetry meter. Without a configured provider every instrument is a no-op.
package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/freeeve/hexboard/internal/metrics"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// Recorder holds the board instruments.
type Recorder struct {
	placements  metric.Int64Counter
	removals    metric.Int64Counter
	rejections  metric.Int64Counter
	routeLength metric.Int64Histogram
	activeGames metric.Int64ObservableGauge
}

// New creates the instruments. activeGames is polled on each collection and
// may be nil.
func New(activeGames func() int64) (*Recorder, error) {
	m := meter()
	r := &Recorder{}

	var err error
	r.placements, err = m.Int64Counter(
		"hexboard.pieces.placed",
		metric.WithDescription("Pieces placed"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating placements counter: %w", err)
	}

	r.removals, err = m.Int64Counter(
		"hexboard.pieces.removed",
		metric.WithDescription("Pieces removed"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating removals counter: %w", err)
	}

	r.rejections, err = m.Int64Counter(
		"hexboard.operations.rejected",
		metric.WithDescription("Operations rejected by board validation"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating rejections counter: %w", err)
	}

	r.routeLength, err = m.Int64Histogram(
		"hexboard.route.length",
		metric.WithDescription("Longest route length after route changes"),
		metric.WithExplicitBucketBoundaries(0, 2, 5, 8, 11, 15),
	)
	if err != nil {
		return nil, fmt.Errorf("creating route length histogram: %w", err)
	}

	if activeGames != nil {
		r.activeGames, err = m.Int64ObservableGauge(
			"hexboard.games.active",
			metric.WithDescription("Boards held in memory"),
		)
		if err != nil {
			return nil, fmt.Errorf("creating active games gauge: %w", err)
		}
		_, err = m.RegisterCallback(func(_ context.Context, o metric.Observer) error {
			o.ObserveInt64(r.activeGames, activeGames())
			return nil
		}, r.activeGames)
		if err != nil {
			return nil, fmt.Errorf("registering active games callback: %w", err)
		}
	}
	return r, nil
}

func kindAttr(kind string) metric.MeasurementOption {
	return metric.WithAttributes(attribute.String("kind", kind))
}

func (r *Recorder) Placed(ctx context.Context, kind string) {
	if r == nil {
		return
	}
	r.placements.Add(ctx, 1, kindAttr(kind))
}

func (r *Recorder) Removed(ctx context.Context, kind string) {
	if r == nil {
		return
	}
	r.removals.Add(ctx, 1, kindAttr(kind))
}

// Rejected counts a failed operation by its reason.
func (r *Recorder) Rejected(ctx context.Context, op, reason string) {
	if r == nil {
		return
	}
	r.rejections.Add(ctx, 1, metric.WithAttributes(
		attribute.String("op", op),
		attribute.String("reason", reason),
	))
}

func (r *Recorder) RouteLength(ctx context.Context, length int) {
	if r == nil {
		return
	}
	r.routeLength.Record(ctx, int64(length))
}
