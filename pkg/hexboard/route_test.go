package hexboard

import "testing"

func TestLongestRoute_Empty(t *testing.T) {
	if n, paths := LongestRoute(View{}, 0, nil); n != 0 || paths != nil {
		t.Errorf("expected 0 and no paths, got %d and %v", n, paths)
	}
	g := RoadGraph{0: {1: 0}, 1: {0: 0}}
	if n, _ := LongestRoute(View{}, 0, g); n != 0 {
		t.Errorf("a nil topology has no routes, got %d", n)
	}
}

func TestLongestRoute_Fork(t *testing.T) {
	l := StandardLayout()
	b := newTestBoard(t, l, 1, WithPhase(PhasePlay))
	_, sides := ring(t, l, 0, 0)
	out0, _ := outward(t, l, 0, 0, 0)

	// Two arms of 2 and a stub of 1 meet at corner 0.
	for _, e := range []EdgeID{sides[0], sides[1], sides[5], sides[4], out0} {
		mustPlace(t, b, Road, 0, int(e))
	}
	p := mustPlayer(t, b, 0)
	if p.LongestRouteLength() != 4 {
		t.Errorf("expected 4 along the two arms, got %d", p.LongestRouteLength())
	}
	assertDisjoint(t, p.RoutePaths())
}

func TestLongestRoute_FigureEight(t *testing.T) {
	l := StandardLayout()
	b := newTestBoard(t, l, 1, WithPhase(PhasePlay))
	_, left := ring(t, l, 0, 0)
	_, right := ring(t, l, 1, 0)

	// The two rings share one side, so 11 roads in all.
	placed := make(map[EdgeID]bool)
	for _, e := range append(left[:], right[:]...) {
		if !placed[e] {
			placed[e] = true
			mustPlace(t, b, Road, 0, int(e))
		}
	}
	p := mustPlayer(t, b, 0)
	if p.RouteCount() != 11 {
		t.Fatalf("expected 11 roads, got %d", p.RouteCount())
	}
	// Only the two ends of the shared side have odd degree, so one trail
	// covers every road.
	if p.LongestRouteLength() != 11 {
		t.Errorf("expected 11, got %d", p.LongestRouteLength())
	}
	assertDisjoint(t, p.RoutePaths())
}

func TestLongestRoute_OwnBuildingDoesNotBlock(t *testing.T) {
	l := StandardLayout()
	b := newTestBoard(t, l, 2, WithPhase(PhasePlay))
	corners, sides := ring(t, l, 0, 0)
	for i := range 3 {
		mustPlace(t, b, Road, 0, int(sides[i]))
	}
	mustPlace(t, b, Settlement, 0, int(corners[1]))
	if got := mustPlayer(t, b, 0).LongestRouteLength(); got != 3 {
		t.Errorf("own settlement should not cut the route, got %d", got)
	}
	// A foreign settlement at the end only ends the route there.
	mustPlace(t, b, Settlement, 1, int(corners[3]))
	if got := mustPlayer(t, b, 0).LongestRouteLength(); got != 3 {
		t.Errorf("a foreign settlement at the end keeps 3, got %d", got)
	}
}

func TestRetainPath(t *testing.T) {
	a := RoutePath{Length: 3, Edges: []EdgeID{1, 2, 3}}
	b := RoutePath{Length: 2, Edges: []EdgeID{3, 4}}
	c := RoutePath{Length: 1, Edges: []EdgeID{9}}
	d := RoutePath{Length: 3, Edges: []EdgeID{4, 5, 6}}

	kept := retainPath(nil, a)
	kept = retainPath(kept, b)
	if len(kept) != 1 || kept[0].Length != 3 {
		t.Fatalf("a shorter overlapping path should be dropped, got %v", kept)
	}
	kept = retainPath(kept, c)
	if len(kept) != 2 {
		t.Fatalf("a disjoint path should be kept, got %v", kept)
	}
	kept = retainPath(kept, RoutePath{Length: 3, Edges: []EdgeID{3, 7, 8}})
	if len(kept) != 2 || kept[1].Edges[0] != 3 {
		t.Errorf("an equal overlapping path replaces the old one, got %v", kept)
	}
	kept = retainPath(kept, d)
	if len(kept) != 3 {
		t.Errorf("expected 3 disjoint paths, got %v", kept)
	}
	assertDisjoint(t, kept)
}

func assertDisjoint(t *testing.T, paths []RoutePath) {
	t.Helper()
	for i := range paths {
		if paths[i].Length == 0 || paths[i].Length != len(paths[i].Edges) {
			t.Errorf("path %v has a bad length", paths[i])
		}
		for j := i + 1; j < len(paths); j++ {
			if paths[i].overlaps(paths[j]) {
				t.Errorf("kept paths %v and %v share an edge", paths[i], paths[j])
			}
		}
	}
}
