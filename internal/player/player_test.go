package player

import (
	"net/http/httptest"
	"slices"
	"testing"

	"github.com/google/uuid"

	"github.com/talgya/polyhex/internal/api"
	"github.com/talgya/polyhex/internal/polyhex"
	"github.com/talgya/polyhex/internal/terrain"
)

const testKey = "secret"

func newTestAPI(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := polyhex.DefaultConfig()
	a, err := polyhex.Spiral(cfg, 1, polyhex.UniformCells(cfg, "elk", "water"))
	if err != nil {
		t.Fatalf("Spiral: %v", err)
	}
	s := &api.Server{Assembly: a, ID: uuid.New(), AdminKey: testKey}
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func uniform(f polyhex.Feature) Candidate {
	c := Candidate{Centre: "elk"}
	for i := range c.Edges {
		c.Edges[i] = f
	}
	return c
}

func TestRotate(t *testing.T) {
	c := Candidate{Edges: [6]polyhex.Feature{"a", "b", "c", "d", "e", "f"}}
	if got := c.Rotate(2).Edges; got != [6]polyhex.Feature{"c", "d", "e", "f", "a", "b"} {
		t.Errorf("Rotate(2) = %v", got)
	}
	if c.Rotate(-1) != c.Rotate(5) || c.Rotate(6) != c {
		t.Error("rotation should wrap")
	}
}

func TestDecideFindsRotation(t *testing.T) {
	slot := BorderSlot{Index: 0, Q: 1, R: 1}
	for i := range slot.Sides {
		slot.Sides[i] = polyhex.Placeholder
	}
	slot.Sides[0] = "water"
	snap := &Snapshot{Border: []BorderSlot{slot}}

	hand := []Candidate{{Centre: "fox", Edges: [6]polyhex.Feature{"forest", "forest", "forest", "water", "forest", "forest"}}}
	d, ok := Decide(snap, hand)
	if !ok {
		t.Fatal("expected a decision")
	}
	if d.Rotation != 3 || d.Matches != 1 {
		t.Errorf("decision = %+v", d)
	}
	if d.Placement.Q != 1 || d.Placement.R != 1 || d.Placement.Edges[0] != "water" {
		t.Errorf("placement = %+v", d.Placement)
	}
}

func TestDecidePrefersBetterCandidate(t *testing.T) {
	slot := BorderSlot{Sides: [6]polyhex.Feature{"water", "water", polyhex.Placeholder, polyhex.Placeholder, polyhex.Placeholder, polyhex.Placeholder}}
	snap := &Snapshot{Border: []BorderSlot{slot}}
	d, ok := Decide(snap, []Candidate{uniform("desert"), uniform("water")})
	if !ok || d.Hand != 1 || d.Matches != 2 {
		t.Errorf("decision = %+v, ok = %v", d, ok)
	}
	// Ties keep the earliest option.
	d, _ = Decide(snap, []Candidate{uniform("desert"), uniform("swamp")})
	if d.Hand != 0 || d.Rotation != 0 || d.Matches != 0 {
		t.Errorf("tie decision = %+v", d)
	}
}

func TestDecideEmpty(t *testing.T) {
	if _, ok := Decide(&Snapshot{}, []Candidate{uniform("water")}); ok {
		t.Error("empty border should give no decision")
	}
	if _, ok := Decide(&Snapshot{Border: []BorderSlot{{}}}, nil); ok {
		t.Error("empty hand should give no decision")
	}
}

func TestObserveAndAct(t *testing.T) {
	ts := newTestAPI(t)

	snap, err := NewObserver(ts.URL).Observe()
	if err != nil {
		t.Fatalf("Observe: %v", err)
	}
	if snap.Status.Cells != 7 || len(snap.Border) != 12 {
		t.Fatalf("snapshot: %d cells, %d border", snap.Status.Cells, len(snap.Border))
	}

	d, ok := Decide(snap, []Candidate{uniform("water")})
	if !ok || d.Matches == 0 {
		t.Fatalf("decision = %+v", d)
	}
	status, err := NewActor(ts.URL, testKey).Act(d.Placement)
	if err != nil {
		t.Fatalf("Act: %v", err)
	}
	if status.Cells != 8 || status.Score != 8 {
		t.Errorf("after placement: %+v", status)
	}

	// The same slot is now filled.
	if _, err := NewActor(ts.URL, testKey).Act(d.Placement); err == nil {
		t.Error("placing twice should fail")
	}
	if _, err := NewActor(ts.URL, "wrong").Act(Placement{Q: 9, R: 9, Edges: []polyhex.Feature{"water"}}); err == nil {
		t.Error("wrong key should fail")
	}
}

func TestDecideAgainstDefaultBuild(t *testing.T) {
	a, err := polyhex.Spiral(polyhex.DefaultConfig(), 1, nil)
	if err != nil {
		t.Fatalf("Spiral: %v", err)
	}
	ts := httptest.NewServer((&api.Server{Assembly: a, ID: uuid.New()}).Handler())
	defer ts.Close()

	snap, err := NewObserver(ts.URL).Observe()
	if err != nil {
		t.Fatalf("Observe: %v", err)
	}
	d, ok := Decide(snap, []Candidate{uniform(polyhex.DefaultHabitat)})
	if !ok || d.Matches != 2 {
		t.Errorf("decision = %+v, want a slot with two placed neighbours", d)
	}
}

func TestObserveUnreachable(t *testing.T) {
	ts := newTestAPI(t)
	ts.Close()
	if _, err := NewObserver(ts.URL).Observe(); err == nil {
		t.Error("expected an error from a closed server")
	}
}

func TestDeckDeterministic(t *testing.T) {
	gen := terrain.SmallTestConfig()
	a, err := NewDeck(gen)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := NewDeck(gen)
	handA, err := a.Deal(8)
	if err != nil {
		t.Fatal(err)
	}
	handB, _ := b.Deal(8)
	if !slices.Equal(handA, handB) {
		t.Error("same seed should deal the same hand")
	}
	for _, c := range handA {
		for _, e := range c.Edges {
			if !slices.Contains(gen.Habitats, e) {
				t.Errorf("edge %q is not a configured habitat", e)
			}
		}
	}
	if a.Seed() != gen.Seed {
		t.Errorf("Seed = %d, want %d", a.Seed(), gen.Seed)
	}
}
