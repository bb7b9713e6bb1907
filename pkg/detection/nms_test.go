package detection

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestIoU(t *testing.T) {
	tests := []struct {
		name string
		a, b Rect
		want float64
	}{
		{"identical", Rect{10, 10, 50, 40}, Rect{10, 10, 50, 40}, 1},
		{"disjoint", Rect{0, 0, 10, 10}, Rect{20, 20, 10, 10}, 0},
		{"touching edges", Rect{0, 0, 10, 10}, Rect{10, 0, 10, 10}, 0},
		{"half overlap", Rect{0, 0, 10, 10}, Rect{5, 0, 10, 10}, 50.0 / 150.0},
		{"contained", Rect{0, 0, 10, 10}, Rect{0, 0, 5, 10}, 0.5},
		{"both degenerate", Rect{5, 5, 0, 0}, Rect{5, 5, 0, 0}, 0},
		{"one degenerate", Rect{0, 0, 10, 10}, Rect{5, 5, 0, 0}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IoU(tt.a, tt.b)
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("IoU: got %.4f, want %.4f", got, tt.want)
			}
			if rev := IoU(tt.b, tt.a); rev != got {
				t.Errorf("IoU not symmetric: %.4f vs %.4f", got, rev)
			}
		})
	}
}

func TestIoURange(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	box := func() Rect {
		return Rect{
			X: rng.Float64()*200 - 50,
			Y: rng.Float64()*200 - 50,
			W: rng.Float64() * 120,
			H: rng.Float64() * 120,
		}
	}
	for i := 0; i < 2000; i++ {
		a, b := box(), box()
		if v := IoU(a, b); v < 0 || v > 1 {
			t.Fatalf("IoU(%v, %v) = %f out of [0,1]", a, b, v)
		}
	}
}

func TestNMSExactDuplicates(t *testing.T) {
	box := Rect{100, 100, 50, 80}
	dets := []Detection{
		{Box: box, Score: 0.6, Class: "cup"},
		{Box: box, Score: 0.9, Class: "cup"},
		{Box: box, Score: 0.7, Class: "cup"},
	}

	got := NMS(dets, 0.45)
	if len(got) != 1 {
		t.Fatalf("survivors: got %d, want 1", len(got))
	}
	if got[0].Score != 0.9 {
		t.Errorf("survivor score: got %.2f, want 0.90", got[0].Score)
	}
}

func TestNMSSuppressedDoesNotSuppress(t *testing.T) {
	a := Detection{Box: Rect{0, 0, 10, 10}, Score: 0.9, Class: "a"}
	b := Detection{Box: Rect{3, 0, 10, 10}, Score: 0.8, Class: "b"}
	c := Detection{Box: Rect{6, 0, 10, 10}, Score: 0.7, Class: "c"}

	got := NMS([]Detection{c, b, a}, 0.45)
	if diff := cmp.Diff([]Detection{a, c}, got); diff != "" {
		t.Errorf("survivors mismatch (-want +got):\n%s", diff)
	}
}

func TestNMSDoesNotMutateInput(t *testing.T) {
	dets := []Detection{
		{Box: Rect{0, 0, 1, 1}, Score: 0.1},
		{Box: Rect{5, 5, 1, 1}, Score: 0.9},
	}
	want := append([]Detection(nil), dets...)
	NMS(dets, 0.45)
	if diff := cmp.Diff(want, dets); diff != "" {
		t.Errorf("input slice changed (-want +got):\n%s", diff)
	}
}

func TestNMSEmpty(t *testing.T) {
	if got := NMS(nil, 0.45); len(got) != 0 {
		t.Errorf("got %d survivors from empty input", len(got))
	}
}
