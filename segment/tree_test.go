package segment

import (
	"math/rand"
	"testing"
)

func TestTree_Query(t *testing.T) {
	segs := []Segment{
		New(5, 6, "E"),
		New(0, 10, "A"),
		New(1, 2, "B"),
		New(2, 3, "C"),
		New(3, 4, "D"),
		New(12, 15, "F"),
	}
	tree := NewTree(segs)

	tests := []struct {
		name       string
		start, end float64
		want       []string
	}{
		{"point-like inside nested", 1.5, 1.6, []string{"A", "B"}},
		{"open boundary excludes next start", 1, 2, []string{"A", "B"}},
		{"adjacent ranges", 2, 3, []string{"A", "C"}},
		{"gap", 10, 12, nil},
		{"end of last", 14, 20, []string{"F"}},
		{"everything", 0, 100, []string{"A", "B", "C", "D", "E", "F"}},
		{"before everything", -5, 0, nil},
		{"empty range", 3, 3, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tree.Query(tt.start, tt.end)
			if len(got) != len(tt.want) {
				t.Fatalf("Query(%v, %v) returned %d segments %v, want %v", tt.start, tt.end, len(got), got, tt.want)
			}
			for i := range got {
				if got[i].Label != tt.want[i] {
					t.Errorf("Query(%v, %v)[%d] = %q, want %q", tt.start, tt.end, i, got[i].Label, tt.want[i])
				}
			}
		})
	}
}

func TestTree_Empty(t *testing.T) {
	tree := NewTree(nil)
	if got := tree.Query(0, 10); len(got) != 0 {
		t.Errorf("Query on empty tree = %v, want none", got)
	}
}

func TestTree_DoesNotAliasInput(t *testing.T) {
	segs := []Segment{New(2, 3, "B"), New(0, 1, "A")}
	_ = NewTree(segs)
	if segs[0].Label != "B" {
		t.Errorf("NewTree reordered its input: %v", segs)
	}
}

// The tree must agree with a linear scan for arbitrary nesting.
func TestTree_MatchesLinearScan(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	segs := make([]Segment, 300)
	for i := range segs {
		start := float64(rng.Intn(1000)) / 10
		dur := float64(rng.Intn(200)+1) / 10
		segs[i] = New(start, start+dur, "x")
	}
	tree := NewTree(segs)

	for q := 0; q < 500; q++ {
		start := float64(rng.Intn(1100)) / 10
		end := start + float64(rng.Intn(100)+1)/10
		probe := New(start, end, "")

		want := 0
		for _, s := range segs {
			if s.Overlaps(probe) {
				want++
			}
		}
		if got := len(tree.Query(start, end)); got != want {
			t.Fatalf("Query(%v, %v) returned %d segments, linear scan found %d", start, end, got, want)
		}
	}
}

func TestMerge(t *testing.T) {
	tests := []struct {
		name string
		segs []Segment
		want [][2]float64
	}{
		{
			name: "empty",
			segs: nil,
			want: nil,
		},
		{
			name: "disjoint",
			segs: []Segment{New(3, 4, "B"), New(0, 1, "A")},
			want: [][2]float64{{0, 1}, {3, 4}},
		},
		{
			name: "overlapping chain",
			segs: []Segment{New(0, 2, "A"), New(1, 3, "B"), New(2.5, 5, "C")},
			want: [][2]float64{{0, 5}},
		},
		{
			name: "touching",
			segs: []Segment{New(0, 1, "A"), New(1, 3, "B")},
			want: [][2]float64{{0, 3}},
		},
		{
			name: "nested",
			segs: []Segment{New(0, 10, "A"), New(2, 3, "B"), New(11, 12, "C")},
			want: [][2]float64{{0, 10}, {11, 12}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Merge(tt.segs)
			if len(got) != len(tt.want) {
				t.Fatalf("Merge() = %v, want %v", got, tt.want)
			}
			for i, w := range tt.want {
				if got[i].Start != w[0] || got[i].End != w[1] {
					t.Errorf("span[%d] = [%v, %v), want [%v, %v)", i, got[i].Start, got[i].End, w[0], w[1])
				}
			}
		})
	}
}

func TestCovered(t *testing.T) {
	g := New(0, 3, "A")
	// two predictions overlapping each other inside g
	spans := Merge([]Segment{New(0, 2, "B"), New(1, 2.5, "C")})
	if got := Covered(g, spans); got != 2.5 {
		t.Errorf("Covered() = %v, want 2.5", got)
	}
}
