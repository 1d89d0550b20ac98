package grid

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewWith(t *testing.T) {
	var calls []Coord
	g := NewWith(Size{Width: 3, Height: 2}, func(c Coord) int {
		calls = append(calls, c)
		return c.X*10 + c.Y
	})

	wantCalls := []Coord{
		{0, 0}, {1, 0}, {2, 0},
		{0, 1}, {1, 1}, {2, 1},
	}
	if diff := cmp.Diff(wantCalls, calls); diff != "" {
		t.Errorf("unexpected call order (-want +got)\n%s", diff)
	}

	if diff := cmp.Diff([]int{0, 10, 20, 1, 11, 21}, g.Values()); diff != "" {
		t.Errorf("unexpected values (-want +got)\n%s", diff)
	}
	if g.Len() != 6 {
		t.Errorf("Len() = %d, want 6", g.Len())
	}
}

func TestNonPositiveSize(t *testing.T) {
	for _, sz := range []Size{{0, 5}, {5, 0}, {-1, 3}} {
		g := New(sz, 7)
		if g.Len() != 0 {
			t.Errorf("New(%+v).Len() = %d, want 0", sz, g.Len())
		}
		if _, ok := g.Get(Coord{0, 0}); ok {
			t.Errorf("New(%+v).Get(0,0) found a value", sz)
		}
	}
}

func TestOutOfBounds(t *testing.T) {
	g := New(Size{Width: 2, Height: 2}, "x")

	for _, c := range []Coord{{-1, 0}, {0, -1}, {2, 0}, {0, 2}, {5, 5}} {
		if v, ok := g.Get(c); ok {
			t.Errorf("Get(%+v) = %q, want nothing", c, v)
		}
		if p := g.At(c); p != nil {
			t.Errorf("At(%+v) = %v, want nil", c, p)
		}
		g.Set(c, "y")
	}

	if diff := cmp.Diff([]string{"x", "x", "x", "x"}, g.Values()); diff != "" {
		t.Errorf("out of bounds Set changed the grid (-want +got)\n%s", diff)
	}
}

func TestSetAndAt(t *testing.T) {
	g := New(Size{Width: 3, Height: 3}, 0)
	g.Set(Coord{1, 2}, 5)
	*g.At(Coord{2, 0}) = 9

	if v, _ := g.Get(Coord{1, 2}); v != 5 {
		t.Errorf("Get(1,2) = %d, want 5", v)
	}
	if diff := cmp.Diff([]int{0, 0, 9, 0, 0, 0, 0, 5, 0}, g.Values()); diff != "" {
		t.Errorf("unexpected values (-want +got)\n%s", diff)
	}
}

func TestEach(t *testing.T) {
	g := NewWith(Size{Width: 2, Height: 2}, func(c Coord) int { return c.X + 2*c.Y })

	type pair struct {
		C Coord
		V int
	}
	var got []pair
	g.Each(func(c Coord, v int) {
		got = append(got, pair{c, v})
	})
	want := []pair{
		{Coord{0, 0}, 0},
		{Coord{1, 0}, 1},
		{Coord{0, 1}, 2},
		{Coord{1, 1}, 3},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected traversal (-want +got)\n%s", diff)
	}

	g.EachPtr(func(_ Coord, v *int) { *v *= 2 })
	if diff := cmp.Diff([]int{0, 2, 4, 6}, g.Values()); diff != "" {
		t.Errorf("EachPtr didn't update in place (-want +got)\n%s", diff)
	}
}

func TestNeighbourPositions(t *testing.T) {
	sz := Size{Width: 3, Height: 3}

	tests := []struct {
		desc string
		c    Coord
		kind Neighbours
		want []Coord
	}{
		{
			desc: "center full",
			c:    Coord{1, 1},
			kind: Full,
			want: []Coord{{0, 0}, {1, 0}, {2, 0}, {0, 1}, {2, 1}, {0, 2}, {1, 2}, {2, 2}},
		},
		{
			desc: "center orthogonal",
			c:    Coord{1, 1},
			kind: Orthogonal,
			want: []Coord{{1, 0}, {1, 2}, {0, 1}, {2, 1}},
		},
		{
			desc: "corner full",
			c:    Coord{0, 0},
			kind: Full,
			want: []Coord{{1, 0}, {0, 1}, {1, 1}},
		},
		{
			desc: "corner orthogonal",
			c:    Coord{2, 2},
			kind: Orthogonal,
			want: []Coord{{2, 1}, {1, 2}},
		},
		{
			desc: "edge full",
			c:    Coord{1, 0},
			kind: Full,
			want: []Coord{{0, 0}, {2, 0}, {0, 1}, {1, 1}, {2, 1}},
		},
	}

	for _, test := range tests {
		t.Run(test.desc, func(t *testing.T) {
			got := sz.NeighbourPositions(test.c, test.kind)
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("unexpected neighbours (-want +got)\n%s", diff)
			}
		})
	}
}

func TestNeighbours(t *testing.T) {
	g := NewWith(Size{Width: 3, Height: 2}, func(c Coord) int { return c.X + 3*c.Y })

	if diff := cmp.Diff([]int{0, 2, 3, 4, 5}, g.Neighbours(Coord{1, 0}, Full)); diff != "" {
		t.Errorf("unexpected full neighbours (-want +got)\n%s", diff)
	}
	if diff := cmp.Diff([]int{4, 0, 2}, g.Neighbours(Coord{1, 0}, Orthogonal)); diff != "" {
		t.Errorf("unexpected orthogonal neighbours (-want +got)\n%s", diff)
	}
}

func TestFromSlice(t *testing.T) {
	if _, ok := FromSlice(Size{Width: 2, Height: 2}, []int{1, 2, 3}); ok {
		t.Error("FromSlice accepted a short slice")
	}

	src := []int{1, 2, 3, 4}
	g, ok := FromSlice(Size{Width: 2, Height: 2}, src)
	if !ok {
		t.Fatal("FromSlice rejected a well-sized slice")
	}
	src[0] = 100
	if v, _ := g.Get(Coord{0, 0}); v != 1 {
		t.Errorf("grid shares storage with its source, got %d", v)
	}
}

func TestCountAndClone(t *testing.T) {
	g := NewWith(Size{Width: 4, Height: 1}, func(c Coord) bool { return c.X%2 == 0 })
	if n := g.Count(func(b bool) bool { return b }); n != 2 {
		t.Errorf("Count() = %d, want 2", n)
	}

	c := g.Clone()
	c.Set(Coord{1, 0}, true)
	if v, _ := g.Get(Coord{1, 0}); v {
		t.Error("Clone shares storage with the original")
	}
}
