package nav

import (
	"errors"
	"testing"
)

func TestGrid_ResizeBeyondMaxFails(t *testing.T) {
	g := NewGrid[int](3)
	if g.MaxDimension() != 8 {
		t.Fatalf("expected max dimension 8, got %d", g.MaxDimension())
	}
	if err := g.Resize(9, 1); !errors.Is(err, ErrDimensionTooLarge) {
		t.Fatalf("expected ErrDimensionTooLarge, got %v", err)
	}
	if err := g.Resize(8, 8); err != nil {
		t.Fatalf("resize to max should succeed: %v", err)
	}
}

func TestGrid_ResizeZeroesTiles(t *testing.T) {
	g := NewGrid[int](4)
	if err := g.Resize(4, 4); err != nil {
		t.Fatal(err)
	}
	*g.At(TileVec{3, 3}) = 42
	if err := g.Resize(2, 2); err != nil {
		t.Fatal(err)
	}
	if err := g.Resize(4, 4); err != nil {
		t.Fatal(err)
	}
	if v := *g.At(TileVec{3, 3}); v != 0 {
		t.Fatalf("resize should zero tiles, got %d", v)
	}
}

func TestGrid_RowMajorStorage(t *testing.T) {
	g := NewGrid[int](4)
	if err := g.Resize(3, 2); err != nil {
		t.Fatal(err)
	}
	*g.At(TileVec{1, 1}) = 7
	if g.tiles[1*3+1] != 7 {
		t.Fatal("tile (1,1) should live at index y*width+x")
	}
}

func TestTile_AdjacentRoundTrip(t *testing.T) {
	g := NewGrid[int](3)
	if err := g.Resize(3, 3); err != nil {
		t.Fatal(err)
	}
	centre := g.Tile(TileVec{1, 1})
	for _, d := range Directions() {
		back := centre.Adjacent(d).Adjacent(d.Opposite())
		if back.Position() != centre.Position() {
			t.Fatalf("%v then %v: expected %v got %v", d, d.Opposite(), centre.Position(), back.Position())
		}
		if !centre.Adjacent(d).Valid() {
			t.Fatalf("neighbour %v of centre should be valid", d)
		}
	}
}

func TestTile_EdgeNeighboursInvalid(t *testing.T) {
	g := NewGrid[int](3)
	if err := g.Resize(3, 3); err != nil {
		t.Fatal(err)
	}
	corner := g.Tile(TileVec{0, 0})
	if corner.Adjacent(DirWest).Valid() || corner.Adjacent(DirNorth).Valid() {
		t.Fatal("neighbours off the grid should be invalid")
	}
	if !corner.Adjacent(DirEast).Valid() || !corner.Adjacent(DirSouth).Valid() {
		t.Fatal("in-grid neighbours should be valid")
	}
}

func TestTile_DataOnDetachedHandlePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic dereferencing a detached tile")
		}
	}()
	var tile Tile[int]
	tile.Data()
}

func TestDirections_CounterClockwiseFromEast(t *testing.T) {
	want := [DirectionCount]Direction{DirEast, DirNorth, DirWest, DirSouth}
	if got := Directions(); got != want {
		t.Fatalf("expected %v got %v", want, got)
	}
	for _, d := range want {
		if d.Vector().Add(d.Opposite().Vector()) != (TileVec{}) {
			t.Fatalf("%v and its opposite should cancel", d)
		}
	}
	if DirNorth.Vector() != (TileVec{0, -1}) {
		t.Fatal("north should be -Y")
	}
}
