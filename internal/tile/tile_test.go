package tile

import "testing"

func TestWorldToChunkFloorDivision(t *testing.T) {
	cases := []struct {
		world int32
		chunk int32
		local int32
	}{
		{0, 0, 0},
		{1, 0, 1},
		{31, 0, 31},
		{32, 1, 0},
		{63, 1, 31},
		{-1, -1, 31},
		{-32, -1, 0},
		{-33, -2, 31},
		{-64, -2, 0},
	}

	for _, c := range cases {
		if got := WorldToChunk(c.world); got != c.chunk {
			t.Fatalf("WorldToChunk(%d) = %d, want %d", c.world, got, c.chunk)
		}
		if got := WorldToLocal(c.world); got != c.local {
			t.Fatalf("WorldToLocal(%d) = %d, want %d", c.world, got, c.local)
		}
		// Обратное преобразование восстанавливает мировую координату
		if back := ChunkOrigin(c.chunk) + c.local; back != c.world {
			t.Fatalf("round trip for %d gives %d", c.world, back)
		}
	}
}

func TestWorldToLocalRange(t *testing.T) {
	for w := int32(-1000); w <= 1000; w++ {
		l := WorldToLocal(w)
		if l < 0 || l >= ChunkSize {
			t.Fatalf("WorldToLocal(%d) = %d, out of [0, %d)", w, l, ChunkSize)
		}
	}
}

func TestSetTypeSyncsActive(t *testing.T) {
	var tl Tile

	if !tl.IsAir() {
		t.Fatalf("zero tile must be air")
	}

	tl.SetType(Stone)
	if tl.Type != Stone || !tl.IsActive() || tl.IsAir() {
		t.Fatalf("after SetType(Stone): type=%v active=%v air=%v", tl.Type, tl.IsActive(), tl.IsAir())
	}
	if tl.Flags&FlagFrameDirty == 0 {
		t.Fatalf("SetType must mark frames dirty")
	}

	tl.SetType(Air)
	if tl.IsActive() || !tl.IsAir() {
		t.Fatalf("after SetType(Air): active=%v air=%v", tl.IsActive(), tl.IsAir())
	}
}

func TestClearResetsTile(t *testing.T) {
	var tl Tile
	tl.SetType(GoldOre)
	tl.FrameX = 3
	tl.FrameY = 7

	tl.Clear()
	if tl.Type != Air || tl.IsActive() {
		t.Fatalf("Clear left type=%v active=%v", tl.Type, tl.IsActive())
	}
	if tl.FrameX != 0 || tl.FrameY != 0 {
		t.Fatalf("Clear left frames %d,%d", tl.FrameX, tl.FrameY)
	}
}

func TestSolidity(t *testing.T) {
	solid := []Type{Grass, Dirt, Stone, CopperOre, IronOre, SilverOre, GoldOre, Wood}
	for _, tp := range solid {
		if !IsSolidType(tp) {
			t.Fatalf("%v must be solid", tp)
		}
	}
	if IsSolidType(Air) {
		t.Fatalf("air must not be solid")
	}
	if IsSolidType(Leaves) {
		t.Fatalf("leaves must not be solid")
	}

	// Твердость учитывает активность, а не только тип
	var tl Tile
	tl.SetType(Stone)
	if !tl.IsSolid() {
		t.Fatalf("active stone must be solid")
	}
	tl.Flags &^= FlagActive
	if tl.IsSolid() {
		t.Fatalf("inactive tile must not be solid")
	}
}

func TestChunkIndexing(t *testing.T) {
	c := NewChunk(ChunkPos{X: 2, Y: -3})

	if !InBounds(0, 0) || !InBounds(ChunkSize-1, ChunkSize-1) {
		t.Fatalf("corner positions must be in bounds")
	}
	if InBounds(-1, 0) || InBounds(0, ChunkSize) {
		t.Fatalf("out of range positions must not be in bounds")
	}

	c.GetTile(5, 7).SetType(Dirt)
	if got := c.GetTile(5, 7).Type; got != Dirt {
		t.Fatalf("tile at (5,7) = %v, want Dirt", got)
	}

	// Остальные тайлы не затронуты
	count := 0
	c.EnumerateTiles(func(lx, ly int32, tl *Tile) {
		if !tl.IsAir() {
			count++
			if lx != 5 || ly != 7 {
				t.Fatalf("unexpected non-air tile at (%d,%d)", lx, ly)
			}
		}
	})
	if count != 1 {
		t.Fatalf("expected exactly one non-air tile, got %d", count)
	}
}
