package main

import "testing"

func TestGenerateDeterministic(t *testing.T) {
	a := NewMapGenerator(100, 100, 42).Generate()
	b := NewMapGenerator(100, 100, 42).Generate()

	for y := range a {
		for x := range a[y] {
			if a[y][x] != b[y][x] {
				t.Fatalf("tile (%d,%d) differs between same-seed maps: %v vs %v", x, y, a[y][x], b[y][x])
			}
		}
	}
}

func TestGenerateSeedsDiffer(t *testing.T) {
	a := NewMapGenerator(100, 100, 1).Generate()
	b := NewMapGenerator(100, 100, 2).Generate()

	same := true
	for y := range a {
		for x := range a[y] {
			if a[y][x] != b[y][x] {
				same = false
			}
		}
	}
	if same {
		t.Error("different seeds produced identical maps")
	}
}

func TestGenerateProducesResources(t *testing.T) {
	tiles := NewMapGenerator(100, 100, 42).Generate()

	counts := map[TileType]int{}
	for y := range tiles {
		for x := range tiles[y] {
			counts[tiles[y][x]]++
		}
	}
	for _, res := range []TileType{TileWood, TileStone, TileWheat, TileMetal, TileGold} {
		if counts[res] == 0 {
			t.Errorf("no %v tiles on a 100x100 map", res)
		}
	}
}

func TestSpawnAreaKeptClear(t *testing.T) {
	tiles := NewMapGenerator(100, 100, 42).Generate()
	cx, cy := 50, 50

	r := spawnClearRadius - 1
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if tileDist(cx+dx, cy+dy, cx, cy) >= float64(spawnClearRadius) {
				continue
			}
			if tiles[cy+dy][cx+dx] != TileEmpty {
				t.Fatalf("resource tile %v at (%d,%d) inside the spawn clear radius",
					tiles[cy+dy][cx+dx], cx+dx, cy+dy)
			}
		}
	}
}

func TestIntnInclusiveBounds(t *testing.T) {
	mg := NewMapGenerator(10, 10, 1)
	seenLo, seenHi := false, false
	for i := 0; i < 500; i++ {
		v := mg.intn(2, 5)
		if v < 2 || v > 5 {
			t.Fatalf("intn(2,5) = %d, out of range", v)
		}
		if v == 2 {
			seenLo = true
		}
		if v == 5 {
			seenHi = true
		}
	}
	if !seenLo || !seenHi {
		t.Error("intn never produced one of its inclusive bounds")
	}
}

func TestSeedFromLobbyIDStable(t *testing.T) {
	a := seedFromLobbyID("lobby-abc")
	b := seedFromLobbyID("lobby-abc")
	c := seedFromLobbyID("lobby-xyz")

	if a != b {
		t.Error("same lobby ID produced different seeds")
	}
	if a == c {
		t.Error("distinct lobby IDs produced the same seed")
	}
}
