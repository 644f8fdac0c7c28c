package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/annelo/go-terrain-server/internal/tile"
	"github.com/annelo/go-terrain-server/internal/worldgen"
)

const (
	width  = 100
	height = 40
)

var (
	seed   = flag.Int64("seed", 0, "Сид генерации (0 = случайный)")
	startX = flag.Int("x", 0, "Мировая координата X левого края среза")
	startY = flag.Int("y", 80, "Мировая координата Y верхнего края среза")
)

func main() {
	flag.Parse()

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	fmt.Printf("Seed: %d\n", *seed)

	g := worldgen.NewWorldGenerator(*seed, worldgen.DefaultParams())

	fmt.Println("\nПрофиль поверхности:")
	visualizeHeightProfile(g)

	fmt.Println("\nВертикальный срез мира:")
	visualizeCrossSection(g)
}

// visualizeHeightProfile рисует профиль высоты поверхности
func visualizeHeightProfile(g *worldgen.WorldGenerator) {
	minH := g.GetSurfaceHeight(int32(*startX))
	maxH := minH
	heights := make([]int32, width)
	for i := range heights {
		h := g.GetSurfaceHeight(int32(*startX + i))
		heights[i] = h
		if h < minH {
			minH = h
		}
		if h > maxH {
			maxH = h
		}
	}

	span := maxH - minH
	if span == 0 {
		span = 1
	}

	const rows = 12
	for row := 0; row < rows; row++ {
		// Верхняя строка — максимальная высота (меньший worldY выше)
		level := minH + span*int32(row)/rows
		for i := 0; i < width; i++ {
			if heights[i] <= level {
				fmt.Print("#")
			} else {
				fmt.Print(" ")
			}
		}
		fmt.Println()
	}
	fmt.Printf("Высоты: min=%d max=%d\n", minH, maxH)
}

// visualizeCrossSection рисует срез сгенерированных тайлов
func visualizeCrossSection(g *worldgen.WorldGenerator) {
	chars := map[tile.Type]rune{
		tile.Air:       ' ',
		tile.Grass:     '_',
		tile.Dirt:      '.',
		tile.Stone:     '#',
		tile.CopperOre: 'c',
		tile.IronOre:   'i',
		tile.SilverOre: 's',
		tile.GoldOre:   'g',
		tile.Wood:      '|',
		tile.Leaves:    '@',
	}

	// Генерируем все чанки, пересекающие срез
	chunks := make(map[tile.ChunkPos]*tile.Chunk)
	tileAt := func(wx, wy int32) tile.Tile {
		pos := tile.WorldToChunkPos(wx, wy)
		c, ok := chunks[pos]
		if !ok {
			c = tile.NewChunk(pos)
			g.GenerateChunk(c)
			chunks[pos] = c
		}
		return *c.GetTile(tile.WorldToLocal(wx), tile.WorldToLocal(wy))
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			t := tileAt(int32(*startX+x), int32(*startY+y))
			ch, ok := chars[t.Type]
			if !ok {
				ch = '?'
			}
			fmt.Print(string(ch))
		}
		fmt.Println()
	}
	fmt.Printf("Сгенерировано чанков: %d\n", len(chunks))
}
