package worldgen

import "github.com/annelo/go-terrain-server/internal/tile"

// Проход деревьев. Колонки-кандидаты выбираются хешем по ячейкам шага
// TreeSpacing, плотность регулирует поле леса. Геометрия каждого дерева
// (высота ствола, радиус кроны, дрожание рядов) выводится из hash2 по
// мировой колонке, поэтому дерево выглядит одинаково, из какого бы чанка
// его ни рисовали. Проход смотрит на колонки с запасом treeMargin за
// границами чанка и кладет только тайлы внутри чанка: крона дерева из
// соседнего чанка дорисуется сюда при генерации этого чанка, и порядок
// генерации чанков на результат не влияет.
const (
	maxCanopyRadius = 3
	canopyJitter    = 1
	treeMargin      = maxCanopyRadius + canopyJitter

	trunkSalt  = 1
	canopySalt = 100
)

func (g *WorldGenerator) placeTrees(c *tile.Chunk) {
	originX := tile.ChunkOrigin(c.Pos.X)
	originY := tile.ChunkOrigin(c.Pos.Y)
	spacing := g.params.TreeSpacing

	for wx := originX - treeMargin; wx < originX+tile.ChunkSize+treeMargin; wx++ {
		// Одна колонка-кандидат на ячейку шага spacing
		cell := floorDiv(wx, spacing)
		offset := int32(hash2(g.seed, cell, 0) % uint64(spacing))
		if wx != cell*spacing+offset {
			continue
		}

		// Поле плотности отсекает поляны
		if g.forest.Density01(float64(wx)) <= g.params.TreeDensityThreshold {
			continue
		}

		// Ствол растет только из травы: пещера или обрыв под колонкой
		// дерево отменяют
		surfaceY := g.GetSurfaceHeight(wx)
		if g.tileTypeAt(wx, surfaceY, surfaceY) != tile.Grass {
			continue
		}

		g.placeTree(c, originX, originY, wx, surfaceY)
	}
}

// placeTree рисует одно дерево, обрезая его границами чанка.
func (g *WorldGenerator) placeTree(c *tile.Chunk, originX, originY, wx, surfaceY int32) {
	geom := hash2(g.seed, wx, trunkSalt)
	trunkHeight := int32(5 + geom%5)
	canopyRadius := int32(2 + (geom>>8)%2)

	// Ствол снизу вверх
	for i := int32(1); i <= trunkHeight; i++ {
		placeIfAir(c, originX, originY, wx, surfaceY-i, tile.Wood)
	}

	// Крона: диск вокруг вершины ствола, сужающийся к краям, с дрожанием
	// ширины ряда
	topY := surfaceY - trunkHeight
	for dy := -canopyRadius; dy <= canopyRadius; dy++ {
		rowRadius := canopyRadius - abs32(dy)/2
		jitter := int32(hash2(g.seed, wx, canopySalt+topY+dy)%3) - 1
		rowRadius += jitter
		if rowRadius < 0 {
			continue
		}
		for dx := -rowRadius; dx <= rowRadius; dx++ {
			placeIfAir(c, originX, originY, wx+dx, topY+dy, tile.Leaves)
		}
	}
}

// placeIfAir ставит тайл, только если мировая позиция лежит в этом чанке
// и там воздух. Стволы и кроны не перезаписывают рельеф и друг друга.
func placeIfAir(c *tile.Chunk, originX, originY, wx, wy int32, tp tile.Type) {
	lx := wx - originX
	ly := wy - originY
	if !tile.InBounds(lx, ly) {
		return
	}
	t := c.GetTile(lx, ly)
	if !t.IsAir() {
		return
	}
	t.SetType(tp)
}

func floorDiv(a, b int32) int32 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
