// Package worldgen реализует детерминированный многопроходный генератор
// ландшафта: высота поверхности, слои материалов, пещеры, рудные жилы и
// деревья. Генератор не хранит состояния чанков: при одинаковых
// (worldX, worldY, сид, параметры) результат всегда одинаков, порядок
// генерации чанков на содержимое тайла не влияет (единственное
// документированное исключение — кроны деревьев, см. trees.go).
package worldgen

import (
	"math"

	"github.com/annelo/go-terrain-server/internal/noisegeneration"
	"github.com/annelo/go-terrain-server/internal/tile"
)

// Смещения сида для независимых полей шума
const (
	caveSeedOffset   = 1
	oreSeedOffset    = 2
	forestSeedOffset = 3
)

const heightCacheSize = 4096

// oreTier описывает один ярус руды: каждая проверка — пара независимых
// порогов (базовый шум и шум яруса) по своей комбинации частоты и
// смещения.
type oreTier struct {
	tileType   tile.Type
	minDepth   int32
	baseFreq   float64
	baseOffset float64
	baseCutoff float64
	tierFreq   float64
	tierOffset float64
	tierCutoff float64
}

// WorldGenerator — чистое отображение мировых координат в тайлы.
type WorldGenerator struct {
	seed   int64
	params Params

	heightField *noisegeneration.GradientNoiseField
	caveField   *noisegeneration.GradientNoiseField
	oreField    *noisegeneration.GradientNoiseField
	forest      *noisegeneration.ForestNoise

	heights *noisegeneration.HeightCache

	// Ярусы в порядке от самого частого к самому редкому; выигрывает
	// первый подошедший, поэтому на тайл приходится не больше одной руды.
	oreTiers []oreTier
}

// NewWorldGenerator создает генератор мира из сида и параметров.
func NewWorldGenerator(seed int64, params Params) *WorldGenerator {
	return &WorldGenerator{
		seed:        seed,
		params:      params,
		heightField: noisegeneration.NewGradientNoiseField(seed),
		caveField:   noisegeneration.NewGradientNoiseField(seed + caveSeedOffset),
		oreField:    noisegeneration.NewGradientNoiseField(seed + oreSeedOffset),
		forest:      noisegeneration.NewForestNoise(seed + forestSeedOffset),
		heights:     noisegeneration.NewHeightCache(heightCacheSize),
		oreTiers: []oreTier{
			{tile.CopperOre, params.CopperMinDepth, 0.09, 0, 0.60, 0.11, 37.7, 0.58},
			{tile.IronOre, params.IronMinDepth, 0.09, 11.3, 0.63, 0.13, 91.3, 0.62},
			{tile.SilverOre, params.SilverMinDepth, 0.09, 23.9, 0.66, 0.17, 173.9, 0.66},
			{tile.GoldOre, params.GoldMinDepth, 0.09, 41.1, 0.68, 0.19, 251.3, 0.70},
		},
	}
}

// Seed возвращает сид генератора.
func (g *WorldGenerator) Seed() int64 { return g.seed }

// Params возвращает параметры генерации.
func (g *WorldGenerator) Params() Params { return g.params }

// GetSurfaceHeight возвращает мировую Y-координату поверхности в колонке
// worldX. Двумерное поле шума используется как одномерное: вторая
// координата зафиксирована нулем.
func (g *WorldGenerator) GetSurfaceHeight(worldX int32) int32 {
	if h, ok := g.heights.Get(int64(worldX)); ok {
		return h
	}

	p := g.params
	n := g.heightField.OctaveNoise01(float64(worldX), 0,
		p.TerrainOctaves, p.TerrainPersistence, p.TerrainFrequency, p.TerrainLacunarity)
	h := p.SurfaceLevel + int32(math.Floor(n*float64(p.TerrainHeight)))

	g.heights.Put(int64(worldX), h)
	return h
}

// GenerateChunk заполняет чанк тайлами. Проходы строго упорядочены:
// высота → слои материалов → пещеры → руды (все внутри tileTypeAt),
// затем отдельным проходом деревья. После генерации чанк считается
// чистым (Dirty=false): сохранять нечего, пока игрок его не изменит.
func (g *WorldGenerator) GenerateChunk(c *tile.Chunk) {
	originX := tile.ChunkOrigin(c.Pos.X)
	originY := tile.ChunkOrigin(c.Pos.Y)

	for ly := int32(0); ly < tile.ChunkSize; ly++ {
		for lx := int32(0); lx < tile.ChunkSize; lx++ {
			worldX := originX + lx
			worldY := originY + ly

			surfaceY := g.GetSurfaceHeight(worldX)
			depth := worldY - surfaceY

			t := c.GetTile(lx, ly)
			t.SetType(g.tileTypeAt(worldX, worldY, surfaceY))
			t.Wall = wallAt(depth, g.params.DirtDepth)
			t.Light = lightAt(depth, g.params.LightFalloff)
		}
	}

	g.placeTrees(c)

	c.Dirty = false
}

// tileTypeAt — сердце генератора: чистая функция
// (worldX, worldY) → тип тайла. surfaceY передается снаружи, чтобы не
// пересчитывать высоту для каждого тайла колонки.
func (g *WorldGenerator) tileTypeAt(worldX, worldY, surfaceY int32) tile.Type {
	depth := worldY - surfaceY

	// Выше поверхности — воздух
	if depth < 0 {
		return tile.Air
	}

	// Проход 2: слои материалов
	var tp tile.Type
	switch {
	case depth == 0:
		tp = tile.Grass
	case depth < g.params.DirtDepth:
		tp = tile.Dirt
	default:
		tp = tile.Stone
	}

	// Проход 3: пещеры. Порог слегка растет с глубиной (с потолком),
	// у поверхности действует защитная зона. Пещеры вырезаются строго
	// до руд: в прорезанном воздухе руда появиться не может.
	if depth >= g.params.CaveProtectDepth {
		p := g.params
		threshold := p.CaveThreshold + p.CaveDepthGain*float64(depth)
		if threshold > p.CaveThresholdCap {
			threshold = p.CaveThresholdCap
		}
		n := g.caveField.OctaveNoise01(float64(worldX), float64(worldY),
			p.CaveOctaves, p.CavePersistence, p.CaveFrequency, p.CaveLacunarity)
		if n < threshold {
			return tile.Air
		}
	}

	// Проход 4: рудные жилы, только в камне и только на достаточной
	// глубине. Ярусы перебираются от частого к редкому, побеждает
	// первый подошедший.
	if tp == tile.Stone {
		for _, tier := range g.oreTiers {
			if depth < tier.minDepth {
				continue
			}
			base := g.oreField.Noise01(
				float64(worldX)*tier.baseFreq+tier.baseOffset,
				float64(worldY)*tier.baseFreq+tier.baseOffset)
			if base <= tier.baseCutoff {
				continue
			}
			tn := g.oreField.Noise01(
				float64(worldX)*tier.tierFreq+tier.tierOffset,
				float64(worldY)*tier.tierFreq+tier.tierOffset)
			if tn > tier.tierCutoff {
				return tier.tileType
			}
		}
	}

	return tp
}

// wallAt возвращает фоновую стену для данной глубины.
func wallAt(depth, dirtDepth int32) tile.WallType {
	switch {
	case depth <= 0:
		return tile.WallNone
	case depth < dirtDepth:
		return tile.WallDirt
	default:
		return tile.WallStone
	}
}

// lightAt возвращает уровень света: полный на поверхности и выше,
// линейное затухание с глубиной.
func lightAt(depth, falloff int32) uint8 {
	if depth <= 0 {
		return 255
	}
	light := int32(255) - depth*falloff
	if light < 0 {
		return 0
	}
	return uint8(light)
}
