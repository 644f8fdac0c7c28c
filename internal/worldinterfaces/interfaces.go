// Package worldinterfaces содержит общие интерфейсы для избегания циклических зависимостей
package worldinterfaces

import "github.com/annelo/go-terrain-server/internal/tile"

// ChunkGenerator определяет интерфейс генератора мира, который используется в ChunkManager
type ChunkGenerator interface {
	GenerateChunk(c *tile.Chunk)
	GetSurfaceHeight(worldX int32) int32
	Seed() int64
}

// TileAccessor определяет доступ к тайлам для систем игрового цикла и
// визуализации, без привязки к конкретному менеджеру чанков
type TileAccessor interface {
	GetTileAt(worldX, worldY int32) tile.Tile
	SetTileTypeAt(worldX, worldY int32, tp tile.Type)
	ClearTileAt(worldX, worldY int32)
	IsSolidAt(worldX, worldY int32) bool
}

// ChunkObserver получает уведомления о загрузке и выгрузке чанков
type ChunkObserver func(c *tile.Chunk)
