package util

import (
	"fmt"

	"github.com/annelo/go-terrain-server/internal/tile"
)

// ChunkKey формирует уникальный строковый ключ для позиции чанка.
func ChunkKey(pos tile.ChunkPos) string {
	return fmt.Sprintf("%d:%d", pos.X, pos.Y)
}

// ChunkFileName формирует имя файла для чанка в пофайловом хранилище.
func ChunkFileName(pos tile.ChunkPos) string {
	return fmt.Sprintf("chunk_%d_%d.bin", pos.X, pos.Y)
}

// RegionKey формирует уникальный строковый ключ для позиции региона.
func RegionKey(regionX, regionY int32) string {
	return fmt.Sprintf("%d:%d", regionX, regionY)
}

// RegionFileName формирует имя файла региона.
func RegionFileName(regionX, regionY int32) string {
	return fmt.Sprintf("r.%d.%d.bin", regionX, regionY)
}
