package storage

import (
	"encoding/binary"
	"fmt"

	"github.com/annelo/go-terrain-server/internal/tile"
)

// Двоичный формат чанка (little-endian):
//
//	заголовок: chunkX int32, chunkY int32
//	далее ChunkSize×ChunkSize записей тайлов по 8 байт в порядке строк:
//	Type uint16, Wall uint16, FrameX uint8, FrameY uint8, Light uint8, Flags uint8
//
// Записи фиксированного размера: смещение тайла вычисляется напрямую,
// без обхода, а сериализованный чанк всегда занимает ровно
// EncodedChunkSize байт.
const (
	tileRecordSize   = 8
	chunkHeaderSize  = 8
	EncodedChunkSize = chunkHeaderSize + int(tile.ChunkSize)*int(tile.ChunkSize)*tileRecordSize
)

// EncodeChunk сериализует чанк в двоичный формат.
func EncodeChunk(c *tile.Chunk) []byte {
	buf := make([]byte, EncodedChunkSize)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(c.Pos.X))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(c.Pos.Y))

	off := chunkHeaderSize
	c.EnumerateTiles(func(_, _ int32, t *tile.Tile) {
		binary.LittleEndian.PutUint16(buf[off:], uint16(t.Type))
		binary.LittleEndian.PutUint16(buf[off+2:], uint16(t.Wall))
		buf[off+4] = t.FrameX
		buf[off+5] = t.FrameY
		buf[off+6] = t.Light
		buf[off+7] = t.Flags
		off += tileRecordSize
	})

	return buf
}

// DecodeChunk десериализует чанк из двоичного формата. Позиция из
// заголовка сверяется с ожидаемой: расхождение означает поврежденное
// или чужое сохранение.
func DecodeChunk(data []byte, expected tile.ChunkPos) (*tile.Chunk, error) {
	if len(data) != EncodedChunkSize {
		return nil, fmt.Errorf("неверный размер данных чанка: %d байт вместо %d", len(data), EncodedChunkSize)
	}

	x := int32(binary.LittleEndian.Uint32(data[0:4]))
	y := int32(binary.LittleEndian.Uint32(data[4:8]))
	if x != expected.X || y != expected.Y {
		return nil, fmt.Errorf("заголовок чанка (%d, %d) не совпадает с ожидаемой позицией (%d, %d)",
			x, y, expected.X, expected.Y)
	}

	c := tile.NewChunk(expected)
	off := chunkHeaderSize
	c.EnumerateTiles(func(_, _ int32, t *tile.Tile) {
		t.Type = tile.Type(binary.LittleEndian.Uint16(data[off:]))
		t.Wall = tile.WallType(binary.LittleEndian.Uint16(data[off+2:]))
		t.FrameX = data[off+4]
		t.FrameY = data[off+5]
		t.Light = data[off+6]
		t.Flags = data[off+7]
		off += tileRecordSize
	})

	// Загруженный чанк чистый: на диске уже лежит его актуальная копия
	c.Dirty = false
	c.Loaded = true
	return c, nil
}
