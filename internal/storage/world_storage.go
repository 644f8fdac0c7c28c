package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/annelo/go-terrain-server/internal/tile"
)

// FormatVersion — текущая версия двоичного формата чанков. Сохранение с
// другой версией считается несуществующим: чанк перегенерируется.
const FormatVersion uint16 = 1

// WorldStorage представляет интерфейс для хранения данных игрового мира
type WorldStorage interface {
	// SaveChunk сохраняет чанк в хранилище
	SaveChunk(ctx context.Context, chunk *tile.Chunk) error

	// LoadChunk загружает чанк из хранилища
	// Возвращает ошибку типа ErrChunkNotFound, если чанк не найден
	LoadChunk(ctx context.Context, pos tile.ChunkPos) (*tile.Chunk, error)

	// DeleteChunk удаляет чанк из хранилища
	DeleteChunk(ctx context.Context, pos tile.ChunkPos) error

	// ListChunks возвращает список всех сохранённых чанков
	ListChunks(ctx context.Context) ([]tile.ChunkPos, error)

	// SaveWorld сохраняет общую информацию о мире
	SaveWorld(ctx context.Context, info *WorldInfo) error

	// LoadWorld загружает общую информацию о мире
	LoadWorld(ctx context.Context) (*WorldInfo, error)

	// Flush сбрасывает накопленные изменения на диск
	Flush(ctx context.Context) error

	// Close закрывает хранилище и освобождает ресурсы
	Close() error
}

// WorldInfo содержит общую информацию о игровом мире
type WorldInfo struct {
	ID         string            `json:"id"`          // Уникальный идентификатор мира (UUID)
	Name       string            `json:"name"`        // Название мира
	Seed       int64             `json:"seed"`        // Сид для генерации
	Version    string            `json:"version"`     // Версия формата сохранения
	CreatedAt  int64             `json:"created_at"`  // Время создания (Unix timestamp)
	LastSaveAt int64             `json:"last_saved"`  // Время последнего сохранения (Unix timestamp)
	Properties map[string]string `json:"properties"`  // Дополнительные свойства
}

// ErrChunkNotFound возвращается, когда чанк не найден в хранилище
type ErrChunkNotFound struct {
	X int32
	Y int32
}

func (e ErrChunkNotFound) Error() string {
	return fmt.Sprintf("чанк (%d, %d) не найден в хранилище", e.X, e.Y)
}

// IsNotFound сообщает, является ли ошибка отсутствием чанка.
func IsNotFound(err error) bool {
	var nf ErrChunkNotFound
	return errors.As(err, &nf)
}
