package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/annelo/go-terrain-server/internal/tile"
)

// RegionStorage реализует интерфейс WorldStorage поверх файлов регионов:
// чанки пакуются по 16×16 в один файл. Основной вариант хранения для
// больших миров, где миллионы мелких файлов неприемлемы.
type RegionStorage struct {
	basePath  string
	worldName string
	worldSeed int64
	worldInfo *WorldInfo

	regionManager *RegionManager
}

var _ WorldStorage = (*RegionStorage)(nil)

// NewRegionStorage создает новое региональное хранилище
func NewRegionStorage(basePath string, worldName string, seed int64) (*RegionStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("не удалось создать директорию хранилища: %w", err)
	}

	regionsPath := filepath.Join(basePath, "regions")
	if err := os.MkdirAll(regionsPath, 0755); err != nil {
		return nil, fmt.Errorf("не удалось создать директорию регионов: %w", err)
	}

	storage := &RegionStorage{
		basePath:      basePath,
		worldName:     worldName,
		worldSeed:     seed,
		regionManager: NewRegionManager(regionsPath),
	}

	info, err := storage.LoadWorld(context.Background())
	if err != nil {
		now := time.Now().Unix()
		info = &WorldInfo{
			ID:         uuid.NewString(),
			Name:       worldName,
			Seed:       seed,
			Version:    "region-1.0.0",
			CreatedAt:  now,
			LastSaveAt: now,
			Properties: make(map[string]string),
		}

		if err := storage.SaveWorld(context.Background(), info); err != nil {
			return nil, fmt.Errorf("ошибка при сохранении информации о мире: %w", err)
		}
	}
	storage.worldInfo = info

	return storage, nil
}

// WorldInfoCached возвращает информацию о мире, загруженную при открытии.
func (s *RegionStorage) WorldInfoCached() *WorldInfo {
	return s.worldInfo
}

// SaveChunk сохраняет чанк в файл его региона
func (s *RegionStorage) SaveChunk(ctx context.Context, chunk *tile.Chunk) error {
	region, err := s.regionManager.GetRegion(chunk.Pos)
	if err != nil {
		return err
	}
	return region.SaveChunk(chunk)
}

// LoadChunk загружает чанк из файла его региона
func (s *RegionStorage) LoadChunk(ctx context.Context, pos tile.ChunkPos) (*tile.Chunk, error) {
	region, err := s.regionManager.GetRegion(pos)
	if err != nil {
		return nil, err
	}
	return region.GetChunk(pos)
}

// DeleteChunk удаляет чанк из файла его региона
func (s *RegionStorage) DeleteChunk(ctx context.Context, pos tile.ChunkPos) error {
	region, err := s.regionManager.GetRegion(pos)
	if err != nil {
		return err
	}
	return region.DeleteChunk(pos)
}

// ListChunks возвращает список всех сохраненных чанков
func (s *RegionStorage) ListChunks(ctx context.Context) ([]tile.ChunkPos, error) {
	return s.regionManager.ListChunks()
}

// SaveWorld сохраняет информацию о мире
func (s *RegionStorage) SaveWorld(ctx context.Context, info *WorldInfo) error {
	info.LastSaveAt = time.Now().Unix()
	return saveJSONFile(filepath.Join(s.basePath, "world_info.json"), info)
}

// LoadWorld загружает информацию о мире
func (s *RegionStorage) LoadWorld(ctx context.Context) (*WorldInfo, error) {
	infoPath := filepath.Join(s.basePath, "world_info.json")

	if _, err := os.Stat(infoPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("информация о мире не найдена")
	}

	var info WorldInfo
	if err := loadJSONFile(infoPath, &info); err != nil {
		return nil, fmt.Errorf("ошибка при загрузке информации о мире: %w", err)
	}

	return &info, nil
}

// Flush сбрасывает все открытые регионы на диск
func (s *RegionStorage) Flush(ctx context.Context) error {
	return s.regionManager.Flush()
}

// Close закрывает хранилище и все файлы регионов
func (s *RegionStorage) Close() error {
	if err := s.SaveWorld(context.Background(), s.worldInfo); err != nil {
		return err
	}
	return s.regionManager.Close()
}
