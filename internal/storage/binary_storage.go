package storage

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	util "github.com/annelo/go-terrain-server/internal/storage/util"
	"github.com/annelo/go-terrain-server/internal/tile"
)

// Магическая сигнатура файла чанка ("TCNK")
const chunkFileMagic uint32 = 0x544B4E43

// Заголовок файла чанка: magic uint32, version uint16, reserved uint16
const chunkFileHeaderSize = 8

// BinaryStorage реализует интерфейс WorldStorage поверх отдельных файлов:
// один чанк — один файл в директории chunks. Простой и отлаживаемый
// вариант; для больших миров предпочтительнее региональное хранилище.
type BinaryStorage struct {
	basePath   string     // Базовый путь для файлов хранилища
	chunksPath string     // Директория с файлами чанков
	worldName  string     // Название мира
	worldSeed  int64      // Сид мира
	worldInfo  *WorldInfo // Информация о мире

	mu sync.Mutex
}

var _ WorldStorage = (*BinaryStorage)(nil)

// NewBinaryStorage создает новое пофайловое хранилище
func NewBinaryStorage(basePath string, worldName string, seed int64) (*BinaryStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("не удалось создать директорию хранилища: %w", err)
	}

	chunksPath := filepath.Join(basePath, "chunks")
	if err := os.MkdirAll(chunksPath, 0755); err != nil {
		return nil, fmt.Errorf("не удалось создать директорию чанков: %w", err)
	}

	storage := &BinaryStorage{
		basePath:   basePath,
		chunksPath: chunksPath,
		worldName:  worldName,
		worldSeed:  seed,
	}

	// Загружаем или создаем информацию о мире
	info, err := storage.LoadWorld(context.Background())
	if err != nil {
		now := time.Now().Unix()
		info = &WorldInfo{
			ID:         uuid.NewString(),
			Name:       worldName,
			Seed:       seed,
			Version:    "binary-2.0.0",
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
func (s *BinaryStorage) WorldInfoCached() *WorldInfo {
	return s.worldInfo
}

// SaveChunk сохраняет чанк в хранилище. Запись идет во временный файл с
// последующим переименованием: при падении процесса на диске остается
// либо старая, либо новая версия, но не половина.
func (s *BinaryStorage) SaveChunk(ctx context.Context, chunk *tile.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	buf := make([]byte, chunkFileHeaderSize+EncodedChunkSize)
	binary.LittleEndian.PutUint32(buf[0:4], chunkFileMagic)
	binary.LittleEndian.PutUint16(buf[4:6], FormatVersion)
	copy(buf[chunkFileHeaderSize:], EncodeChunk(chunk))

	path := filepath.Join(s.chunksPath, util.ChunkFileName(chunk.Pos))
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, buf, 0644); err != nil {
		return fmt.Errorf("ошибка записи чанка [%d, %d]: %w", chunk.Pos.X, chunk.Pos.Y, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("ошибка переименования файла чанка [%d, %d]: %w", chunk.Pos.X, chunk.Pos.Y, err)
	}

	return nil
}

// LoadChunk загружает чанк из хранилища. Файл с чужой сигнатурой или
// версией формата считается отсутствующим: чанк будет перегенерирован,
// а не прочитан как мусор.
func (s *BinaryStorage) LoadChunk(ctx context.Context, pos tile.ChunkPos) (*tile.Chunk, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.chunksPath, util.ChunkFileName(pos))
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrChunkNotFound{X: pos.X, Y: pos.Y}
		}
		return nil, fmt.Errorf("ошибка чтения файла чанка [%d, %d]: %w", pos.X, pos.Y, err)
	}

	if len(data) < chunkFileHeaderSize {
		log.Printf("[Storage] Файл чанка [%d, %d] усечен, перегенерация", pos.X, pos.Y)
		return nil, ErrChunkNotFound{X: pos.X, Y: pos.Y}
	}
	if binary.LittleEndian.Uint32(data[0:4]) != chunkFileMagic {
		log.Printf("[Storage] Файл чанка [%d, %d] имеет чужую сигнатуру, перегенерация", pos.X, pos.Y)
		return nil, ErrChunkNotFound{X: pos.X, Y: pos.Y}
	}
	if v := binary.LittleEndian.Uint16(data[4:6]); v != FormatVersion {
		log.Printf("[Storage] Файл чанка [%d, %d] версии %d (ожидается %d), перегенерация", pos.X, pos.Y, v, FormatVersion)
		return nil, ErrChunkNotFound{X: pos.X, Y: pos.Y}
	}

	chunk, err := DecodeChunk(data[chunkFileHeaderSize:], pos)
	if err != nil {
		log.Printf("[Storage] Файл чанка [%d, %d] поврежден (%v), перегенерация", pos.X, pos.Y, err)
		return nil, ErrChunkNotFound{X: pos.X, Y: pos.Y}
	}

	return chunk, nil
}

// DeleteChunk удаляет чанк из хранилища
func (s *BinaryStorage) DeleteChunk(ctx context.Context, pos tile.ChunkPos) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.chunksPath, util.ChunkFileName(pos))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("ошибка удаления файла чанка [%d, %d]: %w", pos.X, pos.Y, err)
	}
	return nil
}

// ListChunks возвращает список всех сохраненных чанков
func (s *BinaryStorage) ListChunks(ctx context.Context) ([]tile.ChunkPos, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.chunksPath)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения директории чанков: %w", err)
	}

	positions := make([]tile.ChunkPos, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".bin" {
			continue
		}
		var x, y int32
		if _, err := fmt.Sscanf(entry.Name(), "chunk_%d_%d.bin", &x, &y); err != nil {
			continue
		}
		positions = append(positions, tile.ChunkPos{X: x, Y: y})
	}

	return positions, nil
}

// SaveWorld сохраняет информацию о мире
func (s *BinaryStorage) SaveWorld(ctx context.Context, info *WorldInfo) error {
	info.LastSaveAt = time.Now().Unix()

	infoPath := filepath.Join(s.basePath, "world_info.json")
	return saveJSONFile(infoPath, info)
}

// LoadWorld загружает информацию о мире
func (s *BinaryStorage) LoadWorld(ctx context.Context) (*WorldInfo, error) {
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

// Flush для пофайлового хранилища ничего не делает: каждый SaveChunk
// сразу пишет на диск.
func (s *BinaryStorage) Flush(ctx context.Context) error {
	return nil
}

// Close закрывает хранилище
func (s *BinaryStorage) Close() error {
	return s.SaveWorld(context.Background(), s.worldInfo)
}

// saveJSONFile сохраняет структуру в JSON-файл через временный файл
func saveJSONFile(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("ошибка сериализации JSON: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("ошибка записи файла %s: %w", path, err)
	}
	return os.Rename(tmpPath, path)
}

// loadJSONFile загружает структуру из JSON-файла
func loadJSONFile(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
