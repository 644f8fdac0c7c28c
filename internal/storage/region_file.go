package storage

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	util "github.com/annelo/go-terrain-server/internal/storage/util"
	"github.com/annelo/go-terrain-server/internal/tile"
)

// Параметры файла региона: 16×16 чанков на регион
const (
	RegionSize        = 16
	regionChunkCount  = RegionSize * RegionSize
	regionHeaderSize  = 256
	regionIndexEntry  = 16
	regionIndexSize   = regionIndexEntry * regionChunkCount
	regionChunkRecord = chunkFileHeaderSize + EncodedChunkSize
)

// RegionFile представляет файл региона, содержащий множество чанков.
// Записи чанков фиксированного размера, поэтому каждый чанк лежит в
// своем слоте по вычисляемому смещению: перезапись всегда попадает в
// тот же слот, и уплотнение файла не требуется.
type RegionFile struct {
	filename string
	file     *os.File
	regionX  int32
	regionY  int32
	mutex    sync.RWMutex

	// Кеш индексов для быстрого доступа
	chunkIndex map[string]chunkIndexEntry
}

// Запись в индексной таблице
type chunkIndexEntry struct {
	X      int32
	Y      int32
	Offset uint32
	Size   uint32
}

// RegionCoord возвращает координату региона для координаты чанка.
func RegionCoord(chunkCoord int32) int32 {
	q := chunkCoord / RegionSize
	if chunkCoord%RegionSize != 0 && chunkCoord < 0 {
		q--
	}
	return q
}

// slotIndex возвращает номер слота чанка внутри региона.
func slotIndex(pos tile.ChunkPos) int {
	lx := int(pos.X - RegionCoord(pos.X)*RegionSize)
	ly := int(pos.Y - RegionCoord(pos.Y)*RegionSize)
	return ly*RegionSize + lx
}

// slotOffset возвращает смещение слота чанка в файле региона.
func slotOffset(slot int) int64 {
	return int64(regionHeaderSize + regionIndexSize + slot*regionChunkRecord)
}

// NewRegionFile создает новый файл региона или открывает существующий
func NewRegionFile(path string, regionX, regionY int32) (*RegionFile, error) {
	fullPath := filepath.Join(path, util.RegionFileName(regionX, regionY))

	exists := false
	if _, err := os.Stat(fullPath); err == nil {
		exists = true
	}

	file, err := os.OpenFile(fullPath, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, err
	}

	region := &RegionFile{
		filename:   fullPath,
		file:       file,
		regionX:    regionX,
		regionY:    regionY,
		chunkIndex: make(map[string]chunkIndexEntry),
	}

	if !exists {
		if err := region.initializeFile(); err != nil {
			file.Close()
			return nil, err
		}
	} else {
		if err := region.loadIndexTable(); err != nil {
			file.Close()
			return nil, err
		}
	}

	return region, nil
}

// Инициализация нового файла
func (r *RegionFile) initializeFile() error {
	header := make([]byte, regionHeaderSize)

	// Сигнатура "TREG"
	copy(header[0:4], []byte("TREG"))

	// Версия формата
	binary.LittleEndian.PutUint32(header[4:8], uint32(FormatVersion))

	// Размер региона в чанках
	binary.LittleEndian.PutUint32(header[8:12], regionChunkCount)

	// Координаты региона
	binary.LittleEndian.PutUint32(header[12:16], uint32(r.regionX))
	binary.LittleEndian.PutUint32(header[16:20], uint32(r.regionY))

	// Время создания и последнего обновления
	now := uint64(time.Now().Unix())
	binary.LittleEndian.PutUint64(header[20:28], now)
	binary.LittleEndian.PutUint64(header[28:36], now)

	if _, err := r.file.Write(header); err != nil {
		return err
	}

	// Пустая индексная таблица: нулевой размер означает, что слот
	// чанка еще не записан
	indexTable := make([]byte, regionIndexSize)
	for i := 0; i < regionChunkCount; i++ {
		off := i * regionIndexEntry
		localX := int32(i % RegionSize)
		localY := int32(i / RegionSize)
		binary.LittleEndian.PutUint32(indexTable[off:off+4], uint32(r.regionX*RegionSize+localX))
		binary.LittleEndian.PutUint32(indexTable[off+4:off+8], uint32(r.regionY*RegionSize+localY))
	}

	if _, err := r.file.Write(indexTable); err != nil {
		return err
	}

	return r.file.Sync()
}

// Загрузка индексной таблицы в память
func (r *RegionFile) loadIndexTable() error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	header := make([]byte, regionHeaderSize)
	if _, err := r.file.ReadAt(header, 0); err != nil {
		return fmt.Errorf("ошибка чтения заголовка региона: %w", err)
	}
	if string(header[0:4]) != "TREG" {
		return fmt.Errorf("файл %s не является файлом региона", r.filename)
	}
	if v := binary.LittleEndian.Uint32(header[4:8]); v != uint32(FormatVersion) {
		return fmt.Errorf("файл региона %s версии %d, ожидается %d", r.filename, v, FormatVersion)
	}

	indexTable := make([]byte, regionIndexSize)
	if _, err := r.file.ReadAt(indexTable, regionHeaderSize); err != nil {
		return fmt.Errorf("ошибка чтения индексной таблицы: %w", err)
	}

	for i := 0; i < regionChunkCount; i++ {
		off := i * regionIndexEntry

		x := int32(binary.LittleEndian.Uint32(indexTable[off : off+4]))
		y := int32(binary.LittleEndian.Uint32(indexTable[off+4 : off+8]))
		dataOffset := binary.LittleEndian.Uint32(indexTable[off+8 : off+12])
		size := binary.LittleEndian.Uint32(indexTable[off+12 : off+16])

		// Сохраняем только существующие чанки (с ненулевым размером)
		if size > 0 {
			key := util.ChunkKey(tile.ChunkPos{X: x, Y: y})
			r.chunkIndex[key] = chunkIndexEntry{
				X:      x,
				Y:      y,
				Offset: dataOffset,
				Size:   size,
			}
		}
	}

	return nil
}

// HasChunk сообщает, записан ли чанк в этом регионе.
func (r *RegionFile) HasChunk(pos tile.ChunkPos) bool {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	_, exists := r.chunkIndex[util.ChunkKey(pos)]
	return exists
}

// ListChunks возвращает позиции всех записанных в регион чанков.
func (r *RegionFile) ListChunks() []tile.ChunkPos {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	positions := make([]tile.ChunkPos, 0, len(r.chunkIndex))
	for _, entry := range r.chunkIndex {
		positions = append(positions, tile.ChunkPos{X: entry.X, Y: entry.Y})
	}
	return positions
}

// GetChunk читает чанк из файла региона
func (r *RegionFile) GetChunk(pos tile.ChunkPos) (*tile.Chunk, error) {
	r.mutex.RLock()
	entry, exists := r.chunkIndex[util.ChunkKey(pos)]
	r.mutex.RUnlock()

	if !exists {
		return nil, ErrChunkNotFound{X: pos.X, Y: pos.Y}
	}

	// Записи фиксированного размера: индекс с другим размером поврежден,
	// и верить его смещению (и тем более аллоцировать по нему) нельзя
	if entry.Size != uint32(regionChunkRecord) {
		return nil, ErrChunkNotFound{X: pos.X, Y: pos.Y}
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	data := make([]byte, regionChunkRecord)
	if _, err := r.file.ReadAt(data, int64(entry.Offset)); err != nil {
		return nil, fmt.Errorf("ошибка чтения чанка [%d, %d] из региона: %w", pos.X, pos.Y, err)
	}

	if binary.LittleEndian.Uint32(data[0:4]) != chunkFileMagic {
		return nil, ErrChunkNotFound{X: pos.X, Y: pos.Y}
	}
	if v := binary.LittleEndian.Uint16(data[4:6]); v != FormatVersion {
		return nil, ErrChunkNotFound{X: pos.X, Y: pos.Y}
	}

	return DecodeChunk(data[chunkFileHeaderSize:], pos)
}

// SaveChunk записывает чанк в его слот в файле региона
func (r *RegionFile) SaveChunk(chunk *tile.Chunk) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	slot := slotIndex(chunk.Pos)
	offset := slotOffset(slot)

	record := make([]byte, regionChunkRecord)
	binary.LittleEndian.PutUint32(record[0:4], chunkFileMagic)
	binary.LittleEndian.PutUint16(record[4:6], FormatVersion)
	copy(record[chunkFileHeaderSize:], EncodeChunk(chunk))

	if _, err := r.file.WriteAt(record, offset); err != nil {
		return fmt.Errorf("ошибка записи чанка [%d, %d] в регион: %w", chunk.Pos.X, chunk.Pos.Y, err)
	}

	// Обновляем запись индекса на диске и в кеше
	entry := chunkIndexEntry{
		X:      chunk.Pos.X,
		Y:      chunk.Pos.Y,
		Offset: uint32(offset),
		Size:   uint32(regionChunkRecord),
	}

	indexBytes := make([]byte, regionIndexEntry)
	binary.LittleEndian.PutUint32(indexBytes[0:4], uint32(entry.X))
	binary.LittleEndian.PutUint32(indexBytes[4:8], uint32(entry.Y))
	binary.LittleEndian.PutUint32(indexBytes[8:12], entry.Offset)
	binary.LittleEndian.PutUint32(indexBytes[12:16], entry.Size)

	indexOffset := int64(regionHeaderSize + slot*regionIndexEntry)
	if _, err := r.file.WriteAt(indexBytes, indexOffset); err != nil {
		return fmt.Errorf("ошибка записи индекса чанка [%d, %d]: %w", chunk.Pos.X, chunk.Pos.Y, err)
	}

	r.chunkIndex[util.ChunkKey(chunk.Pos)] = entry
	return nil
}

// DeleteChunk вычеркивает чанк из индекса региона. Слот остается на
// месте и будет переиспользован следующей записью того же чанка.
func (r *RegionFile) DeleteChunk(pos tile.ChunkPos) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	key := util.ChunkKey(pos)
	if _, exists := r.chunkIndex[key]; !exists {
		return nil
	}

	slot := slotIndex(pos)
	indexBytes := make([]byte, regionIndexEntry)
	binary.LittleEndian.PutUint32(indexBytes[0:4], uint32(pos.X))
	binary.LittleEndian.PutUint32(indexBytes[4:8], uint32(pos.Y))

	indexOffset := int64(regionHeaderSize + slot*regionIndexEntry)
	if _, err := r.file.WriteAt(indexBytes, indexOffset); err != nil {
		return fmt.Errorf("ошибка очистки индекса чанка [%d, %d]: %w", pos.X, pos.Y, err)
	}

	delete(r.chunkIndex, key)
	return nil
}

// Sync сбрасывает буферы файла региона на диск
func (r *RegionFile) Sync() error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.file.Sync()
}

// Close закрывает файл региона
func (r *RegionFile) Close() error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if err := r.file.Sync(); err != nil {
		r.file.Close()
		return err
	}
	return r.file.Close()
}
