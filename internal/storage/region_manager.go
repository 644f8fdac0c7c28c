package storage

import (
	"container/list"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	util "github.com/annelo/go-terrain-server/internal/storage/util"
	"github.com/annelo/go-terrain-server/internal/tile"
)

// MaxOpenRegions — лимит одновременно открытых файлов регионов
const MaxOpenRegions = 16

// RegionManager управляет открытыми регионами и их кешем
type RegionManager struct {
	basePath       string
	regions        map[string]*RegionFile
	regionsMutex   sync.RWMutex
	maxOpenRegions int
	lruList        *list.List
	lruMap         map[string]*list.Element
}

// LRU элемент для отслеживания использования регионов
type regionLRUItem struct {
	key        string
	lastAccess time.Time
}

// NewRegionManager создаёт новый менеджер регионов
func NewRegionManager(basePath string) *RegionManager {
	return &RegionManager{
		basePath:       basePath,
		regions:        make(map[string]*RegionFile),
		maxOpenRegions: MaxOpenRegions,
		lruList:        list.New(),
		lruMap:         make(map[string]*list.Element),
	}
}

// regionKeyFromChunk возвращает ключ региона по координатам чанка
func regionKeyFromChunk(pos tile.ChunkPos) string {
	return util.RegionKey(RegionCoord(pos.X), RegionCoord(pos.Y))
}

// regionCoordsFromKey возвращает координаты региона из ключа
func regionCoordsFromKey(key string) (int32, int32) {
	var regionX, regionY int32
	fmt.Sscanf(key, "%d:%d", &regionX, &regionY)
	return regionX, regionY
}

// GetRegion получает или открывает регион по координатам чанка
func (rm *RegionManager) GetRegion(pos tile.ChunkPos) (*RegionFile, error) {
	regionKey := regionKeyFromChunk(pos)

	rm.regionsMutex.RLock()
	region, exists := rm.regions[regionKey]
	rm.regionsMutex.RUnlock()

	if exists {
		rm.regionsMutex.Lock()
		rm.updateLRU(regionKey)
		rm.regionsMutex.Unlock()
		return region, nil
	}

	return rm.openRegion(regionKey)
}

// Открытие региона
func (rm *RegionManager) openRegion(regionKey string) (*RegionFile, error) {
	rm.regionsMutex.Lock()
	defer rm.regionsMutex.Unlock()

	// Проверяем ещё раз, не был ли регион открыт другой горутиной
	if region, exists := rm.regions[regionKey]; exists {
		rm.updateLRU(regionKey)
		return region, nil
	}

	// При превышении лимита закрываем наименее используемый регион
	if len(rm.regions) >= rm.maxOpenRegions {
		if err := rm.closeOldestRegion(); err != nil {
			return nil, fmt.Errorf("не удалось закрыть старый регион: %w", err)
		}
	}

	regionX, regionY := regionCoordsFromKey(regionKey)

	region, err := NewRegionFile(rm.basePath, regionX, regionY)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть регион %s: %w", regionKey, err)
	}

	rm.regions[regionKey] = region
	rm.updateLRU(regionKey)

	return region, nil
}

// updateLRU обновляет позицию региона в LRU. Вызывается под мьютексом.
func (rm *RegionManager) updateLRU(regionKey string) {
	if elem, exists := rm.lruMap[regionKey]; exists {
		elem.Value.(*regionLRUItem).lastAccess = time.Now()
		rm.lruList.MoveToFront(elem)
		return
	}
	elem := rm.lruList.PushFront(&regionLRUItem{key: regionKey, lastAccess: time.Now()})
	rm.lruMap[regionKey] = elem
}

// closeOldestRegion закрывает наименее используемый регион. Вызывается
// под мьютексом.
func (rm *RegionManager) closeOldestRegion() error {
	elem := rm.lruList.Back()
	if elem == nil {
		return nil
	}

	item := elem.Value.(*regionLRUItem)
	region, exists := rm.regions[item.key]
	if exists {
		if err := region.Close(); err != nil {
			log.Printf("[RegionManager] Ошибка закрытия региона %s: %v", item.key, err)
		}
		delete(rm.regions, item.key)
	}

	rm.lruList.Remove(elem)
	delete(rm.lruMap, item.key)
	return nil
}

// ListChunks собирает позиции чанков по всем файлам регионов на диске,
// включая еще не открытые.
func (rm *RegionManager) ListChunks() ([]tile.ChunkPos, error) {
	entries, err := os.ReadDir(rm.basePath)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения директории регионов: %w", err)
	}

	var positions []tile.ChunkPos
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		var regionX, regionY int32
		if _, err := fmt.Sscanf(entry.Name(), "r.%d.%d.bin", &regionX, &regionY); err != nil {
			continue
		}

		region, err := rm.GetRegion(tile.ChunkPos{
			X: regionX * RegionSize,
			Y: regionY * RegionSize,
		})
		if err != nil {
			log.Printf("[RegionManager] Пропускаем нечитаемый регион %s: %v",
				filepath.Join(rm.basePath, entry.Name()), err)
			continue
		}
		positions = append(positions, region.ListChunks()...)
	}

	return positions, nil
}

// Flush сбрасывает все открытые регионы на диск
func (rm *RegionManager) Flush() error {
	rm.regionsMutex.RLock()
	defer rm.regionsMutex.RUnlock()

	var retErr error
	for key, region := range rm.regions {
		if err := region.Sync(); err != nil {
			log.Printf("[RegionManager] Ошибка синхронизации региона %s: %v", key, err)
			retErr = err
		}
	}
	return retErr
}

// Close закрывает все открытые регионы
func (rm *RegionManager) Close() error {
	rm.regionsMutex.Lock()
	defer rm.regionsMutex.Unlock()

	var retErr error
	for key, region := range rm.regions {
		if err := region.Close(); err != nil {
			log.Printf("[RegionManager] Ошибка закрытия региона %s: %v", key, err)
			retErr = err
		}
		delete(rm.regions, key)
	}
	rm.lruList.Init()
	rm.lruMap = make(map[string]*list.Element)

	return retErr
}
