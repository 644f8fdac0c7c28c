// Package chunkmanager отвечает за резидентное окно мира: подгрузку
// чанков вокруг точки интереса, выгрузку с сохранением и тотальный
// доступ к тайлам, при котором незагруженное пространство неотличимо
// от пустого.
package chunkmanager

import (
	"context"
	"log"
	"sync"

	"github.com/annelo/go-terrain-server/internal/storage"
	"github.com/annelo/go-terrain-server/internal/tile"
	"github.com/annelo/go-terrain-server/internal/worldinterfaces"
)

// hysteresisMargin — на сколько чанков радиус выгрузки больше радиуса
// загрузки. Зазор гасит дребезг на границе окна при движении точки
// интереса туда-сюда.
const hysteresisMargin = 1

// ChunkManager управляет резидентным набором чанков
type ChunkManager struct {
	mu     sync.RWMutex
	chunks map[tile.ChunkPos]*tile.Chunk

	generator worldinterfaces.ChunkGenerator
	store     storage.WorldStorage // может быть nil: мир без персистентности

	loadRadius   int32
	unloadRadius int32

	onLoaded   []worldinterfaces.ChunkObserver
	onUnloaded []worldinterfaces.ChunkObserver
}

var _ worldinterfaces.TileAccessor = (*ChunkManager)(nil)

// NewChunkManager создает менеджер чанков. store может быть nil, тогда
// выгруженные чанки просто теряются и генерируются заново.
func NewChunkManager(generator worldinterfaces.ChunkGenerator, store storage.WorldStorage, loadRadius int32) *ChunkManager {
	if loadRadius < 0 {
		loadRadius = 0
	}
	return &ChunkManager{
		chunks:       make(map[tile.ChunkPos]*tile.Chunk),
		generator:    generator,
		store:        store,
		loadRadius:   loadRadius,
		unloadRadius: loadRadius + hysteresisMargin,
	}
}

// OnChunkLoaded регистрирует наблюдателя загрузки чанков
func (cm *ChunkManager) OnChunkLoaded(fn worldinterfaces.ChunkObserver) {
	cm.mu.Lock()
	cm.onLoaded = append(cm.onLoaded, fn)
	cm.mu.Unlock()
}

// OnChunkUnloaded регистрирует наблюдателя выгрузки чанков
func (cm *ChunkManager) OnChunkUnloaded(fn worldinterfaces.ChunkObserver) {
	cm.mu.Lock()
	cm.onUnloaded = append(cm.onUnloaded, fn)
	cm.mu.Unlock()
}

// UpdateLoadedChunks приводит резидентное окно в соответствие с точкой
// интереса (в мировых координатах): догружает недостающие чанки в
// радиусе загрузки и выгружает ушедшие за радиус выгрузки. Грязные
// чанки при выгрузке сохраняются ровно один раз.
func (cm *ChunkManager) UpdateLoadedChunks(ctx context.Context, focusWorldX, focusWorldY int32) {
	center := tile.WorldToChunkPos(focusWorldX, focusWorldY)

	var loaded, unloaded []*tile.Chunk

	cm.mu.Lock()

	// Загрузка окна вокруг центра
	for dy := -cm.loadRadius; dy <= cm.loadRadius; dy++ {
		for dx := -cm.loadRadius; dx <= cm.loadRadius; dx++ {
			pos := tile.ChunkPos{X: center.X + dx, Y: center.Y + dy}
			if _, exists := cm.chunks[pos]; exists {
				continue
			}
			chunk := cm.obtainChunk(ctx, pos)
			cm.chunks[pos] = chunk
			loaded = append(loaded, chunk)
		}
	}

	// Выгрузка чанков за пределами радиуса выгрузки (расстояние
	// Чебышёва: окно квадратное)
	for pos, chunk := range cm.chunks {
		if chebyshev(pos, center) <= cm.unloadRadius {
			continue
		}
		cm.persistChunkLocked(ctx, chunk)
		delete(cm.chunks, pos)
		unloaded = append(unloaded, chunk)
	}

	loadedObs := append([]worldinterfaces.ChunkObserver(nil), cm.onLoaded...)
	unloadedObs := append([]worldinterfaces.ChunkObserver(nil), cm.onUnloaded...)
	cm.mu.Unlock()

	// Наблюдатели вызываются вне мьютекса: им разрешено обращаться к
	// менеджеру
	for _, chunk := range loaded {
		for _, fn := range loadedObs {
			fn(chunk)
		}
	}
	for _, chunk := range unloaded {
		for _, fn := range unloadedObs {
			fn(chunk)
		}
	}
}

// obtainChunk достает чанк из хранилища либо генерирует заново.
// Вызывается под мьютексом.
func (cm *ChunkManager) obtainChunk(ctx context.Context, pos tile.ChunkPos) *tile.Chunk {
	if cm.store != nil {
		chunk, err := cm.store.LoadChunk(ctx, pos)
		if err == nil {
			chunk.Loaded = true
			return chunk
		}
		if !storage.IsNotFound(err) {
			// Ошибка ввода-вывода: логируем и генерируем заново, мир
			// важнее одного сохранения
			log.Printf("[ChunkManager] Ошибка загрузки чанка [%d, %d]: %v", pos.X, pos.Y, err)
		}
	}

	chunk := tile.NewChunk(pos)
	cm.generator.GenerateChunk(chunk)
	chunk.Loaded = true
	return chunk
}

// persistChunkLocked сохраняет грязный чанк и снимает флаг Dirty.
// Вызывается под мьютексом.
func (cm *ChunkManager) persistChunkLocked(ctx context.Context, chunk *tile.Chunk) {
	if cm.store == nil || !chunk.Dirty {
		return
	}
	if err := cm.store.SaveChunk(ctx, chunk); err != nil {
		log.Printf("[ChunkManager] Ошибка сохранения чанка [%d, %d]: %v", chunk.Pos.X, chunk.Pos.Y, err)
		return
	}
	chunk.Dirty = false
}

// chebyshev возвращает расстояние Чебышёва между позициями чанков
func chebyshev(a, b tile.ChunkPos) int32 {
	dx := a.X - b.X
	if dx < 0 {
		dx = -dx
	}
	dy := a.Y - b.Y
	if dy < 0 {
		dy = -dy
	}
	if dx > dy {
		return dx
	}
	return dy
}

// GetTileAt возвращает копию тайла по мировым координатам. Функция
// тотальна: для незагруженного пространства возвращается пустой тайл,
// без ошибок, генерации и обращений к диску.
func (cm *ChunkManager) GetTileAt(worldX, worldY int32) tile.Tile {
	pos := tile.WorldToChunkPos(worldX, worldY)

	cm.mu.RLock()
	defer cm.mu.RUnlock()

	chunk, exists := cm.chunks[pos]
	if !exists {
		return tile.Empty
	}
	// Копия снимается под блокировкой, иначе чтение гонялось бы с
	// мутациями из mutateTileAt
	return *chunk.GetTile(tile.WorldToLocal(worldX), tile.WorldToLocal(worldY))
}

// IsSolidAt сообщает, непроходим ли тайл по мировым координатам.
// Незагруженное пространство непроходимым не считается.
func (cm *ChunkManager) IsSolidAt(worldX, worldY int32) bool {
	t := cm.GetTileAt(worldX, worldY)
	return t.IsSolid()
}

// SetTileTypeAt устанавливает тип тайла по мировым координатам.
// Мутация незагруженного пространства — тихий no-op: подгрузку окна
// решает только UpdateLoadedChunks.
func (cm *ChunkManager) SetTileTypeAt(worldX, worldY int32, tp tile.Type) {
	cm.mutateTileAt(worldX, worldY, func(t *tile.Tile) {
		t.SetType(tp)
	})
}

// ClearTileAt сбрасывает тайл в воздух по мировым координатам (копание).
// Фоновая стена при этом сохраняется.
func (cm *ChunkManager) ClearTileAt(worldX, worldY int32) {
	cm.mutateTileAt(worldX, worldY, func(t *tile.Tile) {
		t.Clear()
	})
}

// mutateTileAt применяет мутацию к тайлу, помечает чанк грязным и
// соседние тайлы того же чанка на пересчет автотайлинга. Соседи в
// смежных чанках помечаются при их собственной следующей мутации.
func (cm *ChunkManager) mutateTileAt(worldX, worldY int32, mutate func(*tile.Tile)) {
	pos := tile.WorldToChunkPos(worldX, worldY)

	cm.mu.Lock()
	defer cm.mu.Unlock()

	chunk, exists := cm.chunks[pos]
	if !exists {
		return
	}

	lx := tile.WorldToLocal(worldX)
	ly := tile.WorldToLocal(worldY)
	mutate(chunk.GetTile(lx, ly))
	chunk.MarkDirty()

	for _, d := range [4][2]int32{{0, -1}, {0, 1}, {-1, 0}, {1, 0}} {
		nx, ny := lx+d[0], ly+d[1]
		if tile.InBounds(nx, ny) {
			chunk.GetTile(nx, ny).MarkFrameDirty()
		}
	}
}

// GetChunkAt возвращает загруженный чанк или nil
func (cm *ChunkManager) GetChunkAt(pos tile.ChunkPos) *tile.Chunk {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.chunks[pos]
}

// GetChunksInBounds возвращает загруженные чанки, пересекающие мировой
// прямоугольник. Ничего не генерирует и не читает с диска.
func (cm *ChunkManager) GetChunksInBounds(rect tile.WorldRect) []*tile.Chunk {
	minChunkX := tile.WorldToChunk(rect.MinX)
	minChunkY := tile.WorldToChunk(rect.MinY)
	maxChunkX := tile.WorldToChunk(rect.MaxX)
	maxChunkY := tile.WorldToChunk(rect.MaxY)

	cm.mu.RLock()
	defer cm.mu.RUnlock()

	var result []*tile.Chunk
	for cy := minChunkY; cy <= maxChunkY; cy++ {
		for cx := minChunkX; cx <= maxChunkX; cx++ {
			if chunk, exists := cm.chunks[tile.ChunkPos{X: cx, Y: cy}]; exists {
				result = append(result, chunk)
			}
		}
	}
	return result
}

// GetLoadedChunks возвращает срез всех резидентных чанков
func (cm *ChunkManager) GetLoadedChunks() []*tile.Chunk {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	result := make([]*tile.Chunk, 0, len(cm.chunks))
	for _, chunk := range cm.chunks {
		result = append(result, chunk)
	}
	return result
}

// LoadedCount возвращает число резидентных чанков
func (cm *ChunkManager) LoadedCount() int {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return len(cm.chunks)
}

// IsChunkLoaded сообщает, резидентен ли чанк
func (cm *ChunkManager) IsChunkLoaded(pos tile.ChunkPos) bool {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	_, exists := cm.chunks[pos]
	return exists
}

// Flush сохраняет все грязные чанки, не выгружая их
func (cm *ChunkManager) Flush(ctx context.Context) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	for _, chunk := range cm.chunks {
		cm.persistChunkLocked(ctx, chunk)
	}
}

// Clear сбрасывает весь резидентный набор без неявного сохранения:
// кому нужны несохраненные правки, тот вызывает Flush перед Clear.
func (cm *ChunkManager) Clear() {
	cm.mu.Lock()

	var unloaded []*tile.Chunk
	for pos, chunk := range cm.chunks {
		delete(cm.chunks, pos)
		unloaded = append(unloaded, chunk)
	}
	unloadedObs := append([]worldinterfaces.ChunkObserver(nil), cm.onUnloaded...)
	cm.mu.Unlock()

	for _, chunk := range unloaded {
		for _, fn := range unloadedObs {
			fn(chunk)
		}
	}
}
