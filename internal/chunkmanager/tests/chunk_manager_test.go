package chunkmanager_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/annelo/go-terrain-server/internal/chunkmanager"
	"github.com/annelo/go-terrain-server/internal/storage"
	"github.com/annelo/go-terrain-server/internal/tile"
	"github.com/annelo/go-terrain-server/internal/worldgen"
)

// memStorage — хранилище в памяти со счетчиком сохранений, чтобы
// проверять, что выгрузка сохраняет чанк ровно один раз
type memStorage struct {
	mu     sync.Mutex
	chunks map[tile.ChunkPos][]byte
	saves  map[tile.ChunkPos]int
}

func newMemStorage() *memStorage {
	return &memStorage{
		chunks: make(map[tile.ChunkPos][]byte),
		saves:  make(map[tile.ChunkPos]int),
	}
}

func (m *memStorage) SaveChunk(ctx context.Context, chunk *tile.Chunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chunks[chunk.Pos] = storage.EncodeChunk(chunk)
	m.saves[chunk.Pos]++
	return nil
}

func (m *memStorage) LoadChunk(ctx context.Context, pos tile.ChunkPos) (*tile.Chunk, error) {
	m.mu.Lock()
	data, exists := m.chunks[pos]
	m.mu.Unlock()
	if !exists {
		return nil, storage.ErrChunkNotFound{X: pos.X, Y: pos.Y}
	}
	return storage.DecodeChunk(data, pos)
}

func (m *memStorage) DeleteChunk(ctx context.Context, pos tile.ChunkPos) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.chunks, pos)
	return nil
}

func (m *memStorage) ListChunks(ctx context.Context) ([]tile.ChunkPos, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]tile.ChunkPos, 0, len(m.chunks))
	for pos := range m.chunks {
		out = append(out, pos)
	}
	return out, nil
}

func (m *memStorage) SaveWorld(ctx context.Context, info *storage.WorldInfo) error { return nil }
func (m *memStorage) LoadWorld(ctx context.Context) (*storage.WorldInfo, error) {
	return nil, errors.New("информация о мире не хранится")
}
func (m *memStorage) Flush(ctx context.Context) error { return nil }
func (m *memStorage) Close() error                    { return nil }

func (m *memStorage) saveCount(pos tile.ChunkPos) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves[pos]
}

func newTestManager(radius int32, store storage.WorldStorage) *chunkmanager.ChunkManager {
	gen := worldgen.NewWorldGenerator(12345, worldgen.DefaultParams())
	return chunkmanager.NewChunkManager(gen, store, radius)
}

func TestUpdateLoadsExactWindow(t *testing.T) {
	cm := newTestManager(2, nil)
	ctx := context.Background()

	cm.UpdateLoadedChunks(ctx, 0, 0)

	want := (2*2 + 1) * (2*2 + 1)
	if got := cm.LoadedCount(); got != want {
		t.Fatalf("loaded %d chunks, want %d", got, want)
	}

	for cy := int32(-2); cy <= 2; cy++ {
		for cx := int32(-2); cx <= 2; cx++ {
			if !cm.IsChunkLoaded(tile.ChunkPos{X: cx, Y: cy}) {
				t.Fatalf("chunk (%d, %d) inside radius not loaded", cx, cy)
			}
		}
	}
	if cm.IsChunkLoaded(tile.ChunkPos{X: 3, Y: 0}) {
		t.Fatalf("chunk outside radius was loaded")
	}
}

func TestHysteresisKeepsBorderChunks(t *testing.T) {
	cm := newTestManager(1, nil)
	ctx := context.Background()

	cm.UpdateLoadedChunks(ctx, 0, 0)

	// Сдвигаем точку интереса на один чанк вправо: чанки на
	// расстоянии 2 от нового центра остаются (радиус выгрузки 1+1)
	cm.UpdateLoadedChunks(ctx, tile.ChunkSize, 0)

	if !cm.IsChunkLoaded(tile.ChunkPos{X: -1, Y: 0}) {
		t.Fatalf("chunk at unload-radius distance must survive (hysteresis)")
	}

	// А после сдвига еще дальше чанк (-1, 0) уже выгружается
	cm.UpdateLoadedChunks(ctx, 2*tile.ChunkSize, 0)
	if cm.IsChunkLoaded(tile.ChunkPos{X: -1, Y: 0}) {
		t.Fatalf("chunk beyond unload radius must be evicted")
	}
}

func TestGetTileAtIsTotal(t *testing.T) {
	cm := newTestManager(1, nil)
	ctx := context.Background()

	// До загрузки любое место отдает пустой тайл
	far := cm.GetTileAt(1_000_000, 1_000_000)
	if far != tile.Empty {
		t.Fatalf("unloaded space returned %+v, want empty tile", far)
	}
	if cm.IsSolidAt(1_000_000, 1_000_000) {
		t.Fatalf("unloaded space must not be solid")
	}

	cm.UpdateLoadedChunks(ctx, 0, 3200)

	// Глубоко под поверхностью в загруженном окне — камень или руда
	found := false
	for wy := int32(3200 - tile.ChunkSize); wy < 3200+tile.ChunkSize; wy++ {
		tl := cm.GetTileAt(0, wy)
		if tl.IsActive() {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("loaded window around depth contains no active tiles")
	}

	// Чтение не должно было ничего догрузить
	if cm.IsChunkLoaded(tile.WorldToChunkPos(1_000_000, 1_000_000)) {
		t.Fatalf("read must not load chunks")
	}
}

func TestMutationOfUnloadedSpaceIsNoop(t *testing.T) {
	cm := newTestManager(1, nil)

	cm.SetTileTypeAt(5000, 5000, tile.Stone)
	cm.ClearTileAt(5000, 5000)

	if cm.LoadedCount() != 0 {
		t.Fatalf("mutation of unloaded space must not load chunks")
	}
	if got := cm.GetTileAt(5000, 5000); got != tile.Empty {
		t.Fatalf("unloaded space changed by no-op mutation: %+v", got)
	}
}

func TestMutationMarksDirtyAndFrames(t *testing.T) {
	cm := newTestManager(1, nil)
	ctx := context.Background()
	cm.UpdateLoadedChunks(ctx, 0, 0)

	// Тайл в середине чанка (0,0)
	cm.SetTileTypeAt(10, 10, tile.Wood)

	chunk := cm.GetChunkAt(tile.ChunkPos{X: 0, Y: 0})
	if chunk == nil {
		t.Fatalf("chunk (0,0) must be loaded")
	}
	if !chunk.Dirty {
		t.Fatalf("mutation must mark chunk dirty")
	}

	got := cm.GetTileAt(10, 10)
	if got.Type != tile.Wood || !got.IsActive() {
		t.Fatalf("mutated tile = %+v, want active wood", got)
	}

	// Соседи в том же чанке помечены на пересчет автотайлинга
	for _, d := range [4][2]int32{{0, -1}, {0, 1}, {-1, 0}, {1, 0}} {
		n := cm.GetTileAt(10+d[0], 10+d[1])
		if n.Flags&tile.FlagFrameDirty == 0 {
			t.Fatalf("neighbor (%d, %d) not marked frame-dirty", 10+d[0], 10+d[1])
		}
	}
}

func TestEvictionPersistsDirtyChunkOnce(t *testing.T) {
	store := newMemStorage()
	cm := newTestManager(1, store)
	ctx := context.Background()

	cm.UpdateLoadedChunks(ctx, 0, 0)
	cm.SetTileTypeAt(3, 3, tile.GoldOre)

	pos := tile.ChunkPos{X: 0, Y: 0}

	// Уводим точку интереса далеко: чанк выгружается и сохраняется
	cm.UpdateLoadedChunks(ctx, 100*tile.ChunkSize, 0)
	if cm.IsChunkLoaded(pos) {
		t.Fatalf("chunk must be evicted after focus moved away")
	}
	if got := store.saveCount(pos); got != 1 {
		t.Fatalf("dirty chunk saved %d times on eviction, want 1", got)
	}

	// Возвращаемся: чанк должен прийти из хранилища с мутацией
	cm.UpdateLoadedChunks(ctx, 0, 0)
	got := cm.GetTileAt(3, 3)
	if got.Type != tile.GoldOre {
		t.Fatalf("reloaded tile = %+v, want gold ore from storage", got)
	}

	// Чистый чанк при повторной выгрузке не сохраняется снова
	cm.UpdateLoadedChunks(ctx, 100*tile.ChunkSize, 0)
	if got := store.saveCount(pos); got != 1 {
		t.Fatalf("clean chunk re-saved on eviction: %d saves", got)
	}
}

func TestCleanChunksNotPersisted(t *testing.T) {
	store := newMemStorage()
	cm := newTestManager(1, store)
	ctx := context.Background()

	cm.UpdateLoadedChunks(ctx, 0, 0)
	cm.UpdateLoadedChunks(ctx, 100*tile.ChunkSize, 0)

	for pos, n := range store.saves {
		if n != 0 {
			t.Fatalf("untouched chunk (%d, %d) was saved %d times", pos.X, pos.Y, n)
		}
	}
}

func TestObserversNotified(t *testing.T) {
	cm := newTestManager(1, nil)
	ctx := context.Background()

	var mu sync.Mutex
	loaded := make(map[tile.ChunkPos]bool)
	unloaded := make(map[tile.ChunkPos]bool)

	cm.OnChunkLoaded(func(c *tile.Chunk) {
		mu.Lock()
		loaded[c.Pos] = true
		mu.Unlock()
	})
	cm.OnChunkUnloaded(func(c *tile.Chunk) {
		mu.Lock()
		unloaded[c.Pos] = true
		mu.Unlock()
	})

	cm.UpdateLoadedChunks(ctx, 0, 0)
	if len(loaded) != 9 {
		t.Fatalf("load observer saw %d chunks, want 9", len(loaded))
	}

	cm.UpdateLoadedChunks(ctx, 100*tile.ChunkSize, 0)
	if !unloaded[tile.ChunkPos{X: 0, Y: 0}] {
		t.Fatalf("unload observer missed chunk (0, 0)")
	}
}

func TestGetChunksInBoundsDoesNotGenerate(t *testing.T) {
	cm := newTestManager(1, nil)
	ctx := context.Background()
	cm.UpdateLoadedChunks(ctx, 0, 0)

	before := cm.LoadedCount()

	rect := tile.WorldRect{MinX: -200, MinY: -200, MaxX: 200, MaxY: 200}
	chunks := cm.GetChunksInBounds(rect)

	if cm.LoadedCount() != before {
		t.Fatalf("GetChunksInBounds must not load chunks")
	}
	if len(chunks) != before {
		t.Fatalf("got %d chunks in bounds, want all %d loaded", len(chunks), before)
	}
}

func TestFlushPersistsWithoutEviction(t *testing.T) {
	store := newMemStorage()
	cm := newTestManager(1, store)
	ctx := context.Background()

	cm.UpdateLoadedChunks(ctx, 0, 0)
	cm.SetTileTypeAt(1, 1, tile.Stone)

	cm.Flush(ctx)

	pos := tile.ChunkPos{X: 0, Y: 0}
	if got := store.saveCount(pos); got != 1 {
		t.Fatalf("flush saved dirty chunk %d times, want 1", got)
	}
	if !cm.IsChunkLoaded(pos) {
		t.Fatalf("flush must not evict chunks")
	}

	// Повторный Flush без новых мутаций ничего не пишет
	cm.Flush(ctx)
	if got := store.saveCount(pos); got != 1 {
		t.Fatalf("flush of clean chunk wrote again: %d saves", got)
	}
}

func TestClearDropsWithoutPersisting(t *testing.T) {
	store := newMemStorage()
	cm := newTestManager(2, store)
	ctx := context.Background()

	cm.UpdateLoadedChunks(ctx, 0, 0)
	cm.SetTileTypeAt(0, 0, tile.Wood)

	// Clear не сохраняет ничего: кто хочет сохранить, вызывает Flush
	cm.Clear()

	if cm.LoadedCount() != 0 {
		t.Fatalf("clear must evict everything, %d chunks left", cm.LoadedCount())
	}
	if got := store.saveCount(tile.ChunkPos{X: 0, Y: 0}); got != 0 {
		t.Fatalf("clear implicitly saved dirty chunk %d times, want 0", got)
	}
}

func TestFlushThenClearRetainsMutations(t *testing.T) {
	store := newMemStorage()
	cm := newTestManager(1, store)
	ctx := context.Background()

	cm.UpdateLoadedChunks(ctx, 0, 0)
	cm.SetTileTypeAt(0, 0, tile.Wood)

	cm.Flush(ctx)
	cm.Clear()

	cm.UpdateLoadedChunks(ctx, 0, 0)
	if got := cm.GetTileAt(0, 0); got.Type != tile.Wood {
		t.Fatalf("mutation lost after flush+clear: %+v", got)
	}
}

func TestConcurrentTileReadsAndWrites(t *testing.T) {
	cm := newTestManager(1, nil)
	ctx := context.Background()

	cm.UpdateLoadedChunks(ctx, 0, 0)
	cm.SetTileTypeAt(5, 5, tile.Stone)

	// Читатель и писатель работают с одним тайлом: копия тайла должна
	// сниматься под блокировкой, иначе детектор гонок ловит чтение
	// параллельно мутации
	const iterations = 2000
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < iterations; i++ {
			if i%2 == 0 {
				cm.SetTileTypeAt(5, 5, tile.Stone)
			} else {
				cm.ClearTileAt(5, 5)
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < iterations; i++ {
			got := cm.GetTileAt(5, 5).Type
			if got != tile.Stone && got != tile.Air {
				t.Errorf("tile type mid-mutation = %v, want stone or air", got)
				return
			}
		}
	}()

	wg.Wait()
}
