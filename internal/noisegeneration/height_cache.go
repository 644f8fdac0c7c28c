package noisegeneration

import "sync"

// HeightCache — LRU-кеш высот поверхности с целочисленными ключами.
// Кеширует уже готовые целые высоты, а не промежуточные значения шума,
// поэтому никакой потери точности (и, значит, нарушения детерминизма)
// при повторном чтении не возникает.
type HeightCache struct {
	cache    map[int64]int32
	keys     []int64 // Ключи в порядке использования (для LRU)
	capacity int
	mu       sync.RWMutex

	hitCount  int
	missCount int
}

// NewHeightCache создает кеш высот заданной емкости.
func NewHeightCache(capacity int) *HeightCache {
	return &HeightCache{
		cache:    make(map[int64]int32),
		keys:     make([]int64, 0, capacity),
		capacity: capacity,
	}
}

// Get получает высоту из кеша, возвращает значение и флаг успеха.
func (hc *HeightCache) Get(worldX int64) (int32, bool) {
	hc.mu.RLock()
	h, exists := hc.cache[worldX]
	hc.mu.RUnlock()

	if exists {
		hc.mu.Lock()
		hc.hitCount++
		hc.moveKeyToEnd(worldX)
		hc.mu.Unlock()
		return h, true
	}

	hc.mu.Lock()
	hc.missCount++
	hc.mu.Unlock()
	return 0, false
}

// Put добавляет высоту в кеш.
func (hc *HeightCache) Put(worldX int64, height int32) {
	hc.mu.Lock()
	defer hc.mu.Unlock()

	if _, exists := hc.cache[worldX]; exists {
		hc.cache[worldX] = height
		hc.moveKeyToEnd(worldX)
		return
	}

	// При достижении емкости удаляем самый давний ключ
	if len(hc.cache) >= hc.capacity && len(hc.keys) > 0 {
		delete(hc.cache, hc.keys[0])
		hc.keys = hc.keys[1:]
	}

	hc.cache[worldX] = height
	hc.keys = append(hc.keys, worldX)
}

// moveKeyToEnd перемещает ключ в конец списка (самый недавно
// использованный). Вызывается под мьютексом.
func (hc *HeightCache) moveKeyToEnd(key int64) {
	for i, k := range hc.keys {
		if k == key {
			hc.keys = append(hc.keys[:i], hc.keys[i+1:]...)
			hc.keys = append(hc.keys, key)
			return
		}
	}
}

// Stats возвращает счетчики попаданий и промахов и долю попаданий.
func (hc *HeightCache) Stats() (hits, misses int, hitRate float64) {
	hc.mu.RLock()
	defer hc.mu.RUnlock()

	total := hc.hitCount + hc.missCount
	rate := 0.0
	if total > 0 {
		rate = float64(hc.hitCount) / float64(total)
	}
	return hc.hitCount, hc.missCount, rate
}

// Clear очищает кеш высот.
func (hc *HeightCache) Clear() {
	hc.mu.Lock()
	defer hc.mu.Unlock()

	hc.cache = make(map[int64]int32)
	hc.keys = make([]int64, 0, hc.capacity)
}
