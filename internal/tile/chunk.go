package tile

// Chunk — квадратный блок тайлов ChunkSize×ChunkSize, единица стриминга
// и сохранения. Тайлы лежат в одном непрерывном массиве (арена);
// любой доступ идет по индексу (localX, localY) через GetTile, отдельные
// копии тайлов с последующей записью обратно не используются.
type Chunk struct {
	Pos   ChunkPos
	Tiles [ChunkSize * ChunkSize]Tile

	// Dirty выставляется при любой мутации после генерации и
	// сбрасывается после успешного сохранения либо свежей загрузки.
	Dirty bool

	// Loaded выставляется, когда чанк полностью готов (сгенерирован или
	// загружен) и вставлен в резидентный набор. «Наполовину готовых»
	// чанков снаружи не видно.
	Loaded bool
}

// NewChunk создает пустой чанк в заданной позиции.
func NewChunk(pos ChunkPos) *Chunk {
	return &Chunk{Pos: pos}
}

// index возвращает индекс тайла в плоском массиве.
func index(localX, localY int32) int32 {
	return localY*ChunkSize + localX
}

// GetTile возвращает указатель на тайл по локальным координатам.
// Это единственный путь доступа к тайлам чанка — и для генерации,
// и для копания/строительства.
func (c *Chunk) GetTile(localX, localY int32) *Tile {
	return &c.Tiles[index(localX, localY)]
}

// InBounds проверяет, что локальные координаты лежат внутри чанка.
func InBounds(localX, localY int32) bool {
	return localX >= 0 && localX < ChunkSize && localY >= 0 && localY < ChunkSize
}

// MarkDirty помечает чанк как измененный.
func (c *Chunk) MarkDirty() {
	c.Dirty = true
}

// EnumerateTiles обходит тайлы чанка в порядке строк (row-major) и
// вызывает fn для каждого. Используется сериализацией и отрисовкой.
func (c *Chunk) EnumerateTiles(fn func(localX, localY int32, t *Tile)) {
	for y := int32(0); y < ChunkSize; y++ {
		for x := int32(0); x < ChunkSize; x++ {
			fn(x, y, &c.Tiles[index(x, y)])
		}
	}
}

// EqualTiles сравнивает тайловые массивы двух чанков поэлементно.
func (c *Chunk) EqualTiles(other *Chunk) bool {
	return c.Tiles == other.Tiles
}
