package tile

// ChunkSize — размер чанка в тайлах по одной стороне.
// Константа единая для всего мира: генератор, менеджер чанков и формат
// хранилища рассчитаны именно на нее.
const ChunkSize int32 = 32

// ChunkPos — целочисленная позиция чанка в сетке чанков.
// Идентичность чанка определяется его позицией: два чанка с равными
// позициями — это один и тот же чанк.
type ChunkPos struct {
	X int32
	Y int32
}

// WorldRect — прямоугольник в мировых тайловых координатах,
// границы включительно.
type WorldRect struct {
	MinX, MinY int32
	MaxX, MaxY int32
}

// WorldToChunk переводит мировую тайловую координату в координату чанка.
// Используется деление с округлением вниз (floor), а не усечение к нулю,
// поэтому отрицательные координаты попадают в правильный чанк.
func WorldToChunk(world int32) int32 {
	return floorDiv(world, ChunkSize)
}

// WorldToLocal переводит мировую тайловую координату в локальную
// координату внутри чанка; результат всегда в диапазоне [0, ChunkSize).
func WorldToLocal(world int32) int32 {
	return mod(world, ChunkSize)
}

// WorldToChunkPos переводит пару мировых координат в позицию чанка.
func WorldToChunkPos(worldX, worldY int32) ChunkPos {
	return ChunkPos{X: WorldToChunk(worldX), Y: WorldToChunk(worldY)}
}

// ChunkOrigin возвращает мировую координату левого верхнего тайла чанка.
func ChunkOrigin(c int32) int32 {
	return c * ChunkSize
}

func floorDiv(a, b int32) int32 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func mod(a, b int32) int32 {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
