package gameloop

import (
	"context"
	"time"

	"github.com/annelo/go-terrain-server/internal/chunkmanager"
	"github.com/annelo/go-terrain-server/internal/storage"
)

// System описывает логику, выполняемую каждый тик цикла.
type System interface {
	// Init вызывается один раз перед запуском цикла.
	Init(deps Dependencies) error
	// Tick вызывается каждый игровой тик.
	Tick(ctx context.Context, dt time.Duration)
	// Name возвращает читаемое имя системы.
	Name() string
}

// Dependencies передаются системам при инициализации.
type Dependencies struct {
	Chunks  *chunkmanager.ChunkManager
	Storage storage.WorldStorage
	// Focus возвращает текущую точку интереса в мировых координатах.
	// Вокруг нее стримится резидентное окно чанков.
	Focus func() (worldX, worldY int32)
}
