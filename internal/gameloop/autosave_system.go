package gameloop

import (
	"context"
	"log"
	"time"
)

// AutosaveSystem периодически сохраняет грязные чанки и информацию о
// мире, не дожидаясь выгрузки.
type AutosaveSystem struct {
	deps     Dependencies
	interval time.Duration
	elapsed  time.Duration
}

// NewAutosaveSystem создает систему автосохранения с заданным интервалом
func NewAutosaveSystem(interval time.Duration) *AutosaveSystem {
	return &AutosaveSystem{interval: interval}
}

func (a *AutosaveSystem) Name() string { return "autosave" }

func (a *AutosaveSystem) Init(deps Dependencies) error {
	a.deps = deps
	return nil
}

func (a *AutosaveSystem) Tick(ctx context.Context, dt time.Duration) {
	if a.deps.Chunks == nil || a.deps.Storage == nil {
		return
	}

	a.elapsed += dt
	if a.elapsed < a.interval {
		return
	}
	a.elapsed = 0

	start := time.Now()
	a.deps.Chunks.Flush(ctx)
	if err := a.deps.Storage.Flush(ctx); err != nil {
		log.Printf("[AutosaveSystem] Ошибка сброса хранилища: %v", err)
		return
	}
	log.Printf("[AutosaveSystem] Автосохранение завершено за %v", time.Since(start))
}
