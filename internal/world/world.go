// Package world отвечает за инициализацию и связывание компонентов игрового мира
package world

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/annelo/go-terrain-server/internal/chunkmanager"
	"github.com/annelo/go-terrain-server/internal/config"
	"github.com/annelo/go-terrain-server/internal/gameloop"
	"github.com/annelo/go-terrain-server/internal/storage"
	"github.com/annelo/go-terrain-server/internal/worldgen"
)

// World представляет полный игровой мир: генератор, резидентное окно
// чанков, хранилище и игровой цикл.
type World struct {
	Generator    *worldgen.WorldGenerator
	ChunkManager *chunkmanager.ChunkManager
	Storage      storage.WorldStorage // nil при бэкенде "none"

	loop   *gameloop.Loop
	cancel context.CancelFunc
	done   chan struct{}

	focusMu sync.RWMutex
	focusX  int32
	focusY  int32

	closeOnce sync.Once
}

// NewWorld создает мир из конфигурации. Для существующего мира сид
// берется из сохраненной информации: значение из конфигурации действует
// только при первом создании, иначе рельеф "поплыл" бы между запусками.
func NewWorld(cfg config.ServerConfig) (*World, error) {
	var store storage.WorldStorage
	var err error

	switch cfg.World.Backend {
	case config.BackendBinary:
		store, err = storage.NewBinaryStorage(cfg.World.Path, cfg.World.Name, cfg.World.Seed)
	case config.BackendRegion:
		store, err = storage.NewRegionStorage(cfg.World.Path, cfg.World.Name, cfg.World.Seed)
	case config.BackendNone:
		store = nil
	default:
		return nil, fmt.Errorf("неизвестный бэкенд хранилища: %q", cfg.World.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть хранилище мира: %w", err)
	}

	seed := cfg.World.Seed
	if store != nil {
		if info, err := store.LoadWorld(context.Background()); err == nil {
			if info.Seed != seed {
				log.Printf("[World] Используем сохраненный сид %d (в конфигурации %d)", info.Seed, seed)
			}
			seed = info.Seed
		}
	}

	generator := worldgen.NewWorldGenerator(seed, cfg.Worldgen)
	chunks := chunkmanager.NewChunkManager(generator, store, cfg.World.LoadRadius)

	w := &World{
		Generator:    generator,
		ChunkManager: chunks,
		Storage:      store,
	}

	deps := gameloop.Dependencies{
		Chunks:  chunks,
		Storage: store,
		Focus:   w.Focus,
	}

	systems := []gameloop.System{gameloop.NewStreamingSystem()}
	if store != nil {
		systems = append(systems, gameloop.NewAutosaveSystem(cfg.AutosaveInterval()))
	}

	w.loop = gameloop.NewLoop(cfg.TickDuration(), deps, systems...)

	return w, nil
}

// SetFocus перемещает точку интереса мира (в мировых координатах).
// Окно чанков подтянется на ближайшем тике.
func (w *World) SetFocus(worldX, worldY int32) {
	w.focusMu.Lock()
	w.focusX, w.focusY = worldX, worldY
	w.focusMu.Unlock()
}

// Focus возвращает текущую точку интереса.
func (w *World) Focus() (int32, int32) {
	w.focusMu.RLock()
	defer w.focusMu.RUnlock()
	return w.focusX, w.focusY
}

// Start запускает игровой цикл мира.
func (w *World) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.done = make(chan struct{})

	go func() {
		defer close(w.done)
		w.loop.Run(ctx)
	}()

	log.Printf("[World] Мир запущен (сид %d)", w.Generator.Seed())
}

// Stop останавливает цикл, сохраняет все чанки и закрывает хранилище.
func (w *World) Stop(ctx context.Context) error {
	var retErr error
	w.closeOnce.Do(func() {
		if w.cancel != nil {
			w.cancel()
			select {
			case <-w.done:
			case <-time.After(5 * time.Second):
				log.Printf("[World] Игровой цикл не остановился вовремя")
			}
		}

		// Сначала сохраняем все грязные чанки, затем сбрасываем окно
		w.ChunkManager.Flush(ctx)
		w.ChunkManager.Clear()

		if w.Storage != nil {
			if err := w.Storage.Flush(ctx); err != nil {
				retErr = fmt.Errorf("ошибка сброса хранилища: %w", err)
			}
			if err := w.Storage.Close(); err != nil && retErr == nil {
				retErr = fmt.Errorf("ошибка закрытия хранилища: %w", err)
			}
		}

		log.Printf("[World] Мир остановлен")
	})
	return retErr
}
