package gameloop

import (
	"context"
	"log"
	"time"
)

// StreamingSystem каждый тик приводит резидентное окно чанков в
// соответствие с точкой интереса.
type StreamingSystem struct {
	deps      Dependencies
	lastX     int32
	lastY     int32
	firstTick bool
}

func NewStreamingSystem() *StreamingSystem { return &StreamingSystem{firstTick: true} }

func (s *StreamingSystem) Name() string { return "streaming" }

func (s *StreamingSystem) Init(deps Dependencies) error {
	s.deps = deps
	return nil
}

func (s *StreamingSystem) Tick(ctx context.Context, dt time.Duration) {
	if s.deps.Chunks == nil || s.deps.Focus == nil {
		return
	}

	x, y := s.deps.Focus()

	// Окно пересчитывается только при смене точки интереса: загрузка и
	// выгрузка идемпотентны, но обход карты резидентных чанков каждый
	// тик не бесплатен
	if !s.firstTick && x == s.lastX && y == s.lastY {
		return
	}

	s.deps.Chunks.UpdateLoadedChunks(ctx, x, y)

	if s.firstTick {
		log.Printf("[StreamingSystem] Первичная загрузка окна: %d чанков вокруг (%d, %d)",
			s.deps.Chunks.LoadedCount(), x, y)
	}

	s.lastX, s.lastY = x, y
	s.firstTick = false
}
