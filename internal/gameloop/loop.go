// Package gameloop содержит игровой цикл мира и его системы: стриминг
// окна чанков и автосохранение.
package gameloop

import (
	"context"
	"log"
	"time"
)

// Loop прогоняет зарегистрированные системы с фиксированным шагом.
type Loop struct {
	systems []System
	period  time.Duration
}

// NewLoop инициализирует системы и возвращает готовый к запуску цикл.
func NewLoop(period time.Duration, deps Dependencies, systems ...System) *Loop {
	for _, s := range systems {
		if err := s.Init(deps); err != nil {
			log.Printf("[GameLoop] Ошибка инициализации системы %s: %v", s.Name(), err)
		}
	}
	return &Loop{systems: systems, period: period}
}

// Run крутит цикл до отмены контекста. Первый проход выполняется сразу,
// не дожидаясь тика: окно чанков должно быть загружено до того, как мир
// начнет жить.
func (l *Loop) Run(ctx context.Context) {
	ticker := time.NewTicker(l.period)
	defer ticker.Stop()

	last := time.Now()
	l.step(ctx, 0)

	for {
		select {
		case now := <-ticker.C:
			dt := now.Sub(last)
			last = now
			l.step(ctx, dt)
		case <-ctx.Done():
			log.Printf("[GameLoop] Цикл остановлен")
			return
		}
	}
}

// step прогоняет все системы один раз. Паника одной системы не роняет
// ни цикл, ни остальные системы.
func (l *Loop) step(ctx context.Context, dt time.Duration) {
	for _, s := range l.systems {
		l.tickSystem(ctx, s, dt)
	}
}

func (l *Loop) tickSystem(ctx context.Context, s System, dt time.Duration) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[GameLoop] Паника в системе %s: %v", s.Name(), r)
		}
	}()
	s.Tick(ctx, dt)
}
