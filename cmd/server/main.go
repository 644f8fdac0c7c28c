package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/annelo/go-terrain-server/internal/config"
	"github.com/annelo/go-terrain-server/internal/world"
)

var (
	configPath = flag.String("config", "", "Путь к yaml-файлу конфигурации")
	worldPath  = flag.String("world", "", "Путь для хранения данных мира (переопределяет конфигурацию)")
	worldName  = flag.String("name", "", "Название игрового мира (переопределяет конфигурацию)")
	seed       = flag.Int64("seed", 0, "Сид для генерации мира (0 = случайный)")
	backend    = flag.String("backend", "", "Бэкенд хранилища: binary, region или none")
	noStorage  = flag.Bool("no-storage", false, "Запуск без хранилища данных")
)

func main() {
	// Парсим флаги командной строки
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Ошибка конфигурации: %v", err)
	}

	// Флаги переопределяют значения из файла
	if *worldPath != "" {
		cfg.World.Path = *worldPath
	}
	if *worldName != "" {
		cfg.World.Name = *worldName
	}
	if *seed != 0 {
		cfg.World.Seed = *seed
	}
	if *backend != "" {
		cfg.World.Backend = *backend
	}
	if *noStorage {
		cfg.World.Backend = config.BackendNone
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Ошибка конфигурации: %v", err)
	}

	// Если сид не указан, генерируем случайный
	if cfg.World.Seed == 0 {
		cfg.World.Seed = time.Now().UnixNano()
	}

	// Проверяем права на запись в директорию хранилища; без них
	// продолжаем работать, но без сохранений
	if cfg.World.Backend != config.BackendNone {
		if err := checkWritable(cfg.World.Path); err != nil {
			log.Printf("Хранилище %s недоступно: %v", cfg.World.Path, err)
			log.Printf("Продолжаем без хранилища...")
			cfg.World.Backend = config.BackendNone
		}
	}

	w, err := world.NewWorld(cfg)
	if err != nil {
		log.Fatalf("Не удалось создать мир: %v", err)
	}

	// Точка интереса на поверхности в нулевой колонке
	w.SetFocus(0, w.Generator.GetSurfaceHeight(0))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w.Start(ctx)
	log.Printf("Сервер мира %q запущен (бэкенд %s, радиус %d чанков)",
		cfg.World.Name, cfg.World.Backend, cfg.World.LoadRadius)

	// Ждем сигнала завершения
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Println("Получен сигнал завершения, останавливаем мир...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := w.Stop(shutdownCtx); err != nil {
		log.Printf("Ошибка при остановке мира: %v", err)
		os.Exit(1)
	}
}

// checkWritable проверяет, что директория существует (или создается) и
// доступна на запись
func checkWritable(path string) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return err
	}

	testFile := filepath.Join(path, ".write_test")
	if err := os.WriteFile(testFile, []byte("test"), 0644); err != nil {
		return err
	}
	return os.Remove(testFile)
}
