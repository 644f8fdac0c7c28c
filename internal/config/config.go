// Package config отвечает за конфигурацию сервера мира: значения по
// умолчанию, чтение yaml-файла и наложение его поверх умолчаний.
package config

import (
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v3"

	"github.com/annelo/go-terrain-server/internal/worldgen"
)

// Бэкенды хранилища
const (
	BackendBinary = "binary" // один чанк — один файл
	BackendRegion = "region" // чанки пакуются в файлы регионов 16×16
	BackendNone   = "none"   // без персистентности
)

// ServerConfig — полная конфигурация сервера мира
type ServerConfig struct {
	World    WorldConfig     `yaml:"world"`
	Tick     TickConfig      `yaml:"tick"`
	Worldgen worldgen.Params `yaml:"worldgen"`
}

// WorldConfig описывает мир и его хранилище
type WorldConfig struct {
	Name       string `yaml:"name"`
	Seed       int64  `yaml:"seed"` // 0 = случайный сид при старте
	Path       string `yaml:"path"`
	Backend    string `yaml:"backend"`
	LoadRadius int32  `yaml:"load_radius"`
}

// TickConfig описывает игровой цикл
type TickConfig struct {
	Rate                int `yaml:"rate"`                 // тиков в секунду
	AutosaveIntervalSec int `yaml:"autosave_interval_sec"` // секунд между автосохранениями
}

// Default возвращает конфигурацию по умолчанию.
func Default() ServerConfig {
	return ServerConfig{
		World: WorldConfig{
			Name:       "default",
			Seed:       0,
			Path:       "/tmp/world",
			Backend:    BackendRegion,
			LoadRadius: 2,
		},
		Tick: TickConfig{
			Rate:                20,
			AutosaveIntervalSec: 5 * 60,
		},
		Worldgen: worldgen.DefaultParams(),
	}
}

// Load читает конфигурацию из yaml-файла поверх значений по умолчанию.
// Пустой путь означает чистые умолчания.
func Load(path string) (ServerConfig, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("не удалось прочитать файл конфигурации %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("не удалось разобрать файл конфигурации %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate проверяет согласованность конфигурации.
func (c *ServerConfig) Validate() error {
	switch c.World.Backend {
	case BackendBinary, BackendRegion, BackendNone:
	default:
		return fmt.Errorf("неизвестный бэкенд хранилища: %q", c.World.Backend)
	}
	if c.World.LoadRadius < 0 {
		return fmt.Errorf("радиус загрузки не может быть отрицательным: %d", c.World.LoadRadius)
	}
	if c.Tick.Rate <= 0 {
		return fmt.Errorf("частота тиков должна быть положительной: %d", c.Tick.Rate)
	}
	if c.Tick.AutosaveIntervalSec <= 0 {
		return fmt.Errorf("интервал автосохранения должен быть положительным: %d", c.Tick.AutosaveIntervalSec)
	}
	return nil
}

// TickDuration возвращает длительность одного тика.
func (c *ServerConfig) TickDuration() time.Duration {
	return time.Second / time.Duration(c.Tick.Rate)
}

// AutosaveInterval возвращает интервал автосохранения.
func (c *ServerConfig) AutosaveInterval() time.Duration {
	return time.Duration(c.Tick.AutosaveIntervalSec) * time.Second
}
