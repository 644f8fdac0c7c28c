// worldviz — интерактивный просмотрщик и редактор мира в терминале.
// Камера двигает точку интереса, так что стриминг, мутации и
// персистентность работают так же, как на настоящем сервере.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	termbox "github.com/nsf/termbox-go"

	"github.com/annelo/go-terrain-server/internal/config"
	"github.com/annelo/go-terrain-server/internal/tile"
	"github.com/annelo/go-terrain-server/internal/world"
)

var (
	configPath = flag.String("config", "", "Путь к yaml-файлу конфигурации")
	worldPath  = flag.String("path", "/tmp/world", "Путь до данных мира")
	seed       = flag.Int64("seed", 12345, "Сид генерации для нового мира")
	backend    = flag.String("backend", config.BackendRegion, "Бэкенд хранилища: binary, region или none")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Ошибка конфигурации: %v", err)
	}
	cfg.World.Path = *worldPath
	cfg.World.Seed = *seed
	cfg.World.Backend = *backend
	// Окно побольше, чтобы экран всегда был покрыт чанками
	if cfg.World.LoadRadius < 3 {
		cfg.World.LoadRadius = 3
	}

	w, err := world.NewWorld(cfg)
	if err != nil {
		log.Fatalf("Не удалось создать мир: %v", err)
	}

	if err := termbox.Init(); err != nil {
		log.Fatalf("termbox init error: %v", err)
	}
	defer termbox.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)
	defer func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer stopCancel()
		if err := w.Stop(stopCtx); err != nil {
			log.Printf("Ошибка при остановке мира: %v", err)
		}
	}()

	// Камера стартует на поверхности нулевой колонки
	camX := int32(0)
	camY := w.Generator.GetSurfaceHeight(0) - 10
	curX, curY := 0, 0

	syncFocus := func() {
		width, height := termbox.Size()
		w.SetFocus(camX+int32(width/2), camY+int32(height/2))
	}
	syncFocus()

	draw := func() {
		termbox.Clear(termbox.ColorDefault, termbox.ColorDefault)
		width, height := termbox.Size()

		for py := 2; py < height; py++ {
			for px := 0; px < width; px++ {
				wx := camX + int32(px)
				wy := camY + int32(py)
				t := w.ChunkManager.GetTileAt(wx, wy)
				ch, fg, bg := tileSymbol(t)
				termbox.SetCell(px, py, ch, fg, bg)
			}
		}

		// Курсор: инверсия цветов
		if curY >= 2 && curY < height && curX < width {
			cell := termbox.CellBuffer()[curY*width+curX]
			termbox.SetCell(curX, curY, cell.Ch, cell.Bg|termbox.AttrBold, cell.Fg)
		}

		wx := camX + int32(curX)
		wy := camY + int32(curY)
		t := w.ChunkManager.GetTileAt(wx, wy)
		header := fmt.Sprintf("Cam=(%d,%d)  Chunks=%d  Seed=%d", camX, camY, w.ChunkManager.LoadedCount(), w.Generator.Seed())
		info := fmt.Sprintf("Tile (%d,%d) Type=%d Wall=%d Light=%d  [x] копать [1-4] ставить [q] выход", wx, wy, t.Type, t.Wall, t.Light)
		printLine(0, header, termbox.ColorYellow|termbox.AttrBold)
		printLine(1, info, termbox.ColorWhite)

		termbox.Flush()
	}

	placeable := map[rune]tile.Type{
		'1': tile.Dirt,
		'2': tile.Stone,
		'3': tile.Wood,
		'4': tile.Grass,
	}

	// Перерисовка по таймеру: стриминг идет в фоне, экран должен
	// догонять подгрузившиеся чанки
	events := make(chan termbox.Event)
	go func() {
		for {
			events <- termbox.PollEvent()
		}
	}()
	redraw := time.NewTicker(100 * time.Millisecond)
	defer redraw.Stop()

	draw()
	for {
		select {
		case <-redraw.C:
			draw()
		case ev := <-events:
			switch ev.Type {
			case termbox.EventKey:
				switch ev.Key {
				case termbox.KeyEsc, termbox.KeyCtrlC:
					return
				case termbox.KeyArrowLeft:
					camX--
				case termbox.KeyArrowRight:
					camX++
				case termbox.KeyArrowUp:
					camY--
				case termbox.KeyArrowDown:
					camY++
				default:
					width, height := termbox.Size()
					switch {
					case ev.Ch == 'q':
						return
					case ev.Ch == 'a' && curX > 0:
						curX--
					case ev.Ch == 'd' && curX < width-1:
						curX++
					case ev.Ch == 'w' && curY > 2:
						curY--
					case ev.Ch == 's' && curY < height-1:
						curY++
					case ev.Ch == 'x':
						w.ChunkManager.ClearTileAt(camX+int32(curX), camY+int32(curY))
					default:
						if tp, ok := placeable[ev.Ch]; ok {
							w.ChunkManager.SetTileTypeAt(camX+int32(curX), camY+int32(curY), tp)
						}
					}
				}
				syncFocus()
				draw()
			case termbox.EventError:
				log.Printf("termbox error: %v", ev.Err)
				return
			case termbox.EventResize:
				syncFocus()
				draw()
			}
		}
	}
}

// printLine выводит строку текста в заданной строке экрана
func printLine(y int, text string, fg termbox.Attribute) {
	width, _ := termbox.Size()
	for i, r := range text {
		if i >= width {
			break
		}
		termbox.SetCell(i, y, r, fg, termbox.ColorBlack)
	}
}

// tileSymbol возвращает символ и цвета для тайла
func tileSymbol(t tile.Tile) (rune, termbox.Attribute, termbox.Attribute) {
	if t.IsAir() {
		// Фоновая стена видна сквозь прокопанный тайл
		switch t.Wall {
		case tile.WallDirt:
			return '░', termbox.ColorYellow, termbox.ColorBlack
		case tile.WallStone:
			return '░', termbox.ColorWhite, termbox.ColorBlack
		default:
			return ' ', termbox.ColorDefault, termbox.ColorDefault
		}
	}

	switch t.Type {
	case tile.Grass:
		return '_', termbox.ColorGreen, termbox.ColorBlack
	case tile.Dirt:
		return '.', termbox.ColorYellow, termbox.ColorBlack
	case tile.Stone:
		return '#', termbox.ColorWhite, termbox.ColorBlack
	case tile.CopperOre:
		return 'c', termbox.ColorRed, termbox.ColorBlack
	case tile.IronOre:
		return 'i', termbox.ColorCyan, termbox.ColorBlack
	case tile.SilverOre:
		return 's', termbox.ColorWhite|termbox.AttrBold, termbox.ColorBlack
	case tile.GoldOre:
		return 'g', termbox.ColorYellow|termbox.AttrBold, termbox.ColorBlack
	case tile.Wood:
		return '|', termbox.ColorRed, termbox.ColorBlack
	case tile.Leaves:
		return '@', termbox.ColorGreen, termbox.ColorBlack
	default:
		return '?', termbox.ColorMagenta, termbox.ColorBlack
	}
}
