// Package tile содержит базовую модель мира: упакованный тайл,
// чанк фиксированного размера и преобразования координат.
package tile

// Type — тип материала тайла (16 бит, 0 = воздух)
type Type uint16

// Базовые типы тайлов
const (
	Air Type = iota
	Grass
	Dirt
	Stone
	CopperOre
	IronOre
	SilverOre
	GoldOre
	Wood
	Leaves
)

// WallType — тип фоновой стены (16 бит, 0 = нет стены)
type WallType uint16

const (
	WallNone WallType = iota
	WallDirt
	WallStone
)

// Флаги тайла (битовая маска в Tile.Flags)
const (
	// FlagActive — тайл активен (участвует в коллизиях и отрисовке)
	FlagActive uint8 = 1 << iota
	// FlagFrameDirty — спрайт тайла требует пересчета автотайлинга
	FlagFrameDirty
)

// Tile — упакованная 8-байтовая запись одного тайла мира.
// Инвариант: флаг FlagActive всегда согласован с Type — менять их
// разрешено только через SetType и Clear, никакой другой код не должен
// трогать Type или FlagActive напрямую.
type Tile struct {
	Type   Type
	Wall   WallType
	FrameX uint8
	FrameY uint8
	Light  uint8
	Flags  uint8
}

// Empty — нейтральный «пустой» тайл, который менеджер чанков возвращает
// для незагруженного пространства.
var Empty = Tile{}

// SetType устанавливает тип тайла и синхронизирует флаг активности.
func (t *Tile) SetType(tp Type) {
	t.Type = tp
	if tp == Air {
		t.Flags &^= FlagActive
	} else {
		t.Flags |= FlagActive
	}
	t.Flags |= FlagFrameDirty
}

// Clear сбрасывает тайл в воздух, сохраняя фоновую стену.
func (t *Tile) Clear() {
	t.Type = Air
	t.Flags &^= FlagActive
	t.FrameX = 0
	t.FrameY = 0
	t.Flags |= FlagFrameDirty
}

// IsAir возвращает true, если тайл пуст (воздух либо неактивен).
func (t *Tile) IsAir() bool {
	return t.Type == Air || t.Flags&FlagActive == 0
}

// IsActive возвращает true, если установлен флаг активности.
func (t *Tile) IsActive() bool {
	return t.Flags&FlagActive != 0
}

// MarkFrameDirty помечает спрайт тайла для пересчета автотайлинга.
func (t *Tile) MarkFrameDirty() {
	t.Flags |= FlagFrameDirty
}

// solidTypes — неизменяемая таблица проходимости, строится один раз при
// загрузке пакета и передается по ссылке (никаких скрытых глобальных
// реестров, см. замечание о статических таблицах в дизайне).
var solidTypes = buildSolidTable()

func buildSolidTable() [16]bool {
	var t [16]bool
	for _, tp := range []Type{Grass, Dirt, Stone, CopperOre, IronOre, SilverOre, GoldOre, Wood} {
		t[tp] = true
	}
	// Листва не является твердой: сквозь крону можно проходить
	return t
}

// IsSolidType возвращает true, если тип тайла непроходим.
func IsSolidType(tp Type) bool {
	if int(tp) >= len(solidTypes) {
		return false
	}
	return solidTypes[tp]
}

// IsSolid возвращает true, если тайл активен и его тип непроходим.
func (t *Tile) IsSolid() bool {
	return t.IsActive() && IsSolidType(t.Type)
}
