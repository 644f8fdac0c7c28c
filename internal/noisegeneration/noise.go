// Package noisegeneration содержит детерминированные источники шума для
// генерации ландшафта: классический градиентный шум с таблицей
// перестановок и вспомогательные поля плотности леса.
package noisegeneration

import (
	"math"
	"math/rand"
)

// GradientNoiseField — непрерывное псевдослучайное скалярное поле,
// полностью определяемое сидом. Два поля с одинаковым сидом неотличимы
// по выходу в пределах процесса и между перезапусками: никакого скрытого
// глобального состояния здесь нет.
type GradientNoiseField struct {
	// perm — таблица перестановок 0..255, продублированная до 512
	// записей, чтобы при выборке соседних ячеек не требовалось
	// заворачивание по модулю.
	perm [512]int
}

// NewGradientNoiseField строит поле шума из сида: перемешивает таблицу
// перестановок сидированным Фишером–Йетсом и дублирует ее.
func NewGradientNoiseField(seed int64) *GradientNoiseField {
	f := &GradientNoiseField{}

	var p [256]int
	for i := range p {
		p[i] = i
	}

	rnd := rand.New(rand.NewSource(seed))
	for i := len(p) - 1; i > 0; i-- {
		j := rnd.Intn(i + 1)
		p[i], p[j] = p[j], p[i]
	}

	for i := 0; i < 256; i++ {
		f.perm[i] = p[i]
		f.perm[i+256] = p[i]
	}
	return f
}

// fade — квинтическая сглаживающая кривая 6t⁵−15t⁴+10t³.
func fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// grad выбирает один из четырех градиентов {(1,1),(-1,1),(1,-1),(-1,-1)}
// по двум младшим битам хеша и возвращает скалярное произведение
// градиента на смещение (x, y).
func grad(hash int, x, y float64) float64 {
	switch hash & 3 {
	case 0:
		return x + y
	case 1:
		return -x + y
	case 2:
		return x - y
	default:
		return -x - y
	}
}

// Noise возвращает значение шума в точке (x, y), диапазон [-1, 1].
func (f *GradientNoiseField) Noise(x, y float64) float64 {
	// Целочисленная ячейка решетки, содержащая точку
	xi := int(math.Floor(x)) & 255
	yi := int(math.Floor(y)) & 255

	// Дробные смещения внутри ячейки
	xf := x - math.Floor(x)
	yf := y - math.Floor(y)

	u := fade(xf)
	v := fade(yf)

	// Хешируем четыре угла ячейки через удвоенную таблицу
	aa := f.perm[f.perm[xi]+yi]
	ab := f.perm[f.perm[xi]+yi+1]
	ba := f.perm[f.perm[xi+1]+yi]
	bb := f.perm[f.perm[xi+1]+yi+1]

	// Скалярные произведения по углам и билинейная интерполяция
	x1 := lerp(grad(aa, xf, yf), grad(ba, xf-1, yf), u)
	x2 := lerp(grad(ab, xf, yf-1), grad(bb, xf-1, yf-1), u)
	return lerp(x1, x2, v)
}

// Noise01 возвращает значение шума, нормализованное в [0, 1].
func (f *GradientNoiseField) Noise01(x, y float64) float64 {
	return (f.Noise(x, y) + 1) / 2
}

// OctaveNoise суммирует octaves слоев шума: частота умножается на
// lacunarity, амплитуда — на persistence с каждым слоем. Сумма делится
// на суммарную амплитуду, поэтому результат остается в [-1, 1] при любом
// числе октав.
func (f *GradientNoiseField) OctaveNoise(x, y float64, octaves int, persistence, frequency, lacunarity float64) float64 {
	amplitude := 1.0
	freq := frequency
	total := 0.0
	maxValue := 0.0

	for i := 0; i < octaves; i++ {
		total += f.Noise(x*freq, y*freq) * amplitude
		maxValue += amplitude

		amplitude *= persistence
		freq *= lacunarity
	}

	if maxValue == 0 {
		return 0
	}
	return total / maxValue
}

// OctaveNoise01 — нормализованный в [0, 1] вариант OctaveNoise.
func (f *GradientNoiseField) OctaveNoise01(x, y float64, octaves int, persistence, frequency, lacunarity float64) float64 {
	return (f.OctaveNoise(x, y, octaves, persistence, frequency, lacunarity) + 1) / 2
}
