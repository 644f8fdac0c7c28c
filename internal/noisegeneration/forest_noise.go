package noisegeneration

import (
	"github.com/aquilax/go-perlin"
)

// ForestNoise — медленно меняющееся поле плотности леса. Оно решает,
// где деревья растут густо, а где остаются поляны, но не выбирает
// конкретные стволы: этим занимается хеш размещения в генераторе.
type ForestNoise struct {
	densityMap *perlin.Perlin
	scale      float64
}

// Параметры perlin.NewPerlin: alpha — персистентность, beta —
// лакунарность, n — количество октав. Значения те же, что для карт
// влажности: плавные пятна размером в десятки тайлов.
const (
	forestAlpha   = 2.0
	forestBeta    = 2.0
	forestOctaves = 3
	forestScale   = 0.012
)

// NewForestNoise создает поле плотности леса из сида мира.
func NewForestNoise(seed int64) *ForestNoise {
	return &ForestNoise{
		densityMap: perlin.NewPerlin(forestAlpha, forestBeta, forestOctaves, seed),
		scale:      forestScale,
	}
}

// Density01 возвращает плотность леса в колонке worldX, диапазон [0, 1].
// Поле одномерное: высота дерева от y не зависит, поэтому вторая
// координата зафиксирована нулем.
func (fn *ForestNoise) Density01(worldX float64) float64 {
	v := fn.densityMap.Noise2D(worldX*fn.scale, 0.5)
	// Noise2D возвращает примерно [-1, 1]
	d := (v + 1) / 2
	if d < 0 {
		d = 0
	}
	if d > 1 {
		d = 1
	}
	return d
}
