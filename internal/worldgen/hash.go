package worldgen

// Позиционные хеши для детерминированного размещения объектов.
// В отличие от непрерывного шума, хеш дает независимое значение в каждой
// целочисленной точке: глобальных генераторов случайных чисел здесь нет,
// результат зависит только от сида и координат.

func mix64(z uint64) uint64 {
	z += 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// hash2 — стабильный хеш пары координат с сидом.
func hash2(seed int64, x, y int32) uint64 {
	ux := uint64(uint32(x))
	uy := uint64(uint32(y))
	v := uint64(seed) ^ (ux * 0x9e3779b97f4a7c15) ^ (uy * 0xc2b2ae3d27d4eb4f)
	return mix64(v)
}
