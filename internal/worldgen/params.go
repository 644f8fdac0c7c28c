package worldgen

// Params — настроечные константы генерации мира. Значения по умолчанию —
// единственный канонический набор; исторические варианты настроек не
// сохраняются, вместо этого все вынесено в конфигурацию (yaml).
type Params struct {
	// Рельеф поверхности
	SurfaceLevel       int32   `yaml:"surface_level"`
	TerrainHeight      int32   `yaml:"terrain_height"`
	TerrainOctaves     int     `yaml:"terrain_octaves"`
	TerrainPersistence float64 `yaml:"terrain_persistence"`
	TerrainFrequency   float64 `yaml:"terrain_frequency"`
	TerrainLacunarity  float64 `yaml:"terrain_lacunarity"`

	// Слои материалов
	DirtDepth int32 `yaml:"dirt_depth"`

	// Пещеры
	CaveProtectDepth int32   `yaml:"cave_protect_depth"`
	CaveFrequency    float64 `yaml:"cave_frequency"`
	CaveOctaves      int     `yaml:"cave_octaves"`
	CavePersistence  float64 `yaml:"cave_persistence"`
	CaveLacunarity   float64 `yaml:"cave_lacunarity"`
	CaveThreshold    float64 `yaml:"cave_threshold"`
	CaveDepthGain    float64 `yaml:"cave_depth_gain"`
	CaveThresholdCap float64 `yaml:"cave_threshold_cap"`

	// Минимальные глубины залегания руд по ярусам
	CopperMinDepth int32 `yaml:"copper_min_depth"`
	IronMinDepth   int32 `yaml:"iron_min_depth"`
	SilverMinDepth int32 `yaml:"silver_min_depth"`
	GoldMinDepth   int32 `yaml:"gold_min_depth"`

	// Деревья
	TreeSpacing          int32   `yaml:"tree_spacing"`
	TreeDensityThreshold float64 `yaml:"tree_density_threshold"`

	// Освещение: сколько уровней света теряется на тайл глубины
	LightFalloff int32 `yaml:"light_falloff"`
}

// DefaultParams возвращает канонический набор параметров генерации.
func DefaultParams() Params {
	return Params{
		SurfaceLevel:       100,
		TerrainHeight:      40,
		TerrainOctaves:     4,
		TerrainPersistence: 0.5,
		TerrainFrequency:   0.008,
		TerrainLacunarity:  2.0,

		DirtDepth: 6,

		CaveProtectDepth: 4,
		CaveFrequency:    0.05,
		CaveOctaves:      3,
		CavePersistence:  0.5,
		CaveLacunarity:   2.0,
		CaveThreshold:    0.30,
		CaveDepthGain:    0.0012,
		CaveThresholdCap: 0.40,

		CopperMinDepth: 10,
		IronMinDepth:   25,
		SilverMinDepth: 45,
		GoldMinDepth:   70,

		TreeSpacing:          5,
		TreeDensityThreshold: 0.42,

		LightFalloff: 18,
	}
}
