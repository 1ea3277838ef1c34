package config

import "sort"

// Presets are named level layouts selectable from the CLI.
var Presets = map[string]*LevelConf{
	"classic": {
		BlockSize: 1.0, Spacing: 1.5,
		OriginX: DefaultLevelOriginX, OriginY: DefaultLevelOriginY,
		TowerHeight: 5, GateColumns: 2,
	},
	"fortress": {
		BlockSize: 1.2, Spacing: 1.8,
		OriginX: 0.0, OriginY: DefaultLevelOriginY,
		TowerHeight: 7, GateColumns: 3,
	},
	"minimal": {
		BlockSize: 1.0, Spacing: 1.5,
		OriginX: 4.0, OriginY: DefaultLevelOriginY,
		TowerHeight: 3, GateColumns: 1,
	},
}

// GetPreset returns a copy of the named level preset.
func GetPreset(name string) (*LevelConf, bool) {
	p, ok := Presets[name]
	if !ok {
		return nil, false
	}
	c := *p
	return &c, true
}

// ListPresets returns preset names in sorted order.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
