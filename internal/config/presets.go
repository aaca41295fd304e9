package config

import "sort"

func scene(name string, charges []ChargeConfig, seeds []PointConfig) *Config {
	cfg := DefaultConfig()
	cfg.Name = name
	cfg.Charges = charges
	cfg.Seeds = seeds
	return cfg
}

var Presets = map[string]*Config{
	"single": scene("single",
		[]ChargeConfig{{X: 0, Y: 0, Q: 1}},
		[]PointConfig{{X: 1, Y: 0}, {X: 2, Y: 0}, {X: 3, Y: 0}},
	),
	"dipole": scene("dipole",
		[]ChargeConfig{{X: -1, Y: 0, Q: 1}, {X: 1, Y: 0, Q: -1}},
		[]PointConfig{{X: 0, Y: 0}, {X: 0.5, Y: 0.5}, {X: -0.5, Y: 0.5}, {X: 1.5, Y: 0}, {X: -1.5, Y: 0}},
	),
	"pair": scene("pair",
		[]ChargeConfig{{X: -1, Y: 0, Q: 1}, {X: 1, Y: 0, Q: 1}},
		[]PointConfig{{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 2, Y: 0}, {X: 0, Y: 2.5}},
	),
	"quadrupole": scene("quadrupole",
		[]ChargeConfig{{X: -1, Y: -1, Q: 1}, {X: 1, Y: -1, Q: -1}, {X: 1, Y: 1, Q: 1}, {X: -1, Y: 1, Q: -1}},
		[]PointConfig{{X: 0.5, Y: 0.5}, {X: -0.5, Y: 0.5}, {X: 0, Y: 2}, {X: 1.5, Y: 1.5}},
	),
	"row": scene("row",
		[]ChargeConfig{{X: -2, Q: 1}, {X: -1, Q: 1}, {X: 0, Q: 1}, {X: 1, Q: 1}, {X: 2, Q: 1}},
		[]PointConfig{{X: 0, Y: 0.5}, {X: 0, Y: 1.5}, {X: 0, Y: 3}},
	),
}

// GetPreset returns a copy of the named scene, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	cp := *cfg
	cp.Charges = append([]ChargeConfig(nil), cfg.Charges...)
	cp.Seeds = append([]PointConfig(nil), cfg.Seeds...)
	return &cp
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
