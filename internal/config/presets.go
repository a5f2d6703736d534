package config

import "sort"

var Presets = map[string]map[string]*Config{
	"harmonic": {
		"bath": {
			ForceField: ForceFieldConfig{Kind: "harmonic", K: 100}, Integrator: "langevin",
			Particles: ParticleConfig{Count: 64, Mass: 12, Spacing: 0.3, Lattice: LatticeCubic}, Seed: 1,
			Temperature: 300, Friction: 5, Timestep: 0.002, TotalSteps: 20000, ReportInterval: 100,
		},
		"nve": {
			ForceField: ForceFieldConfig{Kind: "harmonic", K: 100}, Integrator: "verlet",
			Particles: ParticleConfig{Count: 8, Mass: 12, Spacing: 0.3, Lattice: LatticeCubic}, Seed: 1,
			Temperature: 300, Friction: 1, Timestep: 0.002, TotalSteps: 5000, ReportInterval: 50,
		},
	},
	"doublewell": {
		"hopping": {
			ForceField: ForceFieldConfig{Kind: "doublewell", A: 5, B: 0.25}, Integrator: "langevin",
			Particles: ParticleConfig{Count: 1, Mass: 1}, Seed: 7,
			Temperature: 300, Friction: 2, Timestep: 0.002, TotalSteps: 50000, ReportInterval: 100,
		},
		"cold": {
			ForceField: ForceFieldConfig{Kind: "doublewell", A: 5, B: 0.25}, Integrator: "langevin",
			Particles: ParticleConfig{Count: 1, Mass: 1}, Seed: 7,
			Temperature: 50, Friction: 2, Timestep: 0.002, TotalSteps: 50000, ReportInterval: 100,
		},
	},
	"chain": {
		"polymer": {
			ForceField: ForceFieldConfig{Kind: "chain", K: 5000, R0: 0.15}, Integrator: "langevin",
			Particles: ParticleConfig{Count: 20, Mass: 14, Spacing: 0.15, Lattice: LatticeLine}, Seed: 3,
			Temperature: 300, Friction: 1, Timestep: 0.001, TotalSteps: 20000, ReportInterval: 200,
		},
	},
	"lj": {
		"cluster": {
			ForceField: ForceFieldConfig{Kind: "lj", Epsilon: 0.996, Sigma: 0.34, Cutoff: 1.0}, Integrator: "langevin",
			Particles: ParticleConfig{Count: 27, Mass: DefaultMass, Spacing: 0.38, Lattice: LatticeCubic}, Seed: 11,
			Temperature: 40, Friction: 1, Timestep: 0.002, TotalSteps: 10000, ReportInterval: 100,
			Minimize: MinimizeConfig{Enabled: true, Tolerance: DefaultTolerance}, Reporters: ReporterConfig{Console: true},
		},
		"liquid": {
			ForceField: ForceFieldConfig{Kind: "lj", Epsilon: 0.996, Sigma: 0.34, Cutoff: 1.0, Box: 2.2}, Integrator: "langevin",
			Particles: ParticleConfig{Count: 216, Mass: DefaultMass, Spacing: 0.366, Lattice: LatticeCubic}, Seed: 11,
			Temperature: 120, Friction: 1, Timestep: 0.002, TotalSteps: 5000, ReportInterval: 100,
			Minimize: MinimizeConfig{Enabled: true, Tolerance: DefaultTolerance}, Reporters: ReporterConfig{Console: true},
		},
	},
	"gravity": {
		"cloud": {
			ForceField: ForceFieldConfig{Kind: "gravity", G: 1, Softening: 0.05, Theta: 0.5}, Integrator: "verlet",
			Particles: ParticleConfig{Count: 64, Mass: 1, Spacing: 0.5, Lattice: LatticeCubic}, Seed: 5,
			Temperature: 1, Friction: 1, Timestep: 0.001, TotalSteps: 5000, ReportInterval: 50,
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(model, preset string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	cfg, ok := modelPresets[preset]
	if !ok {
		return nil
	}
	c := cfg.Clone()
	c.Reporters.Console = true
	return c
}

func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func ListModels() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
