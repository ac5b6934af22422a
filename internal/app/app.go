package app

import (
	"fmt"

	"primeforge/internal/keypair"
	"primeforge/internal/seed"
	"primeforge/internal/store"
	"primeforge/internal/z5d"
)

// App bundles the configured pipeline pieces for the CLI.
type App struct {
	Cfg    Config
	Seed   seed.Seed
	Est    *z5d.Estimator
	Writer *store.Writer

	gen *keypair.Generator
}

// New builds the dependency graph from cfg. The master seed comes from
// seedHex or seedWords when given (hex wins), otherwise a fresh one is
// drawn from the OS entropy source.
func New(cfg Config, seedHex, seedWords string) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var (
		s   seed.Seed
		err error
	)
	switch {
	case seedHex != "":
		s, err = seed.FromHex(seedHex)
	case seedWords != "":
		s, err = seed.FromMnemonic(seedWords)
	default:
		s, err = seed.New()
	}
	if err != nil {
		return nil, fmt.Errorf("master seed: %w", err)
	}

	return &App{
		Cfg:    cfg,
		Seed:   s,
		Est:    z5d.New(cfg.EstimatorParams()),
		Writer: store.NewWriter(cfg.OutDir),
	}, nil
}

// Generator returns the keypair generator bound to the app seed and
// config, building it on first use.
func (a *App) Generator() *keypair.Generator {
	if a.gen == nil {
		a.gen = keypair.NewGenerator(a.Seed, a.Cfg.GenParams(), a.Est)
	}
	return a.gen
}

// Close wipes the master seed and the copies the generator holds.
func (a *App) Close() {
	if a.gen != nil {
		a.gen.Wipe()
	}
	a.Seed.Wipe()
}
