package app

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"primeforge/internal/keypair"
	"primeforge/internal/search"
	"primeforge/internal/z5d"
)

// Config holds every tunable of the generation pipeline plus the output
// location. A config file may name any subset of fields; the rest keep
// their defaults.
type Config struct {
	Bits             int     `yaml:"bits"`
	PubExp           uint64  `yaml:"pub_exp"`
	KappaStar        float64 `yaml:"kappa_star"`
	KappaGeo         float64 `yaml:"kappa_geo"`
	C                float64 `yaml:"c_calibrated"`
	Phi              float64 `yaml:"phi"`
	BumpP            int     `yaml:"bump_p"`
	BumpQ            int     `yaml:"bump_q"`
	ValidityDays     int     `yaml:"validity_days"`
	GuidedAttempts   uint64  `yaml:"guided_attempts"`
	FallbackAttempts uint64  `yaml:"fallback_attempts"`
	ProximityBits    uint    `yaml:"proximity_bits"`
	Workers          int     `yaml:"workers"`
	OutDir           string  `yaml:"out_dir"`
}

// Default returns the standard configuration: 4096-bit keys, e = 65537,
// the calibrated estimator constants and the "generated" output directory.
func Default() Config {
	return Config{
		Bits:             keypair.DefaultBits,
		PubExp:           keypair.DefaultPublicExponent,
		KappaStar:        z5d.DefaultKappaStar,
		KappaGeo:         z5d.DefaultKappaGeo,
		C:                z5d.DefaultC,
		Phi:              z5d.DefaultPhi,
		BumpP:            keypair.DefaultBumpP,
		BumpQ:            keypair.DefaultBumpQ,
		ValidityDays:     keypair.DefaultValidityDays,
		GuidedAttempts:   keypair.DefaultGuidedAttempts,
		FallbackAttempts: keypair.DefaultFallbackAttempts,
		ProximityBits:    search.DefaultProximityBits,
		Workers:          0,
		OutDir:           "generated",
	}
}

// Load reads a YAML config file over the defaults. A missing or empty
// file yields the defaults; unknown fields are rejected.
func Load(path string) (Config, error) {
	cfg := Default()

	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}

	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate rejects settings the pipeline cannot run with.
func (c Config) Validate() error {
	if c.Bits < 64 || c.Bits%2 != 0 {
		return fmt.Errorf("bits must be an even number of at least 64, got %d", c.Bits)
	}
	if c.PubExp < 3 || c.PubExp%2 == 0 {
		return fmt.Errorf("pub_exp must be an odd number of at least 3, got %d", c.PubExp)
	}
	if c.PubExp > math.MaxInt32 {
		return fmt.Errorf("pub_exp must fit 31 bits, got %d", c.PubExp)
	}
	if c.BumpP < 0 || c.BumpQ < 0 {
		return fmt.Errorf("bumps must be non-negative, got p=%d q=%d", c.BumpP, c.BumpQ)
	}
	if c.GuidedAttempts == 0 || c.FallbackAttempts == 0 {
		return errors.New("attempt budgets must be positive")
	}
	if c.ValidityDays < 1 {
		return fmt.Errorf("validity_days must be at least 1, got %d", c.ValidityDays)
	}
	if c.OutDir == "" {
		return errors.New("out_dir must not be empty")
	}
	return nil
}

// EstimatorParams returns the calibration constants as estimator params.
func (c Config) EstimatorParams() z5d.Params {
	return z5d.Params{C: c.C, KappaStar: c.KappaStar, KappaGeo: c.KappaGeo, Phi: c.Phi}
}

// GenParams maps the config onto pipeline parameters.
func (c Config) GenParams() keypair.Params {
	return keypair.Params{
		Bits:             c.Bits,
		E:                c.PubExp,
		BumpP:            c.BumpP,
		BumpQ:            c.BumpQ,
		GuidedAttempts:   c.GuidedAttempts,
		FallbackAttempts: c.FallbackAttempts,
		ProximityBits:    c.ProximityBits,
		Workers:          c.Workers,
	}
}

// CertParams returns the certificate identity with the configured
// validity window.
func (c Config) CertParams() keypair.CertParams {
	p := keypair.DefaultCertParams()
	p.ValidityDays = c.ValidityDays
	return p
}
