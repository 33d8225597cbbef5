// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package params

import (
	"fmt"
	"math/rand/v2"
)

// Planck15 values used as defaults.
const (
	defaultSigma8     = 0.82
	defaultHlittle    = 0.6774
	defaultOmegaM     = 0.3089
	defaultOmegaB     = 0.0486
	defaultPowerIndex = 0.97
)

// maxSeed bounds the realized random seed: [1, maxSeed).
const maxSeed = int64(1e12)

// CosmoParams holds the cosmological parameters governing a box.
//
// All fields are stored fields and participate in the fingerprint, with one
// exception: RandomSeed is lazily randomized. If not set explicitly it is
// realized to a uniform value in [1, 1e12) on first access and fixed for the
// lifetime of the instance.
type CosmoParams struct {
	sigma8     float64
	hlittle    float64
	omegaM     float64
	omegaB     float64
	powerIndex float64

	// seed == 0 means not yet realized.
	seed int64

	explicit map[string]bool
}

// CosmoOption customizes a CosmoParams under construction.
type CosmoOption func(*CosmoParams)

// WithRandomSeed pins the IC generator seed instead of realizing a random one.
func WithRandomSeed(seed int64) CosmoOption {
	return func(c *CosmoParams) { c.seed = seed; c.explicit[SeedField] = true }
}

// WithSigma8 sets the RMS mass variance (power spectrum normalisation).
func WithSigma8(v float64) CosmoOption {
	return func(c *CosmoParams) { c.sigma8 = v; c.explicit["SIGMA_8"] = true }
}

// WithHlittle sets H_0/100.
func WithHlittle(v float64) CosmoOption {
	return func(c *CosmoParams) { c.hlittle = v; c.explicit["hlittle"] = true }
}

// WithOmegaM sets omega matter.
func WithOmegaM(v float64) CosmoOption {
	return func(c *CosmoParams) { c.omegaM = v; c.explicit["OMm"] = true }
}

// WithOmegaB sets omega baryon.
func WithOmegaB(v float64) CosmoOption {
	return func(c *CosmoParams) { c.omegaB = v; c.explicit["OMb"] = true }
}

// WithPowerIndex sets the spectral index of the power spectrum.
func WithPowerIndex(v float64) CosmoOption {
	return func(c *CosmoParams) { c.powerIndex = v; c.explicit["POWER_INDEX"] = true }
}

// NewCosmoParams constructs a CosmoParams with Planck15 defaults, applying
// any overrides. Returns ErrValidation for out-of-range values.
func NewCosmoParams(opts ...CosmoOption) (*CosmoParams, error) {
	c := &CosmoParams{
		sigma8:     defaultSigma8,
		hlittle:    defaultHlittle,
		omegaM:     defaultOmegaM,
		omegaB:     defaultOmegaB,
		powerIndex: defaultPowerIndex,
		explicit:   make(map[string]bool),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.sigma8 <= 0 {
		return nil, fmt.Errorf("%w: SIGMA_8 must be positive, got %g", ErrValidation, c.sigma8)
	}
	if c.hlittle <= 0 {
		return nil, fmt.Errorf("%w: hlittle must be positive, got %g", ErrValidation, c.hlittle)
	}
	if c.omegaM <= 0 || c.omegaM >= 1 {
		return nil, fmt.Errorf("%w: OMm must be in (0,1), got %g", ErrValidation, c.omegaM)
	}
	if c.omegaB <= 0 || c.omegaB >= 1 {
		return nil, fmt.Errorf("%w: OMb must be in (0,1), got %g", ErrValidation, c.omegaB)
	}
	if c.explicit[SeedField] && (c.seed < 1 || c.seed >= maxSeed) {
		return nil, fmt.Errorf("%w: RANDOM_SEED must be in [1,1e12), got %d", ErrValidation, c.seed)
	}

	return c, nil
}

// RandomSeed returns the IC generator seed, realizing it on first access if
// it was not given explicitly. Subsequent calls always return the same value.
func (c *CosmoParams) RandomSeed() int64 {
	for c.seed == 0 {
		c.seed = rand.Int64N(maxSeed-1) + 1
	}
	return c.seed
}

// SeedRealized reports whether the seed has been set or realized yet.
func (c *CosmoParams) SeedRealized() bool { return c.seed != 0 }

// AdoptSeed fixes the seed to the value recorded in a stored box. Used when a
// seedless cache match is loaded, so the in-memory params reflect the seed
// that actually produced the buffers.
func (c *CosmoParams) AdoptSeed(seed int64) { c.seed = seed }

// Sigma8 returns the RMS mass variance.
func (c *CosmoParams) Sigma8() float64 { return c.sigma8 }

// Hlittle returns H_0/100.
func (c *CosmoParams) Hlittle() float64 { return c.hlittle }

// OmegaM returns omega matter.
func (c *CosmoParams) OmegaM() float64 { return c.omegaM }

// OmegaB returns omega baryon.
func (c *CosmoParams) OmegaB() float64 { return c.omegaB }

// PowerIndex returns the spectral index.
func (c *CosmoParams) PowerIndex() float64 { return c.powerIndex }

// OmegaL is a derived field: omega lambda under flatness, 1 - OMm. It is
// computed on demand and never stored or fingerprinted.
func (c *CosmoParams) OmegaL() float64 { return 1 - c.omegaM }

// Explicit reports whether the named field was set by the caller rather than
// filled from a default.
func (c *CosmoParams) Explicit(name string) bool { return c.explicit[name] }

// Kind implements Set.
func (c *CosmoParams) Kind() string { return "cosmo" }

// Canonical implements Set. Accessing it with includeSeed=true realizes the
// seed if necessary.
func (c *CosmoParams) Canonical(includeSeed bool) []Field {
	fields := []Field{
		{Name: "OMb", Value: formatFloat(c.omegaB)},
		{Name: "OMm", Value: formatFloat(c.omegaM)},
		{Name: "POWER_INDEX", Value: formatFloat(c.powerIndex)},
		{Name: "SIGMA_8", Value: formatFloat(c.sigma8)},
		{Name: "hlittle", Value: formatFloat(c.hlittle)},
	}
	if includeSeed {
		fields = append(fields, Field{Name: SeedField, Value: formatInt(c.RandomSeed())})
	}
	return sortFields(fields)
}
