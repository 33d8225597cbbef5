// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package compute

import (
	"context"
	"errors"
	"fmt"

	"github.com/apex/log"

	"github.com/staranto/boxctl/internal/box"
	"github.com/staranto/boxctl/internal/params"
	"github.com/staranto/boxctl/internal/store"
)

// Computer is the boundary to the external numerical generator. An
// implementation populates the pre-allocated buffers of the given box in
// place; it must not reallocate or resize them. Failures are fatal to the
// request and are propagated verbatim, with no retry at this layer.
type Computer interface {
	ComputeInitialConditions(ctx context.Context, user *params.UserParams, cosmo *params.CosmoParams, ics *box.InitialConditions) error
	ComputePerturbField(ctx context.Context, ics *box.InitialConditions, pf *box.PerturbedField) error
}

// Options controls one obtain request.
type Options struct {
	User  *params.UserParams
	Cosmo *params.CosmoParams

	// Regenerate skips the cache lookup and forces recomputation.
	Regenerate bool

	// Write persists the result after a successful computation.
	Write bool

	// MatchSeed requires the stored seed to match for a cache hit.
	MatchSeed bool

	// Location overrides the fingerprint-derived storage location for both
	// lookup and write.
	Location string
}

// Driver ties lookup, computation, and storage together.
type Driver struct {
	Store    store.Store
	Computer Computer
}

// InitialConditions returns a filled initial-conditions box for the given
// parameters, reusing a stored one when possible. Cache misses and corrupt
// records never surface to the caller; storage IO failures and computation
// failures do.
func (d *Driver) InitialConditions(ctx context.Context, opt Options) (*box.InitialConditions, error) {
	ics, err := box.NewInitialConditions(opt.User, opt.Cosmo)
	if err != nil {
		return nil, err
	}

	if !opt.Regenerate {
		hit, err := d.lookup(ctx, &ics.Box, opt)
		if err != nil {
			return nil, err
		}
		if hit {
			log.Infof("existing %s found and read in", ics.Type())
			return ics, nil
		}
	}

	if err := d.Computer.ComputeInitialConditions(ctx, opt.User, opt.Cosmo, ics); err != nil {
		return nil, fmt.Errorf("initial conditions computation failed: %w", err)
	}
	if err := ics.MarkFilled(); err != nil {
		return nil, err
	}

	if opt.Write {
		if err := ics.Write(ctx, d.Store, box.WriteOptions{Location: opt.Location}); err != nil {
			return nil, err
		}
	}

	return ics, nil
}

// PerturbField returns a filled perturbed-field box at redshift z. The
// initial conditions are obtained first (through the cache) and handed to
// the generator on a miss.
func (d *Driver) PerturbField(ctx context.Context, z float64, opt Options) (*box.PerturbedField, error) {
	pf, err := box.NewPerturbedField(opt.User, opt.Cosmo, z)
	if err != nil {
		return nil, err
	}

	if !opt.Regenerate {
		hit, err := d.lookup(ctx, &pf.Box, opt)
		if err != nil {
			return nil, err
		}
		if hit {
			log.Infof("existing %s found and read in", pf.Type())
			return pf, nil
		}
	}

	// Location overrides are specific to one artifact; they don't carry over
	// to the prerequisite lookup.
	icOpt := opt
	icOpt.Location = ""
	ics, err := d.InitialConditions(ctx, icOpt)
	if err != nil {
		return nil, err
	}

	if err := d.Computer.ComputePerturbField(ctx, ics, pf); err != nil {
		return nil, fmt.Errorf("perturb field computation failed: %w", err)
	}
	if err := pf.MarkFilled(); err != nil {
		return nil, err
	}

	if opt.Write {
		if err := pf.Write(ctx, d.Store, box.WriteOptions{Location: opt.Location}); err != nil {
			return nil, err
		}
	}

	return pf, nil
}

// Run computes (or fetches) the initial conditions once and a perturbed
// field per redshift, returning the perturbed fields in input order.
func (d *Driver) Run(ctx context.Context, redshifts []float64, opt Options) ([]*box.PerturbedField, error) {
	// Warm the IC cache up front so each perturb lookup that misses finds
	// them without recomputation.
	if _, err := d.InitialConditions(ctx, opt); err != nil {
		return nil, err
	}

	fields := make([]*box.PerturbedField, 0, len(redshifts))
	for _, z := range redshifts {
		pf, err := d.PerturbField(ctx, z, opt)
		if err != nil {
			return nil, err
		}
		fields = append(fields, pf)
	}
	return fields, nil
}

// lookup attempts a cache read. Misses and corruption are absorbed here:
// both report a false hit and the driver falls through to computation.
// Anything else is a real storage failure and propagates.
func (d *Driver) lookup(ctx context.Context, b *box.Box, opt Options) (bool, error) {
	err := b.Read(ctx, d.Store, box.ReadOptions{Location: opt.Location, MatchSeed: opt.MatchSeed})
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, store.ErrNotFound):
		log.Debugf("cache miss for %s", b.Type())
		return false, nil
	case errors.Is(err, store.ErrCorrupt):
		log.Warnf("stored %s unusable, recomputing: %v", b.Type(), err)
		return false, nil
	default:
		return false, err
	}
}
