// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package box

import (
	"github.com/staranto/boxctl/internal/params"
)

// TypePerturbedField is the artifact type name for perturbed fields.
const TypePerturbedField = "perturbed_field"

// PerturbedField holds the perturbed density and velocity fields at a single
// redshift, sized HII_DIM^3 by the user parameters. The redshift is a stored
// governing parameter and participates in the fingerprint.
type PerturbedField struct {
	Box
	redshift *params.Redshift
}

// NewPerturbedField allocates an unfilled perturbed-field box for redshift z.
func NewPerturbedField(user *params.UserParams, cosmo *params.CosmoParams, z float64) (*PerturbedField, error) {
	rs, err := params.NewRedshift(z)
	if err != nil {
		return nil, err
	}

	b, err := newBox(TypePerturbedField, user, cosmo, rs)
	if err != nil {
		return nil, err
	}

	d := user.HiiDim()
	b.buffers = []*Buffer{
		newBuffer("density", d, d, d),
		newBuffer("velocity", d, d, d),
	}

	return &PerturbedField{Box: b, redshift: rs}, nil
}

// Redshift returns the governing redshift.
func (pf *PerturbedField) Redshift() float64 { return pf.redshift.Value() }

// Density returns the perturbed density buffer.
func (pf *PerturbedField) Density() []float32 { return pf.buffers[0].Data }

// Velocity returns the velocity buffer.
func (pf *PerturbedField) Velocity() []float32 { return pf.buffers[1].Data }
