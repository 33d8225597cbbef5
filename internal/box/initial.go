// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package box

import (
	"github.com/staranto/boxctl/internal/params"
)

// TypeInitialConditions is the artifact type name for initial conditions.
const TypeInitialConditions = "initial_conditions"

// InitialConditions holds the initial-conditions boxes of a run. Its primary
// buffer is the high-res density field, sized DIM^3 by the user parameters.
type InitialConditions struct {
	Box
}

// NewInitialConditions allocates an unfilled initial-conditions box. Buffer
// shapes are fully determined by the user parameters and never change.
func NewInitialConditions(user *params.UserParams, cosmo *params.CosmoParams) (*InitialConditions, error) {
	b, err := newBox(TypeInitialConditions, user, cosmo)
	if err != nil {
		return nil, err
	}

	d := user.Dim()
	b.buffers = []*Buffer{
		newBuffer("hires_density", d, d, d),
	}

	return &InitialConditions{Box: b}, nil
}

// HiresDensity returns the high-res density buffer. The external computation
// populates it in place; it must not be reallocated or resized.
func (ic *InitialConditions) HiresDensity() []float32 {
	return ic.buffers[0].Data
}
