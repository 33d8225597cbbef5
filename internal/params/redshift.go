// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package params

import "fmt"

// Redshift is the single-field parameter set governing redshift-dependent
// boxes such as the perturbed field.
type Redshift struct {
	z float64
}

// NewRedshift validates and wraps a redshift value.
func NewRedshift(z float64) (*Redshift, error) {
	if z < 0 {
		return nil, fmt.Errorf("%w: REDSHIFT must be non-negative, got %g", ErrValidation, z)
	}
	return &Redshift{z: z}, nil
}

// Value returns the redshift.
func (r *Redshift) Value() float64 { return r.z }

// Kind implements Set.
func (r *Redshift) Kind() string { return "redshift" }

// Canonical implements Set.
func (r *Redshift) Canonical(bool) []Field {
	return []Field{{Name: "REDSHIFT", Value: formatFloat(r.z)}}
}
