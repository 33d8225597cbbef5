// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package params

import "fmt"

const (
	defaultBoxLen = 150.0
	defaultHiiDim = 100
)

// UserParams holds the box-geometry parameters governing a run.
//
// Dim is stored-with-default: when not set explicitly it resolves to
// 4*HiiDim, and that resolved value is what participates in the fingerprint.
type UserParams struct {
	boxLen float64
	hiiDim int
	dim    int // 0 means default to 4*hiiDim

	explicit map[string]bool
}

// UserOption customizes a UserParams under construction.
type UserOption func(*UserParams)

// WithBoxLen sets the box length in Mpc.
func WithBoxLen(v float64) UserOption {
	return func(u *UserParams) { u.boxLen = v; u.explicit["BOX_LEN"] = true }
}

// WithHiiDim sets the cell count of the low-res box along a principal axis.
func WithHiiDim(v int) UserOption {
	return func(u *UserParams) { u.hiiDim = v; u.explicit["HII_DIM"] = true }
}

// WithDim sets the cell count of the high-res box. To avoid sampling issues
// it should be an integer multiple of HiiDim, at least 3-4x.
func WithDim(v int) UserOption {
	return func(u *UserParams) { u.dim = v; u.explicit["DIM"] = true }
}

// NewUserParams constructs a UserParams with defaults, applying any
// overrides. Returns ErrValidation for non-positive dimensions or lengths.
func NewUserParams(opts ...UserOption) (*UserParams, error) {
	u := &UserParams{
		boxLen:   defaultBoxLen,
		hiiDim:   defaultHiiDim,
		explicit: make(map[string]bool),
	}

	for _, opt := range opts {
		opt(u)
	}

	if u.boxLen <= 0 {
		return nil, fmt.Errorf("%w: BOX_LEN must be positive, got %g", ErrValidation, u.boxLen)
	}
	if u.hiiDim <= 0 {
		return nil, fmt.Errorf("%w: HII_DIM must be positive, got %d", ErrValidation, u.hiiDim)
	}
	if u.explicit["DIM"] && u.dim < u.hiiDim {
		return nil, fmt.Errorf("%w: DIM (%d) must be at least HII_DIM (%d)", ErrValidation, u.dim, u.hiiDim)
	}

	return u, nil
}

// BoxLen returns the box length in Mpc.
func (u *UserParams) BoxLen() float64 { return u.boxLen }

// HiiDim returns the low-res cell count.
func (u *UserParams) HiiDim() int { return u.hiiDim }

// Dim returns the high-res cell count, defaulting to 4*HiiDim when unset.
func (u *UserParams) Dim() int {
	if u.dim == 0 {
		return 4 * u.hiiDim
	}
	return u.dim
}

// TotFFTNumPixels is a derived field: total cells in the high-res box.
func (u *UserParams) TotFFTNumPixels() int {
	d := u.Dim()
	return d * d * d
}

// HiiTotNumPixels is a derived field: total cells in the low-res box.
func (u *UserParams) HiiTotNumPixels() int {
	d := u.hiiDim
	return d * d * d
}

// Explicit reports whether the named field was set by the caller.
func (u *UserParams) Explicit(name string) bool { return u.explicit[name] }

// Kind implements Set.
func (u *UserParams) Kind() string { return "user" }

// Canonical implements Set. The resolved Dim is rendered, so an explicit
// DIM=400 and a defaulted 4*100 canonicalize identically.
func (u *UserParams) Canonical(bool) []Field {
	return sortFields([]Field{
		{Name: "BOX_LEN", Value: formatFloat(u.boxLen)},
		{Name: "DIM", Value: formatInt(int64(u.Dim()))},
		{Name: "HII_DIM", Value: formatInt(int64(u.hiiDim))},
	})
}
