// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package compute

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/boxctl/internal/box"
	"github.com/staranto/boxctl/internal/params"
	"github.com/staranto/boxctl/internal/store"
)

// spyComputer counts invocations and writes a recognizable ramp into the
// target buffers.
type spyComputer struct {
	icCalls      int
	perturbCalls int
	fail         error
}

func (s *spyComputer) ComputeInitialConditions(_ context.Context, _ *params.UserParams, _ *params.CosmoParams, ics *box.InitialConditions) error {
	s.icCalls++
	if s.fail != nil {
		return s.fail
	}
	data := ics.HiresDensity()
	for i := range data {
		data[i] = float32(i % 17)
	}
	return nil
}

func (s *spyComputer) ComputePerturbField(_ context.Context, _ *box.InitialConditions, pf *box.PerturbedField) error {
	s.perturbCalls++
	if s.fail != nil {
		return s.fail
	}
	for i := range pf.Density() {
		pf.Density()[i] = float32(i)
		pf.Velocity()[i] = float32(-i)
	}
	return nil
}

func newDriver(t *testing.T) (*Driver, *spyComputer) {
	t.Helper()
	st, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)
	spy := &spyComputer{}
	return &Driver{Store: st, Computer: spy}, spy
}

func testOptions(t *testing.T, seed int64) Options {
	t.Helper()
	u, err := params.NewUserParams(params.WithHiiDim(4))
	require.NoError(t, err)
	copts := []params.CosmoOption{}
	if seed != 0 {
		copts = append(copts, params.WithRandomSeed(seed))
	}
	c, err := params.NewCosmoParams(copts...)
	require.NoError(t, err)
	return Options{User: u, Cosmo: c, Write: true}
}

func TestMissComputesAndPersists(t *testing.T) {
	ctx := context.Background()
	d, spy := newDriver(t)

	opt := testOptions(t, 42)
	ics, err := d.InitialConditions(ctx, opt)
	require.NoError(t, err)

	assert.True(t, ics.Filled())
	assert.Equal(t, 1, spy.icCalls)
	assert.NotZero(t, ics.HiresDensity()[1])

	// A second obtain with equivalent params hits the cache and must not
	// invoke the computation again.
	opt2 := testOptions(t, 42)
	again, err := d.InitialConditions(ctx, opt2)
	require.NoError(t, err)

	assert.True(t, again.Filled())
	assert.Equal(t, 1, spy.icCalls, "cache hit must not recompute")
	assert.Equal(t, ics.HiresDensity(), again.HiresDensity())
}

func TestRegenerateForcesComputation(t *testing.T) {
	ctx := context.Background()
	d, spy := newDriver(t)

	_, err := d.InitialConditions(ctx, testOptions(t, 42))
	require.NoError(t, err)

	opt := testOptions(t, 42)
	opt.Regenerate = true
	_, err = d.InitialConditions(ctx, opt)
	require.NoError(t, err)

	assert.Equal(t, 2, spy.icCalls)
}

func TestWriteFalseDoesNotPersist(t *testing.T) {
	ctx := context.Background()
	d, spy := newDriver(t)

	opt := testOptions(t, 42)
	opt.Write = false
	_, err := d.InitialConditions(ctx, opt)
	require.NoError(t, err)

	_, err = d.InitialConditions(ctx, testOptions(t, 42))
	require.NoError(t, err)
	assert.Equal(t, 2, spy.icCalls, "nothing was persisted, so the second obtain recomputes")
}

func TestSeedMatchToggleThroughDriver(t *testing.T) {
	ctx := context.Background()
	d, spy := newDriver(t)

	_, err := d.InitialConditions(ctx, testOptions(t, 101))
	require.NoError(t, err)
	require.Equal(t, 1, spy.icCalls)

	// Different seed, MatchSeed off: served from cache.
	_, err = d.InitialConditions(ctx, testOptions(t, 202))
	require.NoError(t, err)
	assert.Equal(t, 1, spy.icCalls)

	// Different seed, MatchSeed on: recomputed.
	opt := testOptions(t, 303)
	opt.MatchSeed = true
	_, err = d.InitialConditions(ctx, opt)
	require.NoError(t, err)
	assert.Equal(t, 2, spy.icCalls)
}

func TestComputationFailurePropagates(t *testing.T) {
	ctx := context.Background()
	d, spy := newDriver(t)
	boom := errors.New("native code exploded")
	spy.fail = boom

	_, err := d.InitialConditions(ctx, testOptions(t, 42))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, spy.icCalls, "no retry at this layer")
}

func TestCorruptEntryRecomputed(t *testing.T) {
	ctx := context.Background()
	d, spy := newDriver(t)

	opt := testOptions(t, 42)
	ics, err := d.InitialConditions(ctx, opt)
	require.NoError(t, err)

	fs := d.Store.(*store.FileStore)
	require.NoError(t, os.WriteFile(fs.Locate(ics.Key()), []byte("junk"), 0o644))

	_, err = d.InitialConditions(ctx, testOptions(t, 42))
	require.NoError(t, err, "corruption must be absorbed, not surfaced")
	assert.Equal(t, 2, spy.icCalls)
}

func TestPerturbFieldUsesCachedICs(t *testing.T) {
	ctx := context.Background()
	d, spy := newDriver(t)

	pf, err := d.PerturbField(ctx, 8.0, testOptions(t, 42))
	require.NoError(t, err)
	assert.True(t, pf.Filled())
	assert.Equal(t, 1, spy.icCalls)
	assert.Equal(t, 1, spy.perturbCalls)

	// Second perturb at the same redshift hits the perturbed cache directly;
	// ICs are not even looked at.
	_, err = d.PerturbField(ctx, 8.0, testOptions(t, 42))
	require.NoError(t, err)
	assert.Equal(t, 1, spy.icCalls)
	assert.Equal(t, 1, spy.perturbCalls)

	// A new redshift perturbs again but reuses the stored ICs.
	_, err = d.PerturbField(ctx, 9.0, testOptions(t, 42))
	require.NoError(t, err)
	assert.Equal(t, 1, spy.icCalls)
	assert.Equal(t, 2, spy.perturbCalls)
}

func TestRun(t *testing.T) {
	ctx := context.Background()
	d, spy := newDriver(t)

	fields, err := d.Run(ctx, []float64{6.0, 7.0, 8.0}, testOptions(t, 42))
	require.NoError(t, err)

	require.Len(t, fields, 3)
	assert.Equal(t, 6.0, fields[0].Redshift())
	assert.Equal(t, 8.0, fields[2].Redshift())
	assert.Equal(t, 1, spy.icCalls)
	assert.Equal(t, 3, spy.perturbCalls)
}
