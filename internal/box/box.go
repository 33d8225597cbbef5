// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package box

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/apex/log"

	"github.com/staranto/boxctl/internal/params"
	"github.com/staranto/boxctl/internal/record"
	"github.com/staranto/boxctl/internal/store"
)

// Box errors.
var (
	// ErrConfiguration means the governing parameters are missing or
	// inconsistent and no buffers can be allocated.
	ErrConfiguration = errors.New("inconsistent box configuration")

	// ErrAlreadyFilled means MarkFilled was called on a filled box. That is a
	// logic error in the caller, not a recoverable condition.
	ErrAlreadyFilled = errors.New("box already marked filled")

	// ErrNotFilled means a write was attempted before the box was filled.
	ErrNotFilled = errors.New("box has not been filled")
)

// Buffer is one named field array. Its shape is fixed at allocation and the
// backing slice is owned exclusively by the box.
type Buffer struct {
	Name  string
	Shape []int
	Data  []float32
}

func newBuffer(name string, shape ...int) *Buffer {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return &Buffer{Name: name, Shape: shape, Data: make([]float32, n)}
}

// Box is the common core of all output artifacts: the governing parameter
// sets, the allocated buffers, and the fill state. Concrete artifacts embed
// it and expose typed accessors for their buffers.
type Box struct {
	typ     string
	user    *params.UserParams
	cosmo   *params.CosmoParams
	extras  []params.Set
	buffers []*Buffer
	filled  bool
}

func newBox(typ string, user *params.UserParams, cosmo *params.CosmoParams, extras ...params.Set) (Box, error) {
	if user == nil || cosmo == nil {
		return Box{}, fmt.Errorf("%w: %s requires user and cosmo params", ErrConfiguration, typ)
	}
	return Box{typ: typ, user: user, cosmo: cosmo, extras: extras}, nil
}

// Type returns the artifact type name used in locations and record headers.
func (b *Box) Type() string { return b.typ }

// UserParams returns the governing user parameters.
func (b *Box) UserParams() *params.UserParams { return b.user }

// CosmoParams returns the governing cosmological parameters.
func (b *Box) CosmoParams() *params.CosmoParams { return b.cosmo }

// Filled reports whether the buffers hold real data.
func (b *Box) Filled() bool { return b.filled }

// Buffers returns the allocated buffers in allocation order.
func (b *Box) Buffers() []*Buffer { return b.buffers }

// MarkFilled transitions the box to filled. Calling it twice returns
// ErrAlreadyFilled.
func (b *Box) MarkFilled() error {
	if b.filled {
		return fmt.Errorf("%w: %s", ErrAlreadyFilled, b.typ)
	}
	b.filled = true
	return nil
}

// sets returns the governing sets in their fixed fingerprint order.
func (b *Box) sets() []params.Set {
	s := []params.Set{b.user, b.cosmo}
	return append(s, b.extras...)
}

// Fingerprint returns the cache key over the governing sets. The seed is
// excluded unless includeSeed is set.
func (b *Box) Fingerprint(includeSeed bool) string {
	return params.Fingerprint(includeSeed, b.sets()...)
}

// Key returns the storage key for this box. Realizes the seed if needed.
func (b *Box) Key() store.Key {
	return store.Key{
		Type:        b.typ,
		Fingerprint: b.Fingerprint(false),
		Seed:        b.cosmo.RandomSeed(),
	}
}

// ReadOptions controls a cache lookup.
type ReadOptions struct {
	// Location overrides the fingerprint-derived location entirely.
	Location string

	// MatchSeed requires the stored seed to equal this box's seed. When
	// false, any stored box whose other fields match is a hit regardless of
	// the seed that produced it.
	MatchSeed bool
}

// WriteOptions controls persistence.
type WriteOptions struct {
	// Location overrides the fingerprint-derived location.
	Location string
}

// Read locates a stored record matching this box's parameters, verifies the
// match predicate, and fills the buffers from it. Returns store.ErrNotFound
// when no candidate satisfies the predicate; corrupt candidates are skipped
// with a warning. On success the box is filled and the stored seed is
// adopted.
func (b *Box) Read(ctx context.Context, st store.Store, opt ReadOptions) error {
	var candidates []string
	switch {
	case opt.Location != "":
		candidates = []string{opt.Location}
	case opt.MatchSeed:
		candidates = []string{st.Locate(b.Key())}
	default:
		locs, err := st.Candidates(ctx, store.Key{Type: b.typ, Fingerprint: b.Fingerprint(false)})
		if err != nil {
			return err
		}
		candidates = locs
	}

	for _, loc := range candidates {
		rec, err := st.Read(ctx, loc)
		switch {
		case err != nil && opt.Location != "":
			// An explicit location names exactly one record; report what is
			// actually wrong with it instead of a generic miss.
			return err
		case errors.Is(err, store.ErrNotFound):
			continue
		case errors.Is(err, store.ErrCorrupt):
			log.Warnf("skipping corrupt record: %v", err)
			continue
		case err != nil:
			return err
		}

		if rec.Header.Type != b.typ {
			continue
		}
		if !MatchSnapshot(b.sets(), rec.Header.Params, opt.MatchSeed) {
			log.Debugf("record %s does not satisfy match predicate", loc)
			continue
		}

		if err := b.fill(rec); err != nil {
			log.Warnf("skipping record %s: %v", loc, err)
			continue
		}

		b.adoptSeed(rec)
		b.filled = true
		log.Debugf("read %s from %s", b.typ, loc)
		return nil
	}

	return fmt.Errorf("%w: no stored %s matches fingerprint %s", store.ErrNotFound, b.typ, b.Fingerprint(false))
}

// Write serializes the governing parameters and buffers and commits them to
// the store at the fingerprint-derived location (or an explicit override).
func (b *Box) Write(ctx context.Context, st store.Store, opt WriteOptions) error {
	if !b.filled {
		return fmt.Errorf("%w: refusing to write %s", ErrNotFilled, b.typ)
	}

	rec := record.New(b.typ)
	for _, s := range b.sets() {
		rec.AddParams(s.Kind(), params.Snapshot(s))
	}
	for _, buf := range b.buffers {
		rec.AddFloat32(buf.Name, buf.Shape, buf.Data)
	}

	loc := opt.Location
	if loc == "" {
		loc = st.Locate(b.Key())
	}
	return st.Write(ctx, loc, rec)
}

// fill copies the record's payloads into the allocated buffers. Shape or
// length disagreements mean the record does not actually correspond to the
// governing parameters and are treated as corruption.
func (b *Box) fill(rec *record.Record) error {
	for _, buf := range b.buffers {
		data, err := rec.Float32(buf.Name)
		if err != nil {
			return fmt.Errorf("%w: %v", store.ErrCorrupt, err)
		}
		if len(data) != len(buf.Data) {
			return fmt.Errorf("%w: buffer %q has %d elements, want %d",
				store.ErrCorrupt, buf.Name, len(data), len(buf.Data))
		}
		copy(buf.Data, data)
	}
	return nil
}

// adoptSeed fixes the in-memory seed to the one recorded in the matched
// record, so later seed-inclusive fingerprints reflect the data actually
// loaded.
func (b *Box) adoptSeed(rec *record.Record) {
	snap, ok := rec.Header.Params[b.cosmo.Kind()]
	if !ok {
		return
	}
	raw, ok := snap[params.SeedField]
	if !ok {
		return
	}
	seed, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || seed < 1 {
		return
	}
	b.cosmo.AdoptSeed(seed)
}

// MatchSnapshot is the read-side match predicate. Every stored field of the
// requested sets must equal the candidate snapshot's value. Fields the
// caller left at default compare by resolved value, which is the same test
// because defaults are deterministic. The seed field participates only when
// matchSeed is set.
func MatchSnapshot(sets []params.Set, candidate map[string]map[string]string, matchSeed bool) bool {
	for _, s := range sets {
		snap, ok := candidate[s.Kind()]
		if !ok {
			return false
		}
		for _, f := range s.Canonical(matchSeed) {
			if snap[f.Name] != f.Value {
				return false
			}
		}
	}
	return true
}
