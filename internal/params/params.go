// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package params

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strconv"
)

// ErrValidation is wrapped by all parameter validation failures. Values are
// rejected outright, never clamped.
var ErrValidation = errors.New("invalid parameter value")

// SeedField is the wire name of the lazily-randomized seed field. It is the
// only field that can be excluded from fingerprinting and matching.
const SeedField = "RANDOM_SEED"

// Field is a single stored parameter rendered to its canonical textual form.
type Field struct {
	Name  string
	Value string
}

// Set is a parameter set that can render itself into canonical form.
// Canonical returns the stored fields sorted by name. Derived values never
// appear in the canonical form. When includeSeed is false, the lazy seed
// field (if the set has one) is omitted so that artifacts produced from
// different seeds share a fingerprint.
type Set interface {
	// Kind identifies the set in serialized records ("user", "cosmo", ...).
	Kind() string
	Canonical(includeSeed bool) []Field
}

// Fingerprint hashes the canonical form of the given sets, in the order
// given, into a fixed-width hex key. The field order within each set is
// sorted by name and the set order is fixed by the artifact that owns them,
// so the result is stable across processes and construction paths.
func Fingerprint(includeSeed bool, sets ...Set) string {
	h := md5.New()
	for _, s := range sets {
		for _, f := range s.Canonical(includeSeed) {
			fmt.Fprintf(h, "%s=%s;", f.Name, f.Value)
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Snapshot renders a set into a name->value map for embedding in a record
// header. The seed is always included here; exclusion is a matching concern,
// not a storage concern.
func Snapshot(s Set) map[string]string {
	m := make(map[string]string)
	for _, f := range s.Canonical(true) {
		m[f.Name] = f.Value
	}
	return m
}

// formatFloat renders a float in the shortest form that round-trips, so the
// same value always canonicalizes identically (150.0 -> "150").
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func formatInt(v int64) string {
	return strconv.FormatInt(v, 10)
}

func sortFields(fields []Field) []Field {
	sort.Slice(fields, func(i, j int) bool {
		return fields[i].Name < fields[j].Name
	})
	return fields
}
