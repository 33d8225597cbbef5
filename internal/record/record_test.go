// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package record

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecord() *Record {
	r := New("initial_conditions")
	r.AddParams("user", map[string]string{"BOX_LEN": "150", "DIM": "8", "HII_DIM": "2"})
	r.AddParams("cosmo", map[string]string{"SIGMA_8": "0.82", "RANDOM_SEED": "42"})
	data := make([]float32, 8*8*8)
	for i := range data {
		data[i] = float32(i) * 0.5
	}
	data[0] = float32(math.Pi)
	r.AddFloat32("hires_density", []int{8, 8, 8}, data)
	return r
}

func TestRecordRoundTrip(t *testing.T) {
	r := sampleRecord()

	var buf bytes.Buffer
	require.NoError(t, r.Encode(&buf))

	got, err := Decode(&buf)
	require.NoError(t, err)

	assert.Equal(t, "initial_conditions", got.Header.Type)
	assert.Equal(t, FormatVersion, got.Header.Format)
	assert.Equal(t, r.Header.Params, got.Header.Params)

	want, err := r.Float32("hires_density")
	require.NoError(t, err)
	have, err := got.Float32("hires_density")
	require.NoError(t, err)
	assert.Equal(t, want, have, "buffer contents must round-trip exactly")
}

func TestRecordRoundTripMultipleBuffers(t *testing.T) {
	r := New("perturbed_field")
	r.AddParams("redshift", map[string]string{"REDSHIFT": "8"})
	r.AddFloat32("density", []int{2, 2, 2}, []float32{1, 2, 3, 4, 5, 6, 7, 8})
	r.AddFloat32("velocity", []int{2, 2, 2}, []float32{-1, -2, -3, -4, -5, -6, -7, -8})

	var buf bytes.Buffer
	require.NoError(t, r.Encode(&buf))

	got, err := Decode(&buf)
	require.NoError(t, err)

	den, err := got.Float32("density")
	require.NoError(t, err)
	vel, err := got.Float32("velocity")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6, 7, 8}, den)
	assert.Equal(t, []float32{-1, -2, -3, -4, -5, -6, -7, -8}, vel)

	// Offsets are assigned in directory order.
	assert.Equal(t, int64(0), got.Header.Buffers[0].Offset)
	assert.Equal(t, int64(32), got.Header.Buffers[1].Offset)
}

func TestDecodeStructuralFailures(t *testing.T) {
	var good bytes.Buffer
	require.NoError(t, sampleRecord().Encode(&good))

	tests := []struct {
		name   string
		mangle func([]byte) []byte
	}{
		{
			name:   "empty input",
			mangle: func([]byte) []byte { return nil },
		},
		{
			name:   "bad magic",
			mangle: func(b []byte) []byte { b[0] = 'X'; return b },
		},
		{
			name:   "unsupported version",
			mangle: func(b []byte) []byte { b[4] = 0xFF; return b },
		},
		{
			name:   "truncated header",
			mangle: func(b []byte) []byte { return b[:12] },
		},
		{
			name:   "truncated payload",
			mangle: func(b []byte) []byte { return b[:len(b)-100] },
		},
		{
			name: "garbage header json",
			mangle: func(b []byte) []byte {
				b[10] = '{'
				b[11] = '{'
				return b
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := tt.mangle(append([]byte(nil), good.Bytes()...))
			_, err := Decode(bytes.NewReader(b))
			assert.ErrorIs(t, err, ErrFormat)
		})
	}
}

// encodeWithHeader builds a structurally well-formed prologue around an
// arbitrary header, bypassing Encode so the directory can lie.
func encodeWithHeader(t *testing.T, hdr Header) []byte {
	t.Helper()
	raw, err := json.Marshal(hdr)
	require.NoError(t, err)

	var buf bytes.Buffer
	buf.WriteString(Magic)
	fixed := make([]byte, 6)
	binary.LittleEndian.PutUint16(fixed[0:], uint16(FormatVersion))
	binary.LittleEndian.PutUint32(fixed[2:], uint32(len(raw)))
	buf.Write(fixed)
	buf.Write(raw)
	return buf.Bytes()
}

func TestDecodeRejectsLyingBufferDirectory(t *testing.T) {
	tests := []struct {
		name string
		spec BufferSpec
	}{
		{
			name: "length beyond any plausible payload",
			spec: BufferSpec{Name: "hires_density", Dtype: "float32", Shape: []int{2, 2, 2}, Length: 1 << 50},
		},
		{
			name: "length disagrees with shape",
			spec: BufferSpec{Name: "hires_density", Dtype: "float32", Shape: []int{2, 2, 2}, Length: 100},
		},
		{
			name: "negative length",
			spec: BufferSpec{Name: "hires_density", Dtype: "float32", Shape: []int{2, 2, 2}, Length: -1},
		},
		{
			name: "non-positive shape dimension",
			spec: BufferSpec{Name: "hires_density", Dtype: "float32", Shape: []int{0, 2, 2}, Length: 0},
		},
		{
			name: "overflowing shape product",
			spec: BufferSpec{Name: "hires_density", Dtype: "float32", Shape: []int{1 << 20, 1 << 20, 1 << 20}, Length: 16},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := encodeWithHeader(t, Header{
				Type:    "initial_conditions",
				Format:  FormatVersion,
				Buffers: []BufferSpec{tt.spec},
			})
			_, err := Decode(bytes.NewReader(b))
			assert.ErrorIs(t, err, ErrFormat)
		})
	}
}

func TestFloat32MissingBuffer(t *testing.T) {
	r := sampleRecord()
	_, err := r.Float32("nope")
	assert.ErrorIs(t, err, ErrFormat)
}
