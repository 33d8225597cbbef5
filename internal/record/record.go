// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package record

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
)

// Magic identifies a box record file.
const Magic = "BOXC"

// FormatVersion is bumped whenever the container layout changes, so a stale
// reader fails structurally instead of misreading payloads.
const FormatVersion = 1

// ErrFormat is wrapped by all structural decode failures (bad magic,
// unsupported version, malformed header, truncated payload).
var ErrFormat = errors.New("malformed box record")

// maxHeaderLen guards against reading an absurd header length from a
// corrupted file.
const maxHeaderLen = 16 << 20

// maxBufferLen bounds a single declared payload so a mangled length field
// fails structurally instead of exhausting memory.
const maxBufferLen = 1 << 38

// BufferSpec describes one named buffer in the directory.
type BufferSpec struct {
	Name   string `json:"name"`
	Dtype  string `json:"dtype"`
	Shape  []int  `json:"shape"`
	Offset int64  `json:"offset"`
	Length int64  `json:"length"`
}

// Elements returns the element count implied by the shape.
func (b BufferSpec) Elements() int {
	n := 1
	for _, d := range b.Shape {
		n *= d
	}
	return n
}

// validate checks a directory entry for internal consistency. The declared
// length is untrusted input and must agree with the shape before any payload
// is allocated from it.
func (b BufferSpec) validate() error {
	if b.Length < 0 || b.Length > maxBufferLen {
		return fmt.Errorf("%w: buffer %q has implausible length %d", ErrFormat, b.Name, b.Length)
	}
	if b.Dtype == "float32" {
		elems := int64(1)
		for _, d := range b.Shape {
			if d <= 0 || elems > maxBufferLen/int64(d) {
				return fmt.Errorf("%w: buffer %q has implausible shape %v", ErrFormat, b.Name, b.Shape)
			}
			elems *= int64(d)
		}
		if b.Length != 4*elems {
			return fmt.Errorf("%w: buffer %q length %d disagrees with shape %v", ErrFormat, b.Name, b.Length, b.Shape)
		}
	}
	return nil
}

// Header is the JSON header of a record.
type Header struct {
	Type   string `json:"type"`
	Format int    `json:"format"`
	// Params maps set kind ("user", "cosmo", ...) to the canonical
	// name->value snapshot of that set's stored fields.
	Params  map[string]map[string]string `json:"params"`
	Buffers []BufferSpec                 `json:"buffers"`
}

// Record is a decoded (or to-be-encoded) box record. Payloads are keyed by
// buffer name and hold the raw little-endian bytes.
type Record struct {
	Header   Header
	Payloads map[string][]byte
}

// New constructs an empty record for the given artifact type.
func New(typ string) *Record {
	return &Record{
		Header: Header{
			Type:   typ,
			Format: FormatVersion,
			Params: make(map[string]map[string]string),
		},
		Payloads: make(map[string][]byte),
	}
}

// AddParams attaches a parameter snapshot under the given set kind.
func (r *Record) AddParams(kind string, snapshot map[string]string) {
	r.Header.Params[kind] = snapshot
}

// AddFloat32 appends a float32 buffer to the directory and stores its
// payload. Offsets are assigned at encode time.
func (r *Record) AddFloat32(name string, shape []int, data []float32) {
	payload := make([]byte, 4*len(data))
	for i, v := range data {
		binary.LittleEndian.PutUint32(payload[4*i:], math.Float32bits(v))
	}
	r.Header.Buffers = append(r.Header.Buffers, BufferSpec{
		Name:   name,
		Dtype:  "float32",
		Shape:  append([]int(nil), shape...),
		Length: int64(len(payload)),
	})
	r.Payloads[name] = payload
}

// Float32 decodes the named payload back into float32 values. Fails with
// ErrFormat if the buffer is missing or its length disagrees with its spec.
func (r *Record) Float32(name string) ([]float32, error) {
	spec, ok := r.spec(name)
	if !ok {
		return nil, fmt.Errorf("%w: no buffer %q", ErrFormat, name)
	}
	if spec.Dtype != "float32" {
		return nil, fmt.Errorf("%w: buffer %q has dtype %s, want float32", ErrFormat, name, spec.Dtype)
	}
	payload := r.Payloads[name]
	if int64(len(payload)) != spec.Length || len(payload) != 4*spec.Elements() {
		return nil, fmt.Errorf("%w: buffer %q payload is %d bytes, want %d", ErrFormat, name, len(payload), 4*spec.Elements())
	}
	out := make([]float32, spec.Elements())
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(payload[4*i:]))
	}
	return out, nil
}

func (r *Record) spec(name string) (BufferSpec, bool) {
	for _, b := range r.Header.Buffers {
		if b.Name == name {
			return b, true
		}
	}
	return BufferSpec{}, false
}

// Encode writes the record: magic, format version, header length, JSON
// header, then payloads in directory order.
func (r *Record) Encode(w io.Writer) error {
	// Assign payload offsets relative to the end of the header.
	var off int64
	for i := range r.Header.Buffers {
		r.Header.Buffers[i].Offset = off
		off += r.Header.Buffers[i].Length
	}

	hdr, err := json.Marshal(r.Header)
	if err != nil {
		return fmt.Errorf("failed to marshal record header: %w", err)
	}

	if _, err := w.Write([]byte(Magic)); err != nil {
		return fmt.Errorf("failed to write record magic: %w", err)
	}

	fixed := make([]byte, 6)
	binary.LittleEndian.PutUint16(fixed[0:], uint16(FormatVersion))
	binary.LittleEndian.PutUint32(fixed[2:], uint32(len(hdr)))
	if _, err := w.Write(fixed); err != nil {
		return fmt.Errorf("failed to write record prologue: %w", err)
	}

	if _, err := w.Write(hdr); err != nil {
		return fmt.Errorf("failed to write record header: %w", err)
	}

	for _, spec := range r.Header.Buffers {
		if _, err := w.Write(r.Payloads[spec.Name]); err != nil {
			return fmt.Errorf("failed to write buffer %q: %w", spec.Name, err)
		}
	}

	return nil
}

// Decode reads a record. Structural problems return an error wrapping
// ErrFormat; plain IO errors are returned as-is for the caller to classify.
func Decode(rd io.Reader) (*Record, error) {
	prologue := make([]byte, 10)
	if _, err := io.ReadFull(rd, prologue); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: truncated prologue", ErrFormat)
		}
		return nil, err
	}

	if string(prologue[:4]) != Magic {
		return nil, fmt.Errorf("%w: bad magic %q", ErrFormat, prologue[:4])
	}

	version := binary.LittleEndian.Uint16(prologue[4:])
	if version != FormatVersion {
		return nil, fmt.Errorf("%w: unsupported format version %d", ErrFormat, version)
	}

	hdrLen := binary.LittleEndian.Uint32(prologue[6:])
	if hdrLen == 0 || hdrLen > maxHeaderLen {
		return nil, fmt.Errorf("%w: implausible header length %d", ErrFormat, hdrLen)
	}

	hdr := make([]byte, hdrLen)
	if _, err := io.ReadFull(rd, hdr); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: truncated header", ErrFormat)
		}
		return nil, err
	}

	r := &Record{Payloads: make(map[string][]byte)}
	if err := json.Unmarshal(hdr, &r.Header); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	if r.Header.Type == "" {
		return nil, fmt.Errorf("%w: header missing artifact type", ErrFormat)
	}

	for _, spec := range r.Header.Buffers {
		if err := spec.validate(); err != nil {
			return nil, err
		}
		// CopyN grows with the data actually present, so a declared length
		// beyond the real input fails on truncation, not on allocation.
		var payload bytes.Buffer
		if _, err := io.CopyN(&payload, rd, spec.Length); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, fmt.Errorf("%w: truncated buffer %q", ErrFormat, spec.Name)
			}
			return nil, err
		}
		r.Payloads[spec.Name] = payload.Bytes()
	}

	return r, nil
}

// HeaderJSON re-marshals the header for tooling (inspect/diff).
func (r *Record) HeaderJSON() ([]byte, error) {
	b, err := json.Marshal(r.Header)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal record header: %w", err)
	}
	return b, nil
}
