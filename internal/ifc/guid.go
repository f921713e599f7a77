// Package ifc holds the output side of the pipeline: a small IFC entity
// model, an ISO-10303-21 (STEP) writer and reader for the subset of IFC4 the
// library builder emits, the builder itself, and the library importer.
package ifc

import "github.com/google/uuid"

// guidChars is the 64-character alphabet of compressed IFC GlobalIds.
const guidChars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz_$"

// NewGUID returns a fresh 22-character compressed GlobalId backed by a
// random 128-bit UUID. Every identifier-bearing entity gets its own; ids are
// never reused within or across runs.
func NewGUID() string {
	return CompressGUID(uuid.New())
}

// CompressGUID encodes the 16 bytes of a UUID as a 22-character IFC
// GlobalId: the first byte as two base-64 digits, then five groups of three
// bytes as four digits each.
func CompressGUID(u uuid.UUID) string {
	out := make([]byte, 0, 22)
	out = appendBase64(out, uint32(u[0]), 2)
	for i := 1; i < len(u); i += 3 {
		v := uint32(u[i])<<16 | uint32(u[i+1])<<8 | uint32(u[i+2])
		out = appendBase64(out, v, 4)
	}
	return string(out)
}

func appendBase64(dst []byte, v uint32, width int) []byte {
	var chunk [4]byte
	for i := width - 1; i >= 0; i-- {
		chunk[i] = guidChars[v%64]
		v /= 64
	}
	return append(dst, chunk[:width]...)
}
