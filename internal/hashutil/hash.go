// Package hashutil implements the 64-bit FNV-1a hash used for content
// fingerprints and disk slot names.
package hashutil

import (
	"encoding/binary"
	"fmt"
	"hash"
)

const (
	offset64 = 14695981039346656037
	prime64  = 1099511628211
)

// Digest is an incremental FNV-1a 64-bit hash implementing hash.Hash64.
// Construct with New; the zero value hashes from zero state, not the
// offset basis.
type Digest struct {
	h uint64
}

var _ hash.Hash64 = (*Digest)(nil)

// New returns a Digest seeded with the FNV-1a offset basis.
func New() *Digest {
	return &Digest{h: offset64}
}

// Write folds p into the digest. It never fails; the error return
// exists to satisfy io.Writer so files can be streamed in.
func (d *Digest) Write(p []byte) (int, error) {
	h := d.h
	for _, c := range p {
		h ^= uint64(c)
		h *= prime64
	}
	d.h = h
	return len(p), nil
}

// WriteString folds s into the digest without copying it to a byte slice.
func (d *Digest) WriteString(s string) (int, error) {
	h := d.h
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= prime64
	}
	d.h = h
	return len(s), nil
}

// Sum64 returns the current hash value. The digest remains usable.
func (d *Digest) Sum64() uint64 {
	return d.h
}

// Sum appends the current hash, big-endian, to b.
func (d *Digest) Sum(b []byte) []byte {
	return binary.BigEndian.AppendUint64(b, d.h)
}

// Size returns the number of bytes Sum appends.
func (d *Digest) Size() int { return 8 }

// BlockSize returns the hash block size.
func (d *Digest) BlockSize() int { return 1 }

// Reset restores the digest to the offset basis.
func (d *Digest) Reset() {
	d.h = offset64
}

// Sum64 hashes b in one pass.
func Sum64(b []byte) uint64 {
	h := uint64(offset64)
	for _, c := range b {
		h ^= uint64(c)
		h *= prime64
	}
	return h
}

// Sum64String hashes s in one pass without allocating.
func Sum64String(s string) uint64 {
	h := uint64(offset64)
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= prime64
	}
	return h
}

// Filename renders h as the fixed-width lowercase hex string used to
// name disk cache entries. Distinct hashes always produce distinct,
// equal-length names.
func Filename(h uint64) string {
	return fmt.Sprintf("%016x", h)
}
