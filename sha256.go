// Copyright (c) 2022, superwindstorm <fengwd.hc@gmail.com>
// All rights reserved.
// Use of this source code is governed by a BSD 3-Clause
// license that can be found in the LICENSE file.

// Package sha256 implements the SHA-256 hash algorithm as defined
// in FIPS 180-4.
//
// The implementation is portable Go: words are uint32 values whose
// additions wrap modulo 2^32, and blocks are compressed strictly in
// order. Digests share nothing but read-only constant tables, so
// independent digests may run concurrently without locking.
package sha256

import (
	"encoding/hex"
	"errors"
	"hash"
)

// ErrLengthOverflow is returned when the total message length in bits
// can no longer be represented in the 64-bit length field of the
// padding.
var ErrLengthOverflow = errors.New("sha256: message length overflows 64-bit bit count")

// maxLen is the largest message length in bytes whose bit length fits
// in 64 bits.
const maxLen = 1<<61 - 1

type digest struct {
	h   [8]uint32
	x   [chunk]byte
	nx  int
	len uint64
}

// New returns a new hash.Hash computing the SHA-256 checksum.
//
// Write never truncates: a write that would push the message length
// past 2^64-1 bits is rejected with ErrLengthOverflow and leaves the
// state untouched.
func New() hash.Hash {
	d := new(digest)
	d.Reset()
	return d
}

// Reset restores the initial hash value.
func (d *digest) Reset() {
	d.h[0] = init0
	d.h[1] = init1
	d.h[2] = init2
	d.h[3] = init3
	d.h[4] = init4
	d.h[5] = init5
	d.h[6] = init6
	d.h[7] = init7
	d.nx = 0
	d.len = 0
}

// Size returns the size of hash digest
func (d *digest) Size() int { return Size }

// BlockSize return the bytes of one block
func (d *digest) BlockSize() int { return BlockSize }

func (d *digest) Write(p []byte) (nn int, err error) {
	if uint64(len(p)) > maxLen-d.len {
		return 0, ErrLengthOverflow
	}
	nn = len(p)
	d.len += uint64(nn)
	if d.nx > 0 {
		n := copy(d.x[d.nx:], p)
		d.nx += n
		if d.nx == chunk {
			block(d, d.x[:])
			d.nx = 0
		}
		p = p[n:]
	}

	if len(p) >= chunk {
		n := len(p) &^ (chunk - 1)
		block(d, p[:n])
		p = p[n:]
	}
	if len(p) > 0 {
		d.nx = copy(d.x[:], p)
	}
	return
}

// Sum appends the digest to in. The internal state remains the same,
// so more data may be written afterwards.
func (d *digest) Sum(in []byte) []byte {
	// checkSum will change internal states, so make a copy
	d0 := *d
	hash := d0.checkSum()
	return append(in, hash[:]...)
}

// Digest returns the SHA-256 digest of message.
func Digest(message []byte) ([Size]byte, error) {
	var d digest
	d.Reset()
	if _, err := d.Write(message); err != nil {
		return [Size]byte{}, err
	}
	return d.checkSum(), nil
}

// Sum returns the SHA-256 checksum of the concatenation of data.
// Slices held in memory can never overflow the length field.
func Sum(data ...[]byte) [Size]byte {
	var d digest
	d.Reset()
	for _, x := range data {
		d.Write(x)
	}
	return d.checkSum()
}

// SumHex returns the SHA-256 checksum of data as 64 lowercase hex
// characters.
func SumHex(data []byte) string {
	sum := Sum(data)
	return hex.EncodeToString(sum[:])
}
