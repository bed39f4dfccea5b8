// Copyright (c) 2022, superwindstorm <fengwd.hc@gmail.com>
// All rights reserved.
// Use of this source code is governed by a BSD 3-Clause
// license that can be found in the LICENSE file.

package sha256

import (
	"encoding/binary"
	"math/bits"
)

// Size is the bytes of digest
const Size = 32

// BlockSize is the bytes of each block
const BlockSize = 64

// Initial hash value, FIPS 180-4 section 5.3.3.
const (
	chunk = 64
	init0 = 0x6a09e667
	init1 = 0xbb67ae85
	init2 = 0x3c6ef372
	init3 = 0xa54ff53a
	init4 = 0x510e527f
	init5 = 0x9b05688c
	init6 = 0x1f83d9ab
	init7 = 0x5be0cd19
)

func (d *digest) checkSum() [Size]byte {
	// Write will change d.len
	length := d.len << 3
	var buf [chunk * 2]byte
	n := copy(buf[:], d.x[:d.nx])
	buf[n] = 0x80
	n++
	nn := chunk
	if n > chunk-8 {
		nn += chunk
	}
	binary.BigEndian.PutUint64(buf[nn-8:nn], length)
	block(d, buf[:nn])

	var result [Size]byte
	for i, s := range d.h {
		binary.BigEndian.PutUint32(result[i*4:], s)
	}
	return result
}

// block compresses every whole 64-byte block of p into the state of
// dig, chaining each block's output into the next.
func block(dig *digest, p []byte) {
	var w [64]uint32
	h0, h1, h2, h3, h4, h5, h6, h7 := dig.h[0], dig.h[1], dig.h[2], dig.h[3], dig.h[4], dig.h[5], dig.h[6], dig.h[7]

	for len(p) >= chunk {
		for i := 0; i < 16; i++ {
			w[i] = binary.BigEndian.Uint32(p[i*4:])
		}
		for i := 16; i < 64; i++ {
			v15 := w[i-15]
			s0 := bits.RotateLeft32(v15, -7) ^ bits.RotateLeft32(v15, -18) ^ (v15 >> 3)
			v2 := w[i-2]
			s1 := bits.RotateLeft32(v2, -17) ^ bits.RotateLeft32(v2, -19) ^ (v2 >> 10)
			w[i] = s0 + w[i-7] + s1 + w[i-16]
		}

		a, b, c, d, e, f, g, h := h0, h1, h2, h3, h4, h5, h6, h7
		for i := 0; i < 64; i++ {
			t1 := h + (bits.RotateLeft32(e, -6) ^ bits.RotateLeft32(e, -11) ^ bits.RotateLeft32(e, -25)) +
				((e & f) ^ (^e & g)) + _K[i] + w[i]
			t2 := (bits.RotateLeft32(a, -2) ^ bits.RotateLeft32(a, -13) ^ bits.RotateLeft32(a, -22)) +
				((a & b) ^ (a & c) ^ (b & c))

			h, g, f, e = g, f, e, d+t1
			d, c, b, a = c, b, a, t1+t2
		}

		h0 += a
		h1 += b
		h2 += c
		h3 += d
		h4 += e
		h5 += f
		h6 += g
		h7 += h

		p = p[chunk:]
	}
	dig.h[0], dig.h[1], dig.h[2], dig.h[3], dig.h[4], dig.h[5], dig.h[6], dig.h[7] = h0, h1, h2, h3, h4, h5, h6, h7
}

// Round constants: the first 32 bits of the fractional parts of the
// cube roots of the first 64 primes.
var _K = [64]uint32{
	0x428a2f98, 0x71374491, 0xb5c0fbcf, 0xe9b5dba5,
	0x3956c25b, 0x59f111f1, 0x923f82a4, 0xab1c5ed5,
	0xd807aa98, 0x12835b01, 0x243185be, 0x550c7dc3,
	0x72be5d74, 0x80deb1fe, 0x9bdc06a7, 0xc19bf174,
	0xe49b69c1, 0xefbe4786, 0x0fc19dc6, 0x240ca1cc,
	0x2de92c6f, 0x4a7484aa, 0x5cb0a9dc, 0x76f988da,
	0x983e5152, 0xa831c66d, 0xb00327c8, 0xbf597fc7,
	0xc6e00bf3, 0xd5a79147, 0x06ca6351, 0x14292967,
	0x27b70a85, 0x2e1b2138, 0x4d2c6dfc, 0x53380d13,
	0x650a7354, 0x766a0abb, 0x81c2c92e, 0x92722c85,
	0xa2bfe8a1, 0xa81a664b, 0xc24b8b70, 0xc76c51a3,
	0xd192e819, 0xd6990624, 0xf40e3585, 0x106aa070,
	0x19a4c116, 0x1e376c08, 0x2748774c, 0x34b0bcb5,
	0x391c0cb3, 0x4ed8aa4a, 0x5b9cca4f, 0x682e6ff3,
	0x748f82ee, 0x78a5636f, 0x84c87814, 0x8cc70208,
	0x90befffa, 0xa4506ceb, 0xbef9a3f7, 0xc67178f2,
}
