// Copyright (c) 2022, superwindstorm <fengwd.hc@gmail.com>
// All rights reserved.
// Use of this source code is governed by a BSD 3-Clause
// license that can be found in the LICENSE file.

// Package hmac implements the keyed-hash message authentication code
// of RFC 2104 over SHA-256.
//
// The hash is used only through its hash.Hash surface. Compare tags
// with Equal to avoid timing side channels.
package hmac

import (
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"hash"

	"github.com/superwindstorm/sha256"
)

// Size is the bytes of an HMAC-SHA-256 tag.
const Size = sha256.Size

const (
	ipadByte = 0x36
	opadByte = 0x5c
)

type hmac struct {
	size, blocksize int
	ipad, opad      []byte
	inner, outer    hash.Hash
}

// New returns a hash.Hash computing the HMAC of h keyed with key.
// A key longer than the block size of h is hashed first.
func New(h func() hash.Hash, key []byte) hash.Hash {
	hm := &hmac{inner: h(), outer: h()}
	hm.size = hm.inner.Size()
	hm.blocksize = hm.inner.BlockSize()
	if len(key) > hm.blocksize {
		hm.outer.Write(key)
		key = hm.outer.Sum(nil)
	}
	hm.ipad, hm.opad = pads(key, hm.blocksize)
	hm.Reset()
	return hm
}

func (h *hmac) Write(p []byte) (int, error) {
	return h.inner.Write(p)
}

func (h *hmac) Sum(in []byte) []byte {
	origLen := len(in)
	in = h.inner.Sum(in)
	h.outer.Reset()
	h.outer.Write(h.opad)
	h.outer.Write(in[origLen:])
	return h.outer.Sum(in[:origLen])
}

func (h *hmac) Reset() {
	h.inner.Reset()
	h.inner.Write(h.ipad)
}

func (h *hmac) Size() int { return h.size }

func (h *hmac) BlockSize() int { return h.blocksize }

// pads zero-pads key to blocksize bytes and derives the inner and
// outer pads from it.
func pads(key []byte, blocksize int) (ipad, opad []byte) {
	ipad = make([]byte, blocksize)
	opad = make([]byte, blocksize)
	copy(ipad, key)
	copy(opad, key)
	for i := range ipad {
		ipad[i] ^= ipadByte
		opad[i] ^= opadByte
	}
	return ipad, opad
}

// Compute returns the HMAC-SHA-256 tag of message under key. Errors
// from the underlying hash, such as sha256.ErrLengthOverflow, are
// returned wrapped.
func Compute(key, message []byte) ([Size]byte, error) {
	var tag [Size]byte
	sum, err := compute(sha256.New, key, message)
	if err != nil {
		return tag, err
	}
	copy(tag[:], sum)
	return tag, nil
}

func compute(h func() hash.Hash, key, message []byte) ([]byte, error) {
	outer := h()
	blocksize := outer.BlockSize()
	if len(key) > blocksize {
		if _, err := outer.Write(key); err != nil {
			return nil, fmt.Errorf("hmac: hash key: %w", err)
		}
		key = outer.Sum(nil)
		outer.Reset()
	}
	ipad, opad := pads(key, blocksize)

	inner := h()
	inner.Write(ipad)
	if _, err := inner.Write(message); err != nil {
		return nil, fmt.Errorf("hmac: inner hash: %w", err)
	}

	outer.Write(opad)
	if _, err := outer.Write(inner.Sum(nil)); err != nil {
		return nil, fmt.Errorf("hmac: outer hash: %w", err)
	}
	return outer.Sum(nil), nil
}

// ComputeHex returns the HMAC-SHA-256 tag of message under key as 64
// lowercase hex characters.
func ComputeHex(key, message []byte) (string, error) {
	tag, err := Compute(key, message)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(tag[:]), nil
}

// Equal compares two MACs for equality without leaking timing
// information.
func Equal(mac1, mac2 []byte) bool {
	return subtle.ConstantTimeCompare(mac1, mac2) == 1
}
