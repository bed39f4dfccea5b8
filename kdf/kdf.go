// Copyright (c) 2022, superwindstorm <fengwd.hc@gmail.com>
// All rights reserved.
// Use of this source code is governed by a BSD 3-Clause
// license that can be found in the LICENSE file.

// Package kdf derives keys with HKDF (RFC 5869) and PBKDF2 (RFC 8018)
// over this module's SHA-256.
package kdf

import (
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/pbkdf2"

	"github.com/superwindstorm/sha256"
)

// MaxHKDFLength is the largest output HKDF can expand a single
// pseudorandom key to.
const MaxHKDFLength = 255 * sha256.Size

var (
	// ErrInvalidLength is returned for a non-positive or too large
	// output length.
	ErrInvalidLength = errors.New("kdf: invalid output length")

	// ErrInvalidIterations is returned for a PBKDF2 iteration count
	// below one.
	ErrInvalidIterations = errors.New("kdf: invalid iteration count")
)

// HKDF derives length bytes of key material from secret.
// salt and info may be nil.
func HKDF(secret, salt, info []byte, length int) ([]byte, error) {
	if length <= 0 || length > MaxHKDFLength {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLength, length)
	}
	reader := hkdf.New(sha256.New, secret, salt, info)
	result := make([]byte, length)
	if _, err := io.ReadFull(reader, result); err != nil {
		return nil, err
	}
	return result, nil
}

// HKDFExtract returns the 32-byte pseudorandom key extracted from
// secret. A nil salt is treated as 32 zero bytes.
func HKDFExtract(secret, salt []byte) []byte {
	return hkdf.Extract(sha256.New, secret, salt)
}

// HKDFExpand expands a pseudorandom key into length bytes.
func HKDFExpand(prk, info []byte, length int) ([]byte, error) {
	if length <= 0 || length > MaxHKDFLength {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLength, length)
	}
	reader := hkdf.Expand(sha256.New, prk, info)
	result := make([]byte, length)
	if _, err := io.ReadFull(reader, result); err != nil {
		return nil, err
	}
	return result, nil
}

// PBKDF2 derives keyLen bytes from password with PBKDF2-HMAC-SHA-256.
func PBKDF2(password, salt []byte, iterations, keyLen int) ([]byte, error) {
	if iterations < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidIterations, iterations)
	}
	if keyLen <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLength, keyLen)
	}
	return pbkdf2.Key(password, salt, iterations, keyLen, sha256.New), nil
}
