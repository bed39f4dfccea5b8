// Copyright (c) 2022, superwindstorm <fengwd.hc@gmail.com>
// All rights reserved.
// Use of this source code is governed by a BSD 3-Clause
// license that can be found in the LICENSE file.

// Package checksum computes and verifies integrity checksums of
// payloads and files, either as plain SHA-256 digests or as keyed
// HMAC-SHA-256 tags.
package checksum

import (
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"os"

	"github.com/pion/logging"

	"github.com/superwindstorm/sha256"
	"github.com/superwindstorm/sha256/hmac"
)

var (
	// ErrMismatch is returned when a computed checksum differs from the
	// expected one.
	ErrMismatch = errors.New("checksum mismatch")

	// ErrInvalidSum is returned for an expected checksum that is not
	// 64 hex characters.
	ErrInvalidSum = errors.New("invalid checksum")
)

// Config configures a Checker.
type Config struct {
	// Key switches the checker to HMAC-SHA-256 tags.
	// If empty, plain SHA-256 digests are used.
	Key []byte

	// LoggerFactory is the factory for creating loggers.
	// If nil, logging is disabled.
	LoggerFactory logging.LoggerFactory
}

// Checker computes and verifies checksums. It holds no per-call state
// and is safe for concurrent use.
type Checker struct {
	key []byte
	log logging.LeveledLogger
}

// New creates a Checker with the given configuration.
func New(config Config) *Checker {
	c := &Checker{}
	if len(config.Key) > 0 {
		c.key = append([]byte(nil), config.Key...)
	}
	if config.LoggerFactory != nil {
		c.log = config.LoggerFactory.NewLogger("checksum")
	}
	return c
}

// Algorithm names the checksum the Checker produces.
func (c *Checker) Algorithm() string {
	if c.key != nil {
		return "HMAC-SHA256"
	}
	return "SHA256"
}

func (c *Checker) newHash() hash.Hash {
	if c.key != nil {
		return hmac.New(sha256.New, c.key)
	}
	return sha256.New()
}

// Sum returns the checksum of data.
func (c *Checker) Sum(data []byte) ([]byte, error) {
	if c.key != nil {
		tag, err := hmac.Compute(c.key, data)
		if err != nil {
			return nil, err
		}
		return tag[:], nil
	}
	sum, err := sha256.Digest(data)
	if err != nil {
		return nil, err
	}
	return sum[:], nil
}

// SumReader returns the checksum of everything read from r.
func (c *Checker) SumReader(r io.Reader) ([]byte, error) {
	h := c.newHash()
	n, err := io.Copy(h, r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	if c.log != nil {
		c.log.Debugf("hashed %d bytes from stream", n)
	}
	return h.Sum(nil), nil
}

// SumFile returns the checksum of the named file. Regular files are
// memory-mapped where the platform allows it and streamed otherwise.
func (c *Checker) SumFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if info.Mode().IsRegular() && info.Size() > 0 {
		data, unmap, err := mapFile(f, info.Size())
		if err == nil {
			defer unmap()
			if c.log != nil {
				c.log.Debugf("hashing %s (%d bytes, mapped)", path, len(data))
			}
			return c.Sum(data)
		}
		if c.log != nil {
			c.log.Debugf("mapping %s failed, streaming instead: %v", path, err)
		}
	}

	sum, err := c.SumReader(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sum, nil
}

// Verify checks data against the hex encoded checksum want.
func (c *Checker) Verify(data []byte, want string) error {
	got, err := c.Sum(data)
	if err != nil {
		return err
	}
	return compare(got, want)
}

// VerifyFile checks the named file against the hex encoded checksum
// want.
func (c *Checker) VerifyFile(path, want string) error {
	got, err := c.SumFile(path)
	if err != nil {
		return err
	}
	if err := compare(got, want); err != nil {
		if c.log != nil {
			c.log.Warnf("%s: %v", path, err)
		}
		return err
	}
	return nil
}

func compare(got []byte, want string) error {
	expected, err := decodeSum(want)
	if err != nil {
		return err
	}
	if !hmac.Equal(got, expected) {
		return fmt.Errorf("%w: got %x, want %x", ErrMismatch, got, expected)
	}
	return nil
}

func decodeSum(s string) ([]byte, error) {
	if len(s) != hex.EncodedLen(sha256.Size) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSum, s)
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSum, s)
	}
	return b, nil
}
