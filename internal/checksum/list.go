// Copyright (c) 2022, superwindstorm <fengwd.hc@gmail.com>
// All rights reserved.
// Use of this source code is governed by a BSD 3-Clause
// license that can be found in the LICENSE file.

package checksum

import (
	"bufio"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// ErrMalformedLine is returned for a checksum list line that is not in
// "<hex>  <name>" form.
var ErrMalformedLine = errors.New("malformed checksum line")

// Entry is one line of a checksum list.
type Entry struct {
	Sum  string
	Name string
}

// FormatLine renders sum and name in the sha256sum text format.
func FormatLine(sum []byte, name string) string {
	return hex.EncodeToString(sum) + "  " + name
}

// ParseLine parses a "<hex>  <name>" or "<hex> *<name>" line.
func ParseLine(line string) (Entry, error) {
	line = strings.TrimRight(line, "\r\n")
	sum, rest, ok := strings.Cut(line, " ")
	if !ok || len(rest) < 2 || (rest[0] != ' ' && rest[0] != '*') {
		return Entry{}, fmt.Errorf("%w: %q", ErrMalformedLine, line)
	}
	if _, err := decodeSum(sum); err != nil {
		return Entry{}, fmt.Errorf("%w: %v", ErrMalformedLine, err)
	}
	return Entry{
		Sum:  strings.ToLower(sum),
		Name: rest[1:],
	}, nil
}

// Result is the outcome of checking one list entry.
type Result struct {
	Line  int
	Entry Entry
	Err   error
}

// OK reports whether the entry verified.
func (r Result) OK() bool { return r.Err == nil }

// Status is a one-word summary of the result.
func (r Result) Status() string {
	switch {
	case r.Err == nil:
		return "OK"
	case errors.Is(r.Err, ErrMismatch):
		return "FAILED"
	case errors.Is(r.Err, ErrMalformedLine):
		return "MALFORMED"
	default:
		return "ERROR"
	}
}

// CheckList verifies every entry of the checksum list read from r.
// Relative names are resolved against dir. Blank lines and lines
// starting with '#' are skipped. The context is checked between
// entries; on cancellation the results gathered so far are returned
// together with the context error.
func (c *Checker) CheckList(ctx context.Context, r io.Reader, dir string) ([]Result, error) {
	var results []Result
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if err := ctx.Err(); err != nil {
			return results, err
		}
		line := scanner.Text()
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}

		entry, err := ParseLine(line)
		if err != nil {
			if c.log != nil {
				c.log.Warnf("line %d: %v", lineNo, err)
			}
			results = append(results, Result{Line: lineNo, Err: err})
			continue
		}

		path := entry.Name
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		err = c.VerifyFile(path, entry.Sum)
		if err == nil && c.log != nil {
			c.log.Infof("%s: OK", entry.Name)
		}
		results = append(results, Result{Line: lineNo, Entry: entry, Err: err})
	}
	if err := scanner.Err(); err != nil {
		return results, fmt.Errorf("read checksum list: %w", err)
	}
	return results, nil
}
