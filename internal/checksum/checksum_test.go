// Copyright (c) 2022, superwindstorm <fengwd.hc@gmail.com>
// All rights reserved.
// Use of this source code is governed by a BSD 3-Clause
// license that can be found in the LICENSE file.

package checksum

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pion/logging"
)

const (
	abcSHA256  = "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	emptySHA   = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	foxMessage = "The quick brown fox jumps over the lazy dog"
	foxHMAC    = "f7bc83f430538424b13298e6aa6fb143ef4d59a14946175997479dbc2d1a3cd8"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func testLoggerFactory(buf *bytes.Buffer) logging.LoggerFactory {
	return &logging.DefaultLoggerFactory{
		Writer:          buf,
		DefaultLogLevel: logging.LogLevelDebug,
	}
}

func TestSum(t *testing.T) {
	c := New(Config{})
	if c.Algorithm() != "SHA256" {
		t.Fatalf("Algorithm() = %s", c.Algorithm())
	}
	got, err := c.Sum([]byte("abc"))
	if err != nil {
		t.Fatalf("Sum() error = %v", err)
	}
	if hex.EncodeToString(got) != abcSHA256 {
		t.Fatalf("Sum() = %x, want %s", got, abcSHA256)
	}

	keyed := New(Config{Key: []byte("key")})
	if keyed.Algorithm() != "HMAC-SHA256" {
		t.Fatalf("Algorithm() = %s", keyed.Algorithm())
	}
	got, err = keyed.Sum([]byte(foxMessage))
	if err != nil {
		t.Fatalf("Sum() error = %v", err)
	}
	if hex.EncodeToString(got) != foxHMAC {
		t.Fatalf("keyed Sum() = %x, want %s", got, foxHMAC)
	}
}

func TestSumReaderMatchesSum(t *testing.T) {
	for _, c := range []*Checker{New(Config{}), New(Config{Key: []byte("key")})} {
		want, _ := c.Sum([]byte(foxMessage))
		got, err := c.SumReader(strings.NewReader(foxMessage))
		if err != nil {
			t.Fatalf("%s: SumReader() error = %v", c.Algorithm(), err)
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("%s: SumReader() = %x, want %x", c.Algorithm(), got, want)
		}
	}
}

func TestSumFile(t *testing.T) {
	dir := t.TempDir()
	var logs bytes.Buffer
	c := New(Config{LoggerFactory: testLoggerFactory(&logs)})

	got, err := c.SumFile(writeFile(t, dir, "abc.txt", "abc"))
	if err != nil {
		t.Fatalf("SumFile() error = %v", err)
	}
	if hex.EncodeToString(got) != abcSHA256 {
		t.Fatalf("SumFile() = %x, want %s", got, abcSHA256)
	}

	got, err = c.SumFile(writeFile(t, dir, "empty.txt", ""))
	if err != nil {
		t.Fatalf("SumFile(empty) error = %v", err)
	}
	if hex.EncodeToString(got) != emptySHA {
		t.Fatalf("SumFile(empty) = %x, want %s", got, emptySHA)
	}

	big := strings.Repeat("0123456789", 1000)
	want, _ := c.Sum([]byte(big))
	got, err = c.SumFile(writeFile(t, dir, "big.txt", big))
	if err != nil {
		t.Fatalf("SumFile(big) error = %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("SumFile(big) = %x, want %x", got, want)
	}

	if _, err := c.SumFile(filepath.Join(dir, "missing")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("SumFile(missing) error = %v, want ErrNotExist", err)
	}
	if !strings.Contains(logs.String(), "hashing") && !strings.Contains(logs.String(), "hashed") {
		t.Fatalf("expected debug logs, got %q", logs.String())
	}
}

func TestVerify(t *testing.T) {
	c := New(Config{})
	if err := c.Verify([]byte("abc"), abcSHA256); err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if err := c.Verify([]byte("abC"), abcSHA256); !errors.Is(err, ErrMismatch) {
		t.Fatalf("Verify(tampered) error = %v, want ErrMismatch", err)
	}
	if err := c.Verify([]byte("abc"), "abcd"); !errors.Is(err, ErrInvalidSum) {
		t.Fatalf("Verify(short sum) error = %v, want ErrInvalidSum", err)
	}
	if err := c.Verify([]byte("abc"), strings.Repeat("zz", 32)); !errors.Is(err, ErrInvalidSum) {
		t.Fatalf("Verify(non-hex) error = %v, want ErrInvalidSum", err)
	}
	if err := c.Verify([]byte("abc"), strings.ToUpper(abcSHA256)); err != nil {
		t.Fatalf("Verify(upper case) error = %v", err)
	}

	keyed := New(Config{Key: []byte("key")})
	if err := keyed.Verify([]byte(foxMessage), foxHMAC); err != nil {
		t.Fatalf("keyed Verify() error = %v", err)
	}
	wrongKey := New(Config{Key: []byte("other")})
	if err := wrongKey.Verify([]byte(foxMessage), foxHMAC); !errors.Is(err, ErrMismatch) {
		t.Fatalf("wrong key Verify() error = %v, want ErrMismatch", err)
	}
}

func TestConfigKeyIsCopied(t *testing.T) {
	key := []byte("key")
	c := New(Config{Key: key})
	key[0] = 'X'
	if err := c.Verify([]byte(foxMessage), foxHMAC); err != nil {
		t.Fatalf("Verify() after caller mutated key: %v", err)
	}
}

func TestParseLine(t *testing.T) {
	tests := []struct {
		line    string
		want    Entry
		wantErr bool
	}{
		{abcSHA256 + "  abc.txt", Entry{Sum: abcSHA256, Name: "abc.txt"}, false},
		{abcSHA256 + " *abc.bin", Entry{Sum: abcSHA256, Name: "abc.bin"}, false},
		{strings.ToUpper(abcSHA256) + "  a b.txt\r", Entry{Sum: abcSHA256, Name: "a b.txt"}, false},
		{abcSHA256, Entry{}, true},
		{abcSHA256 + " abc.txt", Entry{}, true},
		{abcSHA256 + "  ", Entry{}, true},
		{"abcd  abc.txt", Entry{}, true},
		{"", Entry{}, true},
	}
	for _, tt := range tests {
		got, err := ParseLine(tt.line)
		if tt.wantErr {
			if !errors.Is(err, ErrMalformedLine) {
				t.Errorf("ParseLine(%q) error = %v, want ErrMalformedLine", tt.line, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseLine(%q) error = %v", tt.line, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLine(%q) = %+v, want %+v", tt.line, got, tt.want)
		}
	}
}

func TestFormatLineRoundTrip(t *testing.T) {
	sum, _ := hex.DecodeString(abcSHA256)
	line := FormatLine(sum, "abc.txt")
	if line != abcSHA256+"  abc.txt" {
		t.Fatalf("FormatLine() = %q", line)
	}
	entry, err := ParseLine(line)
	if err != nil {
		t.Fatalf("ParseLine() error = %v", err)
	}
	if entry.Name != "abc.txt" || entry.Sum != abcSHA256 {
		t.Fatalf("ParseLine() = %+v", entry)
	}
}

func TestCheckList(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "abc.txt", "abc")
	writeFile(t, dir, "tampered.txt", "abd")
	absEmpty := writeFile(t, dir, "empty.txt", "")

	list := strings.Join([]string{
		"# integrity list",
		abcSHA256 + "  abc.txt",
		"",
		abcSHA256 + "  tampered.txt",
		"not a checksum line",
		emptySHA + "  " + absEmpty,
		abcSHA256 + "  missing.txt",
	}, "\n")

	var logs bytes.Buffer
	c := New(Config{LoggerFactory: testLoggerFactory(&logs)})
	results, err := c.CheckList(context.Background(), strings.NewReader(list), dir)
	if err != nil {
		t.Fatalf("CheckList() error = %v", err)
	}

	want := []struct {
		line   int
		status string
	}{
		{2, "OK"},
		{4, "FAILED"},
		{5, "MALFORMED"},
		{6, "OK"},
		{7, "ERROR"},
	}
	if len(results) != len(want) {
		t.Fatalf("got %d results, want %d: %+v", len(results), len(want), results)
	}
	for i, w := range want {
		if results[i].Line != w.line || results[i].Status() != w.status {
			t.Errorf("result %d = line %d %s, want line %d %s",
				i, results[i].Line, results[i].Status(), w.line, w.status)
		}
	}
	if !results[0].OK() || results[1].OK() {
		t.Errorf("OK() mismatch: %v %v", results[0].OK(), results[1].OK())
	}
	if !strings.Contains(logs.String(), "tampered.txt") {
		t.Errorf("expected mismatch warning in logs, got %q", logs.String())
	}
}

func TestCheckListCanceled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "abc.txt", "abc")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := New(Config{}).CheckList(ctx, strings.NewReader(abcSHA256+"  abc.txt\n"), dir)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("CheckList() error = %v, want context.Canceled", err)
	}
	if len(results) != 0 {
		t.Fatalf("got %d results after cancel", len(results))
	}
}
