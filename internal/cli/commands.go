// Copyright (c) 2022, superwindstorm <fengwd.hc@gmail.com>
// All rights reserved.
// Use of this source code is governed by a BSD 3-Clause
// license that can be found in the LICENSE file.

package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/markkurossi/tabulate"

	"github.com/superwindstorm/sha256"
	"github.com/superwindstorm/sha256/hmac"
	"github.com/superwindstorm/sha256/internal/checksum"
)

func (r *RootCommand) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(r.errOut)
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return fmt.Errorf("parse %s flags: %w: %w", fs.Name(), err, ErrUsage)
	}
	return nil
}

func (r *RootCommand) runSum(ctx context.Context, args []string) error {
	fs := r.newFlagSet("sum")
	key := fs.String("key", "", "HMAC key; prints HMAC-SHA-256 tags instead of digests")
	if err := parseFlags(fs, args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	checker := checksum.New(checksum.Config{
		Key:           []byte(*key),
		LoggerFactory: r.loggerFactory,
	})

	names := fs.Args()
	if len(names) == 0 {
		names = []string{"-"}
	}
	var failed int
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return err
		}
		var sum []byte
		var err error
		if name == "-" {
			sum, err = checker.SumReader(r.in)
		} else {
			sum, err = checker.SumFile(name)
		}
		if err != nil {
			failed++
			if _, werr := fmt.Fprintf(r.errOut, "sha256hmac: %v\n", err); werr != nil {
				return fmt.Errorf("write error output: %w", werr)
			}
			continue
		}
		if _, err := fmt.Fprintln(r.out, checksum.FormatLine(sum, name)); err != nil {
			return fmt.Errorf("write sum output: %w", err)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d inputs could not be read: %w", failed, len(names), ErrFailed)
	}
	return nil
}

func (r *RootCommand) runCheck(ctx context.Context, args []string) error {
	fs := r.newFlagSet("check")
	key := fs.String("key", "", "HMAC key the list was produced with")
	table := fs.Bool("table", false, "render results as a table")
	if err := parseFlags(fs, args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if fs.NArg() > 1 {
		return fmt.Errorf("check takes at most one checksum list: %w", ErrUsage)
	}

	var list io.Reader = r.in
	if fs.NArg() == 1 && fs.Arg(0) != "-" {
		f, err := os.Open(fs.Arg(0))
		if err != nil {
			return err
		}
		defer f.Close()
		list = f
	}

	checker := checksum.New(checksum.Config{
		Key:           []byte(*key),
		LoggerFactory: r.loggerFactory,
	})
	results, err := checker.CheckList(ctx, list, "")
	if err != nil {
		return err
	}

	if *table {
		printTable(r.out, checker.Algorithm(), results)
	} else {
		for _, res := range results {
			name := res.Entry.Name
			if name == "" {
				name = "line " + strconv.Itoa(res.Line)
			}
			if _, err := fmt.Fprintf(r.out, "%s: %s\n", name, res.Status()); err != nil {
				return fmt.Errorf("write check output: %w", err)
			}
		}
	}

	var failed int
	for _, res := range results {
		if !res.OK() {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d checksums did not verify: %w", failed, len(results), ErrFailed)
	}
	return nil
}

func printTable(out io.Writer, algorithm string, results []checksum.Result) {
	tab := tabulate.New(tabulate.UnicodeLight)
	tab.Header("Line").SetAlign(tabulate.MR)
	tab.Header("File").SetAlign(tabulate.ML)
	tab.Header(algorithm).SetAlign(tabulate.ML)
	tab.Header("Status").SetAlign(tabulate.ML)

	for _, res := range results {
		row := tab.Row()
		row.Column(strconv.Itoa(res.Line))
		row.Column(res.Entry.Name)
		row.Column(res.Entry.Sum)
		if res.OK() {
			row.Column(res.Status())
		} else {
			row.Column(res.Status()).SetFormat(tabulate.FmtBold)
		}
	}
	tab.Print(out)
}

// runMAC prints the digest and the HMAC of one message the way the
// interactive chat tooling displays them.
func (r *RootCommand) runMAC(_ context.Context, args []string) error {
	fs := r.newFlagSet("mac")
	key := fs.String("key", "", "HMAC key (required)")
	message := fs.String("message", "", "message; read from standard input when absent")
	if err := parseFlags(fs, args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("mac accepts no positional arguments: %w", ErrUsage)
	}
	keySet := false
	messageSet := false
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "key":
			keySet = true
		case "message":
			messageSet = true
		}
	})
	if !keySet {
		return fmt.Errorf("mac requires -key: %w", ErrUsage)
	}

	msg := []byte(*message)
	if !messageSet {
		data, err := io.ReadAll(r.in)
		if err != nil {
			return fmt.Errorf("read message: %w", err)
		}
		msg = []byte(strings.TrimSuffix(strings.TrimSuffix(string(data), "\n"), "\r"))
	}

	digest, err := sha256.Digest(msg)
	if err != nil {
		return err
	}
	tag, err := hmac.ComputeHex([]byte(*key), msg)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(r.out, "SHA256 hash: %x\nHMAC: %s\n", digest, tag); err != nil {
		return fmt.Errorf("write mac output: %w", err)
	}
	return nil
}
