// Copyright (c) 2022, superwindstorm <fengwd.hc@gmail.com>
// All rights reserved.
// Use of this source code is governed by a BSD 3-Clause
// license that can be found in the LICENSE file.

// Package cli implements the sha256hmac command line.
package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pion/logging"
)

// Version is the program version, set at link time.
var Version = "dev"

// Command represents an executable subcommand.
type Command struct {
	name string
	run  func(ctx context.Context, args []string) error
}

// Name returns the command name.
func (c Command) Name() string { return c.name }

// RootCommand parses global flags and dispatches to subcommands.
type RootCommand struct {
	out      io.Writer
	errOut   io.Writer
	in       io.Reader
	commands []Command
	args     []string

	loggerFactory *logging.DefaultLoggerFactory
}

// NewRootCommand creates the root command.
func NewRootCommand(out, errOut io.Writer, in io.Reader) *RootCommand {
	root := &RootCommand{out: out, errOut: errOut, in: in}
	root.commands = []Command{
		{name: "sum", run: root.runSum},
		{name: "check", run: root.runCheck},
		{name: "mac", run: root.runMAC},
		{name: "version", run: root.runVersion},
	}
	return root
}

// NewOSRootCommand creates a root command wired to the process
// standard streams.
func NewOSRootCommand() *RootCommand {
	return NewRootCommand(os.Stdout, os.Stderr, os.Stdin)
}

// SetArgs sets command arguments.
func (r *RootCommand) SetArgs(args []string) { r.args = args }

// Commands returns configured subcommands.
func (r *RootCommand) Commands() []Command { return r.commands }

// Execute parses global flags and runs the selected subcommand.
func (r *RootCommand) Execute(ctx context.Context) error {
	fs := flag.NewFlagSet("sha256hmac", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	logLevel := fs.String("log", "", "log level: disable, error, warn, info, debug, trace")
	if err := fs.Parse(r.args); err != nil {
		if err == flag.ErrHelp {
			return r.printHelp()
		}
		return fmt.Errorf("parse flags: %w: %w", err, ErrUsage)
	}

	r.loggerFactory = logging.NewDefaultLoggerFactory()
	r.loggerFactory.Writer = r.errOut
	if *logLevel != "" {
		level, err := parseLogLevel(*logLevel)
		if err != nil {
			return err
		}
		r.loggerFactory.DefaultLogLevel = level
	}

	args := fs.Args()
	if len(args) == 0 {
		return r.printHelp()
	}
	if args[0] == "help" {
		return r.printHelp()
	}
	for _, c := range r.commands {
		if c.name == args[0] {
			return c.run(ctx, args[1:])
		}
	}
	if _, err := fmt.Fprintf(r.errOut, "unknown command %q\n", args[0]); err != nil {
		return fmt.Errorf("write unknown command error: %w", err)
	}
	if err := r.printHelp(); err != nil {
		return err
	}
	return fmt.Errorf("unknown command: %s: %w", args[0], ErrUsage)
}

func (r *RootCommand) printHelp() error {
	const help = `sha256hmac computes SHA-256 digests and HMAC-SHA-256 tags

Usage:
  sha256hmac [-log level] <command> [arguments]

Available Commands:
  sum      Print checksums of files or standard input
  check    Verify files against a checksum list
  mac      Print the SHA-256 hash and HMAC of a message
  version  Print version information

Flags:
  -log level  disable, error, warn, info, debug or trace
`
	if _, err := fmt.Fprint(r.out, help); err != nil {
		return fmt.Errorf("write help output: %w", err)
	}
	return nil
}

func (r *RootCommand) runVersion(_ context.Context, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("version accepts no arguments: %w", ErrUsage)
	}
	if _, err := fmt.Fprintf(r.out, "sha256hmac %s\n", Version); err != nil {
		return fmt.Errorf("write version output: %w", err)
	}
	return nil
}

func parseLogLevel(s string) (logging.LogLevel, error) {
	switch strings.ToLower(s) {
	case "disable", "disabled":
		return logging.LogLevelDisabled, nil
	case "error":
		return logging.LogLevelError, nil
	case "warn":
		return logging.LogLevelWarn, nil
	case "info":
		return logging.LogLevelInfo, nil
	case "debug":
		return logging.LogLevelDebug, nil
	case "trace":
		return logging.LogLevelTrace, nil
	default:
		return 0, fmt.Errorf("unknown log level %q: %w", s, ErrUsage)
	}
}

// Run executes the command line args against the process standard
// streams and returns the process exit code.
func Run(ctx context.Context, args []string) int {
	root := NewOSRootCommand()
	root.SetArgs(args)
	if err := root.Execute(ctx); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "sha256hmac: %v\n", err)
		return ExitCode(err)
	}
	return 0
}
