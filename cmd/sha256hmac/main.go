// Copyright (c) 2022, superwindstorm <fengwd.hc@gmail.com>
// All rights reserved.
// Use of this source code is governed by a BSD 3-Clause
// license that can be found in the LICENSE file.

// sha256hmac prints and verifies SHA-256 digests and HMAC-SHA-256 tags.
//
// Usage:
//
//	sha256hmac [-log level] <command> [arguments]
//
// Commands:
//
//	sum [-key K] [file ...]       print checksums (stdin when no files)
//	check [-key K] [-table] list  verify files against a checksum list
//	mac -key K [-message M]       print the SHA-256 hash and HMAC of M
//	version                       print version information
//
// Example:
//
//	sha256hmac sum -key secret report.pdf > report.sums
//	sha256hmac check -key secret -table report.sums
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/superwindstorm/sha256/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := cli.Run(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}
