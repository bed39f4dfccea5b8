// Copyright (c) 2022, superwindstorm <fengwd.hc@gmail.com>
// All rights reserved.
// Use of this source code is governed by a BSD 3-Clause
// license that can be found in the LICENSE file.

package cli

import "errors"

var (
	// ErrUsage indicates a command usage failure.
	ErrUsage = errors.New("usage error")

	// ErrFailed indicates that at least one input could not be hashed
	// or did not verify.
	ErrFailed = errors.New("verification failed")
)

// ExitCode maps an error to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if errors.Is(err, ErrUsage) {
		return 2
	}
	return 1
}
