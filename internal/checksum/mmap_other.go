// Copyright (c) 2022, superwindstorm <fengwd.hc@gmail.com>
// All rights reserved.
// Use of this source code is governed by a BSD 3-Clause
// license that can be found in the LICENSE file.

//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly)

package checksum

import (
	"errors"
	"os"
)

var errMapUnsupported = errors.New("memory mapping not supported on this platform")

func mapFile(f *os.File, size int64) ([]byte, func() error, error) {
	return nil, nil, errMapUnsupported
}
