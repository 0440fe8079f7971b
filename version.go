// Copyright 2026 The Loom Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package loom

var (
	version    = "0.3.0" // manually set semantic version number
	commitHash string    // automatically set git commit hash

	// Version is the reported version of the loom timing core.
	Version = func() string {
		if commitHash != "" {
			return version + "-" + commitHash
		}
		return version + "-dev"
	}()
)
