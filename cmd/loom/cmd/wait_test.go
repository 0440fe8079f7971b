// Copyright 2026 The Loom Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmd_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/loomrt/loom/cmd/loom/cmd"
)

func TestWaitCmdRegularFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data")
	if err := os.WriteFile(path, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	var outputBuf bytes.Buffer
	if err := newCommand(t,
		cmd.WithArgs("wait", path, "--timeout-ms", "0"),
		cmd.WithOutput(&outputBuf),
	).Execute(); err != nil {
		t.Fatal(err)
	}

	want := "ready\n"
	if got := outputBuf.String(); got != want {
		t.Errorf("got output %q, want %q", got, want)
	}
}
