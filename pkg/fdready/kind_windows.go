// Copyright 2026 The Loom Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fdready

import "golang.org/x/sys/windows"

// kind classifies the handle with GetFileType. The classification picks
// the wait strategy: consoles need the event drain, pipes the
// non-blocking peek, disk files are always ready.
func (w *Waiter) kind(fd int, isSock bool) DescriptorKind {
	if isSock {
		return KindSocket
	}

	t, err := w.sys.fileType(windows.Handle(fd))
	if err != nil {
		return KindGeneric
	}
	switch t {
	case windows.FILE_TYPE_DISK:
		return KindDisk
	case windows.FILE_TYPE_PIPE:
		return KindPipe
	case windows.FILE_TYPE_CHAR:
		return KindConsole
	default:
		return KindGeneric
	}
}
