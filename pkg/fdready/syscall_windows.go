// Copyright 2026 The Loom Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fdready

import (
	"encoding/binary"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	modkernel32 = windows.NewLazySystemDLL("kernel32.dll")
	modws2_32   = windows.NewLazySystemDLL("ws2_32.dll")

	procPeekConsoleInputW = modkernel32.NewProc("PeekConsoleInputW")
	procReadConsoleInputW = modkernel32.NewProc("ReadConsoleInputW")
	procWSAPoll           = modws2_32.NewProc("WSAPoll")
)

const (
	keyEvent = 0x0001 // INPUT_RECORD EventType for keyboard input

	pollrdnorm = 0x0100 // WSAPoll readable
	pollwrnorm = 0x0010 // WSAPoll writable
	pollnval   = 0x0004 // WSAPoll invalid socket
	pollhup    = 0x0002 // WSAPoll hang-up
)

// inputRecord mirrors the layout of the native INPUT_RECORD struct,
// with the event union kept as raw bytes.
type inputRecord struct {
	eventType uint16
	_         uint16
	event     [16]byte
}

// isKeyPress reports whether the record is a key-down event carrying a
// real character. Key-up events, bare modifier presses and non-keyboard
// records are noise: the console read discards them, so a wait that
// reported Ready on their account would hand the caller a read that
// blocks.
func (r *inputRecord) isKeyPress() bool {
	if r.eventType != keyEvent {
		return false
	}
	keyDown := binary.LittleEndian.Uint32(r.event[0:4]) != 0
	char := binary.LittleEndian.Uint16(r.event[10:12])
	return keyDown && char != 0
}

// wsaPollFd mirrors the native WSAPOLLFD struct.
type wsaPollFd struct {
	fd      uintptr
	events  int16
	revents int16
}

func peekConsoleInput(h windows.Handle) (rec inputRecord, queued bool, err error) {
	var n uint32
	r1, _, e1 := procPeekConsoleInputW.Call(
		uintptr(h),
		uintptr(unsafe.Pointer(&rec)),
		1,
		uintptr(unsafe.Pointer(&n)),
	)
	if r1 == 0 {
		return rec, false, e1
	}
	return rec, n > 0, nil
}

func readConsoleInput(h windows.Handle) error {
	var rec inputRecord
	var n uint32
	r1, _, e1 := procReadConsoleInputW.Call(
		uintptr(h),
		uintptr(unsafe.Pointer(&rec)),
		1,
		uintptr(unsafe.Pointer(&n)),
	)
	if r1 == 0 {
		return e1
	}
	return nil
}

func wsaPoll(fds []wsaPollFd, timeout int32) (int, error) {
	r1, _, e1 := procWSAPoll.Call(
		uintptr(unsafe.Pointer(&fds[0])),
		uintptr(len(fds)),
		uintptr(timeout),
	)
	n := int(int32(r1))
	if n < 0 {
		return 0, e1
	}
	return n, nil
}

func peekNamedPipe(h windows.Handle) (avail uint32, err error) {
	if err := windows.PeekNamedPipe(h, nil, 0, nil, &avail, nil); err != nil {
		return 0, err
	}
	return avail, nil
}
