package audio

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

type pickerKey int

const (
	keyNone pickerKey = iota
	keyUp
	keyDown
	keyEnter
	keyAbort
)

// decodeKey maps one raw stdin read to a picker action. Arrow keys arrive as
// three-byte CSI sequences, everything else as single bytes.
func decodeKey(buf []byte, n int) pickerKey {
	if n == 3 && buf[0] == 0x1b && buf[1] == '[' {
		switch buf[2] {
		case 'A':
			return keyUp
		case 'B':
			return keyDown
		}
		return keyNone
	}
	if n != 1 {
		return keyNone
	}
	switch buf[0] {
	case 13:
		return keyEnter
	case 3: // Ctrl+C
		return keyAbort
	case 'k':
		return keyUp
	case 'j':
		return keyDown
	}
	return keyNone
}

// SelectDevice presents an interactive picker over the available capture
// devices. A single device is returned without prompting; Ctrl+C aborts with
// an error so the caller can fall back to the system default.
func SelectDevice(ctx Context) (*DeviceInfo, error) {
	devices, err := ctx.Devices()
	if err != nil {
		return nil, fmt.Errorf("enumerating devices: %w", err)
	}

	if len(devices) == 0 {
		return nil, fmt.Errorf("no capture devices found")
	}

	if len(devices) == 1 {
		return &devices[0], nil
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("setting raw mode: %w", err)
	}
	defer term.Restore(fd, oldState)

	cursor := 0
	renderList := func() {
		fmt.Print("\r\x1b[J")
		fmt.Print("Microphone to meter (↑/↓, Enter):\r\n\r\n")
		for i, d := range devices {
			btTag := ""
			if IsBluetooth(d.Name) {
				btTag = " \x1b[33m[⚠ BT, coarse levels]\x1b[0m"
			}
			if i == cursor {
				fmt.Printf("  \x1b[1;36m▶ %s%s\x1b[0m\r\n", d.Name, btTag)
			} else {
				fmt.Printf("    %s%s\r\n", d.Name, btTag)
			}
		}
	}

	renderList()

	buf := make([]byte, 3)
	for {
		n, err := os.Stdin.Read(buf)
		if err != nil {
			return nil, fmt.Errorf("reading input: %w", err)
		}

		switch decodeKey(buf, n) {
		case keyEnter:
			fmt.Print("\r\n")
			return &devices[cursor], nil
		case keyAbort:
			fmt.Print("\r\n")
			return nil, fmt.Errorf("selection aborted")
		case keyUp:
			if cursor > 0 {
				cursor--
			}
		case keyDown:
			if cursor < len(devices)-1 {
				cursor++
			}
		}

		fmt.Printf("\x1b[%dA", len(devices)+2)
		renderList()
	}
}
