package serial

import (
	"syscall"
	"unsafe"

	ioctl "github.com/daedaluz/goioctl"
)

// Winsize mirrors the kernel's struct winsize (TIOCGWINSZ/TIOCSWINSZ),
// the terminal dimensions a pty slave reports to the process attached to
// it.
type Winsize struct {
	Row    uint16
	Col    uint16
	Xpixel uint16
	Ypixel uint16
}

// SetLockPT sets or clears the pty master's lock flag (TIOCSPTLCK); the
// peer (slave) side cannot be opened while locked, which is why OpenPTY
// must clear it before calling GetPTPeer.
func (p *Port) SetLockPT(locked bool) error {
	var v int32
	if locked {
		v = 1
	}
	return ioctl.Ioctl(uintptr(p.f), tiocsptlck, uintptr(unsafe.Pointer(&v)))
}

// GetPTPeer opens the pty master's slave side via TIOCGPTPEER, avoiding
// the /dev/pts/N path lookup entirely. Unlike every other ioctl in this
// package, TIOCGPTPEER's result is the new file descriptor itself
// (returned by the ioctl syscall, like openat), not a value written
// through a pointer argument, so this bypasses the shared Ioctl helper
// and calls syscall directly to recover it. flags are passed through as
// the open(2) flags for the new descriptor (e.g. O_NOCTTY); 0 is the
// common case.
func (p *Port) GetPTPeer(flags int) (*Port, error) {
	r1, _, errno := syscall.Syscall(syscall.SYS_IOCTL, uintptr(p.f), tiocgptpeer, uintptr(flags))
	if errno != 0 {
		return nil, errno
	}
	return &Port{options: NewOptions(), f: int(r1)}, nil
}

// SetWinSize reports the terminal dimensions to whatever is attached to
// the Port's slave end (TIOCSWINSZ).
func (p *Port) SetWinSize(ws *Winsize) error {
	return ioctl.Ioctl(uintptr(p.f), tiocswinsz, uintptr(unsafe.Pointer(ws)))
}

// GetWinSize reads back the terminal dimensions (TIOCGWINSZ).
func (p *Port) GetWinSize() (*Winsize, error) {
	ws := &Winsize{}
	if err := ioctl.Ioctl(uintptr(p.f), tiocgwinsz, uintptr(unsafe.Pointer(ws))); err != nil {
		return nil, err
	}
	return ws, nil
}

// OpenPTY finds an available pseudoterminal and returns a master and slave port.
// If termp is non-nil, the slave port will be configured with the given termios.
// If winp is non-nil, the slave port will be configured with the given window size.
func OpenPTY(termp *Termios, winp *Winsize) (*Port, *Port, error) {
	master, err := Open("/dev/ptmx", nil)
	if err != nil {
		return nil, nil, err
	}
	if err := master.SetLockPT(false); err != nil {
		master.Close()
		return nil, nil, err
	}
	slave, err := master.GetPTPeer(0)
	if err != nil {
		master.Close()
		return nil, nil, err
	}
	if termp != nil {
		if err := slave.SetAttr(TCSANOW, termp); err != nil {
			master.Close()
			return nil, nil, err
		}
	}
	if winp != nil {
		if err := slave.SetWinSize(winp); err != nil {
			master.Close()
			return nil, nil, err
		}
	}

	return master, slave, nil
}
